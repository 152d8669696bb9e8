package convert

import (
	"testing"
	"time"

	"github.com/haierkeys/campus-share-service/pkg/timex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rowA struct {
	ID        int64
	Name      string
	CreatedAt timex.Time
}

type entityA struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	Extra     string
}

func TestStructAssign_ConvertsTimes(t *testing.T) {
	at := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)

	var e entityA
	require.NoError(t, StructAssign(&e, &rowA{ID: 7, Name: "ana", CreatedAt: timex.Time(at)}))
	assert.Equal(t, int64(7), e.ID)
	assert.Equal(t, "ana", e.Name)
	assert.True(t, at.Equal(e.CreatedAt))

	local := at.In(time.FixedZone("UTC+8", 8*3600))
	var r rowA
	require.NoError(t, StructAssign(&r, &entityA{ID: 9, CreatedAt: local}))
	assert.Equal(t, time.UTC, time.Time(r.CreatedAt).Location())
	assert.True(t, at.Equal(time.Time(r.CreatedAt)))
}

func TestStrTo(t *testing.T) {
	assert.Equal(t, 12, StrTo("12").MustInt())
	assert.Equal(t, 0, StrTo("x").MustInt())
	assert.Equal(t, int64(1<<40), StrTo("1099511627776").MustInt64())
}

func TestBool2Int(t *testing.T) {
	assert.Equal(t, int64(1), Bool2Int(true))
	assert.Equal(t, int64(0), Bool2Int(false))
}

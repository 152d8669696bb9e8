package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveSweep(t *testing.T) {
	before := testutil.ToFloat64(PoolsExpired.WithLabelValues("ride"))

	ObserveSweep("ride", 3, 10*time.Millisecond, nil)
	ObserveSweep("ride", 0, time.Millisecond, errors.New("db down"))

	assert.Equal(t, before+3, testutil.ToFloat64(PoolsExpired.WithLabelValues("ride")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(SweepRuns.WithLabelValues("ride", OutcomeError)), 1.0)
}

func TestObservePoolOperation(t *testing.T) {
	c := PoolOperations.WithLabelValues("food", "join", OutcomeRejected)
	before := testutil.ToFloat64(c)

	ObservePoolOperation("food", "join", OutcomeRejected)

	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

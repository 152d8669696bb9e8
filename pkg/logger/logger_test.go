package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_WritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "app.log")

	lg, err := NewLogger(Config{Level: "debug", File: file, Production: true})
	require.NoError(t, err)

	lg.Info("pool joined")
	_ = lg.Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pool joined")
}

func TestNewLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	lg, err := NewLogger(Config{Level: "loud"})
	require.NoError(t, err)
	assert.False(t, lg.Core().Enabled(-1))
	assert.True(t, lg.Core().Enabled(0))
}

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBeforeInit(t *testing.T) {
	if globalLogger != nil {
		t.Skip("logger already initialized")
	}
	l := Get()
	require.NotNil(t, l)
	assert.NoError(t, Sync())
}

func TestInit(t *testing.T) {
	require.NoError(t, Init(true))
	l := Get()
	require.NotNil(t, l)
	assert.True(t, l.Core().Enabled(-1), "verbose logger should enable debug")

	// Second Init is a no-op.
	require.NoError(t, Init(false))
	assert.Same(t, l, Get())
}

package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/pgvec/v1/pgengine"
	"github.com/Aleph-Alpha/pgvec/v1/vectorstore"
)

// The wrapper has to satisfy the optional logger surfaces of the packages
// that accept one.
var (
	_ pgengine.Logger    = (*Logger)(nil)
	_ vectorstore.Logger = (*Logger)(nil)
)

func TestNewLoggerClient(t *testing.T) {
	l := NewLoggerClient(Config{Level: Debug, ServiceName: "pgvec-test"})
	require.NotNil(t, l)
	require.NotNil(t, l.Zap)
	assert.True(t, l.Zap.Core().Enabled(zap.DebugLevel))

	l = NewLoggerClient(Config{Level: Error, ServiceName: "pgvec-test"})
	assert.False(t, l.Zap.Core().Enabled(zap.InfoLevel))
}

func TestToZapFields(t *testing.T) {
	fields := toZapFields(nil)
	assert.Empty(t, fields)

	fields = toZapFields(errors.New("boom"), map[string]interface{}{"a": 1, "b": "two"})
	assert.Len(t, fields, 3)
}

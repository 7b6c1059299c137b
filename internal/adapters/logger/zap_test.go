package logger

import (
	"testing"

	"github.com/athebyme/catalog-sync/pkg/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZapLogger_SetLevel(t *testing.T) {
	log, err := NewZapLogger("info", true)
	require.NoError(t, err)
	assert.Equal(t, interfaces.InfoLevel, log.GetLevel())

	log.SetLevel(interfaces.DebugLevel)
	assert.Equal(t, interfaces.DebugLevel, log.GetLevel())

	child := log.WithTenant("demo.myshopify.com")
	child.SetLevel(interfaces.ErrorLevel)
	assert.Equal(t, interfaces.ErrorLevel, log.GetLevel())
}

func TestGetLoggerLevel(t *testing.T) {
	assert.Equal(t, interfaces.WarnLevel, GetLoggerLevel("warn"))
	assert.Equal(t, interfaces.InfoLevel, GetLoggerLevel("bogus"))
}

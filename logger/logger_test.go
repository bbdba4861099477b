package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLevelFromEnv(t *testing.T) {
	t.Setenv("CLOUDLINT_LOG_LEVEL", "trace")
	assert.Equal(t, LevelTrace, GetLevelFromEnv())
	t.Setenv("CLOUDLINT_LOG_LEVEL", "ERROR")
	assert.Equal(t, LevelError, GetLevelFromEnv())
	t.Setenv("CLOUDLINT_LOG_LEVEL", "bogus")
	assert.Equal(t, LevelInfo, GetLevelFromEnv())
}

func TestConsoleLevelFiltering(t *testing.T) {
	l := NewConsoleLogger(LevelWarn)
	assert.False(t, l.IsLevelEnabled(LevelDebug))
	assert.True(t, l.IsLevelEnabled(LevelWarn))
	assert.True(t, l.IsLevelEnabled(LevelError))
}

func TestTestLoggerCaptures(t *testing.T) {
	l := NewTestLogger()
	l.Info("hello %s", "world")
	l.Error("boom")
	logs := l.Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, "INFO", logs[0].Severity)
	assert.Equal(t, "hello world", logs[0].Message)
	assert.Equal(t, "ERROR", logs[1].Severity)
}

func TestTestLoggerPrefixSharesStore(t *testing.T) {
	root := NewTestLogger()
	child := root.WithPrefix("[cache]")
	child.Debug("miss")
	logs := root.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, "[cache] miss", logs[0].Message)
}

package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInitLogger ensures that the logger initializes properly.
func TestInitLogger(t *testing.T) {
	ResetLogger()
	t.Cleanup(func() { ResetLogger(); SetLogPath("") })

	logPath := filepath.Join(t.TempDir(), "randcsv.log")
	SetLogPath(logPath)

	InitLogger()
	require.NotNil(t, log, "Expected logger to be initialized, but got nil")

	log.Info("Test log message")

	_, err := os.Stat(logPath)
	assert.NoError(t, err, "Log file was not created")
}

// TestGetLogger ensures that GetLogger returns a non-nil instance.
func TestGetLogger(t *testing.T) {
	ResetLogger()
	t.Cleanup(func() { ResetLogger(); SetLogPath("") })
	SetLogPath("")

	l := GetLogger()
	require.NotNil(t, l)
	assert.Same(t, l, GetLogger(), "GetLogger should return the process logger")
}

// TestLogOutput checks that messages reach the JSON log file.
func TestLogOutput(t *testing.T) {
	ResetLogger()
	t.Cleanup(func() { ResetLogger(); SetLogPath("") })

	logPath := filepath.Join(t.TempDir(), "randcsv.log")
	SetLogPath(logPath)

	GetLogger().Info("Writing to log file")
	Sync()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(data, []byte("Writing to log file")), "Expected log message not found in log file")
}

// TestSetLevel checks that messages below the level are dropped.
func TestSetLevel(t *testing.T) {
	ResetLogger()
	t.Cleanup(func() { ResetLogger(); SetLogPath("") })

	logPath := filepath.Join(t.TempDir(), "randcsv.log")
	SetLogPath(logPath)
	require.NoError(t, SetLevel("warn"))

	l := GetLogger()
	l.Info("hidden info message")
	l.Warn("visible warn message")
	Sync()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden info message")
	assert.Contains(t, string(data), "visible warn message")

	assert.Error(t, SetLevel("loud"))
}

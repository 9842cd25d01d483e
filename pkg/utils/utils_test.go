package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	logger, err := NewLogger(LoggerConfig{Level: "debug", OutputPath: path, Format: "json", Service: "glue"})
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"service":"glue"`)
}

func TestNewLoggerUnknownLevelFallsBack(t *testing.T) {
	logger, err := NewLogger(LoggerConfig{Level: "loud", OutputPath: "stderr", Format: "console"})

	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))
	assert.True(t, logger.Core().Enabled(0))
}

func TestValidators(t *testing.T) {
	assert.NoError(t, ValidateEmail("ana@empresa.com.ar"))
	assert.Error(t, ValidateEmail("ana@empresa"))
	assert.Error(t, ValidateEmail(""))

	assert.NoError(t, ValidateTaxID("20-12345678-9"))
	assert.Error(t, ValidateTaxID("20123456789"))

	assert.NoError(t, ValidateISODate("2024-02-29"))
	assert.Error(t, ValidateISODate("2023-02-29"))
	assert.Error(t, ValidateISODate("07-03-2024"))

	assert.Equal(t, "Ana\tMaría\nPérez", SanitizeString("Ana\x00\tMaría\n\x1bPérez"))
}

package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{input: "debug", expected: zerolog.DebugLevel},
		{input: "INFO", expected: zerolog.InfoLevel},
		{input: "", expected: zerolog.InfoLevel},
		{input: "warning", expected: zerolog.WarnLevel},
		{input: "error", expected: zerolog.ErrorLevel},
		{input: "verbose", expected: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestInit_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "albumbox.log")

	closeLog, err := Init(Config{Output: "file", File: path, Level: "info"})
	require.NoError(t, err)

	zlog.Info().Msgf("player started: album=%s", "night-drive")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"player started: album=night-drive"`)
	assert.Contains(t, string(data), `"level":"info"`)
}

func TestInit_BadFile(t *testing.T) {
	_, err := Init(Config{Output: "file", File: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}

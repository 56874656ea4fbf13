package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", "json", &buf)
	log.Info().Str("task", "t1").Msg("completed")
	log.Debug().Msg("hidden")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "t1", line["task"])
	assert.Equal(t, "completed", line["message"])
	assert.Contains(t, line, "time")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNew_UnknownLevelFallsBackToWarn(t *testing.T) {
	var buf bytes.Buffer
	log := New("loud", "json", &buf)
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())
	log.Info().Msg("dropped")
	assert.Empty(t, buf.String())
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", "console", &buf)
	log.Debug().Msg("autosave")
	assert.Contains(t, buf.String(), "autosave")
	assert.Contains(t, buf.String(), "DBG")
}

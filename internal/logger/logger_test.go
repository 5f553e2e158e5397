package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useBuffer(t *testing.T, cfg Config) *bytes.Buffer {
	t.Helper()
	prev, prevGlobal, prevLevel := Logger, log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		Logger = prev
		log.Logger = prevGlobal
		zerolog.SetGlobalLevel(prevLevel)
	})
	var buf bytes.Buffer
	InitWithWriter(cfg, &buf)
	return &buf
}

func TestInitWithWriter_LevelAndJSON(t *testing.T) {
	buf := useBuffer(t, Config{Level: "warn", Format: "json"})

	Info().Msg("hidden")
	assert.Empty(t, buf.String(), "低于 warn 的日志不应输出")

	Warn().Str("k", "v").Msg("shown")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "v", line["k"])
	assert.Equal(t, "shown", line["message"])
}

func TestInitWithWriter_UnknownLevelFallsBackToInfo(t *testing.T) {
	buf := useBuffer(t, Config{Level: "loud", Format: "json"})
	Debug().Msg("hidden")
	Info().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithRequestID(t *testing.T) {
	buf := useBuffer(t, Config{Level: "info", Format: "json"})

	ctx := WithRequestID(context.Background(), "req-42")
	Ctx(ctx).Info().Msg("handled")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-42", line["request_id"])
}

func TestCtx_FallsBackToGlobal(t *testing.T) {
	buf := useBuffer(t, Config{Level: "info", Format: "json"})

	Ctx(context.Background()).Info().Msg("global")
	assert.Contains(t, buf.String(), "global")
	assert.NotContains(t, buf.String(), "request_id")
}

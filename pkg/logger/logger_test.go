package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" warn ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.name))
		})
	}
}

func TestNew_JSONOutput(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	var buf bytes.Buffer
	l := New(Config{Level: "info", Output: &buf})

	l.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())

	l.Info().Str("service", "debt").Msg("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "debt", entry["service"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry, "caller")
}

func TestNew_Pretty(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	var buf bytes.Buffer
	l := New(Config{Level: "debug", Pretty: true, Output: &buf})
	l.Debug().Msg("console line")

	assert.Contains(t, buf.String(), "console line")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestSetGlobalLogger(t *testing.T) {
	prev := log.Logger
	defer func() { log.Logger = prev }()

	var buf bytes.Buffer
	SetGlobalLogger(zerolog.New(&buf))
	log.Logger.Error().Msg("global")

	assert.Contains(t, buf.String(), "global")
}

package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, Config{Level: "debug", Format: FormatJSON, Fields: map[string]string{"instance": "test"}})

	log.With(String("component", "api")).Info("started", Int("port", 8080), Err(errors.New("boom")))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "started", line["message"])
	assert.Equal(t, "api", line["component"])
	assert.Equal(t, "test", line["instance"])
	assert.Equal(t, float64(8080), line["port"])
	assert.Equal(t, "boom", line["err"])
	assert.True(t, strings.HasPrefix(line["caller"].(string), "logging_test.go:"))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, Config{Level: "warn", Format: FormatJSON})

	log.Info("hidden")
	assert.Zero(t, buf.Len())
	assert.False(t, log.Enabled(LevelDebug))
	assert.True(t, log.Enabled(LevelError))

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestZeroAndNop(t *testing.T) {
	var zero Logger
	assert.True(t, zero.IsZero())
	zero.Info("no panic")
	Nop().Error("nothing")

	assert.True(t, ValidLevel("WARNING"))
	assert.False(t, ValidLevel("loud"))
	assert.Equal(t, FormatJSON, ParseFormat(" JSON "))
	assert.Equal(t, FormatConsole, ParseFormat(""))
}

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	config "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Config"
)

func TestNewWithWriter_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&config.LoggingConfig{Level: "debug", Format: "json"}, &buf)

	l.WithComponent("ingestor").WithTopic("dev1/gateway/v1/humidity").ErrorWithError(errors.New("boom"), "lookup failed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "ingestor", entry["component"])
	assert.Equal(t, "dev1/gateway/v1/humidity", entry["topic"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "lookup failed", entry["message"])
}

func TestNewWithWriter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&config.LoggingConfig{Level: "warn", Format: "json"}, &buf)

	l.Debug("hidden")
	l.Info("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewWithWriter_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&config.LoggingConfig{Level: "loud", Format: "json"}, &buf)

	l.Debug("hidden")
	assert.Zero(t, buf.Len())
	l.Info("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&config.LoggingConfig{Level: "info", Format: "json"}, &buf)

	l.WithFields(map[string]interface{}{"device": "dev1", "sensor_type": 2}).Info("queued")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "dev1", entry["device"])
	assert.EqualValues(t, 2, entry["sensor_type"])
}

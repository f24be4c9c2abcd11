package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scid-pd-engine/internal/domain"
)

func TestNewWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(domain.LoggingConfig{Level: "debug", Format: "json"}, &buf)

	logger.WithFields(logrus.Fields{"module_id": "borderline_pd"}).Debug("scored")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "scored", entry["message"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "borderline_pd", entry["module_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewWithOutput_TextAndLevelFallback(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(domain.LoggingConfig{Level: "chatty", Format: "TEXT"}, &buf)

	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	logger.Debug("hidden")
	logger.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `msg=shown`)
}

func TestDiscard(t *testing.T) {
	Discard().Error("nothing to see")
}

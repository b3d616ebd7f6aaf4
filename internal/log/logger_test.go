package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("production", &buf)

	logger.Info().Str("product_id", "p1").Msg("product created")
	logger.Debug().Msg("dropped")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "product created", entry["message"])
	assert.Equal(t, "production", entry["env"])
	assert.Equal(t, "p1", entry["product_id"])
}

func TestDevelopmentIsHumanReadable(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("development", &buf)

	logger.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

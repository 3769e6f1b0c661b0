package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(InfoLevel, &buf).WithField("search_id", "abc")

	logger.Info("search started", map[string]interface{}{"generation": 3})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "search started", entry["message"])
	assert.Equal(t, "abc", entry["search_id"])
	assert.Equal(t, float64(3), entry["generation"])
	assert.Contains(t, entry["caller"], "logger_test.go")
}

func TestTextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(DebugLevel, &buf)
	logger.format = TextFormat

	logger.Warn("slow client", map[string]interface{}{
		"search_id": "abc",
		"dropped":   2,
	})

	line := buf.String()
	assert.Contains(t, line, "[WARN]")
	assert.Contains(t, line, "slow client")
	// Fields are emitted key=value in sorted order.
	assert.Contains(t, line, "dropped=2 search_id=abc")
	assert.NotContains(t, line, "{", "text format must not emit JSON")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(ErrorLevel, &buf)

	logger.Debug("suppressed")
	logger.Info("suppressed")
	logger.Warn("suppressed")
	assert.Zero(t, buf.Len())

	logger.Error("emitted")
	assert.Contains(t, buf.String(), "emitted")
}

func TestNewLoggerHonorsFormat(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{format: "json", want: JSONFormat},
		{format: "text", want: TextFormat},
		{format: "TEXT", want: TextFormat},
		{format: "", want: JSONFormat},
		{format: "yaml", want: JSONFormat},
	}

	for _, tt := range tests {
		t.Run("format="+tt.format, func(t *testing.T) {
			logger, err := NewLogger(&Config{Level: "info", Format: tt.format, Output: "stderr"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, logger.format)
		})
	}
}

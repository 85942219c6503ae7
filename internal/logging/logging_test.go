package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func newBufferLogger(t *testing.T, format Format) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	var handler slog.Handler
	opts := &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if shouldRedact(a.Key) {
				a.Value = slog.StringValue("[REDACTED]")
			}
			return a
		},
	}
	if format == FormatJSON {
		handler = slog.NewJSONHandler(&buf, opts)
	} else {
		handler = slog.NewTextHandler(&buf, opts)
	}
	return &Logger{Logger: slog.New(handler), config: DefaultConfig()}, &buf
}

func TestRedactsSensitiveAttributeKeys(t *testing.T) {
	logger, buf := newBufferLogger(t, FormatJSON)
	logger.Info("key slot rotated", "key_id", "abcd1234", "hmac_key", "deadbeef")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "[REDACTED]", entry["key_id"])
	require.Equal(t, "[REDACTED]", entry["hmac_key"])
}

func TestNonSensitiveKeysPassThrough(t *testing.T) {
	logger, buf := newBufferLogger(t, FormatJSON)
	logger.Info("embed complete", "slot", 3, "strength", 12)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.EqualValues(t, 3, entry["slot"])
	require.EqualValues(t, 12, entry["strength"])
}

func TestParseLevelRoundTrip(t *testing.T) {
	for _, s := range []string{"debug", "info", "warn", "error"} {
		lvl, err := ParseLevel(s)
		require.NoError(t, err)
		require.Equal(t, s, LevelString(lvl))
	}
}

func TestParseLevelRejectsUnknown(t *testing.T) {
	_, err := ParseLevel("verbose")
	require.Error(t, err)
}

func TestWithComponentTagsSubsequentEntries(t *testing.T) {
	logger, buf := newBufferLogger(t, FormatJSON)
	sub := logger.WithComponent("audio")
	sub.Info("orchestrator started")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "audio", entry["component"])
}

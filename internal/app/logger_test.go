package app

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLoggerSelectsHandler(t *testing.T) {
	jsonLogger := NewLogger(&Config{LogFormat: "json"})
	_, ok := jsonLogger.Handler().(*slog.JSONHandler)
	require.True(t, ok, "json format selects the JSON handler")

	textLogger := NewLogger(&Config{LogFormat: "text"})
	_, ok = textLogger.Handler().(*slog.TextHandler)
	require.True(t, ok)

	// Missing config degrades to text, never panics.
	fallback := NewLogger(nil)
	_, ok = fallback.Handler().(*slog.TextHandler)
	require.True(t, ok)
}

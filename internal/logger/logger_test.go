package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestTransition(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "info", "json")
	t.Cleanup(func() { Initialize("info", "text") })

	Transition("borrow_request", "req-1", "pending", "approved", "actor", "lender")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Lifecycle transition", entry["msg"])
	assert.Equal(t, "req-1", entry["id"])
	assert.Equal(t, "approved", entry["to"])
	assert.Equal(t, "lender", entry["actor"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter(&buf, "info", "text")
	t.Cleanup(func() { Initialize("info", "text") })

	EnterMethod("svc.Do")
	assert.Empty(t, buf.String())

	ExternalServiceResult("smtp", "send", errors.New("refused"))
	assert.Contains(t, buf.String(), "refused")
}

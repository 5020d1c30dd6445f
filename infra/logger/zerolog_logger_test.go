package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	require.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer func() { assert.NoError(t, os.Unsetenv("APP_ENV")) }()
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestSetLevel(t *testing.T) {
	defer func() { require.NoError(t, SetLevel("info")) }()
	require.NoError(t, SetLevel("debug"))

	var buf bytes.Buffer
	l := NewZerologLoggerTo(&buf, "clock")
	l.Debugw("tick", map[string]any{"tick": 3})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "clock", entry["component"])
	assert.Equal(t, "tick", entry["message"])
	assert.Equal(t, float64(3), entry["tick"])

	require.NoError(t, SetLevel("warn"))
	buf.Reset()
	l = NewZerologLoggerTo(&buf, "clock")
	l.Infof("hidden")
	l.Warnf("shown")
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))

	if err := SetLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

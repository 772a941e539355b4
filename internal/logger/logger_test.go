package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "debug", Format: "json", Out: buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if log.GetLevel() != zerolog.DebugLevel {
		t.Errorf("Expected debug level, got %s", log.GetLevel())
	}
	log.Debug().Str("run_id", "abc").Msg("analysis finished")
	if !strings.Contains(buf.String(), `"run_id":"abc"`) {
		t.Errorf("Expected JSON field in output, got: %s", buf.String())
	}
}

func TestNew_ConsoleDefault(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := New(Options{Out: buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log.Debug().Msg("hidden")
	log.Info().Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("Expected info level console output, got: %s", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("Expected console format, got JSON: %s", out)
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Error("Expected error for invalid level")
	}
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Error("Expected error for invalid format")
	}
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Msg("test message")

	if !strings.Contains(buf.String(), "test message") {
		t.Errorf("Expected output to contain 'test message', got: %s", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	retrievedLog := FromContext(ctx)
	retrievedLog.Info().Msg("test")

	if buf.Len() == 0 {
		t.Error("Expected log output from retrieved logger")
	}
}

func TestFromContext_Missing(t *testing.T) {
	log := FromContext(context.Background())
	if log.GetLevel() != zerolog.Disabled {
		t.Error("Expected disabled logger when none is in context")
	}
}

func TestWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := WithFields(NewWithWriter(buf), map[string]interface{}{
		"file": "penjualan.csv",
		"rows": 42,
	})
	log.Info().Msg("loaded")

	out := buf.String()
	if !strings.Contains(out, `"file":"penjualan.csv"`) || !strings.Contains(out, `"rows":42`) {
		t.Errorf("Expected output to contain fields, got: %s", out)
	}
}

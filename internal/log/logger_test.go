package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/felixgeelhaar/idleforge/internal/errors"
)

func newBufferLogger(t *testing.T, level Level, format Format) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Level = level
	cfg.Format = format
	cfg.Output = NewOutput(&buf)
	return New(cfg), &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("failed to decode log entry %q: %v", buf.String(), err)
	}
	return entry
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{name: "default config", config: DefaultConfig()},
		{name: "debug text with source", config: Config{Level: LevelDebug, Format: FormatText, AddSource: true, Output: NewOutput(&bytes.Buffer{})}},
		{name: "settings", config: FromSettings("warn", "text", &bytes.Buffer{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.config)
			if logger == nil || logger.slog == nil {
				t.Fatal("expected logger, got nil")
			}
			if logger.Config().Level != tt.config.Level {
				t.Errorf("expected level %v, got %v", tt.config.Level, logger.Config().Level)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(t, LevelWarn, FormatJSON)

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}

	logger.Warn("save corrupt, using defaults", "key", "game-save")
	entry := decodeLine(t, buf)
	if entry["msg"] != "save corrupt, using defaults" {
		t.Errorf("unexpected msg %v", entry["msg"])
	}
	if entry["service"] != "idleforge" {
		t.Errorf("expected service attribute, got %v", entry["service"])
	}
	if entry["key"] != "game-save" {
		t.Errorf("expected key attribute, got %v", entry["key"])
	}
}

func TestTextFormat(t *testing.T) {
	logger, buf := newBufferLogger(t, LevelDebug, FormatText)
	logger.WithComponent("engine").Debug("tick", "completions", 2)

	out := buf.String()
	for _, want := range []string{"level=DEBUG", "component=engine", "completions=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestWithError(t *testing.T) {
	t.Run("forge error", func(t *testing.T) {
		logger, buf := newBufferLogger(t, LevelInfo, FormatJSON)
		err := errors.Wrap(errors.ErrCodeFileReadFailed, "read pack", fmt.Errorf("permission denied")).
			WithSuggestion("check permissions")

		logger.WithError(fmt.Errorf("loading: %w", err)).Error("content load failed")

		entry := decodeLine(t, buf)
		if entry["error_code"] != "IO-002" {
			t.Errorf("expected error_code IO-002, got %v", entry["error_code"])
		}
		if entry["cause"] != "permission denied" {
			t.Errorf("expected cause, got %v", entry["cause"])
		}
		if _, ok := entry["suggestions"]; !ok {
			t.Error("expected suggestions attribute")
		}
	})

	t.Run("plain error", func(t *testing.T) {
		logger, buf := newBufferLogger(t, LevelInfo, FormatJSON)
		logger.WithError(fmt.Errorf("boom")).Error("failed")

		entry := decodeLine(t, buf)
		if entry["error"] != "boom" {
			t.Errorf("expected error boom, got %v", entry["error"])
		}
	})

	t.Run("nil error returns same logger", func(t *testing.T) {
		logger, _ := newBufferLogger(t, LevelInfo, FormatJSON)
		if logger.WithError(nil) != logger {
			t.Error("expected same logger for nil error")
		}
	})
}

func TestLogError(t *testing.T) {
	logger, buf := newBufferLogger(t, LevelInfo, FormatJSON)

	logger.LogError("validation failed", errors.NewEquipmentInvalidError([]string{"entry[0].tier: bad"}))
	entry := decodeLine(t, buf)
	if entry["error_code"] != "EQUIP-001" {
		t.Errorf("expected EQUIP-001, got %v", entry["error_code"])
	}

	buf.Reset()
	logger.LogError("ignored", nil)
	if buf.Len() != 0 {
		t.Errorf("nil error should not log, got %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	logger := OrDiscard(nil)
	logger.Error("goes nowhere")

	existing := Default()
	if OrDiscard(existing) != existing {
		t.Error("OrDiscard should keep a non-nil logger")
	}
}

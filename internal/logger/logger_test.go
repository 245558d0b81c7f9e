package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"neuroclinic-server/internal/config"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := New(config.LogConfig{Level: "debug", Format: format})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", format, err)
		}
		if !l.Core().Enabled(zapcore.DebugLevel) {
			t.Errorf("%s: debug level should be enabled", format)
		}
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "loud", Format: "json"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

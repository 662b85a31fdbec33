package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestConfigureJSON(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "warn", Format: "json", Output: &buf})
	defer Configure(Config{Level: "info"})

	Info().Msg("hidden")
	Warn().Str("table", "course").Msg("shown")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected exactly one json line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "shown" || entry["table"] != "course" || entry["app"] != "seedgen" {
		t.Errorf("entry = %v", entry)
	}
}

func TestConfigureLevels(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":  zerolog.DebugLevel,
		" WARN ": zerolog.WarnLevel,
		"error":  zerolog.ErrorLevel,
		"":       zerolog.InfoLevel,
		"chatty": zerolog.InfoLevel,
	}
	defer Configure(Config{Level: "info"})
	for in, want := range tests {
		Configure(Config{Level: in, Output: &bytes.Buffer{}})
		if got := zerolog.GlobalLevel(); got != want {
			t.Errorf("level %q = %s, want %s", in, got, want)
		}
	}
}

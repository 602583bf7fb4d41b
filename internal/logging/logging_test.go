package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// captureLogOutput captures log output for testing by temporarily
// redirecting the logger to write to a buffer
func captureLogOutput(f func()) string {
	var buf bytes.Buffer

	oldLogger := defaultLogger
	defaultLogger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	f()

	defaultLogger = oldLogger
	return buf.String()
}

func decodeLine(t *testing.T, out string) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &entry); err != nil {
		t.Fatalf("output is not a single JSON entry: %v\n%s", err, out)
	}
	return entry
}

func TestInitLoggerTo(t *testing.T) {
	tests := []struct {
		name      string
		level     Level
		format    Format
		wantDebug bool
		wantJSON  bool
	}{
		{"debug json", LevelDebug, FormatJSON, true, true},
		{"info text", LevelInfo, FormatText, false, false},
		{"error json", LevelError, FormatJSON, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			InitLoggerTo(&buf, tt.level, tt.format)
			defer InitLogger(LevelInfo, FormatJSON)

			Debug("debug message")
			Error("error message")

			out := buf.String()
			if got := strings.Contains(out, "debug message"); got != tt.wantDebug {
				t.Errorf("debug visible = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.HasPrefix(out, "{"); got != tt.wantJSON {
				t.Errorf("JSON output = %v, want %v:\n%s", got, tt.wantJSON, out)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"", LevelInfo, false},
		{"WARN", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("text"); f != FormatText || err != nil {
		t.Errorf("ParseFormat(text) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestRunID(t *testing.T) {
	id := NewRunID()
	if len(id) != 36 {
		t.Errorf("NewRunID() = %q, want a UUID", id)
	}
	if id == NewRunID() {
		t.Error("NewRunID() should be unique")
	}

	ctx := WithRunID(context.Background(), id)
	if GetRunID(ctx) != id {
		t.Errorf("GetRunID() = %q, want %q", GetRunID(ctx), id)
	}
	if GetRunID(context.Background()) != "" {
		t.Error("GetRunID() without a run ID should be empty")
	}

	out := captureLogOutput(func() { InfoContext(ctx, "converting") })
	if entry := decodeLine(t, out); entry["run_id"] != id {
		t.Errorf("run_id = %v, want %s", entry["run_id"], id)
	}
}

func TestUtteranceError(t *testing.T) {
	out := captureLogOutput(func() {
		UtteranceError(context.Background(), "alpino", "corpus/a.txt", "3", "hallo", errors.New("timeout"))
	})
	entry := decodeLine(t, out)
	if entry["msg"] != "utterance_error" || entry["level"] != "ERROR" {
		t.Errorf("unexpected entry: %v", entry)
	}
	for key, want := range map[string]string{
		"document":     "corpus/a.txt",
		"utterance_id": "3",
		"text":         "hallo",
		"error":        "timeout",
	} {
		if entry[key] != want {
			t.Errorf("%s = %v, want %s", key, entry[key], want)
		}
	}
}

func TestUtteranceSkipped(t *testing.T) {
	out := captureLogOutput(func() {
		UtteranceSkipped(context.Background(), "lassy", "a.xml", "1", "no annotation")
	})
	entry := decodeLine(t, out)
	if entry["msg"] != "utterance_skipped" || entry["level"] != "WARN" || entry["reason"] != "no annotation" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestFileSkipped(t *testing.T) {
	out := captureLogOutput(func() {
		FileSkipped(context.Background(), "b.cha", errors.New("bad header"), "format", "CHAT")
	})
	entry := decodeLine(t, out)
	if entry["path"] != "b.cha" || entry["format"] != "CHAT" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestParserStartup(t *testing.T) {
	out := captureLogOutput(func() {
		ParserStartup(context.Background(), "server", "Alpino-x86_64 1.0")
	})
	entry := decodeLine(t, out)
	if entry["backend"] != "server" || entry["msg"] != "parser_startup" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

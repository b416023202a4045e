package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Writer: &buf, Level: "warn", Format: "json"})

	logger.Info("ignored_event")
	logger.Warn("task_access_forbidden", "task_id", 7)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if entry["msg"] != "task_access_forbidden" || entry["task_id"] != float64(7) {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if _, ok := entry["source"]; !ok {
		t.Fatalf("expected source attribute, got %v", entry)
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Writer: &buf, Level: "debug", Format: "text"})

	logger.Debug("todo_list_query", "owner", 3)
	if !strings.Contains(buf.String(), "todo_list_query") || !strings.Contains(buf.String(), "owner=3") {
		t.Fatalf("unexpected text output: %q", buf.String())
	}
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Writer: &buf, Level: "loud"})

	logger.Debug("hidden")
	logger.Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

package log

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetupWritesFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "wsecho.log")
	if err := Setup("info", filename); err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer Setup("info", "")

	New().Println("websocket connection open", "id", 7)
	New().Debugln("hidden at info level")
	Clean()

	f, err := os.Open(filename)
	if err != nil {
		t.Fatalf("open log file: %v", err)
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], `"msg":"websocket connection open"`) || !strings.Contains(lines[0], `"id":7`) {
		t.Errorf("unexpected line %s", lines[0])
	}
}

func TestSetupBadLevel(t *testing.T) {
	if err := Setup("loud", ""); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestWrap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := Wrap(zap.New(core))
	l.Println("message received", "payload", "hi")
	l.Debugln("dropped frame")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Message != "message received" || entries[0].ContextMap()["payload"] != "hi" {
		t.Errorf("unexpected entry %+v", entries[0])
	}
	if entries[1].Level != zapcore.DebugLevel {
		t.Errorf("got level %v, want debug", entries[1].Level)
	}
}

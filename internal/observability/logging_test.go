package observability

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/tutorconnect/tutor-connect/internal/config"
)

func TestNewLoggerTagsEntriesWithService(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := NewLogger(
		config.AppConfig{Name: "tutor-connect", Version: "1.2.3", Env: "production"},
		config.LoggerConfig{Level: "WARN", Output: path},
	)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	logger.Info("dropped")
	logger.Warn("kept")
	_ = logger.Sync()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("expected json line, got %q", scanner.Text())
		}
		lines = append(lines, entry)
	}
	if len(lines) != 1 {
		t.Fatalf("expected only the warn entry, got %d lines", len(lines))
	}
	entry := lines[0]
	if entry["message"] != "kept" || entry["level"] != "warn" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if entry["service"] != "tutor-connect" || entry["version"] != "1.2.3" || entry["env"] != "production" {
		t.Fatalf("expected service fields, got %v", entry)
	}
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(config.AppConfig{Name: "tutor-connect"}, config.LoggerConfig{Level: "chatty"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) || logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected info level for an unknown level name")
	}
}

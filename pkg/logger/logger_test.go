package logger

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

func TestWithComponent(t *testing.T) {
	entry := WithComponent("session")
	if v, ok := entry.Data["component"]; !ok || v != "session" {
		t.Fatalf("component field missing: %v", entry.Data)
	}
}

func TestNewReadsLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	if lvl := New().GetLevel(); lvl != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", lvl)
	}

	t.Setenv("LOG_LEVEL", "nonsense")
	if lvl := New().GetLevel(); lvl != logrus.InfoLevel {
		t.Fatalf("invalid level should fall back to info, got %s", lvl)
	}
}

func TestConfigureInvalidLevel(t *testing.T) {
	if err := Configure("loud", "stdout"); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestConfigureFileOutputUsesRotation(t *testing.T) {
	orig := std.Out
	t.Cleanup(func() { std.SetOutput(orig) })

	path := filepath.Join(t.TempDir(), "logs", "dashboard.log")
	if err := Configure("info", path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lj, ok := std.Out.(*lumberjack.Logger)
	if !ok {
		t.Fatalf("expected lumberjack writer, got %T", std.Out)
	}
	if lj.Filename != path {
		t.Fatalf("unexpected log file: %s", lj.Filename)
	}
}

package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupWritesFileAndMirror(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "focusnest.log")
	var mirror bytes.Buffer

	logger, closer, err := Setup(Options{Path: path, Stderr: true, Writer: &mirror})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	logger.Info("phase expired", "phase", "focus")
	logger.Debug("hidden at info level")
	if err := closer.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	for _, out := range []string{string(data), mirror.String()} {
		if !strings.Contains(out, "phase expired") || !strings.Contains(out, "phase=focus") {
			t.Fatalf("missing record in %q", out)
		}
		if strings.Contains(out, "hidden at info level") {
			t.Fatalf("debug record leaked at info level: %q", out)
		}
	}
}

func TestSetupVerboseEnablesDebug(t *testing.T) {
	var mirror bytes.Buffer
	logger, closer, err := Setup(Options{Verbose: true, Stderr: true, Writer: &mirror})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	defer closer.Close()

	logger.Debug("tick", "remaining", 59)
	if !strings.Contains(mirror.String(), "level=DEBUG") {
		t.Fatalf("expected debug record, got %q", mirror.String())
	}
}

func TestSetupWithoutOutputsDiscards(t *testing.T) {
	logger, closer, err := Setup(Options{})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	defer closer.Close()
	logger.Info("nowhere")
}

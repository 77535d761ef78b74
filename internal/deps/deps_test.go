package deps

import (
	"os"
	"path/filepath"
	"testing"

	"screendoc/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
}

func TestCheckBinariesUnconfigured(t *testing.T) {
	results := CheckBinaries([]Requirement{{Name: "Blank", Command: "   "}})
	if results[0].Available {
		t.Fatal("blank command must not be available")
	}
	if results[0].Detail != "command not configured" {
		t.Fatalf("unexpected detail: %s", results[0].Detail)
	}
}

func TestRequirements(t *testing.T) {
	cfg := config.Default()
	cfg.OCR.Command = "screendoc-ocr"
	cfg.PII.NERCommand = ""

	reqs := Requirements(&cfg)
	if len(reqs) != 2 {
		t.Fatalf("expected ffmpeg and ocr requirements, got %d", len(reqs))
	}
	if reqs[0].Name != "FFmpeg" || reqs[0].Optional {
		t.Fatalf("ffmpeg must be a mandatory requirement: %#v", reqs[0])
	}
	if reqs[1].Name != "OCR" || !reqs[1].Optional {
		t.Fatalf("ocr must be an optional requirement: %#v", reqs[1])
	}
}

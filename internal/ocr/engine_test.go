package ocr_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"screendoc/internal/ocr"
)

func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture")
	}
	path := filepath.Join(dir, "fake-ocr")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDisabledEngine(t *testing.T) {
	engine := ocr.NewEngine("", time.Second, nil)
	if engine.Available() {
		t.Fatal("empty command should not be available")
	}
	if regions := engine.ExtractRegions(context.Background(), "ignored.png"); regions != nil {
		t.Fatalf("expected nil regions, got %v", regions)
	}
}

func TestExtractRegionsParsesOutput(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "frame.png")
	if err := os.WriteFile(image, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	script := writeScript(t, dir, `echo '[{"text":"user@example.com","x1":10,"y1":20,"x2":200,"y2":40,"confidence":0.98},{"text":"  ","x1":0,"y1":0,"x2":1,"y2":1,"confidence":0.5}]'`)

	engine := ocr.NewEngine(script, 5*time.Second, nil)
	regions := engine.ExtractRegions(context.Background(), image)
	if len(regions) != 1 {
		t.Fatalf("expected 1 region after blank filtering, got %d", len(regions))
	}
	if regions[0].Text != "user@example.com" || regions[0].X2 != 200 {
		t.Fatalf("unexpected region: %+v", regions[0])
	}
}

func TestExtractRegionsDegradesOnFailure(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "frame.png")
	if err := os.WriteFile(image, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	cases := map[string]string{
		"nonzero exit":   "exit 3",
		"garbage output": "echo not-json",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			script := writeScript(t, t.TempDir(), body)
			engine := ocr.NewEngine(script, 5*time.Second, nil)
			if regions := engine.ExtractRegions(context.Background(), image); len(regions) != 0 {
				t.Fatalf("expected empty regions, got %v", regions)
			}
		})
	}
}

func TestExtractRegionsMissingImage(t *testing.T) {
	script := writeScript(t, t.TempDir(), "echo '[]'")
	engine := ocr.NewEngine(script, time.Second, nil)
	if regions := engine.ExtractRegions(context.Background(), "/nonexistent/frame.png"); len(regions) != 0 {
		t.Fatalf("expected empty regions, got %v", regions)
	}
}

package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"screendoc/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDiskSpace(t *testing.T) {
	result := CheckDiskSpace("test", t.TempDir())
	// The temp filesystem on a dev machine should clear the threshold.
	if !result.Passed && result.Detail == "" {
		t.Fatal("expected detail when disk space check fails")
	}
}

func TestCheckNarrationAPI_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := CheckNarrationAPI(context.Background(), config.Narrative{
		APIKey:  "good-key",
		BaseURL: srv.URL,
		Model:   "test-model",
	})
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckNarrationAPI_BadKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	result := CheckNarrationAPI(context.Background(), config.Narrative{
		APIKey:  "bad-key",
		BaseURL: srv.URL,
		Model:   "test-model",
	})
	if result.Passed {
		t.Fatal("expected failure for bad key")
	}
}

func TestCheckNarrationAPI_MissingKey(t *testing.T) {
	result := CheckNarrationAPI(context.Background(), config.Narrative{Model: "test-model"})
	if result.Passed {
		t.Fatal("expected failure for missing key")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_ReportsDirectories(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StagingDir = t.TempDir()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Narrative.APIKey = ""

	results := RunAll(context.Background(), &cfg)
	byName := make(map[string]Result, len(results))
	for _, r := range results {
		byName[r.Name] = r
	}
	for _, name := range []string{"Staging directory", "Output directory"} {
		r, ok := byName[name]
		if !ok {
			t.Fatalf("missing %s check", name)
		}
		if !r.Passed {
			t.Errorf("%s check failed: %s", name, r.Detail)
		}
	}
	if r, ok := byName["Narration API"]; !ok || r.Passed {
		t.Fatal("narration check should fail without an api key")
	}
}

package test_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/wrenlet/decant/internal/domain-adapters/gateways"
	orchestrators "github.com/wrenlet/decant/internal/domain-orchestrators"
	"github.com/wrenlet/decant/internal/external-adapters/yaml"
)

// buildArchive produces a tar.gz with a single wrapped binary and returns
// the bytes plus their SHA256 digest
func buildArchive(t *testing.T) ([]byte, string) {
	t.Helper()

	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gzw)

	entries := []struct {
		name    string
		content string
	}{
		{name: "tool-1.0.0/bin/tool", content: "#!/bin/sh\necho tool\n"},
		{name: "tool-1.0.0/LICENSE", content: "MIT"},
	}
	for _, e := range entries {
		header := &tar.Header{Name: e.name, Mode: 0755, Size: int64(len(e.content))}
		if err := tw.WriteHeader(header); err != nil {
			t.Fatalf("Failed to write tar header: %v", err)
		}
		if _, err := tw.Write([]byte(e.content)); err != nil {
			t.Fatalf("Failed to write tar content: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("Failed to close tar writer: %v", err)
	}
	if err := gzw.Close(); err != nil {
		t.Fatalf("Failed to close gzip writer: %v", err)
	}

	sum := sha256.Sum256(buf.Bytes())
	return buf.Bytes(), hex.EncodeToString(sum[:])
}

// TestEndToEnd_InstallPipeline runs the whole install path against a local
// server: recipe load, version resolution, redirect following, streaming
// digest verification, cache publish and extraction
func TestEndToEnd_InstallPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	archive, digest := buildArchive(t)

	var downloads int32
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/stable.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "1.0.0\n")
	})
	mux.HandleFunc("/dl/", func(w http.ResponseWriter, r *http.Request) {
		// Mirror the CDN hop real release hosts use
		http.Redirect(w, r, "/cdn"+r.URL.Path, http.StatusFound)
	})
	mux.HandleFunc("/cdn/dl/tool-v1.0.0-linux-amd64.tar.gz", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&downloads, 1)
		_, _ = w.Write(archive)
	})

	recipesDir := t.TempDir()
	recipeYAML := fmt.Sprintf(`
name: tool
description: Integration test fixture
version:
  source: url:%s/stable.txt
download:
  url: %s/dl/tool-v{version}-{os}-{arch}.tar.gz
  platforms:
    linux-x86_64:
      os: linux
      arch: amd64
      sha256: %s
`, server.URL, server.URL, digest)
	if err := os.WriteFile(filepath.Join(recipesDir, "tool.yml"), []byte(recipeYAML), 0600); err != nil {
		t.Fatalf("Failed to write recipe: %v", err)
	}

	cacheDir := filepath.Join(t.TempDir(), "cache")
	workDir := t.TempDir()

	fetcher, err := gateways.NewArtifactFetcher(gateways.FetcherOptions{})
	if err != nil {
		t.Fatalf("NewArtifactFetcher() error = %v", err)
	}

	orch := orchestrators.NewInstallOrchestrator(
		yaml.NewRecipeRepository(recipesDir, nil),
		gateways.NewVersionFetcher(),
		gateways.NewURLResolver(),
		fetcher,
		gateways.NewExtractor(nil),
		gateways.NewSignatureVerifier(),
		gateways.NewDigestVerifier(),
		orchestrators.InstallOrchestratorConfig{CacheDir: cacheDir, WorkDir: workDir},
	)

	ctx := context.Background()

	// No version given: resolved from the recipe's url source
	result, err := orch.InstallPackage(ctx, "tool", "", "linux-x86_64")
	if err != nil {
		t.Fatalf("InstallPackage() error = %v", err)
	}
	if !result.Verified {
		t.Error("result.Verified = false, want true")
	}
	if result.Artifact.Version != "1.0.0" {
		t.Errorf("Artifact.Version = %v, want 1.0.0", result.Artifact.Version)
	}

	wantRoot := filepath.Join(workDir, "tool-1.0.0")
	if result.ExtractedTo != wantRoot {
		t.Errorf("result.ExtractedTo = %v, want %v", result.ExtractedTo, wantRoot)
	}
	if _, err := os.Stat(filepath.Join(wantRoot, "bin", "tool")); err != nil {
		t.Errorf("extracted binary missing: %v", err)
	}

	// Second install must come entirely from the cache
	if _, err := orch.InstallPackage(ctx, "tool", "1.0.0", "linux-x86_64"); err != nil {
		t.Fatalf("second InstallPackage() error = %v", err)
	}
	if n := atomic.LoadInt32(&downloads); n != 1 {
		t.Errorf("archive downloaded %d times, want 1", n)
	}

	// The cached archive passes an offline verify
	report, err := orch.VerifyPackage(ctx, "tool", "1.0.0", "linux-x86_64")
	if err != nil {
		t.Fatalf("VerifyPackage() error = %v", err)
	}
	if !report.Cached || !report.Verified {
		t.Errorf("report = %+v, want cached and verified", report)
	}
}

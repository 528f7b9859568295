package gateways

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/wrenlet/decant/internal/domain/entities"
)

// TestVerifyArtifactSignature_NoKeySource tests that requesting signature
// verification without any key source fails up front
func TestVerifyArtifactSignature_NoKeySource(t *testing.T) {
	verifier := NewSignatureVerifier()

	archive := filepath.Join(t.TempDir(), "archive.tar.gz")
	if err := os.WriteFile(archive, []byte("payload"), 0600); err != nil {
		t.Fatalf("Failed to write archive: %v", err)
	}

	sec := entities.RecipeSecurity{VerifySignature: true}
	err := verifier.VerifyArtifactSignature(context.Background(), sec, archive, "https://example.com/sig.asc")
	if err == nil {
		t.Error("VerifyArtifactSignature() without key source should return error")
	}
}

// TestVerifyArtifactSignature_BadKeyFile tests key import failure propagation
func TestVerifyArtifactSignature_BadKeyFile(t *testing.T) {
	verifier := NewSignatureVerifier()

	keyPath := filepath.Join(t.TempDir(), "key.asc")
	if err := os.WriteFile(keyPath, []byte("not a key"), 0600); err != nil {
		t.Fatalf("Failed to write key file: %v", err)
	}

	sec := entities.RecipeSecurity{VerifySignature: true, GPGKeyFile: keyPath}
	err := verifier.VerifyArtifactSignature(context.Background(), sec, "/tmp/archive.tar.gz", "https://example.com/sig.asc")
	if err == nil {
		t.Error("VerifyArtifactSignature() with invalid key file should return error")
	}
}

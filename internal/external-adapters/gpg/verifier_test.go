package gpg

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// TestImportKeyFromFile tests key import error handling
func TestImportKeyFromFile(t *testing.T) {
	verifier := NewVerifier()

	t.Run("non-existent file", func(t *testing.T) {
		if err := verifier.ImportKeyFromFile("/nonexistent/key.asc"); err == nil {
			t.Error("ImportKeyFromFile() with non-existent file should return error")
		}
	})

	t.Run("invalid key data", func(t *testing.T) {
		keyPath := filepath.Join(t.TempDir(), "key.asc")
		if err := os.WriteFile(keyPath, []byte("not a gpg key"), 0600); err != nil {
			t.Fatalf("Failed to write key file: %v", err)
		}
		if err := verifier.ImportKeyFromFile(keyPath); err == nil {
			t.Error("ImportKeyFromFile() with invalid data should return error")
		}
	})

	t.Run("empty file", func(t *testing.T) {
		keyPath := filepath.Join(t.TempDir(), "empty.asc")
		if err := os.WriteFile(keyPath, nil, 0600); err != nil {
			t.Fatalf("Failed to write key file: %v", err)
		}
		if err := verifier.ImportKeyFromFile(keyPath); err == nil {
			t.Error("ImportKeyFromFile() with empty file should return error")
		}
	})

	if verifier.KeyringSize() != 0 {
		t.Errorf("KeyringSize() = %d after failed imports, want 0", verifier.KeyringSize())
	}
}

// TestImportKeysFromURL tests KEYS file import error handling
func TestImportKeysFromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/garbage":
			fmt.Fprint(w, "this is not a keyring")
		case "/empty":
			// 200 with nothing in it
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	verifier := NewVerifier()
	ctx := context.Background()

	tests := []struct {
		name string
		url  string
	}{
		{name: "404 response", url: server.URL + "/missing"},
		{name: "garbage body", url: server.URL + "/garbage"},
		{name: "empty body", url: server.URL + "/empty"},
		{name: "unreachable host", url: "http://127.0.0.1:1/KEYS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := verifier.ImportKeysFromURL(ctx, tt.url); err == nil {
				t.Error("ImportKeysFromURL() should return error")
			}
		})
	}
}

// TestVerifySignature_EmptyKeyring tests that verification demands imported
// keys
func TestVerifySignature_EmptyKeyring(t *testing.T) {
	verifier := NewVerifier()

	dataPath := filepath.Join(t.TempDir(), "archive.tar.gz")
	if err := os.WriteFile(dataPath, []byte("payload"), 0600); err != nil {
		t.Fatalf("Failed to write data file: %v", err)
	}

	t.Run("remote signature", func(t *testing.T) {
		err := verifier.VerifySignature(context.Background(), dataPath, "https://example.com/sig.asc")
		if err == nil {
			t.Error("VerifySignature() with empty keyring should return error")
		}
	})

	t.Run("local signature", func(t *testing.T) {
		sigPath := filepath.Join(t.TempDir(), "archive.tar.gz.asc")
		if err := os.WriteFile(sigPath, []byte("sig"), 0600); err != nil {
			t.Fatalf("Failed to write signature file: %v", err)
		}
		if err := verifier.VerifySignatureFromFile(dataPath, sigPath); err == nil {
			t.Error("VerifySignatureFromFile() with empty keyring should return error")
		}
	})
}

// TestVerifySignature_BadSignatureResponses tests rejection of unusable
// signature downloads
func TestVerifySignature_BadSignatureResponses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tiny.asc":
			fmt.Fprint(w, "x")
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	verifier := NewVerifier()
	// A fake entry bypasses the empty-keyring guard so the download paths run
	verifier.keyring = append(verifier.keyring, nil)

	dataPath := filepath.Join(t.TempDir(), "archive.tar.gz")
	if err := os.WriteFile(dataPath, []byte("payload"), 0600); err != nil {
		t.Fatalf("Failed to write data file: %v", err)
	}

	t.Run("signature not found", func(t *testing.T) {
		if err := verifier.VerifySignature(context.Background(), dataPath, server.URL+"/missing.asc"); err == nil {
			t.Error("VerifySignature() with 404 signature should return error")
		}
	})

	t.Run("signature too small", func(t *testing.T) {
		if err := verifier.VerifySignature(context.Background(), dataPath, server.URL+"/tiny.asc"); err == nil {
			t.Error("VerifySignature() with tiny signature should return error")
		}
	})
}

// TestIsArmoredSig tests armor detection
func TestIsArmoredSig(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{
			name: "armored signature",
			data: []byte("-----BEGIN PGP SIGNATURE-----\n..."),
			want: true,
		},
		{
			name: "binary signature",
			data: []byte{0x89, 0x02, 0x33, 0x04, 0x00},
			want: false,
		},
		{
			name: "too short",
			data: []byte("-----"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isArmoredSig(tt.data); got != tt.want {
				t.Errorf("isArmoredSig() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestClearKeyring tests keyring reset
func TestClearKeyring(t *testing.T) {
	verifier := NewVerifier()
	verifier.keyring = append(verifier.keyring, nil)

	if verifier.KeyringSize() != 1 {
		t.Fatalf("KeyringSize() = %d, want 1", verifier.KeyringSize())
	}

	verifier.ClearKeyring()
	if verifier.KeyringSize() != 0 {
		t.Errorf("KeyringSize() after ClearKeyring() = %d, want 0", verifier.KeyringSize())
	}
}

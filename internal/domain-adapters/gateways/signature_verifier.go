package gateways

import (
	"context"
	"fmt"

	"github.com/wrenlet/decant/internal/domain/entities"
	"github.com/wrenlet/decant/internal/external-adapters/gpg"
)

// signatureVerifier wraps the external GPG adapter to implement the domain
// gateway interface
type signatureVerifier struct {
	verifier *gpg.Verifier
}

// NewSignatureVerifier creates a new GPG signature verifier gateway
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewSignatureVerifier() *signatureVerifier {
	return &signatureVerifier{
		verifier: gpg.NewVerifier(),
	}
}

// VerifyArtifactSignature checks the detached signature configured in the
// recipe against an already digest-verified archive. Keys come from the
// recipe's KEYS file URL or a local armored key file.
func (s *signatureVerifier) VerifyArtifactSignature(ctx context.Context, sec entities.RecipeSecurity, archivePath, sigURL string) error {
	switch {
	case sec.GPGKeyFile != "":
		if err := s.verifier.ImportKeyFromFile(sec.GPGKeyFile); err != nil {
			return fmt.Errorf("failed to import GPG key: %w", err)
		}
	case sec.GPGKeysURL != "":
		if err := s.verifier.ImportKeysFromURL(ctx, sec.GPGKeysURL); err != nil {
			return fmt.Errorf("failed to import GPG keys from URL: %w", err)
		}
	default:
		return fmt.Errorf("signature verification requested but no GPG key source configured")
	}

	if err := s.verifier.VerifySignature(ctx, archivePath, sigURL); err != nil {
		return fmt.Errorf("GPG signature verification failed: %w", err)
	}
	return nil
}

// VerifySignatureFromFile checks a detached signature shipped as a local file
func (s *signatureVerifier) VerifySignatureFromFile(archivePath, sigPath string) error {
	if err := s.verifier.VerifySignatureFromFile(archivePath, sigPath); err != nil {
		return fmt.Errorf("GPG signature verification failed: %w", err)
	}
	return nil
}

// ImportKeyFromFile exposes key import for the verify command
func (s *signatureVerifier) ImportKeyFromFile(keyPath string) error {
	return s.verifier.ImportKeyFromFile(keyPath)
}

// Package gateways implements adapters around network, filesystem and
// cryptographic capabilities used by the install pipeline.
package gateways

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

// ErrDigestFinalized is returned when a digest sink is used after Finalize
var ErrDigestFinalized = errors.New("digest sink already finalized")

// DigestSink accumulates a SHA256 digest over a sequential byte stream.
// It implements io.Writer so it can be composed into a fan-out alongside a
// second destination without a second pass over the data.
type DigestSink struct {
	hash      hash.Hash
	finalized bool
}

// NewDigestSink creates a streaming SHA256 sink
func NewDigestSink() *DigestSink {
	return &DigestSink{hash: sha256.New()}
}

// Write accumulates one chunk of the stream
func (s *DigestSink) Write(p []byte) (int, error) {
	if s.finalized {
		return 0, ErrDigestFinalized
	}
	return s.hash.Write(p)
}

// Finalize closes the sink and returns the lowercase hex digest.
// Finalize is terminal: any further Write or Finalize fails.
func (s *DigestSink) Finalize() (string, error) {
	if s.finalized {
		return "", ErrDigestFinalized
	}
	s.finalized = true
	return hex.EncodeToString(s.hash.Sum(nil)), nil
}

// DigestVerifier computes and compares SHA256 digests using pure Go,
// no external sha256sum binary needed
type DigestVerifier struct{}

// NewDigestVerifier creates a new digest verifier
func NewDigestVerifier() *DigestVerifier {
	return &DigestVerifier{}
}

// HashFile streams an existing file through a digest sink
func (v *DigestVerifier) HashFile(path string) (string, error) {
	//nolint:gosec // G304: File path is caller-provided for digest computation
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	sink := NewDigestSink()
	if _, err := io.Copy(sink, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return sink.Finalize()
}

// Verify reports whether two hex digests denote the same value.
// Comparison is case-insensitive but requires exact length and value;
// a prefix never matches.
func (v *DigestVerifier) Verify(actualHex, expectedHex string) bool {
	if len(actualHex) != len(expectedHex) {
		return false
	}
	return strings.EqualFold(actualHex, expectedHex)
}

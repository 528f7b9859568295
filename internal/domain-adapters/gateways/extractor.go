package gateways

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wrenlet/decant/internal/domain/interfaces"
)

// Extractor unpacks verified tar.gz archives. The caller is responsible for
// only handing it paths that already passed digest verification.
type Extractor struct {
	logger interfaces.Logger
}

// NewExtractor creates a new archive extractor
func NewExtractor(logger interfaces.Logger) *Extractor {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &Extractor{logger: logger}
}

// Extract unpacks archivePath into destDir and returns the effective content
// root: when the archive unpacks to a single top-level directory (go/,
// helm-v3.13.0/, ...) that directory is returned, otherwise destDir itself.
// Unsupported entry types and broken symlinks are warnings, not failures.
func (e *Extractor) Extract(_ context.Context, archivePath, destDir string) (string, error) {
	//nolint:gosec // G304: Archive path has already been digest-verified
	file, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer file.Close()

	gzr, err := gzip.NewReader(file)
	if err != nil {
		return "", fmt.Errorf("failed to create gzip reader: %w", err)
	}
	//nolint:errcheck // Defer close on gzip reader
	defer gzr.Close()

	if err := os.MkdirAll(destDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create destination directory: %w", err)
	}

	// Symlinks are created in a second pass so their targets exist first
	type symlinkInfo struct {
		target   string
		linkname string
	}
	var symlinks []symlinkInfo

	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("tar read error: %w", err)
		}

		//nolint:gosec // G305: Path traversal validated by HasPrefix check below
		target := filepath.Join(destDir, header.Name)
		if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(destDir)) {
			return "", fmt.Errorf("invalid file path in archive: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0750); err != nil {
				return "", fmt.Errorf("failed to create directory: %w", err)
			}

		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
				return "", fmt.Errorf("failed to create parent directory: %w", err)
			}

			//nolint:gosec // G115: Integer overflow from tar header mode is acceptable
			outFile, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_RDWR, os.FileMode(header.Mode))
			if err != nil {
				return "", fmt.Errorf("failed to create file: %w", err)
			}

			// 1GB per-entry limit guards against decompression bombs
			if _, err := io.Copy(outFile, io.LimitReader(tr, 1<<30)); err != nil {
				_ = outFile.Close()
				return "", fmt.Errorf("failed to write file: %w", err)
			}
			if err := outFile.Close(); err != nil {
				return "", fmt.Errorf("failed to close file: %w", err)
			}

		case tar.TypeSymlink:
			symlinks = append(symlinks, symlinkInfo{target: target, linkname: header.Linkname})

		default:
			e.logger.Warn("ignoring unsupported archive entry",
				interfaces.F("type", header.Typeflag),
				interfaces.F("name", header.Name))
		}
	}

	for _, link := range symlinks {
		if err := os.MkdirAll(filepath.Dir(link.target), 0750); err != nil {
			return "", fmt.Errorf("failed to create directory for symlink: %w", err)
		}
		// Some tarballs ship dangling symlinks; warn and keep going
		if err := os.Symlink(link.linkname, link.target); err != nil {
			e.logger.Warn("failed to create symlink",
				interfaces.F("target", link.target),
				interfaces.F("linkname", link.linkname),
				interfaces.F("error", err))
		}
	}

	return contentRoot(destDir)
}

// contentRoot returns the single top-level directory of destDir when there is
// exactly one, else destDir unchanged
func contentRoot(destDir string) (string, error) {
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return "", fmt.Errorf("failed to read extracted directory: %w", err)
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(destDir, entries[0].Name()), nil
	}
	return destDir, nil
}

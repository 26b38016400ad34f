package materialize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/conn-castle/globalenv/internal/messages"
)

// ErrChecksumMismatch reports a downloaded archive whose sha256 differs from repodata.
var ErrChecksumMismatch = errors.New("checksum mismatch")

const extractedMarker = ".genv-extracted"

// Cache keeps downloaded archives and their extracted trees in one directory.
type Cache struct {
	Dir    string
	Source Source
}

// Ensure makes pkg available extracted in the cache and returns the extracted directory.
func (c *Cache) Ensure(ctx context.Context, pkg PackageInfo) (string, error) {
	extracted := filepath.Join(c.Dir, archiveStem(pkg.Filename))
	if _, err := os.Stat(filepath.Join(extracted, extractedMarker)); err == nil {
		return extracted, nil
	}
	archive, err := c.fetch(ctx, pkg)
	if err != nil {
		return "", err
	}
	if err := os.RemoveAll(extracted); err != nil {
		return "", fmt.Errorf(messages.MaterializeExtractFmt, pkg.Filename, err)
	}
	if err := os.MkdirAll(extracted, 0o755); err != nil {
		return "", fmt.Errorf(messages.MaterializeExtractFmt, pkg.Filename, err)
	}
	if err := extractArchive(archive, extracted); err != nil {
		_ = os.RemoveAll(extracted)
		return "", fmt.Errorf(messages.MaterializeExtractFmt, pkg.Filename, err)
	}
	if err := os.WriteFile(filepath.Join(extracted, extractedMarker), nil, 0o644); err != nil {
		return "", fmt.Errorf(messages.MaterializeExtractFmt, pkg.Filename, err)
	}
	return extracted, nil
}

// fetch downloads the archive unless a copy with the expected checksum is already cached.
func (c *Cache) fetch(ctx context.Context, pkg PackageInfo) (string, error) {
	archive := filepath.Join(c.Dir, pkg.Filename)
	if _, err := os.Stat(archive); err == nil {
		if pkg.SHA256 == "" {
			return archive, nil
		}
		if sum, err := fileSHA256(archive); err == nil && strings.EqualFold(sum, pkg.SHA256) {
			return archive, nil
		}
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return "", fmt.Errorf(messages.MaterializeFetchFmt, pkg.Filename, err)
	}

	location := c.Source.Location(pkg.Channel, pkg.Subdir, pkg.Filename)
	rc, err := c.Source.Open(ctx, location)
	if err != nil {
		return "", fmt.Errorf(messages.MaterializeFetchFmt, pkg.Filename, err)
	}
	defer func() { _ = rc.Close() }()

	tmp, err := os.CreateTemp(c.Dir, "."+pkg.Filename+".part-*")
	if err != nil {
		return "", fmt.Errorf(messages.MaterializeFetchFmt, pkg.Filename, err)
	}
	tmpName := tmp.Name()
	hash := sha256.New()
	_, copyErr := io.Copy(io.MultiWriter(tmp, hash), rc)
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf(messages.MaterializeFetchFmt, pkg.Filename, err)
	}
	if pkg.SHA256 != "" {
		if sum := hex.EncodeToString(hash.Sum(nil)); !strings.EqualFold(sum, pkg.SHA256) {
			_ = os.Remove(tmpName)
			return "", fmt.Errorf(messages.MaterializeChecksumFmt, ErrChecksumMismatch, pkg.Filename, pkg.SHA256, sum)
		}
	}
	if err := os.Rename(tmpName, archive); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf(messages.MaterializeFetchFmt, pkg.Filename, err)
	}
	return archive, nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

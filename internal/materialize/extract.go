package materialize

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/conn-castle/globalenv/internal/messages"
)

var (
	// ErrUnsupportedArchive reports a package file with an unknown extension.
	ErrUnsupportedArchive = errors.New("unsupported package archive")
	// ErrUnsafePath reports an archive entry that would land outside the destination.
	ErrUnsafePath = errors.New("unsafe archive path")
)

var archiveSuffixes = []string{".conda", ".tar.bz2", ".tar.xz", ".tar.zst"}

// archiveStem strips the archive extension from a package file name.
func archiveStem(filename string) string {
	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(filename, suffix) {
			return strings.TrimSuffix(filename, suffix)
		}
	}
	return filename
}

// extractArchive unpacks a package archive into dest.
func extractArchive(archive string, dest string) error {
	if strings.HasSuffix(archive, ".conda") {
		return extractConda(archive, dest)
	}
	f, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf(messages.MaterializeOpenFmt, archive, err)
	}
	defer func() { _ = f.Close() }()

	switch {
	case strings.HasSuffix(archive, ".tar.bz2"):
		return extractTar(bzip2.NewReader(f), dest)
	case strings.HasSuffix(archive, ".tar.xz"):
		xzReader, err := xz.NewReader(f)
		if err != nil {
			return fmt.Errorf(messages.MaterializeDecompressFmt, archive, err)
		}
		return extractTar(xzReader, dest)
	case strings.HasSuffix(archive, ".tar.zst"):
		zstdReader, err := zstd.NewReader(f)
		if err != nil {
			return fmt.Errorf(messages.MaterializeDecompressFmt, archive, err)
		}
		defer zstdReader.Close()
		return extractTar(zstdReader, dest)
	}
	return fmt.Errorf(messages.MaterializeUnsupportedArchiveFmt, ErrUnsupportedArchive, archive)
}

// extractConda unpacks the info and pkg zstd tarballs nested in a .conda zip.
func extractConda(archive string, dest string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf(messages.MaterializeOpenFmt, archive, err)
	}
	defer func() { _ = zr.Close() }()

	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".tar.zst") {
			continue
		}
		if err := extractCondaMember(f, dest); err != nil {
			return fmt.Errorf(messages.MaterializeExtractMemberFmt, f.Name, archive, err)
		}
	}
	return nil
}

func extractCondaMember(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	zstdReader, err := zstd.NewReader(rc)
	if err != nil {
		return err
	}
	defer zstdReader.Close()
	return extractTar(zstdReader, dest)
}

func extractTar(r io.Reader, dest string) error {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, tar.ErrInsecurePath) {
			return fmt.Errorf(messages.MaterializeUnsafePathFmt, ErrUnsafePath, header.Name)
		}
		if err != nil {
			return err
		}
		target, err := safeJoin(dest, header.Name)
		if err != nil {
			return err
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, os.FileMode(header.Mode).Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if filepath.IsAbs(header.Linkname) {
				return fmt.Errorf(messages.MaterializeUnsafeLinkFmt, ErrUnsafePath, header.Name, header.Linkname)
			}
			resolved := filepath.Join(filepath.Dir(target), filepath.FromSlash(header.Linkname))
			if !within(dest, resolved) {
				return fmt.Errorf(messages.MaterializeUnsafeLinkFmt, ErrUnsafePath, header.Name, header.Linkname)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			_ = os.Remove(target)
			if err := os.Symlink(header.Linkname, target); err != nil {
				return err
			}
		case tar.TypeLink:
			source, err := safeJoin(dest, header.Linkname)
			if err != nil {
				return err
			}
			if err := copyFile(source, target); err != nil {
				return err
			}
		}
	}
}

func safeJoin(dest string, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	if !within(dest, target) {
		return "", fmt.Errorf(messages.MaterializeUnsafePathFmt, ErrUnsafePath, name)
	}
	return target, nil
}

func within(root string, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func writeFile(target string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if perm == 0 {
		perm = 0o644
	}
	_ = os.Remove(target)
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func copyFile(source string, target string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	info, err := in.Stat()
	if err != nil {
		return err
	}
	return writeFile(target, in, info.Mode().Perm())
}

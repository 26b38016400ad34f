package materialize

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// fixturePackage describes a package archive written into a test channel.
type fixturePackage struct {
	name        string
	version     string
	build       string
	buildNumber int
	depends     []string
	// files maps prefix-relative paths to contents; bin/ entries are executable.
	files map[string]string
	// info maps info/ relative paths to contents.
	info   map[string]string
	format string
	// badChecksum records a wrong sha256 in repodata.
	badChecksum bool
}

func (p fixturePackage) filename() string {
	format := p.format
	if format == "" {
		format = ".tar.xz"
	}
	return p.name + "-" + p.version + "-" + p.build + format
}

// writeChannel writes subdir/repodata.json plus archives for pkgs below dir, and an empty noarch
// index when none exists yet.
func writeChannel(t *testing.T, dir string, subdir string, pkgs ...fixturePackage) {
	t.Helper()
	subdirPath := filepath.Join(dir, subdir)
	if err := os.MkdirAll(subdirPath, 0o755); err != nil {
		t.Fatalf("mkdir channel: %v", err)
	}
	type entry struct {
		Name        string   `json:"name"`
		Version     string   `json:"version"`
		Build       string   `json:"build"`
		BuildNumber int      `json:"build_number"`
		Depends     []string `json:"depends"`
		Subdir      string   `json:"subdir"`
		SHA256      string   `json:"sha256,omitempty"`
	}
	packages := map[string]entry{}
	condaPackages := map[string]entry{}
	for _, pkg := range pkgs {
		data := buildArchive(t, pkg)
		if err := os.WriteFile(filepath.Join(subdirPath, pkg.filename()), data, 0o644); err != nil {
			t.Fatalf("write archive: %v", err)
		}
		sum := sha256.Sum256(data)
		e := entry{
			Name:        pkg.name,
			Version:     pkg.version,
			Build:       pkg.build,
			BuildNumber: pkg.buildNumber,
			Depends:     pkg.depends,
			Subdir:      subdir,
			SHA256:      hex.EncodeToString(sum[:]),
		}
		if pkg.badChecksum {
			e.SHA256 = strings.Repeat("0", 64)
		}
		if e.Depends == nil {
			e.Depends = []string{}
		}
		if strings.HasSuffix(pkg.filename(), ".conda") {
			condaPackages[pkg.filename()] = e
		} else {
			packages[pkg.filename()] = e
		}
	}
	repodata := map[string]any{
		"info":           map[string]string{"subdir": subdir},
		"packages":       packages,
		"packages.conda": condaPackages,
	}
	data, err := json.Marshal(repodata)
	if err != nil {
		t.Fatalf("marshal repodata: %v", err)
	}
	if err := os.WriteFile(filepath.Join(subdirPath, RepodataFile), data, 0o644); err != nil {
		t.Fatalf("write repodata: %v", err)
	}
	noarch := filepath.Join(dir, "noarch", RepodataFile)
	if _, err := os.Stat(noarch); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(noarch), 0o755); err != nil {
			t.Fatalf("mkdir noarch: %v", err)
		}
		if err := os.WriteFile(noarch, []byte(`{"packages":{}}`), 0o644); err != nil {
			t.Fatalf("write noarch repodata: %v", err)
		}
	}
}

func buildArchive(t *testing.T, pkg fixturePackage) []byte {
	t.Helper()
	indexJSON, err := json.Marshal(map[string]any{"name": pkg.name, "version": pkg.version, "build": pkg.build})
	if err != nil {
		t.Fatalf("marshal index.json: %v", err)
	}
	info := map[string]string{"info/index.json": string(indexJSON)}
	for rel, content := range pkg.info {
		info["info/"+rel] = content
	}
	switch pkg.format {
	case ".conda":
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		stem := archiveStem(pkg.filename())
		writeZstdMember(t, zw, "info-"+stem+".tar.zst", info)
		writeZstdMember(t, zw, "pkg-"+stem+".tar.zst", pkg.files)
		if err := zw.Close(); err != nil {
			t.Fatalf("close zip: %v", err)
		}
		return buf.Bytes()
	case ".tar.zst":
		var buf bytes.Buffer
		enc, err := zstd.NewWriter(&buf)
		if err != nil {
			t.Fatalf("zstd writer: %v", err)
		}
		writeTar(t, enc, mergeFiles(info, pkg.files))
		if err := enc.Close(); err != nil {
			t.Fatalf("close zstd: %v", err)
		}
		return buf.Bytes()
	default:
		var buf bytes.Buffer
		xw, err := xz.NewWriter(&buf)
		if err != nil {
			t.Fatalf("xz writer: %v", err)
		}
		writeTar(t, xw, mergeFiles(info, pkg.files))
		if err := xw.Close(); err != nil {
			t.Fatalf("close xz: %v", err)
		}
		return buf.Bytes()
	}
}

func writeZstdMember(t *testing.T, zw *zip.Writer, name string, files map[string]string) {
	t.Helper()
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
	if err != nil {
		t.Fatalf("zip member: %v", err)
	}
	enc, err := zstd.NewWriter(w)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	writeTar(t, enc, files)
	if err := enc.Close(); err != nil {
		t.Fatalf("close zstd: %v", err)
	}
}

func mergeFiles(sets ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, set := range sets {
		for k, v := range set {
			out[k] = v
		}
	}
	return out
}

func writeTar(t *testing.T, w io.Writer, files map[string]string) {
	t.Helper()
	tw := tar.NewWriter(w)
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		mode := int64(0o644)
		if strings.HasPrefix(path, "bin/") {
			mode = 0o755
		}
		content := files[path]
		if err := tw.WriteHeader(&tar.Header{Name: path, Mode: mode, Size: int64(len(content)), Typeflag: tar.TypeReg}); err != nil {
			t.Fatalf("tar header: %v", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("tar write: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
}

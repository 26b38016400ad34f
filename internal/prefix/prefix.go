// Package prefix reads and writes the installed-package records of an environment prefix.
package prefix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/conn-castle/globalenv/internal/fsutil"
	"github.com/conn-castle/globalenv/internal/messages"
	"github.com/conn-castle/globalenv/internal/names"
)

// MetaDir holds one JSON record per installed package.
const MetaDir = "conda-meta"

const readConcurrency = 8

// ErrPackageNotInstalled reports a package that has no record in the prefix.
var ErrPackageNotInstalled = errors.New("package not installed")

// Record is the installed-package record stored in conda-meta.
type Record struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Build       string   `json:"build"`
	BuildNumber int      `json:"build_number"`
	Channel     string   `json:"channel,omitempty"`
	Subdir      string   `json:"subdir,omitempty"`
	Fn          string   `json:"fn,omitempty"`
	Depends     []string `json:"depends"`
	Files       []string `json:"files"`
}

// MetaFileName returns the record's file name inside conda-meta.
func (r Record) MetaFileName() string {
	return fmt.Sprintf("%s-%s-%s.json", r.Name, r.Version, r.Build)
}

// Normalized returns the lower-cased package name.
func (r Record) Normalized() string {
	return strings.ToLower(r.Name)
}

// Executable is an executable file shipped by an installed package.
type Executable struct {
	// Name is the file name without a Windows extension.
	Name string
	// Path is the absolute path inside the prefix.
	Path string
	// Package is the name of the package that shipped it.
	Package string
}

// Prefix is the root directory of one materialized environment.
type Prefix struct {
	root    string
	windows bool
}

// Open returns the prefix rooted at root. The directory need not exist yet.
func Open(root string) *Prefix {
	return &Prefix{root: root, windows: runtime.GOOS == "windows"}
}

// Root returns the prefix directory.
func (p *Prefix) Root() string { return p.root }

// InstalledPackages decodes every record in conda-meta, sorted by package name.
// A prefix without conda-meta has no packages.
func (p *Prefix) InstalledPackages(ctx context.Context) ([]Record, error) {
	metaDir := filepath.Join(p.root, MetaDir)
	entries, err := os.ReadDir(metaDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf(messages.PrefixReadMetaFmt, metaDir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasSuffix(entry.Name(), ".json") {
			files = append(files, filepath.Join(metaDir, entry.Name()))
		}
	}

	records := make([]Record, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(readConcurrency)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf(messages.PrefixReadRecordFmt, file, err)
			}
			if err := json.Unmarshal(data, &records[i]); err != nil {
				return fmt.Errorf(messages.PrefixDecodeRecordFmt, file, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Normalized() < records[j].Normalized()
	})
	return records, nil
}

// FindDesignatedPackage returns the record of the named package.
func (p *Prefix) FindDesignatedPackage(ctx context.Context, name names.PackageName) (Record, error) {
	records, err := p.FindInstalledPackages(ctx, func(r Record) bool {
		return r.Normalized() == name.Normalized()
	})
	if err != nil {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, fmt.Errorf(messages.PrefixPackageNotInstalledFmt, ErrPackageNotInstalled, name.Source(), p.root)
	}
	return records[0], nil
}

// FindInstalledPackages returns installed records accepted by filter (all when filter is nil).
func (p *Prefix) FindInstalledPackages(ctx context.Context, filter func(Record) bool) ([]Record, error) {
	records, err := p.InstalledPackages(ctx)
	if err != nil {
		return nil, err
	}
	if filter == nil {
		return records, nil
	}
	out := records[:0]
	for _, r := range records {
		if filter(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// FindExecutables lists the executables the records ship, in record and file order.
// Files that are missing on disk or not executable are skipped.
func (p *Prefix) FindExecutables(records []Record) []Executable {
	var out []Executable
	for _, r := range records {
		for _, rel := range r.Files {
			name, ok := p.executableName(rel)
			if !ok {
				continue
			}
			full := filepath.Join(p.root, filepath.FromSlash(rel))
			info, err := os.Stat(full)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			if !p.windows && info.Mode().Perm()&0o111 == 0 {
				continue
			}
			out = append(out, Executable{Name: name, Path: full, Package: r.Name})
		}
	}
	return out
}

// ExecutablePath returns where an executable named name would live in the prefix.
func (p *Prefix) ExecutablePath(name string) string {
	if p.windows {
		return filepath.Join(p.root, "Library", "bin", name+".exe")
	}
	return filepath.Join(p.root, "bin", name)
}

func (p *Prefix) executableName(rel string) (string, bool) {
	rel = filepath.ToSlash(rel)
	dir, base := path.Split(rel)
	if base == "" {
		return "", false
	}
	if !p.windows {
		return base, dir == "bin/"
	}
	if dir != "Scripts/" && dir != "Library/bin/" && dir != "" {
		return "", false
	}
	ext := strings.ToLower(path.Ext(base))
	switch ext {
	case ".exe", ".bat", ".cmd":
		return strings.TrimSuffix(base, path.Ext(base)), true
	}
	return "", false
}

// WriteRecord stores r in conda-meta.
func (p *Prefix) WriteRecord(r Record) error {
	metaDir := filepath.Join(p.root, MetaDir)
	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		return fmt.Errorf(messages.PrefixWriteRecordFmt, r.Name, err)
	}
	if r.Depends == nil {
		r.Depends = []string{}
	}
	if r.Files == nil {
		r.Files = []string{}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf(messages.PrefixWriteRecordFmt, r.Name, err)
	}
	if err := fsutil.WriteFileAtomic(filepath.Join(metaDir, r.MetaFileName()), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf(messages.PrefixWriteRecordFmt, r.Name, err)
	}
	return nil
}

// RemoveRecord deletes the record of r. A missing record is not an error.
func (p *Prefix) RemoveRecord(r Record) error {
	err := os.Remove(filepath.Join(p.root, MetaDir, r.MetaFileName()))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf(messages.PrefixRemoveRecordFmt, r.Name, err)
	}
	return nil
}

// Package testutil holds helpers shared by package tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteStub writes an executable shell stub that exits successfully.
// t is the active test; dir is the output directory; name is the executable file name.
func WriteStub(t *testing.T, dir string, name string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir stub dir: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
}

// InstalledPackage describes a package record written by WriteInstalledPackage.
type InstalledPackage struct {
	Name        string
	Version     string
	Build       string
	Depends     []string
	Executables []string
	// Files lists extra non-executable files relative to the prefix.
	Files []string
}

// WriteInstalledPackage materializes pkg inside the prefix root: executables become shell stubs
// under bin/ and a conda-meta record lists every file.
func WriteInstalledPackage(t *testing.T, root string, pkg InstalledPackage) {
	t.Helper()
	if pkg.Version == "" {
		pkg.Version = "1.0.0"
	}
	if pkg.Build == "" {
		pkg.Build = "0"
	}
	files := []string{}
	for _, exe := range pkg.Executables {
		WriteStub(t, filepath.Join(root, "bin"), exe)
		files = append(files, "bin/"+exe)
	}
	for _, rel := range pkg.Files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(pkg.Name+"\n"), 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
		files = append(files, rel)
	}
	depends := pkg.Depends
	if depends == nil {
		depends = []string{}
	}
	record := map[string]any{
		"name":         pkg.Name,
		"version":      pkg.Version,
		"build":        pkg.Build,
		"build_number": 0,
		"depends":      depends,
		"files":        files,
	}
	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	metaDir := filepath.Join(root, "conda-meta")
	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		t.Fatalf("mkdir conda-meta: %v", err)
	}
	name := fmt.Sprintf("%s-%s-%s.json", pkg.Name, pkg.Version, pkg.Build)
	if err := os.WriteFile(filepath.Join(metaDir, name), data, 0o644); err != nil {
		t.Fatalf("write record: %v", err)
	}
}

package materialize

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/conn-castle/globalenv/internal/messages"
	"github.com/conn-castle/globalenv/internal/prefix"
)

// defaultPlaceholder is the build prefix recorded in info/has_prefix entries without one.
const defaultPlaceholder = "/opt/anaconda1anaconda2anaconda3"

type prefixEntry struct {
	placeholder string
	text        bool
}

// link copies an extracted package into the prefix and returns the prefix-relative paths
// it wrote, in lexical order. Text files listed in info/has_prefix get the build prefix
// rewritten to root.
func link(extracted string, root string) ([]string, error) {
	rewrites, err := readHasPrefix(extracted)
	if err != nil {
		return nil, err
	}
	var files []string
	err = filepath.WalkDir(extracted, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(extracted, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		slashRel := filepath.ToSlash(rel)
		if slashRel == "info" || slashRel == extractedMarker {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		target := filepath.Join(root, rel)
		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0o755)
		case d.Type()&fs.ModeSymlink != 0:
			dest, err := os.Readlink(path)
			if err != nil {
				return err
			}
			_ = os.Remove(target)
			if err := os.Symlink(dest, target); err != nil {
				return err
			}
		default:
			if entry, ok := rewrites[slashRel]; ok && entry.text {
				if err := copyRewritten(path, target, entry.placeholder, root); err != nil {
					return err
				}
			} else if err := copyFile(path, target); err != nil {
				return err
			}
		}
		files = append(files, slashRel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf(messages.MaterializeLinkFmt, extracted, root, err)
	}
	return files, nil
}

// readHasPrefix parses info/has_prefix: `path` or `placeholder mode path` per line.
func readHasPrefix(extracted string) (map[string]prefixEntry, error) {
	data, err := os.ReadFile(filepath.Join(extracted, "info", "has_prefix"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	out := map[string]prefixEntry{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		switch len(fields) {
		case 0:
			continue
		case 1:
			out[fields[0]] = prefixEntry{placeholder: defaultPlaceholder, text: true}
		default:
			path := fields[len(fields)-1]
			out[path] = prefixEntry{placeholder: fields[0], text: fields[1] == "text"}
		}
	}
	return out, scanner.Err()
}

func copyRewritten(source string, target string, placeholder string, root string) error {
	data, err := os.ReadFile(source)
	if err != nil {
		return err
	}
	info, err := os.Stat(source)
	if err != nil {
		return err
	}
	replaced := bytes.ReplaceAll(data, []byte(placeholder), []byte(filepath.ToSlash(root)))
	return writeFile(target, bytes.NewReader(replaced), info.Mode().Perm())
}

// unlink removes the files a record lists and then its record. Directories emptied by the
// removal are pruned up to the prefix root.
func unlink(p *prefix.Prefix, record prefix.Record) error {
	root := p.Root()
	dirs := map[string]bool{}
	for _, rel := range record.Files {
		target := filepath.Join(root, filepath.FromSlash(rel))
		if !within(root, target) {
			continue
		}
		if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf(messages.MaterializeUnlinkFmt, record.Name, err)
		}
		dirs[filepath.Dir(target)] = true
	}
	for dir := range dirs {
		for dir != root && within(root, dir) {
			if err := os.Remove(dir); err != nil {
				break
			}
			dir = filepath.Dir(dir)
		}
	}
	return p.RemoveRecord(record)
}

package manifest

import (
	"path/filepath"

	"github.com/aymanbagabas/go-udiff"
)

// Diff returns a unified diff from m to other, empty when both encode identically.
func (m *Manifest) Diff(other *Manifest) (string, error) {
	before, err := m.Encode()
	if err != nil {
		return "", err
	}
	after, err := other.Encode()
	if err != nil {
		return "", err
	}
	if string(before) == string(after) {
		return "", nil
	}
	base := filepath.Base(m.path)
	return udiff.Unified("a/"+base, "b/"+base, string(before), string(after)), nil
}

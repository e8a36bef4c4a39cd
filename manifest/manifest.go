// Package manifest builds and reads JSON icon manifests: a map of icon
// slug to sanitized SVG markup generated from a directory of .svg files.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// ErrNoIcons is returned by Builder.BuildPack when a pack directory
// yields no usable icon.
var ErrNoIcons = errors.New("no SVG icons found")

// Manifest is the JSON document written for one icon pack. Name,
// GeneratedAt and IconCount are informational only.
type Manifest struct {
	Name        string            `json:"name"`
	GeneratedAt string            `json:"generated_at"`
	IconCount   int               `json:"icon_count"`
	Icons       map[string]string `json:"icons"`
}

// Slugs returns the icon slugs in sorted order.
func (m *Manifest) Slugs() []string {
	slugs := make([]string, 0, len(m.Icons))
	for s := range m.Icons {
		slugs = append(slugs, s)
	}
	sort.Strings(slugs)
	return slugs
}

// Encode writes m as JSON. Markup is written without HTML escaping so
// that the stored SVG is readable.
func (m *Manifest) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return nil
}

// WriteFile writes m to path, replacing any existing file atomically.
func (m *Manifest) WriteFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".manifest-*.json")
	if err != nil {
		return fmt.Errorf("create temp manifest: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := m.Encode(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp manifest: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod manifest: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename manifest: %w", err)
	}
	return nil
}

// Package render serves inline SVG icons from registered manifest-backed
// icon libraries.
package render

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/njchilds90/svgsanitizer"
	"github.com/njchilds90/svgsanitizer/manifest"
	"github.com/njchilds90/svgsanitizer/slug"
)

var (
	// ErrUnknownLibrary is returned for a library name that was never
	// registered.
	ErrUnknownLibrary = errors.New("unknown icon library")

	// ErrOutsideBase is returned when a manifest path resolves outside the
	// registry's base directory.
	ErrOutsideBase = errors.New("manifest path outside base directory")
)

var (
	prefixInvalidRegexp = regexp.MustCompile(`[^A-Za-z0-9_\-]`)
	attrNameRegexp      = regexp.MustCompile(`(?i)^[a-z][a-z0-9_\-:.]*$`)
)

// wrapperTags are the elements an icon may be wrapped in.
var wrapperTags = map[string]bool{"span": true, "i": true, "div": true}

// Library describes one registered icon library.
type Library struct {
	Name         string
	Label        string
	Prefix       string
	Style        string
	ManifestPath string
}

// Options configures a library at registration.
type Options struct {
	// Prefix is prepended to icon slugs to form the icon's CSS class and
	// is stripped from incoming icon values.
	Prefix string
	// Style adds a "spectre-icon--style-<style>" class, e.g. "outline".
	Style string
	// Label is a human-readable name. Markup is removed.
	Label string
}

// Icon identifies an icon to render. Value is the icon slug, optionally
// preceded by a display prefix and carrying the library class prefix,
// e.g. "spectre-lucide spectre-lucide-arrow-right".
type Icon struct {
	Library string
	Value   string
}

type library struct {
	Library

	once    sync.Once
	entries map[string]manifest.Entry
}

// Registry holds manifest-backed icon libraries. It is safe for
// concurrent use. Manifests are read on first use and cached.
type Registry struct {
	// Logger receives manifest load failures. Nil means log.Default().
	Logger *log.Logger

	baseDir   string
	sanitizer svgsanitizer.Sanitizer
	labels    *bluemonday.Policy

	mu        sync.RWMutex
	libraries map[string]*library
}

// NewRegistry returns a Registry whose manifests must live inside baseDir.
// A nil sanitizer means svgsanitizer's default policy.
func NewRegistry(baseDir string, s svgsanitizer.Sanitizer) *Registry {
	if s == nil {
		s = svgsanitizer.SanitizerFunc(svgsanitizer.Sanitize)
	}
	return &Registry{
		baseDir:   baseDir,
		sanitizer: s,
		labels:    bluemonday.StrictPolicy(),
		libraries: make(map[string]*library),
	}
}

// DefaultLibraries returns the bundled Lucide and Font Awesome library
// definitions. ManifestPath is relative to the registry base directory.
func DefaultLibraries() []Library {
	return []Library{
		{
			Name:         "spectre-lucide",
			Label:        "Lucide Icons",
			Prefix:       "spectre-lucide-",
			Style:        "outline",
			ManifestPath: "spectre-lucide.json",
		},
		{
			Name:         "spectre-fontawesome",
			Label:        "Font Awesome",
			Prefix:       "spectre-fa-",
			Style:        "filled",
			ManifestPath: "spectre-fontawesome.json",
		},
	}
}

// RegisterDefaults registers every default library whose manifest exists
// and returns the registered names.
func (r *Registry) RegisterDefaults() []string {
	var names []string
	for _, def := range DefaultLibraries() {
		err := r.Register(def.Name, def.ManifestPath, Options{Prefix: def.Prefix, Style: def.Style, Label: def.Label})
		if err != nil {
			continue
		}
		names = append(names, def.Name)
	}
	return names
}

// Register adds the library name backed by the manifest at manifestPath.
// Relative paths are resolved against the base directory. Registering an
// existing name replaces it.
func (r *Registry) Register(name, manifestPath string, opts Options) error {
	name = slug.Make(name)
	if name == "" {
		return errors.New("library name is required")
	}
	path, err := r.resolve(manifestPath)
	if err != nil {
		return err
	}

	label := strings.TrimSpace(r.labels.Sanitize(opts.Label))
	if label == "" {
		label = name
	}
	lib := &library{Library: Library{
		Name:         name,
		Label:        label,
		Prefix:       prefixInvalidRegexp.ReplaceAllString(opts.Prefix, ""),
		Style:        slug.Make(opts.Style),
		ManifestPath: path,
	}}

	r.mu.Lock()
	r.libraries[name] = lib
	r.mu.Unlock()
	return nil
}

// resolve returns the real path of manifestPath and checks that it stays
// inside the base directory.
func (r *Registry) resolve(manifestPath string) (string, error) {
	if strings.TrimSpace(manifestPath) == "" {
		return "", errors.New("manifest path is required")
	}
	base, err := filepath.EvalSymlinks(r.baseDir)
	if err != nil {
		return "", fmt.Errorf("resolve base dir: %w", err)
	}
	base, err = filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("resolve base dir: %w", err)
	}

	path := manifestPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("resolve manifest: %w", err)
	}
	resolved, err = filepath.Abs(resolved)
	if err != nil {
		return "", fmt.Errorf("resolve manifest: %w", err)
	}

	rel, err := filepath.Rel(base, resolved)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideBase, manifestPath)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("stat manifest: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("manifest %s is a directory", manifestPath)
	}
	return resolved, nil
}

// Libraries returns the registered libraries sorted by name.
func (r *Registry) Libraries() []Library {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Library, 0, len(r.libraries))
	for _, lib := range r.libraries {
		out = append(out, lib.Library)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Slugs returns the sorted icon slugs of the named library.
func (r *Registry) Slugs(name string) ([]string, error) {
	lib, ok := r.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLibrary, name)
	}
	entries := r.entries(lib)
	slugs := make([]string, 0, len(entries))
	for s := range entries {
		slugs = append(slugs, s)
	}
	sort.Strings(slugs)
	return slugs, nil
}

func (r *Registry) lookup(name string) (*library, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lib, ok := r.libraries[slug.Make(name)]
	return lib, ok
}

func (r *Registry) entries(lib *library) map[string]manifest.Entry {
	lib.once.Do(func() {
		entries, err := manifest.Load(lib.ManifestPath)
		if err != nil {
			r.logger().Printf("icon library %s: %v", lib.Name, err)
			entries = map[string]manifest.Entry{}
		}
		lib.entries = entries
	})
	return lib.entries
}

func (r *Registry) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}

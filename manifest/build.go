package manifest

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/njchilds90/svgsanitizer"
	"github.com/njchilds90/svgsanitizer/slug"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"
)

const svgMediaType = "image/svg+xml"

var minifier = func() *minify.M {
	m := minify.New()
	m.AddFunc(svgMediaType, svg.Minify)
	return m
}()

// Builder converts a directory of .svg files into a Manifest.
type Builder struct {
	// Sanitizer cleans each file. Nil means svgsanitizer's default policy.
	Sanitizer svgsanitizer.Sanitizer

	// Logger receives one line per skipped file. Nil means log.Default().
	Logger *log.Logger

	// Minify runs SVG minification on sanitized markup. Minified output is
	// sanitized again; if that fails the unminified markup is kept.
	Minify bool

	// Now stamps GeneratedAt. Nil means time.Now.
	Now func() time.Time
}

// BuildPack reads every .svg file below dir (recursively, in lexical
// order) and returns the manifest for the pack called name. Files that
// cannot be read, that produce an empty slug, that repeat an earlier slug,
// or that sanitize to nothing are logged and skipped. BuildPack returns
// ErrNoIcons when no file survives.
func (b *Builder) BuildPack(ctx context.Context, name, dir string) (*Manifest, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat pack dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("pack dir %s is not a directory", dir)
	}

	icons := make(map[string]string)
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			b.logger().Printf("skipping %s: %v", path, err)
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".svg") {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		iconSlug := slug.FromPath(dir, path)
		if iconSlug == "" {
			b.logger().Printf("skipping %s: empty slug", path)
			return nil
		}
		if _, dup := icons[iconSlug]; dup {
			b.logger().Printf("skipping %s: duplicate slug %q", path, iconSlug)
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			b.logger().Printf("skipping %s: %v", path, err)
			return nil
		}
		clean := b.sanitizer().Sanitize(string(raw))
		if clean == "" {
			b.logger().Printf("skipping %s: sanitization removed markup", path)
			return nil
		}
		if b.Minify {
			clean = b.minify(clean)
		}
		icons[iconSlug] = clean
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk pack %s: %w", name, err)
	}
	if len(icons) == 0 {
		return nil, ErrNoIcons
	}

	return &Manifest{
		Name:        name,
		GeneratedAt: b.now().UTC().Format(time.RFC3339),
		IconCount:   len(icons),
		Icons:       icons,
	}, nil
}

func (b *Builder) minify(clean string) string {
	small, err := minifier.String(svgMediaType, clean)
	if err != nil {
		return clean
	}
	if resanitized := b.sanitizer().Sanitize(small); resanitized != "" {
		return resanitized
	}
	return clean
}

func (b *Builder) sanitizer() svgsanitizer.Sanitizer {
	if b.Sanitizer == nil {
		return svgsanitizer.SanitizerFunc(svgsanitizer.Sanitize)
	}
	return b.Sanitizer
}

func (b *Builder) logger() *log.Logger {
	if b.Logger == nil {
		return log.Default()
	}
	return b.Logger
}

func (b *Builder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

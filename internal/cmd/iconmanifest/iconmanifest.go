// Package iconmanifest parses icon manifest generator flags and builds one
// manifest per icon pack directory.
package iconmanifest

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/njchilds90/svgsanitizer"
	"github.com/njchilds90/svgsanitizer/internal/config"
	"github.com/njchilds90/svgsanitizer/manifest"
	"github.com/njchilds90/svgsanitizer/slug"
)

// LogPrefix prefixes every log line written by the command.
const LogPrefix = "[ICONMANIFEST] "

// Config holds iconmanifest command configuration.
type Config struct {
	PacksDir     string `env:"ICONMANIFEST_PACKS_DIR" envDefault:"assets/iconpacks"`
	OutDir       string `env:"ICONMANIFEST_OUT_DIR" envDefault:"assets/manifests"`
	Prefix       string `env:"ICONMANIFEST_PREFIX" envDefault:"spectre-"`
	Minify       bool   `env:"ICONMANIFEST_MINIFY"`
	FragmentHref bool   `env:"ICONMANIFEST_FRAGMENT_HREF"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if fs == nil {
		return Config{}, errors.New("flag parser is required")
	}
	fs.StringVar(&cfg.PacksDir, "packs", cfg.PacksDir, "directory holding one subdirectory per icon pack")
	fs.StringVar(&cfg.OutDir, "out", cfg.OutDir, "directory manifests are written to")
	fs.StringVar(&cfg.Prefix, "prefix", cfg.Prefix, "manifest file name prefix")
	fs.BoolVar(&cfg.Minify, "minify", cfg.Minify, "minify sanitized icons")
	fs.BoolVar(&cfg.FragmentHref, "fragment-href", cfg.FragmentHref, "keep #fragment href on <use> elements")
	if err := config.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if strings.ContainsAny(cfg.Prefix, `/\`) {
		return Config{}, fmt.Errorf("prefix %q must not contain path separators", cfg.Prefix)
	}
	return cfg, nil
}

// Run builds a manifest for every pack directory below cfg.PacksDir.
// Progress goes to out and skipped files are logged to errOut. Packs
// without usable icons are skipped; any other failure stops the run.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	entries, err := os.ReadDir(cfg.PacksDir)
	if err != nil {
		return fmt.Errorf("read packs dir: %w", err)
	}

	policy := svgsanitizer.DefaultPolicy()
	policy.AllowFragmentHref = cfg.FragmentHref
	builder := &manifest.Builder{
		Sanitizer: policy,
		Logger:    log.New(errOut, LogPrefix, log.LstdFlags),
		Minify:    cfg.Minify,
	}

	total := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pack := slug.Make(entry.Name())
		if pack == "" {
			fmt.Fprintf(out, "Skipping %s (invalid pack name)\n", entry.Name())
			continue
		}

		m, err := builder.BuildPack(ctx, pack, filepath.Join(cfg.PacksDir, entry.Name()))
		if errors.Is(err, manifest.ErrNoIcons) {
			fmt.Fprintf(out, "Skipping %s (no SVG files found)\n", pack)
			continue
		}
		if err != nil {
			return fmt.Errorf("build pack %s: %w", pack, err)
		}

		path := filepath.Join(cfg.OutDir, cfg.Prefix+pack+".json")
		if err := m.WriteFile(path); err != nil {
			return fmt.Errorf("write pack %s: %w", pack, err)
		}
		fmt.Fprintf(out, "Wrote %d icons to %s\n", m.IconCount, path)
		total += m.IconCount
	}

	fmt.Fprintf(out, "Completed. Total icons processed: %d\n", total)
	return nil
}

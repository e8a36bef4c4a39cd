// Package main builds sanitized icon manifests from SVG icon pack
// directories.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	iconmanifestcmd "github.com/njchilds90/svgsanitizer/internal/cmd/iconmanifest"
	"github.com/njchilds90/svgsanitizer/internal/config"
)

func main() {
	log.SetPrefix(iconmanifestcmd.LogPrefix)
	cfg, err := iconmanifestcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := iconmanifestcmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		stop()
		config.Exitf("iconmanifest: %v", err)
	}
}

package config

import (
	"fmt"
	"io"
	"os"
)

// Process hooks used by Exitf; tests replace them.
var (
	stderr   io.Writer = os.Stderr
	exitFunc           = os.Exit
)

// Exitf reports a fatal command error on stderr and exits with status 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(stderr, format+"\n", args...)
	exitFunc(1)
}

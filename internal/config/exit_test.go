package config

import (
	"bytes"
	"os"
	"testing"
)

func TestExitf(t *testing.T) {
	var out bytes.Buffer
	var code int
	stderr, exitFunc = &out, func(c int) { code = c }
	t.Cleanup(func() { stderr, exitFunc = os.Stderr, os.Exit })

	Exitf("iconmanifest: %s", "pack dir missing")

	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if got, want := out.String(), "iconmanifest: pack dir missing\n"; got != want {
		t.Fatalf("stderr = %q, want %q", got, want)
	}
}

// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/leapstack-labs/surfacegen/internal/cli/output"
	"github.com/leapstack-labs/surfacegen/internal/testutil"
)

// SetupTestProject creates a temporary project holding a surfacegen.yaml and
// the sample control under src/. Extra files are written on top.
func SetupTestProject(t *testing.T, extra map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"surfacegen.yaml":      "source_dir: src\nnamespace: ui5.tssampleapp\n",
		"src/SampleControl.ts": testutil.SampleControl,
	}
	for name, content := range extra {
		files[name] = content
	}
	testutil.WriteFiles(t, dir, files)
	return dir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

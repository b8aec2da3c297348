// Package main provides tests for the surfacegen CLI.
package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/leapstack-labs/surfacegen/internal/cli"
)

func TestVersionCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(buf.String(), "surfacegen") {
		t.Errorf("version output should contain 'surfacegen', got: %s", buf.String())
	}
}

func TestHelpListsCommands(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("help error = %v", err)
	}
	for _, name := range []string{"generate", "inspect", "hierarchy", "init", "completion"} {
		if !strings.Contains(buf.String(), name) {
			t.Errorf("help should list %q", name)
		}
	}
}

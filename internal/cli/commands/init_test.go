package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name      string
		setupDir  func(t *testing.T, dir string)
		args      []string
		wantErr   bool
		wantFiles []string
	}{
		{
			name:      "init empty directory",
			args:      []string{},
			wantFiles: []string{"surfacegen.yaml", "src"},
		},
		{
			name:      "init with example",
			args:      []string{"--example"},
			wantFiles: []string{"surfacegen.yaml", "src/control/SampleControl.ts"},
		},
		{
			name: "init existing config without force",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "surfacegen.yaml"), []byte("existing: true\n"), 0o600))
			},
			args:    []string{},
			wantErr: true,
		},
		{
			name: "init existing config with force",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "surfacegen.yaml"), []byte("existing: true\n"), 0o600))
			},
			args:      []string{"--force"},
			wantFiles: []string{"surfacegen.yaml", "src"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.setupDir != nil {
				tt.setupDir(t, dir)
			}

			cmd := NewInitCommand()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(append([]string{dir}, tt.args...))

			err := cmd.Execute()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			for _, f := range tt.wantFiles {
				_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(f)))
				assert.NoError(t, err, "expected %s to exist", f)
			}
			assert.Contains(t, buf.String(), "surfacegen project initialized")
		})
	}
}

func TestInitForceReplacesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "surfacegen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("existing: true\n"), 0o600))

	cmd := NewInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{dir, "--force"})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(path) //nolint:gosec // test path
	require.NoError(t, err)
	assert.Contains(t, string(data), "source_dir: src")
	assert.NotContains(t, string(data), "existing")
}

func TestListTemplateFiles(t *testing.T) {
	files, err := listTemplateFiles("minimal")
	require.NoError(t, err)
	assert.Equal(t, []string{"surfacegen.yaml"}, files)
}

package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/surfacegen/internal/cli/output"
	intconfig "github.com/leapstack-labs/surfacegen/internal/config"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a surfacegen project",
		Long: `Initialize a surfacegen project with a starter configuration.

This creates:
  - surfacegen.yaml configuration file
  - src/ directory for widget sources

Use --example to also add a sample control with a metadata descriptor.`,
		Example: `  # Initialize in current directory
  surfacegen init

  # Initialize with a sample control
  surfacegen init --example

  # Force overwrite existing config
  surfacegen init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			r := NewCommandContextWithoutEngine(cmd).Renderer
			template := "minimal"
			if example {
				template = "example"
			}
			return runInit(r, dir, template, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&example, "example", false, "Add a sample control")

	return cmd
}

func runInit(r *output.Renderer, dir, template string, force bool) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if existing := intconfig.FindConfigFile(dir); existing != "" && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", filepath.Base(existing))
	}

	if err := copyTemplate(template, dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	// The written file must load with the same loader the other commands use.
	cfg, err := intconfig.LoadFromDir(dir)
	if err != nil {
		return fmt.Errorf("generated configuration does not load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("generated configuration is invalid: %w", err)
	}

	files, _ := listTemplateFiles(template)
	for _, f := range files {
		r.Printf("  created  %s\n", f)
	}

	r.Println("")
	r.Println("surfacegen project initialized.")
	r.Println("")
	r.Println("Next steps:")
	r.Printf("  1. Put widget classes under %s/\n", cfg.SourceDir)
	r.Println("  2. Run 'surfacegen generate' to write declarations")
	r.Println("  3. Run 'surfacegen inspect' to see the resolved surfaces")

	return nil
}

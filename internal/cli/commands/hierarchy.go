package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/surfacegen/internal/engine"
)

// NewHierarchyCommand creates the hierarchy command.
func NewHierarchyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hierarchy",
		Short: "Show the class inheritance graph",
		Long: `Display the inheritance graph of the widget classes in the source tree.

Classes are grouped by level: level 0 holds classes whose base lies outside
the sources, and every class appears after its base. Classes on an
inheritance cycle are listed last.`,
		Example: `  # Show the hierarchy
  surfacegen hierarchy

  # As JSON
  surfacegen hierarchy -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHierarchy(cmd)
		},
	}

	return cmd
}

func runHierarchy(cmd *cobra.Command) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	infos, err := cc.Engine.Hierarchy(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to build hierarchy: %w", err)
	}

	r := cc.Renderer
	if handled, err := r.Structured(infos); handled {
		return err
	}

	current := -2
	failed := 0
	for _, info := range infos {
		if info.Level != current {
			if current != -2 {
				r.Println("")
			}
			current = info.Level
			if current < 0 {
				r.Println("Cycle:")
			} else {
				r.Printf("Level %d:\n", current)
			}
		}
		r.Printf("  %s  %s\n", info.Key, cc.Rel(info.Path))
		if info.Base != "" {
			r.Printf("    extends: %s\n", info.Base)
		}
		if info.Error != "" {
			failed++
			r.Printf("    error: %s\n", info.Error)
		}
	}
	if len(infos) > 0 {
		r.Println("")
	}
	r.Printf("Total: %d classes, %d levels, %d failed\n", len(infos), levelCount(infos), failed)
	return nil
}

func levelCount(infos []engine.ClassInfo) int {
	n := 0
	for _, info := range infos {
		if info.Level+1 > n {
			n = info.Level + 1
		}
	}
	return n
}

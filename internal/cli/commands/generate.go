package commands

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/surfacegen/internal/cli/config"
	"github.com/leapstack-labs/surfacegen/internal/cli/output"
	"github.com/leapstack-labs/surfacegen/internal/engine"
)

type generateOptions struct {
	check      bool
	downstream bool
	watch      bool
	noVerify   bool
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:     "generate [files...]",
		Aliases: []string{"gen"},
		Short:   "Generate declarations for widget classes",
		Long: `Generate TypeScript declarations for every widget class with a static
metadata descriptor.

Declarations go into machine-owned regions: after the class in the source
file (inline mode) or in a companion .gen.d.ts file (sidecar mode). Code
outside the regions is never touched. A file is only written when every
class in it succeeded.

With file arguments only those files are written; all sources are still
read so that base classes resolve.`,
		Example: `  # Generate for the whole source tree
  surfacegen generate

  # Fail if any file is out of date (CI)
  surfacegen generate --check

  # Regenerate one control and every control deriving from it
  surfacegen generate src/control/Base.ts --downstream

  # Keep declarations current while editing
  surfacegen generate --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.check, "check", false, "Report files that would change without writing; fail if any would")
	cmd.Flags().BoolVar(&opts.downstream, "downstream", false, "Include files with classes deriving from the given files")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Regenerate on source changes until interrupted")
	cmd.Flags().BoolVar(&opts.noVerify, "no-verify", false, "Skip parsing merged output before writing")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string, opts generateOptions) error {
	if opts.watch && opts.check {
		return errors.New("--watch cannot be combined with --check")
	}
	if opts.watch && len(args) > 0 {
		return errors.New("--watch covers the whole source tree; drop the file arguments")
	}

	cc, err := newCommandContext(cmd, func(cfg *config.Config) {
		if opts.noVerify {
			cfg.Verify = false
		}
	})
	if err != nil {
		return err
	}

	if opts.watch {
		return runWatch(cmd, cc)
	}

	report, genErr := cc.Engine.Generate(cmd.Context(), engine.Options{
		Files:      args,
		Downstream: opts.downstream,
		Check:      opts.check,
	})
	if report != nil {
		if err := renderReport(cc, report); err != nil {
			return err
		}
	}
	if genErr != nil {
		return genErr
	}
	return reportError(report)
}

func runWatch(cmd *cobra.Command, cc *CommandContext) error {
	r := cc.Renderer
	if r.EffectiveMode() == output.ModeText {
		r.Printf("Watching %s (Ctrl+C to stop)\n", cc.Rel(cc.Engine.SourceDir()))
	}
	return cc.Engine.Watch(cmd.Context(), engine.WatchOptions{
		OnReport: func(report *engine.Report, err error) {
			if err != nil && cmd.Context().Err() == nil {
				r.Warnf("%v", err)
			}
			if report != nil {
				if err := renderReport(cc, report); err != nil {
					cc.Logger.Error("rendering report", "error", err)
				}
			}
		},
	})
}

// reportError turns a report into the command's exit status.
func reportError(report *engine.Report) error {
	if n := report.Count(engine.StatusFailed); n > 0 {
		return errors.Newf("%d of %d files failed", n, len(report.Files))
	}
	if report.Check {
		if n := report.Count(engine.StatusWouldChange); n > 0 {
			return errors.Newf("%d files would change", n)
		}
	}
	return nil
}

func renderReport(cc *CommandContext, report *engine.Report) error {
	r := cc.Renderer
	if handled, err := r.Structured(report); handled {
		return err
	}

	for _, f := range report.Files {
		if f.Status == engine.StatusUnchanged && len(f.Diagnostics) == 0 && !cc.Cfg.Verbose {
			continue
		}
		r.Printf("  %-12s %s\n", f.Status, cc.Rel(f.Path))
		for _, d := range f.Diagnostics {
			loc := d.Location
			loc.File = cc.Rel(loc.File)
			if d.Kind != "" {
				r.Printf("      %s: %s [%s]\n", loc, d.Message, d.Kind)
			} else {
				r.Printf("      %s: %s\n", loc, d.Message)
			}
		}
	}
	r.Println(report.Summary())
	return nil
}

package main

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/surfacegen/internal/cli"
	"github.com/leapstack-labs/surfacegen/internal/engine"
	"github.com/leapstack-labs/surfacegen/pkg/core"
)

// kindDescriptions documents every diagnostic kind a report can carry.
var kindDescriptions = []struct {
	kind core.Kind
	desc string
}{
	{core.KindNonStaticMetadata, "The `metadata` field is not a plain object literal; the class keeps its existing region"},
	{core.KindMemberKindConflict, "One member name is declared with two different kinds"},
	{core.KindUnknownDefaultAggregation, "`defaultAggregation` names no aggregation of the class"},
	{core.KindCorruptGeneratedRegion, "Generated-region markers are unbalanced, nested or duplicated; the file is not touched"},
	{core.KindUnresolvedBaseSurface, "The base class is missing, failed, or part of an inheritance cycle"},
	{core.KindSourceUnreadable, "The source or its sidecar could not be read or parsed"},
	{core.KindVerificationFailed, "The merged output does not parse as TypeScript; nothing is written"},
	{core.KindWriteFailed, "The file changed on disk during generation or could not be replaced"},
}

var statusDescriptions = []struct {
	status engine.FileStatus
	desc   string
}{
	{engine.StatusUpdated, "Generated regions were written"},
	{engine.StatusUnchanged, "The file already holds the generated output"},
	{engine.StatusWouldChange, "`--check` found the file out of date"},
	{engine.StatusFailed, "A class of the file failed; its region is kept, the others are written"},
	{engine.StatusSkipped, "The file was not selected for writing in this run"},
}

// generateCLIDocs writes the CLI reference: an overview plus one page per
// command.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	root := cli.NewRootCmd()
	pages := map[string][]byte{"index.md": renderCLIIndex(root)}
	for _, cmd := range documented(root) {
		pages[cmd.Name()+".md"] = renderCommandPage(cmd)
	}

	for name, content := range pages {
		if err := os.WriteFile(filepath.Join(outDir, name), content, 0o600); err != nil {
			return errors.Wrapf(err, "writing %s", name)
		}
		log.Printf("  Generated %s", name)
	}
	return nil
}

// documented returns the visible subcommands of root.
func documented(root *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, cmd := range root.Commands() {
		if cmd.Hidden || cmd.Name() == "help" || strings.HasPrefix(cmd.Name(), "__") {
			continue
		}
		out = append(out, cmd)
	}
	return out
}

func renderCLIIndex(root *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for surfacegen")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(root.Short)
	w.CodeBlock("bash", "go install github.com/leapstack-labs/surfacegen/cmd/surfacegen@latest\nsurfacegen generate")

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range documented(root) {
		rows = append(rows, []string{"[" + InlineCode(cmd.Name()) + "](/cli/" + cmd.Name() + ")", cleanDescription(cmd.Short)})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	writeFlagsTable(w, root.PersistentFlags())

	w.Header(2, "Environment Variables")
	w.Paragraph("Every key of surfacegen.yaml can be set through the environment. " +
		"Flags override the environment, which overrides the config file, which overrides the defaults.")
	var envRows [][]string
	for _, f := range configFields() {
		envRows = append(envRows, []string{InlineCode(f.Env), InlineCode(f.Name), f.Default})
	}
	w.Table([]string{"Variable", "Config key", "Default"}, envRows)

	w.Header(2, "File Statuses")
	var statusRows [][]string
	for _, s := range statusDescriptions {
		statusRows = append(statusRows, []string{InlineCode(string(s.status)), s.desc})
	}
	w.Table([]string{"Status", "Meaning"}, statusRows)

	w.Header(2, "Diagnostics")
	var kindRows [][]string
	for _, k := range kindDescriptions {
		kindRows = append(kindRows, []string{InlineCode(string(k.kind)), k.desc})
	}
	w.Table([]string{"Kind", "Meaning"}, kindRows)

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Every file succeeded and, with `--check`, none would change"},
		{InlineCode("1"), "A file failed, `--check` found out-of-date files, or the command could not run"},
	})
	return w.Bytes()
}

func renderCommandPage(cmd *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.Name())
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cmd.Short)
	}

	w.Header(2, "Usage")
	w.CodeBlock("bash", cmd.UseLine())

	if len(cmd.Aliases) > 0 {
		aliases := make([]string, 0, len(cmd.Aliases))
		for _, a := range cmd.Aliases {
			aliases = append(aliases, InlineCode(a))
		}
		w.Paragraph("Aliases: " + strings.Join(aliases, ", "))
	}

	if cmd.HasLocalFlags() {
		w.Header(2, "Options")
		writeFlagsTable(w, cmd.LocalFlags())
	}
	if cmd.HasInheritedFlags() {
		w.Header(2, "Global Options")
		writeFlagsTable(w, cmd.InheritedFlags())
	}
	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", dedent(cmd.Example))
	}
	return w.Bytes()
}

// writeFlagsTable lists flags with the config key each one overrides.
func writeFlagsTable(w *MarkdownWriter, flags *pflag.FlagSet) {
	keys := make(map[string]bool)
	for _, f := range configFields() {
		keys[f.Name] = true
	}

	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		option := InlineCode("--" + f.Name)
		if f.Shorthand != "" {
			option += ", " + InlineCode("-"+f.Shorthand)
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		if !keys[key] {
			key = ""
		} else {
			key = InlineCode(key)
		}
		rows = append(rows, []string{option, key, cleanDescription(f.Usage)})
	})
	w.Table([]string{"Option", "Config key", "Description"}, rows)
}

// dedent strips the indentation shared by every non-blank line.
func dedent(text string) string {
	lines := strings.Split(text, "\n")
	common := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if common < 0 || n < common {
			common = n
		}
	}
	for i, line := range lines {
		if len(line) >= common && common > 0 {
			lines[i] = line[common:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

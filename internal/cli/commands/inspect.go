package commands

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/surfacegen/pkg/core"
	"github.com/leapstack-labs/surfacegen/pkg/surface"
)

// surfaceView is the structured form of a surface. Member kinds and default
// values are not part of the surface's own encoding.
type surfaceView struct {
	Class              string       `json:"class" yaml:"class"`
	Module             string       `json:"module" yaml:"module"`
	Base               string       `json:"base,omitempty" yaml:"base,omitempty"`
	DefaultAggregation string       `json:"defaultAggregation,omitempty" yaml:"defaultAggregation,omitempty"`
	HasRenderer        bool         `json:"hasRenderer" yaml:"hasRenderer"`
	Members            []memberView `json:"members" yaml:"members"`
}

type memberView struct {
	Kind       string   `json:"kind" yaml:"kind"`
	Name       string   `json:"name" yaml:"name"`
	Type       string   `json:"type,omitempty" yaml:"type,omitempty"`
	Default    string   `json:"default,omitempty" yaml:"default,omitempty"`
	AltTypes   []string `json:"altTypes,omitempty" yaml:"altTypes,omitempty"`
	Flags      []string `json:"flags,omitempty" yaml:"flags,omitempty"`
	DeclaredBy string   `json:"declaredBy" yaml:"declaredBy"`
}

type inspectResult struct {
	Surfaces    []surfaceView     `json:"surfaces" yaml:"surfaces"`
	Diagnostics []core.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

func newSurfaceView(s *surface.Surface) surfaceView {
	v := surfaceView{
		Class:              s.Class,
		Module:             s.Module,
		Base:               s.Base,
		DefaultAggregation: s.DefaultAggregation,
		HasRenderer:        s.HasRenderer,
		Members:            make([]memberView, 0, len(s.Members)),
	}
	for _, m := range s.Members {
		mv := memberView{
			Kind:       m.KindName(),
			Name:       m.Name,
			Type:       m.Type.String(),
			Default:    m.DefaultText(),
			Flags:      memberFlags(m),
			DeclaredBy: m.DeclaredBy,
		}
		for _, alt := range m.AltTypes {
			mv.AltTypes = append(mv.AltTypes, alt.String())
		}
		v.Members = append(v.Members, mv)
	}
	return v
}

func memberFlags(m surface.Member) []string {
	var flags []string
	if m.Multiple {
		flags = append(flags, "multiple")
	}
	if m.Bindable {
		flags = append(flags, "bindable")
	}
	if m.Readonly {
		flags = append(flags, "readonly")
	}
	if m.DefaultAggregation {
		flags = append(flags, "default")
	}
	if m.AllowPreventDefault {
		flags = append(flags, "preventable")
	}
	return flags
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [class]",
		Short: "Show the normalized surface of widget classes",
		Long: `Show the flattened public surface of widget classes, inherited members
included, without writing anything.

Without an argument every class in the source tree is listed. With a class
name or module id the members of that class are shown; classes from the base
catalog can be inspected as well.`,
		Example: `  # List every class
  surfacegen inspect

  # Members of one class
  surfacegen inspect SampleControl

  # A catalog class as YAML
  surfacegen inspect sap/m/Button -o yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return inspectClass(cmd, cc, args[0])
			}
			return inspectAll(cmd, cc)
		},
	}

	return cmd
}

func inspectAll(cmd *cobra.Command, cc *CommandContext) error {
	surfaces, diags, err := cc.Engine.Surfaces(cmd.Context())
	if err != nil {
		return err
	}

	res := inspectResult{Surfaces: make([]surfaceView, 0, len(surfaces)), Diagnostics: diags}
	for _, s := range surfaces {
		res.Surfaces = append(res.Surfaces, newSurfaceView(s))
	}

	r := cc.Renderer
	if handled, err := r.Structured(res); handled {
		return err
	}

	rows := make([][]string, 0, len(surfaces))
	for _, s := range surfaces {
		rows = append(rows, []string{
			s.Module, s.Class, s.Base,
			strconv.Itoa(len(s.Members)), strconv.Itoa(len(s.Own())),
		})
	}
	r.Table([]string{"Module", "Class", "Base", "Members", "Own"}, rows)
	for _, d := range diags {
		r.Warnf("%s: %s", d.Location, d.Message)
	}
	return nil
}

func inspectClass(cmd *cobra.Command, cc *CommandContext, name string) error {
	s, err := cc.Engine.Surface(cmd.Context(), name)
	if err != nil {
		return err
	}

	r := cc.Renderer
	if handled, err := r.Structured(newSurfaceView(s)); handled {
		return err
	}

	title := s.Class + " (" + s.Module + ")"
	if s.Base != "" {
		title += " extends " + s.Base
	}
	r.Println(title)

	rows := make([][]string, 0, len(s.Members))
	for _, m := range s.Members {
		typ := m.Type.String()
		for _, alt := range m.AltTypes {
			typ += " | " + alt.String()
		}
		rows = append(rows, []string{
			m.KindName(), m.Name, typ, m.DefaultText(),
			strings.Join(memberFlags(m), ","), m.DeclaredBy,
		})
	}
	r.Table([]string{"Kind", "Name", "Type", "Default", "Flags", "Declared By"}, rows)
	return nil
}

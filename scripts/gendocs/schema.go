package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/surfacegen/internal/cli/config"
	intconfig "github.com/leapstack-labs/surfacegen/internal/config"
)

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Env         string
	Description string
}

var fieldDescriptions = map[string]string{
	"source_dir":   "Root of the TypeScript sources, relative to the config file",
	"namespace":    "Dotted prefix of module ids derived from source paths",
	"extensions":   "Source file extensions to scan",
	"exclude_dirs": "Directory names skipped during discovery",
	"mode":         "Where declarations go: inline or sidecar",
	"workers":      "Parallel file workers, 0 for one per CPU",
	"verify":       "Parse merged output with esbuild before writing",
	"catalogs":     "YAML catalogs describing additional base classes",
	"verbose":      "Debug logging on stderr",
	"output":       "Output format: auto, text, json or yaml",
}

// configFields lists the koanf keys of the CLI config in declaration order.
func configFields() []ConfigField {
	defaults := config.Config{OutputFormat: config.DefaultOutput}
	defaults.Verify = intconfig.DefaultVerify
	defaults.ApplyDefaults()

	var fields []ConfigField
	var walk func(t reflect.Type, v reflect.Value)
	walk = func(t reflect.Type, v reflect.Value) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			tag := f.Tag.Get("koanf")
			if tag == "-" {
				continue
			}
			if strings.Contains(tag, "squash") {
				walk(f.Type, v.Field(i))
				continue
			}
			fields = append(fields, ConfigField{
				Name:        tag,
				Type:        f.Type.String(),
				Default:     defaultText(v.Field(i)),
				Env:         config.EnvPrefix + strings.ToUpper(tag),
				Description: fieldDescriptions[tag],
			})
		}
	}
	walk(reflect.TypeOf(defaults), reflect.ValueOf(defaults))
	return fields
}

func defaultText(v reflect.Value) string {
	if v.IsZero() && v.Kind() != reflect.Bool && v.Kind() != reflect.Int {
		return "-"
	}
	if v.Kind() == reflect.Slice {
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = fmt.Sprint(v.Index(i).Interface())
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v.Interface())
}

// generateSchemaDocs generates the configuration reference.
func generateSchemaDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Configuration", "surfacegen configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph("surfacegen reads `surfacegen.yaml`, searched upward from the working directory. Relative paths are resolved against the directory holding it.")

	headers := []string{"Key", "Type", "Default", "Environment", "Description"}
	var rows [][]string
	for _, f := range configFields() {
		rows = append(rows, []string{InlineCode(f.Name), f.Type, f.Default, InlineCode(f.Env), f.Description})
	}
	w.Table(headers, rows)

	var defaults intconfig.ProjectConfig
	defaults.ApplyDefaults()
	defaults.Verify = intconfig.DefaultVerify
	data, err := yaml.Marshal(map[string]any{
		"source_dir":   defaults.SourceDir,
		"mode":         defaults.Mode,
		"extensions":   defaults.Extensions,
		"exclude_dirs": defaults.ExcludeDirs,
		"verify":       defaults.Verify,
	})
	if err != nil {
		return err
	}
	w.Header(2, "Example")
	w.CodeBlock("yaml", string(data))

	return os.WriteFile(filepath.Join(outDir, "configuration.md"), w.Bytes(), 0o600)
}

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFiles creates files under dir from a map of slash-separated relative
// paths to contents, creating directories as needed.
func WriteFiles(t testing.TB, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

// ReadFile returns the content of a file or fails the test.
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test helper
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// Fixture returns the content of a file under a testdata directory, relative
// to the calling package.
func Fixture(t testing.TB, rel string) string {
	t.Helper()
	return ReadFile(t, filepath.FromSlash(rel))
}

// SampleControl is the reference widget used across tests. It extends
// sap.m.Button from the built-in catalog.
const SampleControl = `import Button from "sap/m/Button";
import RenderManager from "sap/ui/core/RenderManager";

/**
 * A SampleControl is a control and this is its documentation.
 *
 * @namespace ui5tssampleapp.control
 */
export default class SampleControl extends Button {

	// The following three lines were generated and should remain as-is to make TypeScript aware of the constructor signatures
	constructor(idOrSettings?: string | $SampleControlSettings);
	constructor(id?: string, settings?: $SampleControlSettings);
	constructor(id?: string, settings?: $SampleControlSettings) { super(id, settings); }

	static readonly metadata = {
		properties: {
			/**
			 * The text that appears below the main text.
			 * @since 1.0
			 */
			subtext: "string",
			textColor: { type: "sap.ui.core.CSSColor", defaultValue: "" },
		},
		aggregations: {
			content: { multiple: true, type: "sap.ui.core.Control", bindable: true },
			header: { multiple: false, type: "sap.ui.core.Control" },
		},
		defaultAggregation: "content",
		associations: {
			partnerControl: { type: "SampleControl", multiple: false, altTypes: ["string"] },
		},
		events: {
			/**
			 * Fired when double-clicked.
			 */
			doublePress: { allowPreventDefault: true },
		},
	};

	static renderer = {
		apiVersion: 2,
		render: function (rm: RenderManager, control: SampleControl) {
			rm.openStart("div", control);
			rm.openEnd();
			rm.close("div");
		}
	};
}
`

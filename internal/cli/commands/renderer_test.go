package commands

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/surfacegen/internal/cli/config"
	"github.com/leapstack-labs/surfacegen/internal/cli/output"
	clitestutil "github.com/leapstack-labs/surfacegen/internal/cli/testutil"
)

func projectContext(t *testing.T, mode output.OutputMode, isTTY bool, extra map[string]string) (*CommandContext, *clitestutil.TestRenderer) {
	t.Helper()
	dir := clitestutil.SetupTestProject(t, extra)

	cfg := &config.Config{OutputFormat: string(mode), ProjectRoot: dir}
	cfg.SourceDir = filepath.Join(dir, "src")
	cfg.ApplyDefaults()

	cmd := NewInspectCommand()
	cmd.SetContext(config.WithConfig(context.Background(), cfg))
	cc, err := NewCommandContext(cmd)
	require.NoError(t, err)

	tr := clitestutil.NewTestRenderer(mode, isTTY)
	cc.Renderer = tr.Renderer
	return cc, tr
}

func TestInspectAll_JSON(t *testing.T) {
	cc, tr := projectContext(t, output.ModeAuto, false, nil)

	cmd := NewInspectCommand()
	cmd.SetContext(context.Background())
	require.NoError(t, inspectAll(cmd, cc))

	clitestutil.AssertNoANSI(t, tr.Output())
	var res struct {
		Surfaces []struct {
			Module string `json:"module"`
			Base   string `json:"base"`
		} `json:"surfaces"`
	}
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &res))
	require.Len(t, res.Surfaces, 1)
	assert.Equal(t, "SampleControl", res.Surfaces[0].Module)
	assert.Equal(t, "sap/m/Button", res.Surfaces[0].Base)
}

func TestInspectAll_TableWarnsOnFailures(t *testing.T) {
	cc, tr := projectContext(t, output.ModeText, true, map[string]string{
		"src/Broken.ts": `import Control from "sap/ui/core/Control";

/**
 * @namespace my.app
 */
export default class Broken extends Control {
	static readonly metadata = {
		defaultAggregation: "items",
	};
}
`,
	})

	cmd := NewInspectCommand()
	cmd.SetContext(context.Background())
	require.NoError(t, inspectAll(cmd, cc))

	assert.Contains(t, tr.Output(), "SampleControl")
	assert.Contains(t, tr.ErrorOutput(), "warning: ")
	assert.Contains(t, tr.ErrorOutput(), "items")
}

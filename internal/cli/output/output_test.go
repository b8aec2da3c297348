package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		mode  OutputMode
		isTTY bool
		want  OutputMode
	}{
		{ModeAuto, true, ModeText},
		{ModeAuto, false, ModeJSON},
		{ModeYAML, true, ModeYAML},
		{ModeText, false, ModeText},
		{"", false, ModeJSON},
	}
	for _, tt := range tests {
		r := NewRendererWithTTY(&bytes.Buffer{}, &bytes.Buffer{}, tt.isTTY, tt.mode)
		assert.Equal(t, tt.want, r.EffectiveMode(), "mode=%q tty=%v", tt.mode, tt.isTTY)
	}
}

func TestNewRenderer_BufferIsNotTTY(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("yaml")
	require.NoError(t, err)
	assert.Equal(t, ModeYAML, m)

	_, err = ParseMode("markdown")
	assert.Error(t, err)
}

func TestStructured(t *testing.T) {
	v := map[string]any{"class": "SampleControl", "members": 3}

	var out bytes.Buffer
	r := NewRendererWithTTY(&out, &bytes.Buffer{}, false, ModeJSON)
	handled, err := r.Structured(v)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.JSONEq(t, `{"class":"SampleControl","members":3}`, out.String())

	out.Reset()
	r = NewRendererWithTTY(&out, &bytes.Buffer{}, false, ModeYAML)
	_, err = r.Structured(v)
	require.NoError(t, err)
	assert.YAMLEq(t, "class: SampleControl\nmembers: 3\n", out.String())

	out.Reset()
	r = NewRendererWithTTY(&out, &bytes.Buffer{}, true, ModeAuto)
	handled, err = r.Structured(v)
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Empty(t, out.String())
}

func TestTable(t *testing.T) {
	var out bytes.Buffer
	r := NewRendererWithTTY(&out, &bytes.Buffer{}, true, ModeText)
	r.Table([]string{"Class", "Level"}, [][]string{{"SampleControl", "0"}, {"Derived", "1"}})

	s := out.String()
	assert.Contains(t, s, "SampleControl")
	assert.Contains(t, s, "Derived")
	assert.Contains(t, s, "LEVEL")
}

func TestWarnf(t *testing.T) {
	var errOut bytes.Buffer
	r := NewRendererWithTTY(&bytes.Buffer{}, &errOut, false, ModeText)
	r.Warnf("duplicate class %s", "A")
	assert.Equal(t, "warning: duplicate class A\n", errOut.String())
}

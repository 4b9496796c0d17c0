package ui_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/appbox/pkg/errors"
	"github.com/arthur-debert/appbox/pkg/ui"
	"github.com/arthur-debert/appbox/pkg/ui/json"
	"github.com/arthur-debert/appbox/pkg/ui/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected ui.Format
	}{
		{"", ui.FormatAuto},
		{"auto", ui.FormatAuto},
		{"term", ui.FormatTerminal},
		{"terminal", ui.FormatTerminal},
		{"TEXT", ui.FormatText},
		{"plain", ui.FormatText},
		{"json", ui.FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ui.ParseFormat(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := ui.ParseFormat("xml")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "auto", ui.FormatAuto.String())
	assert.Equal(t, "term", ui.FormatTerminal.String())
	assert.Equal(t, "text", ui.FormatText.String())
	assert.Equal(t, "json", ui.FormatJSON.String())
	assert.Equal(t, "unknown", ui.Format(42).String())
}

func TestDetectFormatNonTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, ui.FormatText, ui.DetectFormat(f))

	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, ui.FormatText, ui.DetectFormat(os.Stdout))
}

func TestNewRenderer(t *testing.T) {
	var buf bytes.Buffer

	r, err := ui.NewRenderer(ui.FormatAuto, &buf)
	require.NoError(t, err)
	assert.IsType(t, &text.Renderer{}, r, "non-file writers get plain text")

	r, err = ui.NewRenderer(ui.FormatJSON, &buf)
	require.NoError(t, err)
	assert.IsType(t, &json.Renderer{}, r)

	_, err = ui.NewRenderer(ui.Format(42), &buf)
	assert.Error(t, err)
}

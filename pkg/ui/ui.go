// Package ui provides a unified interface for rendering output in different formats.
// It supports terminal (rich), text (plain), and JSON output formats.
package ui

import (
	"io"
	"os"

	"github.com/arthur-debert/appbox/pkg/errors"
	"github.com/arthur-debert/appbox/pkg/ui/json"
	"github.com/arthur-debert/appbox/pkg/ui/terminal"
	"github.com/arthur-debert/appbox/pkg/ui/text"
)

// Renderer is the common interface for all output renderers.
type Renderer interface {
	// RenderResult renders one of the display result types
	RenderResult(result interface{}) error

	// RenderError renders an error with appropriate formatting
	RenderError(err error) error

	// RenderMessage renders a simple message
	RenderMessage(msg string) error
}

// NewRenderer creates a new renderer based on the specified format.
// FormatAuto inspects output when it is a file and falls back to text otherwise.
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch format {
	case FormatAuto:
		if file, ok := output.(*os.File); ok {
			return NewRenderer(DetectFormat(file), output)
		}
		return NewRenderer(FormatText, output)
	case FormatTerminal:
		return terminal.New(output), nil
	case FormatText:
		return text.New(output), nil
	case FormatJSON:
		return json.New(output), nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown format: %v", format)
	}
}

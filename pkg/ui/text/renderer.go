// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/arthur-debert/appbox/pkg/statestore"
	"github.com/arthur-debert/appbox/pkg/ui/display"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) *Renderer {
	return &Renderer{output: output}
}

// RenderResult renders any result type as plain text
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *display.InstallResult:
		return r.renderInstall(v)
	case *display.UninstallResult:
		return r.renderUninstall(v)
	case *display.QueryResult:
		_, err := fmt.Fprintf(r.output, "%s: %s\n", v.State.Name, v.State.Ensure)
		return err
	case *display.ListResult:
		return r.renderList(v)
	case *display.ShowResult:
		_, err := io.WriteString(r.output, statestore.Render(v.Marker))
		return err
	case *display.ApplyResult:
		return r.renderApply(v)
	case *display.FormatsResult:
		return r.renderFormats(v)
	default:
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, err2 := fmt.Fprintf(r.output, "Error: %v\n", err)
	return err2
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}

func (r *Renderer) renderInstall(v *display.InstallResult) error {
	rc := v.Receipt
	verb := "installed"
	if v.DryRun {
		verb = "would install"
	}
	if _, err := fmt.Fprintf(r.output, "%s %s from %s (%s) into %s\n",
		verb, rc.Name, rc.Source, rc.Format, rc.BundlePath); err != nil {
		return err
	}
	return r.renderCommands(v.Commands)
}

func (r *Renderer) renderUninstall(v *display.UninstallResult) error {
	verb := "uninstalled"
	if v.DryRun {
		verb = "would uninstall"
	}
	if _, err := fmt.Fprintf(r.output, "%s %s\n", verb, v.Name); err != nil {
		return err
	}
	return r.renderCommands(v.Commands)
}

func (r *Renderer) renderCommands(lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintf(r.output, "  $ %s\n", line); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderList(v *display.ListResult) error {
	if !v.Long {
		for _, p := range v.Packages {
			if _, err := fmt.Fprintln(r.output, p.Name); err != nil {
				return err
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(r.output, 0, 4, 2, ' ', 0)
	for _, p := range v.Packages {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", p.Name, p.Source); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func (r *Renderer) renderApply(v *display.ApplyResult) error {
	tw := tabwriter.NewWriter(r.output, 0, 4, 2, ' ', 0)
	for _, item := range v.Items {
		outcome := item.Change
		if item.Error != "" {
			outcome = "error: " + item.Error
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", item.Name, item.Ensure, outcome); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if err := r.renderCommands(v.Commands); err != nil {
		return err
	}
	_, err := fmt.Fprintf(r.output, "%d resources, %d failed\n", len(v.Items), v.Failed())
	return err
}

func (r *Renderer) renderFormats(v *display.FormatsResult) error {
	tw := tabwriter.NewWriter(r.output, 0, 4, 2, ' ', 0)
	for _, f := range v.Formats {
		compression := f.Compression
		if compression == "" {
			compression = "-"
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Name, f.Kind, compression, f.Canonical); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/appbox/pkg/errors"
	"github.com/arthur-debert/appbox/pkg/style"
	"github.com/arthur-debert/appbox/pkg/ui/display"
	"github.com/arthur-debert/appbox/pkg/ui/styles"
	"github.com/pterm/pterm"
)

// Renderer provides rich terminal output using lipgloss styles and pterm
// badges and tables
type Renderer struct {
	output io.Writer
}

// New creates a new terminal renderer
func New(w io.Writer) *Renderer {
	return &Renderer{output: w}
}

// RenderResult renders any result type with rich terminal formatting
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *display.InstallResult:
		return r.renderInstall(v)
	case *display.UninstallResult:
		return r.renderUninstall(v)
	case *display.QueryResult:
		return r.println(style.Badge(style.FromEnsure(v.State.Ensure)), styles.Render("Name", v.State.Name),
			styles.Render("Source", v.State.Source))
	case *display.ListResult:
		return r.renderList(v)
	case *display.ShowResult:
		return r.renderShow(v)
	case *display.ApplyResult:
		return r.renderApply(v)
	case *display.FormatsResult:
		return r.renderFormats(v)
	default:
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}
}

// RenderError renders an error with its code
func (r *Renderer) RenderError(err error) error {
	return r.println(style.Badge(style.StatusError), styles.Render("Error", err.Error()))
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}

func (r *Renderer) println(parts ...string) error {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	_, err := fmt.Fprintln(r.output, strings.Join(kept, " "))
	return err
}

func (r *Renderer) renderDryRun(dryRun bool, commands []string) error {
	if !dryRun {
		return nil
	}
	if err := r.println(styles.Render("DryRunBanner", "Dry run, nothing was changed. Commands:")); err != nil {
		return err
	}
	for _, line := range commands {
		if err := r.println(styles.Render("Command", "$ "+line)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderInstall(v *display.InstallResult) error {
	rc := v.Receipt
	if err := r.renderDryRun(v.DryRun, v.Commands); err != nil {
		return err
	}
	status := style.StatusInstalled
	if v.DryRun {
		status = style.StatusDryRun
	}
	return r.println(style.Badge(status), styles.Render("Name", rc.Name),
		styles.Render("Source", fmt.Sprintf("%s (%s)", rc.Source, rc.Format)),
		"→", styles.Render("Path", rc.BundlePath))
}

func (r *Renderer) renderUninstall(v *display.UninstallResult) error {
	if err := r.renderDryRun(v.DryRun, v.Commands); err != nil {
		return err
	}
	status := style.StatusRemoved
	if v.DryRun {
		status = style.StatusDryRun
	}
	return r.println(style.Badge(status), styles.Render("Name", v.Name))
}

func (r *Renderer) renderList(v *display.ListResult) error {
	if len(v.Packages) == 0 {
		return r.println(styles.Render("Muted", "No packages installed"))
	}
	if !v.Long {
		for _, p := range v.Packages {
			if err := r.println(styles.Render("Name", p.Name)); err != nil {
				return err
			}
		}
		return nil
	}

	data := pterm.TableData{{"Package", "Source"}}
	for _, p := range v.Packages {
		data = append(data, []string{p.Name, p.Source})
	}
	return r.table(data)
}

func (r *Renderer) renderShow(v *display.ShowResult) error {
	if err := r.println(styles.Render("Header", v.Marker.Name)); err != nil {
		return err
	}
	data := pterm.TableData{
		{"source", v.Marker.Source},
		{"marker", v.Path},
	}
	out, err := pterm.DefaultTable.WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to render marker")
	}
	_, err = fmt.Fprintln(r.output, out)
	return err
}

func (r *Renderer) renderApply(v *display.ApplyResult) error {
	if err := r.println(styles.Render("Header", v.Manifest)); err != nil {
		return err
	}
	for _, item := range v.Items {
		var err error
		if item.Error != "" {
			err = r.println(style.Badge(style.StatusError), styles.Render("Name", item.Name),
				styles.Render("Error", item.Error))
		} else {
			err = r.println(style.Badge(style.Status(item.Change)), styles.Render("Name", item.Name),
				styles.Render("Muted", "ensure "+item.Ensure))
		}
		if err != nil {
			return err
		}
	}
	if err := r.renderDryRun(v.DryRun, v.Commands); err != nil {
		return err
	}

	summary := fmt.Sprintf("%d resources, %d failed", len(v.Items), v.Failed())
	if v.Failed() > 0 {
		return r.println(styles.Render("Error", summary))
	}
	return r.println(styles.Render("Success", summary))
}

func (r *Renderer) renderFormats(v *display.FormatsResult) error {
	data := pterm.TableData{{"Flavor", "Kind", "Compression", "Canonical"}}
	for _, f := range v.Formats {
		compression := f.Compression
		if compression == "" {
			compression = "-"
		}
		data = append(data, []string{f.Name, f.Kind, compression, f.Canonical})
	}
	return r.table(data)
}

func (r *Renderer) table(data pterm.TableData) error {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to render table")
	}
	_, err = fmt.Fprintln(r.output, out)
	return err
}

// Package style maps package states and transitions onto pterm styles.
package style

import (
	"fmt"

	"github.com/arthur-debert/appbox/pkg/provider"
	"github.com/pterm/pterm"
)

// Status types for packages and converge outcomes
type Status string

const (
	StatusInstalled Status = "installed"
	StatusAbsent    Status = "absent"
	StatusRemoved   Status = "removed"
	StatusUnchanged Status = "unchanged"
	StatusError     Status = "error"
	StatusDryRun    Status = "dry run"
)

// StatusStyle returns the appropriate pterm style for a status
func StatusStyle(status Status) *pterm.Style {
	switch status {
	case StatusInstalled:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgWhite)
	case StatusRemoved:
		return pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	case StatusError:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite, pterm.Bold)
	case StatusDryRun:
		return pterm.NewStyle(pterm.FgYellow, pterm.Bold)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// FromEnsure maps an observed ensure state onto a Status.
func FromEnsure(e provider.Ensure) Status {
	if e == provider.EnsureInstalled {
		return StatusInstalled
	}
	return StatusAbsent
}

// FromChange maps a converge transition onto a Status.
func FromChange(c provider.Change) Status {
	switch c {
	case provider.ChangeInstalled:
		return StatusInstalled
	case provider.ChangeRemoved:
		return StatusRemoved
	}
	return StatusUnchanged
}

// Badge renders status as a padded, colored label.
func Badge(status Status) string {
	return StatusStyle(status).Sprint(fmt.Sprintf(" %-9s ", status))
}

// Package display defines the results commands hand to renderers.
package display

import (
	"github.com/arthur-debert/appbox/pkg/format"
	"github.com/arthur-debert/appbox/pkg/installer"
	"github.com/arthur-debert/appbox/pkg/provider"
	"github.com/arthur-debert/appbox/pkg/statestore"
)

// InstallResult reports a completed install.
type InstallResult struct {
	Receipt installer.Receipt `json:"receipt"`
	DryRun  bool              `json:"dry_run"`
	// Commands lists the shell lines a dry run would have executed.
	Commands []string `json:"commands,omitempty"`
}

// UninstallResult reports a completed uninstall.
type UninstallResult struct {
	Name     string   `json:"name"`
	DryRun   bool     `json:"dry_run"`
	Commands []string `json:"commands,omitempty"`
}

// QueryResult reports the observed state of one package.
type QueryResult struct {
	State provider.State `json:"state"`
}

// Installed reports whether the package has a marker.
func (r *QueryResult) Installed() bool {
	return r.State.Ensure == provider.EnsureInstalled
}

// ListResult lists installed packages.
type ListResult struct {
	Packages []provider.State `json:"packages"`
	// Long includes the recorded source of every package.
	Long bool `json:"-"`
}

// ShowResult shows the marker of one package.
type ShowResult struct {
	Marker statestore.Marker `json:"marker"`
	Path   string            `json:"path"`
}

// ApplyItem is the outcome of converging one manifest entry.
type ApplyItem struct {
	Name   string `json:"name"`
	Ensure string `json:"ensure"`
	Change string `json:"change,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ApplyResult reports a manifest run.
type ApplyResult struct {
	Manifest string      `json:"manifest"`
	Items    []ApplyItem `json:"items"`
	DryRun   bool        `json:"dry_run"`
	Commands []string    `json:"commands,omitempty"`
}

// NewApplyResult converts provider outcomes for display.
func NewApplyResult(manifest string, outcomes []provider.Outcome, dryRun bool) *ApplyResult {
	items := make([]ApplyItem, 0, len(outcomes))
	for _, o := range outcomes {
		ensure := o.Resource.Ensure
		if ensure == "" {
			ensure = provider.EnsureInstalled
		}
		item := ApplyItem{
			Name:   o.Resource.Name,
			Ensure: string(ensure),
			Change: string(o.Change),
		}
		if o.Err != nil {
			item.Error = o.Err.Error()
		}
		items = append(items, item)
	}
	return &ApplyResult{Manifest: manifest, Items: items, DryRun: dryRun}
}

// Failed counts the entries that could not be converged.
func (r *ApplyResult) Failed() int {
	n := 0
	for _, item := range r.Items {
		if item.Error != "" {
			n++
		}
	}
	return n
}

// FormatInfo describes one archive flavor.
type FormatInfo struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Compression string `json:"compression,omitempty"`
	Canonical   string `json:"canonical"`
}

// FormatsResult lists supported archive flavors.
type FormatsResult struct {
	Formats []FormatInfo `json:"formats"`
}

// NewFormatsResult describes every flavor in resolution order.
func NewFormatsResult() *FormatsResult {
	all := format.All()
	infos := make([]FormatInfo, 0, len(all))
	for _, f := range all {
		kind := "zip"
		if f.IsTar() {
			kind = "tar"
		}
		infos = append(infos, FormatInfo{
			Name:        string(f),
			Kind:        kind,
			Compression: string(f.Compression()),
			Canonical:   string(f.Canonical()),
		})
	}
	return &FormatsResult{Formats: infos}
}

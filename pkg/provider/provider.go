package provider

import (
	"context"
	"strings"

	"github.com/arthur-debert/appbox/pkg/errors"
	"github.com/arthur-debert/appbox/pkg/format"
	"github.com/arthur-debert/appbox/pkg/installer"
	"github.com/arthur-debert/appbox/pkg/logging"
	"github.com/arthur-debert/appbox/pkg/paths"
	"github.com/arthur-debert/appbox/pkg/statestore"
	"github.com/rs/zerolog"
)

// Ensure is the desired or observed state of a resource.
type Ensure string

const (
	EnsureInstalled Ensure = "installed"
	EnsureAbsent    Ensure = "absent"
)

// ParseEnsure accepts installed, present and absent. Empty means installed.
func ParseEnsure(s string) (Ensure, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "installed", "present":
		return EnsureInstalled, nil
	case "absent":
		return EnsureAbsent, nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "invalid ensure value %q (expected installed or absent)", s)
}

// Resource is a declared package.
type Resource struct {
	Name   string `json:"name" yaml:"name" toml:"name"`
	Source string `json:"source,omitempty" yaml:"source" toml:"source"`
	Flavor string `json:"flavor,omitempty" yaml:"flavor" toml:"flavor"`
	Ensure Ensure `json:"ensure" yaml:"ensure" toml:"ensure"`
}

// State is what Query observes for a resource.
type State struct {
	Name   string `json:"name"`
	Ensure Ensure `json:"ensure"`
	Source string `json:"source,omitempty"`
}

// Change records the transition Converge performed.
type Change string

const (
	ChangeInstalled Change = "installed"
	ChangeRemoved   Change = "removed"
	ChangeUnchanged Change = "unchanged"
)

// Outcome is the result of converging one resource.
type Outcome struct {
	Resource Resource `json:"resource"`
	Change   Change   `json:"change,omitempty"`
	Err      error    `json:"-"`
}

// Failed reports whether converging the resource failed.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Validate checks r before it is handed to the installer.
func Validate(r Resource) error {
	if r.Source == "" {
		return errors.New(errors.ErrInvalidInput, "must specify a package source")
	}
	if r.Name == "" {
		return errors.New(errors.ErrInvalidInput, "must specify a package name")
	}
	if r.Flavor != "" {
		if _, err := format.Parse(r.Flavor); err != nil {
			return err
		}
	}
	return paths.ValidateName(r.Name)
}

// Provider manages compressed application resources.
type Provider struct {
	installer *installer.Installer
	store     statestore.Store
	logger    zerolog.Logger
}

// New creates a Provider.
func New(inst *installer.Installer, store statestore.Store) *Provider {
	return &Provider{
		installer: inst,
		store:     store,
		logger:    logging.GetLogger("provider"),
	}
}

// Query reports whether name is installed. The returned bool is false when
// the package is absent.
func (p *Provider) Query(name string) (State, bool, error) {
	if err := paths.ValidateName(name); err != nil {
		return State{}, false, err
	}
	ok, err := p.store.Exists(name)
	if err != nil {
		return State{}, false, err
	}
	if !ok {
		return State{Name: name, Ensure: EnsureAbsent}, false, nil
	}

	state := State{Name: name, Ensure: EnsureInstalled}
	// The source is informational; an unreadable marker still means installed.
	if m, err := p.store.Get(name); err == nil {
		state.Source = m.Source
	} else {
		p.logger.Debug().Err(err).Str("package", name).Msg("Could not read marker contents")
	}
	return state, true, nil
}

// Install validates r and installs it, replacing any previous install.
func (p *Provider) Install(ctx context.Context, r Resource) (installer.Receipt, error) {
	if err := Validate(r); err != nil {
		return installer.Receipt{}, err
	}
	return p.installer.Install(ctx, installer.Request{
		Name:   r.Name,
		Source: r.Source,
		Flavor: r.Flavor,
	})
}

// Uninstall removes r. Removing an absent package succeeds.
func (p *Provider) Uninstall(ctx context.Context, r Resource) error {
	if r.Name == "" {
		return errors.New(errors.ErrInvalidInput, "must specify a package name")
	}
	return p.installer.Uninstall(ctx, r.Name)
}

// Instances lists every installed package.
func (p *Provider) Instances() ([]State, error) {
	names, err := p.store.List()
	if err != nil {
		return nil, err
	}
	states := make([]State, 0, len(names))
	for _, name := range names {
		states = append(states, State{Name: name, Ensure: EnsureInstalled})
	}
	return states, nil
}

// Converge brings r to its desired ensure state.
func (p *Provider) Converge(ctx context.Context, r Resource) (Change, error) {
	desired := r.Ensure
	if desired == "" {
		desired = EnsureInstalled
	}
	if desired != EnsureInstalled && desired != EnsureAbsent {
		return "", errors.Newf(errors.ErrInvalidInput, "invalid ensure value %q (expected installed or absent)", desired)
	}
	if desired == EnsureInstalled {
		if err := Validate(r); err != nil {
			return "", err
		}
	}

	_, installed, err := p.Query(r.Name)
	if err != nil {
		return "", err
	}

	logger := p.logger.With().Str("package", r.Name).Str("ensure", string(desired)).Logger()
	switch {
	case desired == EnsureInstalled && !installed:
		if _, err := p.Install(ctx, r); err != nil {
			return "", err
		}
		logger.Info().Msg("absent -> installed")
		return ChangeInstalled, nil
	case desired == EnsureAbsent && installed:
		if err := p.Uninstall(ctx, r); err != nil {
			return "", err
		}
		logger.Info().Msg("installed -> absent")
		return ChangeRemoved, nil
	}

	logger.Debug().Msg("Already in desired state")
	return ChangeUnchanged, nil
}

// Apply converges resources in order. A failure is recorded in its Outcome
// and does not stop the remaining resources.
func (p *Provider) Apply(ctx context.Context, resources []Resource) []Outcome {
	outcomes := make([]Outcome, 0, len(resources))
	for _, r := range resources {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, Outcome{Resource: r, Err: err})
			continue
		}
		change, err := p.Converge(ctx, r)
		if err != nil {
			p.logger.Error().Err(err).Str("package", r.Name).Msg("Failed to converge resource")
		}
		outcomes = append(outcomes, Outcome{Resource: r, Change: change, Err: err})
	}
	return outcomes
}

package installer

import (
	"context"
	"os"
	"time"

	"github.com/arthur-debert/appbox/pkg/errors"
	"github.com/arthur-debert/appbox/pkg/extractor"
	"github.com/arthur-debert/appbox/pkg/fetcher"
	"github.com/arthur-debert/appbox/pkg/format"
	"github.com/arthur-debert/appbox/pkg/logging"
	"github.com/arthur-debert/appbox/pkg/paths"
	"github.com/arthur-debert/appbox/pkg/quote"
	"github.com/arthur-debert/appbox/pkg/statestore"
	"github.com/arthur-debert/appbox/pkg/types"
	"github.com/rs/zerolog"
)

// Request identifies the package to install.
type Request struct {
	Name   string
	Source string
	// Flavor overrides format detection when non-empty.
	Flavor string
}

// Receipt describes a completed install.
type Receipt struct {
	Name       string        `json:"name"`
	Source     string        `json:"source"`
	Format     format.Format `json:"format"`
	CacheFile  string        `json:"cache_file"`
	BundlePath string        `json:"bundle_path"`
}

// Options holds the collaborators of an Installer.
type Options struct {
	Layout    paths.Layout
	FS        types.FS
	Fetcher   fetcher.Fetcher
	Extractor extractor.Extractor
	Cleaner   Cleaner
	Store     statestore.Store

	// Zero disables the corresponding timeout.
	FetchTimeout   time.Duration
	ExtractTimeout time.Duration
}

// Installer installs and uninstalls packages.
type Installer struct {
	opts   Options
	logger zerolog.Logger
}

// New creates an Installer.
func New(opts Options) *Installer {
	return &Installer{
		opts:   opts,
		logger: logging.GetLogger("installer"),
	}
}

// Install fetches, cleans, extracts and records req, in that order.
func (i *Installer) Install(ctx context.Context, req Request) (Receipt, error) {
	if req.Source == "" {
		return Receipt{}, errors.New(errors.ErrInvalidInput, "must specify a package source")
	}
	if err := paths.ValidateName(req.Name); err != nil {
		return Receipt{}, err
	}

	f, err := format.Resolve(req.Source, req.Flavor)
	if err != nil {
		return Receipt{}, err
	}

	layout := i.opts.Layout
	receipt := Receipt{
		Name:       req.Name,
		Source:     req.Source,
		Format:     f,
		CacheFile:  layout.CacheFile(req.Name, f),
		BundlePath: layout.BundlePath(req.Name),
	}

	logger := i.logger.With().Str("package", req.Name).Logger()
	done := logging.LogOperationStart(logger, "install")
	defer done()

	logger.Debug().
		Str("safe_name", quote.Quote(req.Name)).
		Str("quote_tier", quote.TierOf(req.Name).String()).
		Str("format", string(f)).
		Msg("Resolved package")

	if err := i.opts.FS.MkdirAll(layout.CacheDir, 0755); err != nil {
		code := errors.ErrFetch
		if os.IsPermission(err) {
			code = errors.ErrPermission
		}
		return receipt, errors.Wrapf(err, code, "failed to create cache directory %s", layout.CacheDir)
	}

	fetchCtx, cancel := withTimeout(ctx, i.opts.FetchTimeout)
	err = i.opts.Fetcher.Fetch(fetchCtx, req.Source, receipt.CacheFile)
	cancel()
	if err != nil {
		logger.Error().Err(err).Msg("Download failed, leaving existing install in place")
		return receipt, err
	}

	if err := i.opts.Cleaner.RemoveAll(ctx, receipt.BundlePath); err != nil {
		return receipt, err
	}

	extractCtx, cancel := withTimeout(ctx, i.opts.ExtractTimeout)
	err = i.opts.Extractor.Extract(extractCtx, receipt.CacheFile, f, layout.InstallRoot)
	cancel()
	if err != nil {
		logger.Error().Err(err).
			Str("bundle", receipt.BundlePath).
			Msg("Extraction failed after the previous bundle was removed")
		return receipt, err
	}

	if err := i.opts.Store.Put(statestore.Marker{Name: req.Name, Source: req.Source}); err != nil {
		return receipt, err
	}

	logger.Info().
		Str("source", req.Source).
		Str("bundle", receipt.BundlePath).
		Msg("Package installed")
	return receipt, nil
}

// Uninstall removes the application and its marker. Targets that are
// already gone count as success.
func (i *Installer) Uninstall(ctx context.Context, name string) error {
	if err := paths.ValidateName(name); err != nil {
		return err
	}

	layout := i.opts.Layout
	logger := i.logger.With().Str("package", name).Logger()
	done := logging.LogOperationStart(logger, "uninstall")
	defer done()

	targets := []string{layout.AppPath(name)}
	if bundle := layout.BundlePath(name); bundle != targets[0] {
		targets = append(targets, bundle)
	}
	for _, target := range targets {
		if err := i.opts.Cleaner.RemoveAll(ctx, target); err != nil {
			return err
		}
	}

	if err := i.opts.Store.Delete(name); err != nil {
		return err
	}

	logger.Info().Msg("Package uninstalled")
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

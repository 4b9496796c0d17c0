package appbox

import (
	"io"
	"net/http"

	"github.com/arthur-debert/appbox/pkg/config"
	"github.com/arthur-debert/appbox/pkg/errors"
	"github.com/arthur-debert/appbox/pkg/execution"
	"github.com/arthur-debert/appbox/pkg/extractor"
	"github.com/arthur-debert/appbox/pkg/fetcher"
	"github.com/arthur-debert/appbox/pkg/filesystem"
	"github.com/arthur-debert/appbox/pkg/installer"
	"github.com/arthur-debert/appbox/pkg/logging"
	"github.com/arthur-debert/appbox/pkg/provider"
	"github.com/arthur-debert/appbox/pkg/statestore"
	"github.com/arthur-debert/appbox/pkg/types"
	"github.com/arthur-debert/appbox/pkg/ui"
	"github.com/spf13/cobra"
)

// globalOptions holds the persistent root flags.
type globalOptions struct {
	verbosity  int
	configFile string
	dryRun     bool
	format     string
	overrides  []string
}

// runtime is everything a command needs, built from flags and config.
type runtime struct {
	cfg      *config.Config
	fs       types.FS
	store    statestore.Store
	provider *provider.Provider
	renderer ui.Renderer
	// dryRun records commands instead of executing them; nil otherwise.
	dryRun *execution.DryRunRunner
}

func (g *globalOptions) configOptions() (config.Options, error) {
	overrides, err := config.ParseOverrides(g.overrides)
	if err != nil {
		return config.Options{}, err
	}
	return config.Options{File: g.configFile, Overrides: overrides}, nil
}

// renderer builds the --format renderer writing to w.
func (g *globalOptions) renderer(w io.Writer) (ui.Renderer, error) {
	format, err := ui.ParseFormat(g.format)
	if err != nil {
		return nil, err
	}
	return ui.NewRenderer(format, w)
}

func newRuntime(cmd *cobra.Command, g *globalOptions) (*runtime, error) {
	renderer, err := g.renderer(cmd.OutOrStdout())
	if err != nil {
		return nil, err
	}

	opts, err := g.configOptions()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.GetErrorCode(err), MsgErrLoadConfig)
	}

	rt := &runtime{cfg: cfg, renderer: renderer}
	priv := cfg.ExecutionPrivilege()

	var (
		runner execution.Runner
		fetch  fetcher.Fetcher
		ext    extractor.Extractor
		clean  installer.Cleaner
	)

	if g.dryRun {
		// Nothing touches the disk: shell steps are recorded and file writes
		// land in memory.
		rt.dryRun = execution.NewDryRunRunner()
		rt.fs = filesystem.NewDryRun()
		runner = rt.dryRun
		fetch = fetcher.NewCurlFetcher(runner, cfg.Fetch.Curl)
		ext = extractor.NewCommandExtractor(runner, priv, cfg.Extract.Unzip, cfg.Extract.Tar)
		clean = installer.NewCommandCleaner(runner, priv)
	} else {
		rt.fs = filesystem.NewOS()
		runner = execution.NewShellRunner()

		switch cfg.Fetch.Backend {
		case config.BackendHTTP:
			fetch = fetcher.NewHTTPFetcher(rt.fs, &http.Client{})
		default:
			fetch = fetcher.NewCurlFetcher(runner, cfg.Fetch.Curl)
		}

		switch cfg.Extract.Backend {
		case config.BackendNative:
			ext = extractor.NewArchiveExtractor(rt.fs)
			clean = installer.NewFSCleaner(rt.fs)
		default:
			ext = extractor.NewCommandExtractor(runner, priv, cfg.Extract.Unzip, cfg.Extract.Tar)
			clean = installer.NewCommandCleaner(runner, priv)
		}
	}

	rt.store = statestore.New(rt.fs, cfg.Paths)
	inst := installer.New(installer.Options{
		Layout:         cfg.Paths,
		FS:             rt.fs,
		Fetcher:        fetch,
		Extractor:      ext,
		Cleaner:        clean,
		Store:          rt.store,
		FetchTimeout:   cfg.Fetch.Timeout,
		ExtractTimeout: cfg.Extract.Timeout,
	})
	rt.provider = provider.New(inst, rt.store)

	logger := logging.GetLogger("cmd")
	logger.Debug().
		Bool("dry_run", g.dryRun).
		Str("fetch", cfg.Fetch.Backend).
		Str("extract", cfg.Extract.Backend).
		Str("privilege", priv.String()).
		Str("install_root", cfg.Paths.InstallRoot).
		Msg("Runtime ready")
	return rt, nil
}

// commands returns the lines recorded by a dry run.
func (rt *runtime) commands() []string {
	if rt.dryRun == nil {
		return nil
	}
	return rt.dryRun.Lines()
}

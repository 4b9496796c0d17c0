package appbox

import (
	stderrors "errors"

	"github.com/arthur-debert/appbox/internal/version"
	"github.com/arthur-debert/appbox/pkg/config"
	"github.com/arthur-debert/appbox/pkg/errors"
	"github.com/arthur-debert/appbox/pkg/logging"
	"github.com/arthur-debert/appbox/pkg/manifest"
	"github.com/arthur-debert/appbox/pkg/provider"
	"github.com/arthur-debert/appbox/pkg/ui/display"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// ErrNotInstalled is returned by query for an absent package. It only sets
// the exit status; the state has already been printed.
var ErrNotInstalled = stderrors.New("package is not installed")

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "appbox",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(g.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&g.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.BoolVar(&g.dryRun, "dry-run", false, MsgFlagDryRun)
	flags.StringVar(&g.configFile, "config", "", MsgFlagConfig)
	flags.StringVar(&g.format, "format", "auto", MsgFlagFormat)
	flags.StringArrayVar(&g.overrides, "set", nil, MsgFlagSet)

	rootCmd.AddGroup(&cobra.Group{ID: "packages", Title: "Package Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "Other Commands:"})

	rootCmd.AddCommand(newInstallCmd(g))
	rootCmd.AddCommand(newUninstallCmd(g))
	rootCmd.AddCommand(newQueryCmd(g))
	rootCmd.AddCommand(newListCmd(g))
	rootCmd.AddCommand(newShowCmd(g))
	rootCmd.AddCommand(newApplyCmd(g))
	rootCmd.AddCommand(newFormatsCmd(g))
	rootCmd.AddCommand(newConfigCmd(g))
	rootCmd.AddCommand(newVersionCmd(g))
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func newInstallCmd(g *globalOptions) *cobra.Command {
	var flavor string

	cmd := &cobra.Command{
		Use:     "install NAME SOURCE",
		Short:   MsgInstallShort,
		GroupID: "packages",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd, g)
			if err != nil {
				return err
			}
			receipt, err := rt.provider.Install(cmd.Context(), provider.Resource{
				Name:   args[0],
				Source: args[1],
				Flavor: flavor,
				Ensure: provider.EnsureInstalled,
			})
			if err != nil {
				return err
			}
			return rt.renderer.RenderResult(&display.InstallResult{
				Receipt:  receipt,
				DryRun:   g.dryRun,
				Commands: rt.commands(),
			})
		},
	}
	cmd.Flags().StringVar(&flavor, "flavor", "", MsgFlagFlavor)
	_ = cmd.RegisterFlagCompletionFunc("flavor", flavorCompletion)
	return cmd
}

func newUninstallCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "uninstall NAME",
		Short:             MsgUninstallShort,
		GroupID:           "packages",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: packageNamesCompletion(g),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd, g)
			if err != nil {
				return err
			}
			if err := rt.provider.Uninstall(cmd.Context(), provider.Resource{Name: args[0]}); err != nil {
				return err
			}
			return rt.renderer.RenderResult(&display.UninstallResult{
				Name:     args[0],
				DryRun:   g.dryRun,
				Commands: rt.commands(),
			})
		},
	}
}

func newQueryCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "query NAME",
		Short:             MsgQueryShort,
		Long:              MsgQueryShort + ". Exits with status 1 when it is not.",
		GroupID:           "packages",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: packageNamesCompletion(g),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd, g)
			if err != nil {
				return err
			}
			state, installed, err := rt.provider.Query(args[0])
			if err != nil {
				return err
			}
			if err := rt.renderer.RenderResult(&display.QueryResult{State: state}); err != nil {
				return err
			}
			if !installed {
				log.Debug().Msgf(MsgNotInstalledFormat, args[0])
				return ErrNotInstalled
			}
			return nil
		},
	}
}

func newListCmd(g *globalOptions) *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:     "list",
		Short:   MsgListShort,
		GroupID: "packages",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd, g)
			if err != nil {
				return err
			}
			states, err := rt.provider.Instances()
			if err != nil {
				return err
			}
			if long {
				for i := range states {
					if state, _, err := rt.provider.Query(states[i].Name); err == nil {
						states[i].Source = state.Source
					}
				}
			}
			return rt.renderer.RenderResult(&display.ListResult{Packages: states, Long: long})
		},
	}
	cmd.Flags().BoolVarP(&long, "long", "l", false, MsgFlagLong)
	return cmd
}

func newShowCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "show NAME",
		Short:             MsgShowShort,
		GroupID:           "packages",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: packageNamesCompletion(g),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd, g)
			if err != nil {
				return err
			}
			m, err := rt.store.Get(args[0])
			if err != nil {
				return err
			}
			return rt.renderer.RenderResult(&display.ShowResult{
				Marker: m,
				Path:   rt.cfg.Paths.MarkerPath(args[0]),
			})
		},
	}
}

func newApplyCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "apply MANIFEST",
		Short:   MsgApplyShort,
		Long:    MsgApplyLong,
		GroupID: "packages",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd, g)
			if err != nil {
				return err
			}
			resources, err := manifest.Load(rt.fs, args[0])
			if err != nil {
				return err
			}

			result := display.NewApplyResult(args[0], rt.provider.Apply(cmd.Context(), resources), g.dryRun)
			result.Commands = rt.commands()
			if err := rt.renderer.RenderResult(result); err != nil {
				return err
			}
			if failed := result.Failed(); failed > 0 {
				return errors.Newf(errors.ErrCommand, MsgApplyFailedFormat, failed, len(result.Items))
			}
			return nil
		},
	}
}

func newFormatsCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "formats",
		Short:   MsgFormatsShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd, g)
			if err != nil {
				return err
			}
			return rt.renderer.RenderResult(display.NewFormatsResult())
		},
	}
}

func newConfigCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := g.configOptions()
			if err != nil {
				return err
			}
			k, err := config.Koanf(opts)
			if err != nil {
				return err
			}
			out, err := k.Marshal(toml.Parser())
			if err != nil {
				return errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func newVersionCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := g.renderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return renderer.RenderMessage(version.String())
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

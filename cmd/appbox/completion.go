package appbox

import (
	"github.com/arthur-debert/appbox/pkg/config"
	"github.com/arthur-debert/appbox/pkg/filesystem"
	"github.com/arthur-debert/appbox/pkg/format"
	"github.com/arthur-debert/appbox/pkg/statestore"
	"github.com/spf13/cobra"
)

// packageNamesCompletion completes installed package names.
func packageNamesCompletion(g *globalOptions) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		opts, err := g.configOptions()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		cfg, err := config.Load(opts)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		names, err := statestore.New(filesystem.NewOS(), cfg.Paths).List()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}

func flavorCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	flavors := make([]string, 0, len(format.All()))
	for _, f := range format.All() {
		flavors = append(flavors, string(f))
	}
	return flavors, cobra.ShellCompDirectiveNoFileComp
}

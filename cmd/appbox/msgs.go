package appbox

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Install application bundles from compressed archives"
	MsgInstallShort    = "Download and install a package"
	MsgUninstallShort  = "Remove an installed package"
	MsgQueryShort      = "Report whether a package is installed"
	MsgListShort       = "List installed packages"
	MsgShowShort       = "Show the installed marker of a package"
	MsgApplyShort      = "Converge the packages declared in a manifest"
	MsgFormatsShort    = "List supported archive flavors"
	MsgConfigShort     = "Print the effective configuration"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgNotInstalledFormat = "package %q is not installed"
	MsgApplyFailedFormat  = "%d of %d packages failed"

	// Error messages
	MsgErrLoadConfig = "failed to load configuration"
	MsgErrNoCommand  = "no command specified"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun  = "Print the commands that would run without changing anything"
	MsgFlagConfig  = "Config file (TOML or YAML, default $XDG_CONFIG_HOME/appbox/config.toml)"
	MsgFlagFormat  = "Output format: auto, term, text or json"
	MsgFlagSet     = "Override a configuration key (key=value, repeatable)"
	MsgFlagFlavor  = "Archive flavor, overriding detection from the source suffix"
	MsgFlagLong    = "Include the recorded source of each package"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/apply-long.txt
	msgApplyLongRaw string
	MsgApplyLong    = strings.TrimSpace(msgApplyLongRaw)
)

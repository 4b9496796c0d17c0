package appbox

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/arthur-debert/appbox/pkg/ui"
	"github.com/arthur-debert/appbox/pkg/ui/styles"
	"github.com/spf13/cobra"
)

// Execute runs the CLI with args and returns the process exit status.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case stderrors.Is(err, ErrNotInstalled):
		return 1
	}

	reportError(rootCmd, err, stderr)
	return 1
}

// reportError writes err to stderr in the --format the user asked for. When
// that format is itself the problem, a styled text line is printed instead.
func reportError(rootCmd *cobra.Command, err error, stderr io.Writer) {
	name, _ := rootCmd.PersistentFlags().GetString("format")
	if format, perr := ui.ParseFormat(name); perr == nil {
		if renderer, rerr := ui.NewRenderer(format, stderr); rerr == nil {
			if renderer.RenderError(err) == nil {
				return
			}
		}
	}
	_, _ = fmt.Fprintln(stderr, styles.GetStyle("Error").Render(fmt.Sprintf("Error: %v", err)))
}

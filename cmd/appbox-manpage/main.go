// Command appbox-manpage writes the appbox man page to stdout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/appbox/cmd/appbox"
	"github.com/arthur-debert/appbox/internal/version"
)

func main() {
	header := &doc.GenManHeader{
		Title:   "APPBOX",
		Section: "8",
		Source:  "appbox " + version.Version,
		Manual:  "appbox manual",
	}

	if err := doc.GenMan(appbox.NewRootCmd(), header, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}

// Command kinesis renders and serves kinesis demo components.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	kerrors "github.com/kinesis-dev/kinesis/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		kerrors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kinesis",
		Short: "Fine-grained fragment rendering for Go",
		Long: `kinesis renders components as fragments of host nodes and updates
only the parts that depend on what changed.

  render   mount a component, fire events and print the resulting HTML
  serve    stream live components to the browser over WebSocket`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		renderCmd(),
		serveCmd(),
		versionCmd(),
	)
	return rootCmd
}

// success prints a success message.
func success(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

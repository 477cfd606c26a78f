// Package cmd holds mq's cobra command tree, grounded directly on the
// teacher's cmd/dwscript/cmd package: a package-level rootCmd, one file
// per subcommand, flags wired in each file's own init().
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version is set by build flags (-ldflags "-X ...Version=...").
	Version = "0.1.0-dev"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "mq",
	Short: "mq is a jq-like query and transformation language for Markdown",
	Long: `mq runs small programs that select, filter, and transform Markdown
documents, piping a stream of values through selectors and built-in
functions the way jq does for JSON.`,
	Version: Version,
}

var searchPaths []string

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("mq version %%s\nCommit: %s\n", GitCommit))
	rootCmd.PersistentFlags().StringSliceVar(&searchPaths, "path", nil, "module search path for include/import (repeatable)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mqlang/mq/pkg/mqengine"
)

var checkEvalExpr string

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Type-check an mq program without running it",
	Long: `Resolve symbol references and run type inference over an mq program,
reporting every diagnostic found. Type errors are reported but never stop
execution when a program is actually run (mq is dynamically typed at
runtime); this command exists to surface them ahead of time.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&checkEvalExpr, "eval", "e", "", "check inline code instead of reading from file")
}

func runCheck(cmd *cobra.Command, args []string) error {
	source, err := readInput(checkEvalExpr, args)
	if err != nil {
		return err
	}

	e := mqengine.New(mqengine.WithSearchPaths(searchPaths...))
	result, err := e.CheckTypes(source)
	if err != nil {
		return fmt.Errorf("parsing: %w", err)
	}

	for _, d := range result.Diagnostics {
		fmt.Printf("%s: %s\n", d.Kind, d.Message)
	}
	for _, te := range result.TypeErrors {
		fmt.Printf("%s: %s\n", te.Kind, te.Message)
	}

	if len(result.Diagnostics) > 0 || len(result.TypeErrors) > 0 {
		return fmt.Errorf("found %d diagnostic(s), %d type error(s)", len(result.Diagnostics), len(result.TypeErrors))
	}
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mqlang/mq/pkg/mqengine"
	"github.com/mqlang/mq/pkg/value"
)

var (
	runEvalExpr    string
	runInputFormat string
	runUseCompiler bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run an mq program against stdin, a file, or inline code",
	Long: `Run an mq program, reading the program itself from a file, from
stdin, or from -e/--eval, and feeding it one input value built from
--input-format.

--input-format accepts: raw, text, null. (markdown/mdx/html conversion is
left to the caller per spec.md §6 — this CLI only demonstrates the
Iterator<RuntimeValue> input contract with formats pkg/mdast can already
represent without an external Markdown parser.)`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runEvalExpr, "eval", "e", "", "evaluate inline code instead of reading a program file")
	runCmd.Flags().StringVar(&runInputFormat, "input-format", "null", "input value format: raw, text, null")
	runCmd.Flags().BoolVar(&runUseCompiler, "compiler", false, "evaluate through the compiled closure path instead of tree-walking")
}

func runRun(cmd *cobra.Command, args []string) error {
	source, err := readInput(runEvalExpr, args)
	if err != nil {
		return err
	}

	inputs, err := buildInputs(runInputFormat)
	if err != nil {
		return err
	}

	e := mqengine.New(mqengine.WithSearchPaths(searchPaths...), mqengine.WithCompiler(runUseCompiler))
	results, err := e.Eval(source, inputs)
	if err != nil {
		return fmt.Errorf("evaluating: %w", err)
	}
	for _, r := range results {
		fmt.Println(r.String())
	}
	return nil
}

// buildInputs constructs the program's inputs from --input-format. "raw"
// and "text" both read stdin as one whole string value, mirroring how a
// shell pipeline would hand jq a single JSON document; "null" runs the
// program once against `none`, the Engine's own default when inputs is
// empty.
func buildInputs(format string) ([]value.Value, error) {
	switch format {
	case "null", "":
		return nil, nil
	case "raw", "text":
		content, err := readInput("", nil)
		if err != nil {
			return nil, err
		}
		return []value.Value{value.String(content)}, nil
	default:
		return nil, fmt.Errorf("unsupported --input-format %q (want raw, text, or null)", format)
	}
}

package cmd

import (
	"fmt"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/mqlang/mq/pkg/mqengine"
)

var (
	parseEvalExpr string
	parseDumpAST  bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse an mq program and print its AST",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseEvalExpr, "eval", "e", "", "parse inline code instead of reading from file")
	parseCmd.Flags().BoolVar(&parseDumpAST, "dump-ast", false, "print the full node tree instead of one line per top-level statement")
}

func runParse(cmd *cobra.Command, args []string) error {
	source, err := readInput(parseEvalExpr, args)
	if err != nil {
		return err
	}

	e := mqengine.New()
	nodes, perrs := e.Parse(source)
	for _, pe := range perrs {
		fmt.Println("error:", pe.Error())
	}

	for _, n := range nodes {
		if parseDumpAST {
			pretty.Println(n)
			continue
		}
		fmt.Printf("%# v\n", pretty.Formatter(n.Expr))
	}

	if len(perrs) > 0 {
		return fmt.Errorf("found %d parse error(s)", len(perrs))
	}
	return nil
}

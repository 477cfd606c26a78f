package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mqlang/mq/pkg/mqengine"
)

var tokenizeEvalExpr string

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [file]",
	Short: "Lex an mq program and print its token stream",
	Long: `Tokenize an mq program and print the resulting tokens, one per line.

The lexer never stops at the first illegal token; it keeps scanning, so
every lexical error for the whole source is printed, not just the first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokenize,
}

func init() {
	rootCmd.AddCommand(tokenizeCmd)
	tokenizeCmd.Flags().StringVarP(&tokenizeEvalExpr, "eval", "e", "", "tokenize inline code instead of reading from file")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	source, err := readInput(tokenizeEvalExpr, args)
	if err != nil {
		return err
	}

	e := mqengine.New()
	toks, lexErrs := e.Tokenize(source)
	for _, tok := range toks {
		fmt.Println(tok.String())
	}
	for _, le := range lexErrs {
		fmt.Println("error:", le.Error())
	}
	if len(lexErrs) > 0 {
		return fmt.Errorf("found %d lexical error(s)", len(lexErrs))
	}
	return nil
}

package cmd

import (
	"fmt"
	"io"
	"os"
)

// readInput resolves a subcommand's source: an inline -e/--eval string
// takes priority, then a file argument, then stdin — the same
// file-or-inline precedence the teacher's runScript/lexScript use.
func readInput(inline string, args []string) (string, error) {
	if inline != "" {
		return inline, nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(content), nil
	}
	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(content), nil
}

// Command mq is a thin driver over pkg/mqengine's Engine API: CLI flag
// plumbing is out of scope for this module (see SPEC_FULL.md's Non-goals),
// so this exists only to give the Engine a runnable front end.
package main

import (
	"fmt"
	"os"

	"github.com/mqlang/mq/cmd/mq/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Command axondemo runs small, inspectable scenarios against the axon
// actor runtime. It is a demonstration harness, not part of the core
// library (spec.md §6: "the whole core is a library API" with no CLI of
// its own) — the analogue of Theron's Samples/ directory, exercised
// here through spf13/cobra the way the pack's own CLI tools are.
package main

import (
	"fmt"
	"os"

	"github.com/quadgatefoundation/axon/cmd/axondemo/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

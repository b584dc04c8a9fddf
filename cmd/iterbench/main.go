// Command iterbench drives a synthetic dataset through a prefetch engine
// and an optional split, and reports what every partition delivered.
package main

import (
	"fmt"
	"os"

	"github.com/kbukum/iterkit/cmd/iterbench/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

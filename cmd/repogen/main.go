// Command repogen generates typed Go repositories from a data-model schema.
package main

import (
	"fmt"
	"os"

	"github.com/syssam/repogen/cmd/repogen/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

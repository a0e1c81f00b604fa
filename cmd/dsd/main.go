// Package main is the entry point for the drug safety dashboard.
// It initializes configuration, services, and runs the Bubble Tea program
// or one of the headless report commands.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

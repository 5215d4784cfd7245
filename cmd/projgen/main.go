// Package main is the entry point for the projgen CLI.
package main

import (
	"fmt"
	"os"

	"github.com/thoreinstein/projgen/cmd/projgen/commands"
	"github.com/thoreinstein/projgen/internal/errors"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var exitErr *errors.ExitError
		if errors.As(err, &exitErr) && exitErr.Suggestion != "" {
			fmt.Fprintln(os.Stderr, exitErr.Suggestion)
		}
		os.Exit(errors.ExitCode(err))
	}
}

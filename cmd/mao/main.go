// Package main is the mao command line.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/mao/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitCode(err))
	}
}

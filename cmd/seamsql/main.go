// Package main provides the seamsql CLI.
package main

import (
	"os"

	"github.com/seamsql/seamsql/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

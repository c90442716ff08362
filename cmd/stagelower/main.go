// Package main is the entry point for the stagelower binary.
package main

import (
	"os"

	"stagelower/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}

// Package main is the entry point for the conformrun CLI.
package main

import (
	"os"

	"github.com/AndreyAkinshin/conformrun/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}

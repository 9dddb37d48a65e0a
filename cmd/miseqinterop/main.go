package main

import (
	"os"

	"github.com/miseqtools/miseqinterop/internal/cli"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(cli.Run(os.Args[1:], version, os.Stdout, os.Stderr))
}

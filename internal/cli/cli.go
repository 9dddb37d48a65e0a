// Package cli implements the miseq-interop command surface: run validation,
// metric extraction, QC summaries, run discovery, watching, serving, and the
// release procedure for the companion Python package.
package cli

import (
	"fmt"
	"io"

	"github.com/miseqtools/miseqinterop/internal/config"
)

// Run dispatches the subcommand and returns the process exit code.
func Run(args []string, version string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		PrintUsage(stdout)
		return 2
	}
	cmd := args[0]
	rest := args[1:]

	switch cmd {
	case "validate":
		return cmdValidate(rest, stdout, stderr)
	case "info":
		return cmdInfo(rest, stdout, stderr)
	case "list":
		return cmdList(rest, stdout, stderr)
	case "extract":
		return cmdExtract(rest, stdout, stderr)
	case "summary":
		return cmdSummary(rest, stdout, stderr)
	case "watch":
		return cmdWatch(rest, stdout, stderr)
	case "serve":
		return cmdServe(rest, stdout, stderr)
	case "browse":
		return cmdBrowse(rest, stdout, stderr)
	case "publish":
		return cmdPublish(rest, stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "miseq-interop %s\n", version)
		return 0
	case "help", "--help", "-h":
		PrintUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "miseq-interop: unknown command %q\n", cmd)
		PrintUsage(stderr)
		return 2
	}
}

// PrintUsage displays the help text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, `miseq-interop: Illumina MiSeq InterOp metrics toolkit

Run inspection:
  miseq-interop validate <run-dir>             check run directory structure
  miseq-interop info <run-dir>                 show run facts and metrics
  miseq-interop list <runs-dir>                list valid run directories
  miseq-interop extract <run-dir> [flags]      export metric records (json/csv)
  miseq-interop summary <run-dir> [flags]      QC rollups (density, Q30, errors)

Long-running:
  miseq-interop watch [runs-dir]               report processing-state changes
  miseq-interop serve [flags]                  HTTP API over the runs directory
  miseq-interop browse [runs-dir]              interactive run browser

Release:
  miseq-interop publish                        build and upload the Python package

  miseq-interop version
  miseq-interop help

Configuration is read from miseqinterop.yaml in the working directory, or the
file named by MISEQINTEROP_CONFIG.
`)
}

// loadConfig resolves the effective configuration for commands that take a
// -config flag.
func loadConfig(path string) (config.Config, error) {
	return config.Load(path)
}

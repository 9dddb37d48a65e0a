package cli

import (
	"flag"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/miseqtools/miseqinterop/internal/run"
)

// cmdList prints the valid run directories under a runs directory, with
// optional marker and name filters.
func cmdList(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	needsProcessing := fs.Bool("needs-processing", false, "only show runs that need processing")
	qcUploaded := fs.Bool("qc-uploaded", false, "only show runs with QC uploaded")
	pattern := fs.String("pattern", "", "filter runs by name pattern (regexp)")
	fullPath := fs.Bool("full-path", false, "show full paths instead of run names")
	verbose := fs.Bool("v", false, "show status information per run")
	configPath := fs.String("config", "", "path to miseqinterop.yaml")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	runsDir := ""
	switch fs.NArg() {
	case 0:
		cfg, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		if cfg.RunsDir == "" {
			fmt.Fprintln(stderr, "Usage: miseq-interop list <runs-dir> (or set runs_dir in miseqinterop.yaml)")
			return 2
		}
		runsDir = cfg.RunsDir
	case 1:
		runsDir = fs.Arg(0)
	default:
		fmt.Fprintln(stderr, "Usage: miseq-interop list <runs-dir>")
		return 2
	}

	filter := run.Filter{NeedsProcessing: *needsProcessing, QCUploaded: *qcUploaded}
	if *pattern != "" {
		re, err := regexp.Compile(*pattern)
		if err != nil {
			fmt.Fprintf(stderr, "Error: invalid pattern: %v\n", err)
			return 1
		}
		filter.Pattern = re
	}

	runs, err := run.Discover(runsDir, filter)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if len(runs) == 0 {
		fmt.Fprintln(stdout, "No runs found matching criteria")
		return 0
	}

	if *verbose {
		fmt.Fprintf(stdout, "Found %d run(s):\n\n", len(runs))
		for _, r := range runs {
			display := r.Name
			if *fullPath {
				display = r.Dir
			}
			var status []string
			if r.NeedsProcessing {
				status = append(status, "needs-processing")
			}
			if r.QCUploaded {
				status = append(status, "qc-uploaded")
			}
			line := "no markers"
			if len(status) > 0 {
				line = strings.Join(status, ", ")
			}
			fmt.Fprintf(stdout, "%s\n  Status: %s\n\n", display, line)
		}
		return 0
	}

	for _, r := range runs {
		if *fullPath {
			fmt.Fprintln(stdout, r.Dir)
		} else {
			fmt.Fprintln(stdout, r.Name)
		}
	}
	return 0
}

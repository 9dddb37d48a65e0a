package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/miseqtools/miseqinterop/internal/run"
)

// cmdValidate checks a run directory's structure and reports which metric
// files are present. Structural problems or a run with no metrics at all
// exit 1.
func cmdValidate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "verbose output")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Usage: miseq-interop validate <run-dir>")
		return 2
	}
	runDir := fs.Arg(0)

	info, err := os.Stat(runDir)
	if err != nil {
		fmt.Fprintf(stderr, "✗ Run directory does not exist: %s\n", runDir)
		return 1
	}
	if !info.IsDir() {
		fmt.Fprintf(stderr, "✗ Path is not a directory: %s\n", runDir)
		return 1
	}
	fmt.Fprintf(stdout, "✓ Run directory exists: %s\n", filepath.Base(filepath.Clean(runDir)))

	brokenStructure := false

	interopDir := filepath.Join(runDir, run.InterOpDirName)
	if info, err := os.Stat(interopDir); err == nil && info.IsDir() {
		fmt.Fprintln(stdout, "✓ InterOp directory found")
	} else {
		fmt.Fprintln(stderr, "✗ InterOp directory not found")
		brokenStructure = true
	}

	if _, err := os.Stat(filepath.Join(runDir, run.SampleSheetName)); err == nil {
		fmt.Fprintf(stdout, "✓ %s found\n", run.SampleSheetName)
	} else {
		fmt.Fprintf(stderr, "✗ %s not found\n", run.SampleSheetName)
		brokenStructure = true
	}

	for _, marker := range []string{run.NeedsProcessingMarker, run.QCUploadedMarker} {
		if _, err := os.Stat(filepath.Join(runDir, marker)); err == nil {
			fmt.Fprintf(stdout, "✓ Marker: %s\n", marker)
		} else {
			fmt.Fprintf(stdout, "  Marker: %s (not present)\n", marker)
		}
	}

	if brokenStructure {
		return 1
	}

	r, err := run.Open(runDir)
	if err != nil {
		fmt.Fprintf(stderr, "\n✗ Failed to open run directory: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, "\nAvailable metrics:")
	available := 0
	for _, metric := range run.AllMetrics {
		if path, err := r.MetricPath(metric); err == nil {
			fmt.Fprintf(stdout, "✓ %s\n", metric)
			available++
			if *verbose {
				fmt.Fprintf(stdout, "  -> %s\n", filepath.Base(path))
			}
		} else {
			fmt.Fprintf(stdout, "✗ %s (missing)\n", metric)
		}
	}
	fmt.Fprintf(stdout, "\nSummary: %d/%d metrics available\n", available, len(run.AllMetrics))

	if available == 0 {
		fmt.Fprintln(stderr, "\n✗ No metrics found in InterOp directory")
		return 1
	}

	fmt.Fprintln(stdout, "\n✓ Run directory is valid and ready for analysis")
	return 0
}

package cli

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/miseqtools/miseqinterop/internal/format"
	"github.com/miseqtools/miseqinterop/internal/run"
)

// cmdInfo prints the one-screen facts about a run directory.
func cmdInfo(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Usage: miseq-interop info <run-dir>")
		return 2
	}

	r, err := run.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	metrics := r.AvailableMetrics()
	names := make([]string, len(metrics))
	for i, m := range metrics {
		names[i] = string(m)
	}

	pairs := []format.KV{
		{Key: "run_name", Value: r.Name},
		{Key: "path", Value: r.Dir},
		{Key: "needs_processing", Value: strconv.FormatBool(r.NeedsProcessing)},
		{Key: "qc_uploaded", Value: strconv.FormatBool(r.QCUploaded)},
		{Key: "metrics", Value: strings.Join(names, ", ")},
	}
	if err := format.KeyValueTable(stdout, pairs); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

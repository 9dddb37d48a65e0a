package cli

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/miseqtools/miseqinterop/internal/format"
	"github.com/miseqtools/miseqinterop/internal/run"
)

// extractPayload is the JSON envelope around one metric's records.
type extractPayload struct {
	RunName     string     `json:"run_name"`
	Metric      run.Metric `json:"metric"`
	RecordCount int        `json:"record_count"`
	Records     any        `json:"records"`
}

// cmdExtract exports metric records as JSON, CSV, or an aligned table.
func cmdExtract(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(stderr)
	metricNames := fs.String("metrics", "", "comma-separated metrics to extract")
	all := fs.Bool("all", false, "extract all available metrics")
	outFormat := fs.String("format", "json", "output format: json, csv, or table")
	output := fs.String("o", "", "output file (single metric) or directory (multiple)")
	verbose := fs.Bool("v", false, "verbose output")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Usage: miseq-interop extract <run-dir> [flags]")
		return 2
	}
	if *outFormat != "json" && *outFormat != "csv" && *outFormat != "table" {
		fmt.Fprintf(stderr, "Error: unknown format %q (json, csv, or table)\n", *outFormat)
		return 2
	}

	r, err := run.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to read run directory: %v\n", err)
		return 1
	}

	var metrics []run.Metric
	switch {
	case *all:
		for _, metric := range run.AllMetrics {
			if !metric.Decodable() {
				continue
			}
			if !r.HasMetric(metric) {
				if *verbose {
					fmt.Fprintf(stdout, "Skipping %s (not found)\n", metric)
				}
				continue
			}
			metrics = append(metrics, metric)
		}
	case *metricNames != "":
		for _, name := range strings.Split(*metricNames, ",") {
			metric, err := run.ParseMetric(name)
			if err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return 1
			}
			if !metric.Decodable() {
				fmt.Fprintf(stdout, "Warning: skipping %s (no decoder available)\n", metric)
				continue
			}
			if !r.HasMetric(metric) {
				fmt.Fprintf(stderr, "Error: %s file not found in %s\n", metric, r.InterOpDir)
				return 1
			}
			metrics = append(metrics, metric)
		}
	default:
		fmt.Fprintln(stderr, "Error: must specify --metrics or --all")
		return 1
	}

	if len(metrics) == 0 {
		fmt.Fprintln(stderr, "Error: no metrics to extract")
		return 1
	}
	if len(metrics) > 1 && *output == "" {
		fmt.Fprintln(stderr, "Error: output path required when extracting multiple metrics")
		return 1
	}

	for _, metric := range metrics {
		if *verbose {
			fmt.Fprintf(stdout, "Extracting %s...\n", metric)
		}
		data, err := r.ReadMetric(metric)
		if err != nil {
			fmt.Fprintf(stderr, "Error extracting %s: %v\n", metric, err)
			return 1
		}
		if data.Count == 0 && *verbose {
			fmt.Fprintf(stdout, "  Warning: no records found for %s\n", metric)
		}

		path := metricOutputPath(metrics, metric, *output, *outFormat)
		if err := writeExtract(stdout, path, *outFormat, r.Name, data); err != nil {
			fmt.Fprintf(stderr, "Error extracting %s: %v\n", metric, err)
			return 1
		}
		if *verbose && path != "" {
			fmt.Fprintf(stdout, "  Saved to %s (%d records)\n", path, data.Count)
		}
	}

	if !*verbose {
		fmt.Fprintf(stdout, "Extracted %d metric(s)\n", len(metrics))
	}
	return 0
}

// metricOutputPath decides where one metric's output lands. Empty means
// stdout (single metric, no -o).
func metricOutputPath(metrics []run.Metric, metric run.Metric, output, outFormat string) string {
	if len(metrics) == 1 {
		return output
	}
	ext := outFormat
	if ext == "table" {
		ext = "txt"
	}
	name := strings.ToLower(string(metric)) + "." + ext
	return filepath.Join(output, name)
}

func writeExtract(stdout io.Writer, path, outFormat, runName string, data *run.MetricData) error {
	var w io.Writer = stdout
	if path != "" {
		f, err := format.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	switch outFormat {
	case "csv":
		return format.CSV(w, data.Columns, data.Rows)
	case "table":
		return format.RowTable(w, data.Columns, data.Rows)
	}
	return format.JSON(w, extractPayload{
		RunName:     runName,
		Metric:      data.Metric,
		RecordCount: data.Count,
		Records:     data.Records,
	})
}

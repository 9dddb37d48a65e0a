package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/miseqtools/miseqinterop/internal/format"
	"github.com/miseqtools/miseqinterop/internal/interop"
	"github.com/miseqtools/miseqinterop/internal/run"
	"github.com/miseqtools/miseqinterop/internal/summary"
)

type summaryReport struct {
	RunName string                  `json:"run_name"`
	Tiles   *summary.TileSummary    `json:"tiles,omitempty"`
	Quality *summary.QualitySummary `json:"quality,omitempty"`
	Errors  *summary.ErrorSummary   `json:"errors,omitempty"`
	Missing []run.Metric            `json:"missing,omitempty"`
}

// cmdSummary aggregates tile, quality and error metrics for a run.
func cmdSummary(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	fs.SetOutput(stderr)
	tiles := fs.Bool("tiles", false, "summarize tile metrics")
	quality := fs.Bool("quality", false, "summarize quality metrics")
	errorsFlag := fs.Bool("errors", false, "summarize error metrics")
	all := fs.Bool("all", false, "summarize everything available")
	readLengths := fs.String("read-lengths", "", "comma-separated read lengths, e.g. 150,8,150")
	outFormat := fs.String("format", "table", "output format: table, json or csv")
	output := fs.String("o", "", "output file")
	configPath := fs.String("config", "", "config file path")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Usage: miseq-interop summary <run-dir> [flags]")
		return 2
	}
	switch *outFormat {
	case "table", "json", "csv":
	default:
		fmt.Fprintf(stderr, "Error: unknown format %q (table, json or csv)\n", *outFormat)
		return 2
	}
	if !*tiles && !*quality && !*errorsFlag {
		*all = true
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	lengths := cfg.DefaultReadLengths()
	if *readLengths != "" {
		rl, err := summary.ParseReadLengths(*readLengths)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		lengths = &rl
	}

	r, err := run.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to read run directory: %v\n", err)
		return 1
	}

	report := summaryReport{RunName: r.Name}
	if *all || *tiles {
		records, ok, err := readTileRecords(r)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		if ok {
			s := summary.SummarizeTiles(records)
			report.Tiles = &s
		} else {
			report.Missing = append(report.Missing, run.MetricTile)
		}
	}
	if *all || *quality {
		records, ok, err := readQualityRecords(r)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		if ok {
			s := summary.SummarizeQuality(records, lengths)
			report.Quality = &s
		} else {
			report.Missing = append(report.Missing, run.MetricQuality)
		}
	}
	if *all || *errorsFlag {
		records, ok, err := readErrorRecords(r)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		if ok {
			s := summary.SummarizeErrors(records, lengths)
			report.Errors = &s
		} else {
			report.Missing = append(report.Missing, run.MetricError)
		}
	}

	w := stdout
	if *output != "" {
		f, err := format.Create(*output)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer f.Close()
		w = f
	}

	if err := writeSummary(w, *outFormat, &report); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func writeSummary(w io.Writer, outFormat string, report *summaryReport) error {
	switch outFormat {
	case "json":
		return format.JSON(w, report)
	case "csv":
		return format.CSV(w, []string{"section", "field", "value"}, summaryRows(report))
	default:
		printSummaryTables(w, report)
		return nil
	}
}

func summaryRows(report *summaryReport) [][]string {
	var rows [][]string
	add := func(section, field string, value float64) {
		rows = append(rows, []string{section, field, strconv.FormatFloat(value, 'g', -1, 64)})
	}
	if t := report.Tiles; t != nil {
		add("tiles", "cluster_density", t.ClusterDensity())
		add("tiles", "pass_rate", t.PassRate())
		add("tiles", "total_clusters", t.TotalClusters)
		add("tiles", "passing_clusters", t.PassingClusters)
	}
	if q := report.Quality; q != nil {
		add("quality", "q30_forward", q.Q30Forward())
		add("quality", "q30_reverse", q.Q30Reverse())
	}
	if e := report.Errors; e != nil {
		add("errors", "error_rate_forward", e.RateForward())
		add("errors", "error_rate_reverse", e.RateReverse())
	}
	return rows
}

func printSummaryTables(w io.Writer, report *summaryReport) {
	fmt.Fprintf(w, "Run: %s\n", report.RunName)
	if t := report.Tiles; t != nil {
		fmt.Fprintln(w)
		format.KeyValueTable(w, []format.KV{
			{Key: "cluster_density", Value: fmt.Sprintf("%.1f K/mm2", t.ClusterDensity())},
			{Key: "pass_rate", Value: fmt.Sprintf("%.2f%%", t.PassRate()*100)},
			{Key: "total_clusters", Value: fmt.Sprintf("%.0f", t.TotalClusters)},
			{Key: "passing_clusters", Value: fmt.Sprintf("%.0f", t.PassingClusters)},
		})
	}
	if q := report.Quality; q != nil {
		fmt.Fprintln(w)
		format.KeyValueTable(w, []format.KV{
			{Key: "q30_forward", Value: fmt.Sprintf("%.2f%%", q.Q30Forward()*100)},
			{Key: "q30_reverse", Value: fmt.Sprintf("%.2f%%", q.Q30Reverse()*100)},
		})
	}
	if e := report.Errors; e != nil {
		fmt.Fprintln(w)
		format.KeyValueTable(w, []format.KV{
			{Key: "error_rate_forward", Value: fmt.Sprintf("%.4f", e.RateForward())},
			{Key: "error_rate_reverse", Value: fmt.Sprintf("%.4f", e.RateReverse())},
		})
	}
	for _, metric := range report.Missing {
		fmt.Fprintf(w, "\n%s: not found\n", metric)
	}
}

func readTileRecords(r *run.Run) ([]interop.TileRecord, bool, error) {
	path, err := r.MetricPath(run.MetricTile)
	if err != nil {
		return nil, false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()
	records, err := interop.ReadTiles(f)
	if err != nil {
		return nil, false, err
	}
	return records, true, nil
}

func readQualityRecords(r *run.Run) ([]interop.QualityRecord, bool, error) {
	path, err := r.MetricPath(run.MetricQuality)
	if err != nil {
		return nil, false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()
	records, err := interop.ReadQuality(f)
	if err != nil {
		return nil, false, err
	}
	return records, true, nil
}

func readErrorRecords(r *run.Run) ([]interop.ErrorRecord, bool, error) {
	path, err := r.MetricPath(run.MetricError)
	if err != nil {
		return nil, false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()
	records, err := interop.ReadErrors(f)
	if err != nil {
		return nil, false, err
	}
	return records, true, nil
}

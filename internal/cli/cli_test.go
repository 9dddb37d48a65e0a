package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/miseqtools/miseqinterop/internal/interop"
	"github.com/miseqtools/miseqinterop/internal/interop/interoptest"
	"github.com/miseqtools/miseqinterop/internal/run"
)

// makeRunDir builds a valid run directory under parent.
func makeRunDir(t *testing.T, parent, name string, markers ...string) string {
	t.Helper()
	dir := filepath.Join(parent, name)
	if err := os.MkdirAll(filepath.Join(dir, run.InterOpDirName), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, run.SampleSheetName), []byte("[Header]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	for _, marker := range markers {
		if err := os.WriteFile(filepath.Join(dir, marker), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func writeTileMetrics(t *testing.T, runDir string) {
	t.Helper()
	data := interoptest.TileFile(
		interop.TileRecord{Lane: 1, Tile: 1101, MetricCode: interop.MetricCodeClusterDensity, MetricValue: 1000},
		interop.TileRecord{Lane: 1, Tile: 1101, MetricCode: interop.MetricCodeClusterCount, MetricValue: 1000},
		interop.TileRecord{Lane: 1, Tile: 1101, MetricCode: interop.MetricCodeClusterCountPF, MetricValue: 900},
	)
	path := filepath.Join(runDir, run.InterOpDirName, "TileMetricsOut.bin")
	if err := interoptest.WriteFile(path, data); err != nil {
		t.Fatal(err)
	}
}

func writeErrorMetrics(t *testing.T, runDir string) {
	t.Helper()
	data := interoptest.ErrorFile(
		interop.ErrorRecord{Lane: 1, Tile: 1101, Cycle: 1, ErrorRate: 1},
		interop.ErrorRecord{Lane: 1, Tile: 1101, Cycle: 2, ErrorRate: 3},
	)
	path := filepath.Join(runDir, run.InterOpDirName, "ErrorMetricsOut.bin")
	if err := interoptest.WriteFile(path, data); err != nil {
		t.Fatal(err)
	}
}

func runCLI(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = Run(args, "test", &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRunUnknownCommand(t *testing.T) {
	code, _, stderr := runCLI("frobnicate")
	if code != 2 {
		t.Errorf("exit = %d, want 2", code)
	}
	if !strings.Contains(stderr, `unknown command "frobnicate"`) {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRunVersion(t *testing.T) {
	code, stdout, _ := runCLI("version")
	if code != 0 {
		t.Errorf("exit = %d", code)
	}
	if !strings.Contains(stdout, "miseq-interop test") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestValidate(t *testing.T) {
	dir := makeRunDir(t, t.TempDir(), "160101_M01234_0001_A", run.NeedsProcessingMarker)
	writeTileMetrics(t, dir)

	code, stdout, _ := runCLI("validate", dir)
	if code != 0 {
		t.Fatalf("exit = %d, stdout %q", code, stdout)
	}
	for _, want := range []string{
		"✓ Run directory exists",
		"✓ InterOp directory found",
		"✓ SampleSheet.csv found",
		"✓ Marker: needsprocessing",
		"✓ TILE_METRICS",
		"Summary: 1/11 metrics available",
		"✓ Run directory is valid and ready for analysis",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestValidateBrokenStructure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "broken")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	code, _, stderr := runCLI("validate", dir)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(stderr, "✗ InterOp directory not found") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestValidateNoMetrics(t *testing.T) {
	dir := makeRunDir(t, t.TempDir(), "empty-run")
	code, _, stderr := runCLI("validate", dir)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(stderr, "No metrics found") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestInfo(t *testing.T) {
	dir := makeRunDir(t, t.TempDir(), "160101_M01234_0001_A", run.QCUploadedMarker)
	writeTileMetrics(t, dir)

	code, stdout, _ := runCLI("info", dir)
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	for _, want := range []string{
		"run_name",
		"160101_M01234_0001_A",
		"qc_uploaded",
		"TILE_METRICS",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestList(t *testing.T) {
	runsDir := t.TempDir()
	makeRunDir(t, runsDir, "160101_M01234_0001_A", run.NeedsProcessingMarker)
	makeRunDir(t, runsDir, "160102_M01234_0002_B")

	code, stdout, _ := runCLI("list", runsDir)
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	if stdout != "160101_M01234_0001_A\n160102_M01234_0002_B\n" {
		t.Errorf("stdout = %q", stdout)
	}

	code, stdout, _ = runCLI("list", "-needs-processing", runsDir)
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	if stdout != "160101_M01234_0001_A\n" {
		t.Errorf("filtered stdout = %q", stdout)
	}

	code, stdout, _ = runCLI("list", "-v", runsDir)
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(stdout, "Found 2 run(s):") || !strings.Contains(stdout, "Status: needs-processing") {
		t.Errorf("verbose stdout = %q", stdout)
	}
}

func TestListEmpty(t *testing.T) {
	code, stdout, _ := runCLI("list", t.TempDir())
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(stdout, "No runs found matching criteria") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestExtractSingleMetricJSON(t *testing.T) {
	dir := makeRunDir(t, t.TempDir(), "160101_M01234_0001_A")
	writeTileMetrics(t, dir)

	code, stdout, stderr := runCLI("extract", "-metrics", "tile_metrics", dir)
	if code != 0 {
		t.Fatalf("exit = %d, stderr %q", code, stderr)
	}
	var payload struct {
		RunName     string `json:"run_name"`
		Metric      string `json:"metric"`
		RecordCount int    `json:"record_count"`
		Records     []struct {
			MetricCode  int     `json:"metric_code"`
			MetricValue float64 `json:"metric_value"`
		} `json:"records"`
	}
	body := stdout[:strings.Index(stdout, "\n}")+2]
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("unmarshal %q: %v", stdout, err)
	}
	if payload.RunName != "160101_M01234_0001_A" || payload.Metric != "TILE_METRICS" {
		t.Errorf("payload = %+v", payload)
	}
	if payload.RecordCount != 3 || len(payload.Records) != 3 {
		t.Errorf("record count = %d / %d", payload.RecordCount, len(payload.Records))
	}
	if payload.Records[0].MetricCode != 100 || payload.Records[0].MetricValue != 1000 {
		t.Errorf("records[0] = %+v", payload.Records[0])
	}
}

func TestExtractTableFormat(t *testing.T) {
	dir := makeRunDir(t, t.TempDir(), "160101_M01234_0001_A")
	writeTileMetrics(t, dir)

	code, stdout, stderr := runCLI("extract", "-metrics", "tile_metrics", "-format", "table", dir)
	if code != 0 {
		t.Fatalf("exit = %d, stderr %q", code, stderr)
	}
	lines := strings.Split(stdout, "\n")
	if len(lines) < 5 {
		t.Fatalf("stdout = %q", stdout)
	}
	if !strings.Contains(lines[0], "metric_code") || !strings.Contains(lines[0], "metric_value") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "----") {
		t.Errorf("separator = %q", lines[1])
	}
	if !strings.Contains(lines[2], "1101") || !strings.Contains(lines[2], "1000") {
		t.Errorf("first row = %q", lines[2])
	}
}

func TestExtractRejectsUnknownFormat(t *testing.T) {
	dir := makeRunDir(t, t.TempDir(), "160101_M01234_0001_A")
	writeTileMetrics(t, dir)

	code, _, stderr := runCLI("extract", "-metrics", "tile_metrics", "-format", "xml", dir)
	if code != 2 {
		t.Errorf("exit = %d, want 2", code)
	}
	if !strings.Contains(stderr, `unknown format "xml"`) {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestExtractMultipleMetricsToDir(t *testing.T) {
	dir := makeRunDir(t, t.TempDir(), "160101_M01234_0001_A")
	writeTileMetrics(t, dir)
	writeErrorMetrics(t, dir)
	outDir := filepath.Join(t.TempDir(), "out")

	code, _, stderr := runCLI("extract", "-metrics", "tile_metrics,error_metrics", "-format", "csv", "-o", outDir, dir)
	if code != 0 {
		t.Fatalf("exit = %d, stderr %q", code, stderr)
	}

	tiles, err := os.ReadFile(filepath.Join(outDir, "tile_metrics.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(tiles), "lane,tile,metric_code,metric_value\n") {
		t.Errorf("tile csv = %q", tiles)
	}
	errs, err := os.ReadFile(filepath.Join(outDir, "error_metrics.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(errs), "error_rate") {
		t.Errorf("error csv = %q", errs)
	}
}

func TestExtractMultipleMetricsRequireOutput(t *testing.T) {
	dir := makeRunDir(t, t.TempDir(), "run1")
	writeTileMetrics(t, dir)
	writeErrorMetrics(t, dir)

	code, _, stderr := runCLI("extract", "-metrics", "tile_metrics,error_metrics", dir)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(stderr, "output path required") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestExtractMissingNamedMetricFails(t *testing.T) {
	dir := makeRunDir(t, t.TempDir(), "run1")

	code, _, stderr := runCLI("extract", "-metrics", "quality_metrics", dir)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(stderr, "QUALITY_METRICS file not found") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestExtractAllSkipsMissing(t *testing.T) {
	dir := makeRunDir(t, t.TempDir(), "run1")
	writeTileMetrics(t, dir)

	code, stdout, stderr := runCLI("extract", "-all", dir)
	if code != 0 {
		t.Fatalf("exit = %d, stderr %q", code, stderr)
	}
	if !strings.Contains(stdout, "Extracted 1 metric(s)") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestExtractUnknownMetric(t *testing.T) {
	dir := makeRunDir(t, t.TempDir(), "run1")
	code, _, stderr := runCLI("extract", "-metrics", "bogus", dir)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(stderr, `unknown metric "bogus"`) {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestSummaryJSON(t *testing.T) {
	dir := makeRunDir(t, t.TempDir(), "160101_M01234_0001_A")
	writeTileMetrics(t, dir)
	writeErrorMetrics(t, dir)

	code, stdout, stderr := runCLI("summary", "-format", "json", dir)
	if code != 0 {
		t.Fatalf("exit = %d, stderr %q", code, stderr)
	}
	var report struct {
		RunName string `json:"run_name"`
		Tiles   *struct {
			ClusterDensity float64 `json:"cluster_density"`
			PassRate       float64 `json:"pass_rate"`
		} `json:"tiles"`
		Errors *struct {
			RateForward float64 `json:"error_rate_forward"`
		} `json:"errors"`
		Missing []string `json:"missing"`
	}
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("unmarshal %q: %v", stdout, err)
	}
	if report.Tiles == nil || report.Tiles.ClusterDensity != 1000 || report.Tiles.PassRate != 0.9 {
		t.Errorf("tiles = %+v", report.Tiles)
	}
	if report.Errors == nil || report.Errors.RateForward != 2 {
		t.Errorf("errors = %+v", report.Errors)
	}
	if len(report.Missing) != 1 || report.Missing[0] != "QUALITY_METRICS" {
		t.Errorf("missing = %v", report.Missing)
	}
}

func TestSummaryTableReportsMissing(t *testing.T) {
	dir := makeRunDir(t, t.TempDir(), "empty-run")

	code, stdout, stderr := runCLI("summary", dir)
	if code != 0 {
		t.Fatalf("exit = %d, stderr %q", code, stderr)
	}
	if !strings.Contains(stdout, "TILE_METRICS: not found") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestPublishRejectsArguments(t *testing.T) {
	code, _, stderr := runCLI("publish", "extra")
	if code != 2 {
		t.Fatalf("exit = %d, want 2", code)
	}
	if !strings.Contains(stderr, "Usage: miseq-interop publish") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestPublishMissingManifest(t *testing.T) {
	// The package directory has no pyproject.toml; the first precondition
	// must fail before anything runs.
	code, _, stderr := runCLI("publish")
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(stderr, "pyproject.toml not found") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestSummaryRejectsBadReadLengths(t *testing.T) {
	dir := makeRunDir(t, t.TempDir(), "run1")

	code, _, stderr := runCLI("summary", "-read-lengths", "150,8", dir)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(stderr, "must be 3 or 4") {
		t.Errorf("stderr = %q", stderr)
	}
}

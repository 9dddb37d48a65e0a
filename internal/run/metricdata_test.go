package run_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/miseqtools/miseqinterop/internal/interop"
	"github.com/miseqtools/miseqinterop/internal/interop/interoptest"
	"github.com/miseqtools/miseqinterop/internal/run"
)

func TestReadMetricTiles(t *testing.T) {
	dir := makeRunDir(t, t.TempDir(), "run1")
	r, err := run.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	records := []interop.TileRecord{
		{Lane: 1, Tile: 1101, MetricCode: interop.MetricCodeClusterDensity, MetricValue: 1250.5},
		{Lane: 1, Tile: 1101, MetricCode: interop.MetricCodeClusterCountPF, MetricValue: 900000},
	}
	path := filepath.Join(r.InterOpDir, "TileMetricsOut.bin")
	if err := interoptest.WriteFile(path, interoptest.TileFile(records...)); err != nil {
		t.Fatal(err)
	}

	data, err := r.ReadMetric(run.MetricTile)
	if err != nil {
		t.Fatalf("ReadMetric: %v", err)
	}
	if data.Count != 2 {
		t.Fatalf("Count = %d, want 2", data.Count)
	}
	wantColumns := []string{"lane", "tile", "metric_code", "metric_value"}
	if strings.Join(data.Columns, ",") != strings.Join(wantColumns, ",") {
		t.Errorf("Columns = %v", data.Columns)
	}
	wantRow := []string{"1", "1101", "100", "1250.5"}
	if strings.Join(data.Rows[0], ",") != strings.Join(wantRow, ",") {
		t.Errorf("Rows[0] = %v, want %v", data.Rows[0], wantRow)
	}
	typed, ok := data.Records.([]interop.TileRecord)
	if !ok {
		t.Fatalf("Records has type %T", data.Records)
	}
	if typed[1] != records[1] {
		t.Errorf("Records[1] = %+v, want %+v", typed[1], records[1])
	}
}

func TestReadMetricRefusesUndecodable(t *testing.T) {
	dir := makeRunDir(t, t.TempDir(), "run1")
	r, err := run.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.ReadMetric(run.MetricSummaryRun); err == nil || !strings.Contains(err.Error(), "no decoder") {
		t.Errorf("SUMMARY_RUN: %v", err)
	}
}

func TestReadMetricMissingFile(t *testing.T) {
	dir := makeRunDir(t, t.TempDir(), "run1")
	r, err := run.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.ReadMetric(run.MetricQuality); err == nil || !strings.Contains(err.Error(), "could not be found") {
		t.Errorf("missing quality file: %v", err)
	}
}

func TestReadMetricQualityColumns(t *testing.T) {
	dir := makeRunDir(t, t.TempDir(), "run1")
	r, err := run.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	rec := interop.QualityRecord{Lane: 1, Tile: 1101, Cycle: 1}
	rec.Bins[29] = 500
	path := filepath.Join(r.InterOpDir, "QMetricsOut.bin")
	if err := interoptest.WriteFile(path, interoptest.QualityFile(rec)); err != nil {
		t.Fatal(err)
	}

	data, err := r.ReadMetric(run.MetricQuality)
	if err != nil {
		t.Fatalf("ReadMetric: %v", err)
	}
	if len(data.Columns) != 53 {
		t.Fatalf("got %d columns, want 53", len(data.Columns))
	}
	if data.Columns[3] != "q01" || data.Columns[52] != "q50" {
		t.Errorf("bin columns = %q..%q", data.Columns[3], data.Columns[52])
	}
	if data.Rows[0][32] != "500" {
		t.Errorf("q30 cell = %q, want 500", data.Rows[0][32])
	}
}

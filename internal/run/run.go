// Package run models a MiSeq run directory: the InterOp metrics folder, the
// SampleSheet, and the processing marker files the pipeline leaves behind.
package run

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Marker file names a pipeline drops into a run directory.
const (
	NeedsProcessingMarker = "needsprocessing"
	QCUploadedMarker      = "qc_uploaded"
)

// SampleSheetName is the sample sheet every valid run directory carries.
const SampleSheetName = "SampleSheet.csv"

// InterOpDirName is the subdirectory holding the binary metrics files.
const InterOpDirName = "InterOp"

// Metric identifies one InterOp metrics family.
type Metric string

const (
	MetricCorrectedIntensity Metric = "CORRECTED_INTENSITY_METRICS"
	MetricError              Metric = "ERROR_METRICS"
	MetricExtendedTile       Metric = "EXTENDED_TILE_METRICS"
	MetricExtraction         Metric = "EXTRACTION_METRICS"
	MetricImage              Metric = "IMAGE_METRICS"
	MetricPhasing            Metric = "PHASING_METRICS"
	MetricQuality            Metric = "QUALITY_METRICS"
	MetricTile               Metric = "TILE_METRICS"
	MetricCollapsedQ         Metric = "COLLAPSED_Q_METRICS"
	MetricIndex              Metric = "INDEX_METRICS"
	MetricSummaryRun         Metric = "SUMMARY_RUN"
)

// AllMetrics lists every known metric family in display order.
var AllMetrics = []Metric{
	MetricCorrectedIntensity,
	MetricError,
	MetricExtendedTile,
	MetricExtraction,
	MetricImage,
	MetricPhasing,
	MetricQuality,
	MetricTile,
	MetricCollapsedQ,
	MetricIndex,
	MetricSummaryRun,
}

// metricFiles maps each metric family to its candidate file names inside
// InterOp/. The instrument writes either the plain or the "...Out" spelling
// depending on software version.
var metricFiles = map[Metric][]string{
	MetricCorrectedIntensity: {"CorrectedIntMetrics.bin", "CorrectedIntMetricsOut.bin"},
	MetricError:              {"ErrorMetrics.bin", "ErrorMetricsOut.bin"},
	MetricExtendedTile:       {"ExtendedTileMetrics.bin", "ExtendedTileMetricsOut.bin"},
	MetricExtraction:         {"ExtractionMetrics.bin", "ExtractionMetricsOut.bin"},
	MetricImage:              {"ImageMetrics.bin", "ImageMetricsOut.bin"},
	MetricPhasing:            {"EmpiricalPhasingMetrics.bin", "EmpiricalPhasingMetricsOut.bin"},
	MetricQuality:            {"QMetrics.bin", "QMetricsOut.bin"},
	MetricTile:               {"TileMetrics.bin", "TileMetricsOut.bin", "TileMetricOut.bin"},
	MetricCollapsedQ:         {"QMetrics2030.bin", "QMetrics2030Out.bin"},
	MetricIndex:              {"IndexMetrics.bin", "IndexMetricsOut.bin"},
	MetricSummaryRun:         {"SummaryRun.bin", "SummaryRunOut.bin"},
}

// ParseMetric resolves a metric name as typed on the command line.
func ParseMetric(name string) (Metric, error) {
	m := Metric(strings.ToUpper(strings.TrimSpace(name)))
	if _, ok := metricFiles[m]; !ok {
		return "", fmt.Errorf("run: unknown metric %q", name)
	}
	return m, nil
}

// Decodable reports whether a decoder exists for the metric family.
// SUMMARY_RUN and EXTENDED_TILE_METRICS are recognized on disk but have no
// published record layout.
func (m Metric) Decodable() bool {
	switch m {
	case MetricSummaryRun, MetricExtendedTile:
		return false
	}
	return true
}

// Run is an opened, structurally valid run directory.
type Run struct {
	Dir        string
	Name       string
	InterOpDir string

	NeedsProcessing bool
	QCUploaded      bool
}

// Open validates the run directory structure and loads marker state.
func Open(dir string) (*Run, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("run: directory does not exist: %s", dir)
		}
		return nil, fmt.Errorf("run: stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("run: %s is not a directory", dir)
	}
	if _, err := os.Stat(filepath.Join(dir, SampleSheetName)); err != nil {
		return nil, fmt.Errorf("run: %s not found in %s", SampleSheetName, dir)
	}
	interopDir := filepath.Join(dir, InterOpDirName)
	if info, err := os.Stat(interopDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("run: %s directory not found in %s", InterOpDirName, dir)
	}
	return &Run{
		Dir:             dir,
		Name:            filepath.Base(filepath.Clean(dir)),
		InterOpDir:      interopDir,
		NeedsProcessing: fileExists(filepath.Join(dir, NeedsProcessingMarker)),
		QCUploaded:      fileExists(filepath.Join(dir, QCUploadedMarker)),
	}, nil
}

// IsRunDir reports whether path looks like a run directory without opening it.
func IsRunDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	if !fileExists(filepath.Join(path, InterOpDirName)) {
		return false
	}
	return fileExists(filepath.Join(path, SampleSheetName))
}

// MetricPath returns the first existing candidate file for the metric.
func (r *Run) MetricPath(metric Metric) (string, error) {
	candidates, ok := metricFiles[metric]
	if !ok {
		return "", fmt.Errorf("run: unknown metric %q", metric)
	}
	for _, name := range candidates {
		path := filepath.Join(r.InterOpDir, name)
		if fileExists(path) {
			return path, nil
		}
	}
	return "", fmt.Errorf("run: %s could not be found in %s", strings.Join(candidates, "/"), r.InterOpDir)
}

// HasMetric reports whether any candidate file for the metric exists.
func (r *Run) HasMetric(metric Metric) bool {
	_, err := r.MetricPath(metric)
	return err == nil
}

// AvailableMetrics lists the metric families present in this run.
func (r *Run) AvailableMetrics() []Metric {
	var available []Metric
	for _, metric := range AllMetrics {
		if r.HasMetric(metric) {
			available = append(available, metric)
		}
	}
	return available
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

package run

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/miseqtools/miseqinterop/internal/interop"
)

// MetricData is the decoded contents of one metric file in both the typed
// form (for JSON) and a tabular form (for CSV and table output).
type MetricData struct {
	Metric  Metric
	Count   int
	Records any
	Columns []string
	Rows    [][]string
}

// ReadMetric locates and decodes one metric file from the run.
func (r *Run) ReadMetric(metric Metric) (*MetricData, error) {
	if !metric.Decodable() {
		return nil, fmt.Errorf("run: no decoder for %s", metric)
	}
	path, err := r.MetricPath(metric)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("run: open %s: %w", path, err)
	}
	defer f.Close()

	switch metric {
	case MetricTile:
		records, err := interop.ReadTiles(f)
		if err != nil {
			return nil, err
		}
		data := &MetricData{Metric: metric, Count: len(records), Records: records,
			Columns: []string{"lane", "tile", "metric_code", "metric_value"}}
		for _, rec := range records {
			data.Rows = append(data.Rows, []string{
				u(rec.Lane), u(rec.Tile), u(rec.MetricCode), f32(rec.MetricValue),
			})
		}
		return data, nil

	case MetricError:
		records, err := interop.ReadErrors(f)
		if err != nil {
			return nil, err
		}
		data := &MetricData{Metric: metric, Count: len(records), Records: records,
			Columns: []string{"lane", "tile", "cycle", "error_rate",
				"num_0_errors", "num_1_errors", "num_2_errors", "num_3_errors", "num_4_errors"}}
		for _, rec := range records {
			data.Rows = append(data.Rows, []string{
				u(rec.Lane), u(rec.Tile), u(rec.Cycle), f32(rec.ErrorRate),
				u(rec.NumPerfect), u(rec.NumOne), u(rec.NumTwo), u(rec.NumThree), u(rec.NumFour),
			})
		}
		return data, nil

	case MetricQuality:
		records, err := interop.ReadQuality(f)
		if err != nil {
			return nil, err
		}
		columns := []string{"lane", "tile", "cycle"}
		for i := 1; i <= interop.QualityBinCount; i++ {
			columns = append(columns, fmt.Sprintf("q%02d", i))
		}
		data := &MetricData{Metric: metric, Count: len(records), Records: records, Columns: columns}
		for _, rec := range records {
			row := []string{u(rec.Lane), u(rec.Tile), u(rec.Cycle)}
			for _, bin := range rec.Bins {
				row = append(row, u(bin))
			}
			data.Rows = append(data.Rows, row)
		}
		return data, nil

	case MetricCorrectedIntensity:
		records, err := interop.ReadCorrectedIntensities(f)
		if err != nil {
			return nil, err
		}
		data := &MetricData{Metric: metric, Count: len(records), Records: records,
			Columns: []string{"lane", "tile", "cycle", "avg_cycle_intensity",
				"avg_corrected_intensity_a", "avg_corrected_intensity_c",
				"avg_corrected_intensity_g", "avg_corrected_intensity_t",
				"avg_corrected_cluster_intensity_a", "avg_corrected_cluster_intensity_c",
				"avg_corrected_cluster_intensity_g", "avg_corrected_cluster_intensity_t",
				"num_base_calls_none", "num_base_calls_a", "num_base_calls_c",
				"num_base_calls_g", "num_base_calls_t", "snr"}}
		for _, rec := range records {
			data.Rows = append(data.Rows, []string{
				u(rec.Lane), u(rec.Tile), u(rec.Cycle), u(rec.AvgCycleIntensity),
				u(rec.AvgCorrectedA), u(rec.AvgCorrectedC), u(rec.AvgCorrectedG), u(rec.AvgCorrectedT),
				u(rec.AvgCorrectedClusterA), u(rec.AvgCorrectedClusterC),
				u(rec.AvgCorrectedClusterG), u(rec.AvgCorrectedClusterT),
				u(rec.NumBaseCallsNone), u(rec.NumBaseCallsA), u(rec.NumBaseCallsC),
				u(rec.NumBaseCallsG), u(rec.NumBaseCallsT), f32(rec.SNR),
			})
		}
		return data, nil

	case MetricExtraction:
		records, err := interop.ReadExtractions(f)
		if err != nil {
			return nil, err
		}
		data := &MetricData{Metric: metric, Count: len(records), Records: records,
			Columns: []string{"lane", "tile", "cycle",
				"focus_a", "focus_c", "focus_g", "focus_t",
				"max_intensity_a", "max_intensity_c", "max_intensity_g", "max_intensity_t",
				"datestamp", "datetime"}}
		for _, rec := range records {
			data.Rows = append(data.Rows, []string{
				u(rec.Lane), u(rec.Tile), u(rec.Cycle),
				f32(rec.FocusA), f32(rec.FocusC), f32(rec.FocusG), f32(rec.FocusT),
				u(rec.MaxIntensityA), u(rec.MaxIntensityC), u(rec.MaxIntensityG), u(rec.MaxIntensityT),
				strconv.FormatUint(rec.Datestamp, 10), rec.Timestamp().Format(time.RFC3339Nano),
			})
		}
		return data, nil

	case MetricImage:
		records, err := interop.ReadImages(f)
		if err != nil {
			return nil, err
		}
		data := &MetricData{Metric: metric, Count: len(records), Records: records,
			Columns: []string{"lane", "tile", "cycle", "channel_number", "min_contrast", "max_contrast"}}
		for _, rec := range records {
			data.Rows = append(data.Rows, []string{
				u(rec.Lane), u(rec.Tile), u(rec.Cycle), u(rec.Channel), u(rec.MinContrast), u(rec.MaxContrast),
			})
		}
		return data, nil

	case MetricPhasing:
		records, err := interop.ReadPhasing(f)
		if err != nil {
			return nil, err
		}
		data := &MetricData{Metric: metric, Count: len(records), Records: records,
			Columns: []string{"lane", "tile", "cycle", "phasing_weight", "prephasing_weight"}}
		for _, rec := range records {
			data.Rows = append(data.Rows, []string{
				u(rec.Lane), u(rec.Tile), u(rec.Cycle), f32(rec.PhasingWeight), f32(rec.PrephasingWeight),
			})
		}
		return data, nil

	case MetricCollapsedQ:
		records, err := interop.ReadCollapsedQ(f)
		if err != nil {
			return nil, err
		}
		data := &MetricData{Metric: metric, Count: len(records), Records: records,
			Columns: []string{"lane", "tile", "cycle", "q20", "q30", "total_count", "median_score"}}
		for _, rec := range records {
			data.Rows = append(data.Rows, []string{
				u(rec.Lane), u(rec.Tile), u(rec.Cycle),
				u(rec.Q20), u(rec.Q30), u(rec.TotalCount), f32(rec.MedianScore),
			})
		}
		return data, nil

	case MetricIndex:
		records, err := interop.ReadIndexes(f)
		if err != nil {
			return nil, err
		}
		data := &MetricData{Metric: metric, Count: len(records), Records: records,
			Columns: []string{"lane", "tile", "read", "index_name", "index_cluster_count", "sample_name", "project_name"}}
		for _, rec := range records {
			data.Rows = append(data.Rows, []string{
				u(rec.Lane), u(rec.Tile), u(rec.Read),
				rec.IndexName, u(rec.ClusterCount), rec.SampleName, rec.ProjectName,
			})
		}
		return data, nil
	}
	return nil, fmt.Errorf("run: no decoder for %s", metric)
}

func u[T uint16 | uint32](v T) string {
	return strconv.FormatUint(uint64(v), 10)
}

func f32(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

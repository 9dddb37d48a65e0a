package interop

import (
	"encoding/json"
	"fmt"
	"time"
)

// TileRecord is one row of a tile metrics file. The metric code selects what
// MetricValue means; see the MetricCode* constants.
type TileRecord struct {
	Lane        uint16  `json:"lane"`
	Tile        uint16  `json:"tile"`
	MetricCode  uint16  `json:"metric_code"`
	MetricValue float32 `json:"metric_value"`
}

// Tile metric codes.
//
// Further codes exist per read N:
// 200+(N-1)*2 phasing, 201+(N-1)*2 prephasing, 300+N-1 percent aligned.
const (
	MetricCodeClusterDensity   = 100 // K/mm2
	MetricCodeClusterDensityPF = 101 // K/mm2
	MetricCodeClusterCount     = 102
	MetricCodeClusterCountPF   = 103
)

// ErrorRecord is one row of a phiX error metrics file.
type ErrorRecord struct {
	Lane       uint16  `json:"lane"`
	Tile       uint16  `json:"tile"`
	Cycle      uint16  `json:"cycle"`
	ErrorRate  float32 `json:"error_rate"`
	NumPerfect uint32  `json:"num_0_errors"`
	NumOne     uint32  `json:"num_1_errors"`
	NumTwo     uint32  `json:"num_2_errors"`
	NumThree   uint32  `json:"num_3_errors"`
	NumFour    uint32  `json:"num_4_errors"`
}

// QualityRecord is one row of a quality metrics file: a histogram of cluster
// counts over quality scores Q1..Q50 for one lane/tile/cycle.
type QualityRecord struct {
	Lane  uint16
	Tile  uint16
	Cycle uint16
	Bins  [QualityBinCount]uint32
}

// MarshalJSON flattens the histogram into q01..q50 keys so downstream tabular
// tooling does not have to cope with a nested list.
func (r QualityRecord) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, 3+QualityBinCount)
	flat["lane"] = r.Lane
	flat["tile"] = r.Tile
	flat["cycle"] = r.Cycle
	for i, count := range r.Bins {
		flat[fmt.Sprintf("q%02d", i+1)] = count
	}
	return json.Marshal(flat)
}

// CorrectedIntensityRecord is one row of a corrected intensity metrics file.
type CorrectedIntensityRecord struct {
	Lane                 uint16  `json:"lane"`
	Tile                 uint16  `json:"tile"`
	Cycle                uint16  `json:"cycle"`
	AvgCycleIntensity    uint16  `json:"avg_cycle_intensity"`
	AvgCorrectedA        uint16  `json:"avg_corrected_intensity_a"`
	AvgCorrectedC        uint16  `json:"avg_corrected_intensity_c"`
	AvgCorrectedG        uint16  `json:"avg_corrected_intensity_g"`
	AvgCorrectedT        uint16  `json:"avg_corrected_intensity_t"`
	AvgCorrectedClusterA uint16  `json:"avg_corrected_cluster_intensity_a"`
	AvgCorrectedClusterC uint16  `json:"avg_corrected_cluster_intensity_c"`
	AvgCorrectedClusterG uint16  `json:"avg_corrected_cluster_intensity_g"`
	AvgCorrectedClusterT uint16  `json:"avg_corrected_cluster_intensity_t"`
	NumBaseCallsNone     uint32  `json:"num_base_calls_none"`
	NumBaseCallsA        uint32  `json:"num_base_calls_a"`
	NumBaseCallsC        uint32  `json:"num_base_calls_c"`
	NumBaseCallsG        uint32  `json:"num_base_calls_g"`
	NumBaseCallsT        uint32  `json:"num_base_calls_t"`
	SNR                  float32 `json:"snr"`
}

// ExtractionRecord is one row of an extraction metrics file.
type ExtractionRecord struct {
	Lane          uint16  `json:"lane"`
	Tile          uint16  `json:"tile"`
	Cycle         uint16  `json:"cycle"`
	FocusA        float32 `json:"focus_a"`
	FocusC        float32 `json:"focus_c"`
	FocusG        float32 `json:"focus_g"`
	FocusT        float32 `json:"focus_t"`
	MaxIntensityA uint16  `json:"max_intensity_a"`
	MaxIntensityC uint16  `json:"max_intensity_c"`
	MaxIntensityG uint16  `json:"max_intensity_g"`
	MaxIntensityT uint16  `json:"max_intensity_t"`
	Datestamp     uint64  `json:"datestamp"`
}

// ticksPerSecond is the resolution of the extraction datestamp: 100 ns ticks.
const ticksPerSecond = 10_000_000

// unixEpochSeconds is the offset between 0001-01-01T00:00:00 and the Unix
// epoch, in seconds.
const unixEpochSeconds = 62_135_596_800

// Timestamp decodes the extraction datestamp. The top two bits are a "kind"
// tag and are discarded; the remaining 62 bits count 100 ns intervals since
// midnight 0001-01-01 (not a typo).
func (r ExtractionRecord) Timestamp() time.Time {
	ticks := r.Datestamp & (1<<62 - 1)
	secs := int64(ticks/ticksPerSecond) - unixEpochSeconds
	nanos := int64(ticks%ticksPerSecond) * 100
	return time.Unix(secs, nanos).UTC()
}

// MarshalJSON includes the decoded timestamp alongside the raw datestamp.
func (r ExtractionRecord) MarshalJSON() ([]byte, error) {
	type alias ExtractionRecord
	return json.Marshal(struct {
		alias
		Datetime string `json:"datetime"`
	}{
		alias:    alias(r),
		Datetime: r.Timestamp().Format(time.RFC3339Nano),
	})
}

// ImageRecord is one row of an image metrics file.
type ImageRecord struct {
	Lane        uint16 `json:"lane"`
	Tile        uint16 `json:"tile"`
	Cycle       uint16 `json:"cycle"`
	Channel     uint16 `json:"channel_number"`
	MinContrast uint16 `json:"min_contrast"`
	MaxContrast uint16 `json:"max_contrast"`
}

// PhasingRecord is one row of an empirical phasing metrics file.
type PhasingRecord struct {
	Lane             uint16  `json:"lane"`
	Tile             uint16  `json:"tile"`
	Cycle            uint16  `json:"cycle"`
	PhasingWeight    float32 `json:"phasing_weight"`
	PrephasingWeight float32 `json:"prephasing_weight"`
}

/// CollapsedQRecord is one row of a collapsed quality metrics file: the Q20/Q30
// rollup the instrument precomputes from the full histogram.
type CollapsedQRecord struct {
	Lane        uint16  `json:"lane"`
	Tile        uint16  `json:"tile"`
	Cycle       uint16  `json:"cycle"`
	Q20         uint32  `json:"q20"`
	Q30         uint32  `json:"q30"`
	TotalCount  uint32  `json:"total_count"`
	MedianScore float32 `json:"median_score"`
}

// IndexRecord is one row of an index metrics file. Unlike the other formats
/// these records are variable length: the three names are length-prefixed.
type IndexRecord struct {
	Lane         uint16 `json:"lane"`
	Tile         uint16 `json:"tile"`
	Read         uint16 `json:"read"`
	IndexName    string `json:"index_name"`
	ClusterCount uint32 `json:"index_cluster_count"`
	SampleName   string `json:"sample_name"`
	ProjectName  string `json:"project_name"`
}

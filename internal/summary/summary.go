// Package summary computes run-level QC rollups from InterOp records:
// cluster density and pass rate from tile metrics, Q30 fractions from quality
// metrics, and mean error rates from error metrics.
package summary

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/miseqtools/miseqinterop/internal/interop"
)

// ReadLengths describes the cycle structure of a paired run: forward read
// cycles, combined index cycles, reverse read cycles.
type ReadLengths struct {
	Forward int
	Index   int
	Reverse int
}

// LastForwardCycle is the final cycle counted toward the forward read.
func (rl ReadLengths) LastForwardCycle() int { return rl.Forward }

// FirstReverseCycle is the first cycle counted toward the reverse read.
// Index cycles sit between the two reads and are excluded from both.
func (rl ReadLengths) FirstReverseCycle() int { return rl.Forward + rl.Index + 1 }

// ParseReadLengths parses a comma-separated read length spec. Three values
// are forward,index,reverse; four values are forward,index1,index2,reverse
// with the two index lengths combined.
func ParseReadLengths(spec string) (ReadLengths, error) {
	parts := strings.Split(spec, ",")
	values := make([]int, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return ReadLengths{}, fmt.Errorf("summary: invalid read length %q", strings.TrimSpace(part))
		}
		values = append(values, v)
	}
	switch len(values) {
	case 3:
		return ReadLengths{Forward: values[0], Index: values[1], Reverse: values[2]}, nil
	case 4:
		return ReadLengths{Forward: values[0], Index: values[1] + values[2], Reverse: values[3]}, nil
	}
	return ReadLengths{}, fmt.Errorf("summary: number of read lengths must be 3 or 4, got %d", len(values))
}

// TileSummary aggregates tile metrics over a run.
type TileSummary struct {
	DensityCount    int     `json:"density_count"`
	DensitySum      float64 `json:"density_sum"`
	TotalClusters   float64 `json:"total_clusters"`
	PassingClusters float64 `json:"passing_clusters"`
}

// ClusterDensity is the mean cluster density (K/mm2) over all tiles, or 0
// when no density records were seen.
func (s TileSummary) ClusterDensity() float64 {
	if s.DensityCount == 0 {
		return 0
	}
	return s.DensitySum / float64(s.DensityCount)
}

// PassRate is the fraction of clusters passing filters, or 0 when no
// cluster-count records were seen.
func (s TileSummary) PassRate() float64 {
	if s.TotalClusters == 0 {
		return 0
	}
	return s.PassingClusters / s.TotalClusters
}

// MarshalJSON includes the derived values alongside the raw accumulators.
func (s TileSummary) MarshalJSON() ([]byte, error) {
	type alias TileSummary
	return json.Marshal(struct {
		alias
		ClusterDensity float64 `json:"cluster_density"`
		PassRate       float64 `json:"pass_rate"`
	}{alias(s), s.ClusterDensity(), s.PassRate()})
}

// SummarizeTiles folds tile records into a TileSummary.
func SummarizeTiles(records []interop.TileRecord) TileSummary {
	var s TileSummary
	for _, rec := range records {
		switch rec.MetricCode {
		case interop.MetricCodeClusterDensity:
			s.DensitySum += float64(rec.MetricValue)
			s.DensityCount++
		case interop.MetricCodeClusterCount:
			s.TotalClusters += float64(rec.MetricValue)
		case interop.MetricCodeClusterCountPF:
			s.PassingClusters += float64(rec.MetricValue)
		}
	}
	return s
}

// QualitySummary aggregates quality metrics over a run, split into forward
// and reverse reads when read lengths are known.
type QualitySummary struct {
	TotalCount   uint64 `json:"total_count"`
	GoodCount    uint64 `json:"good_count"`
	TotalReverse uint64 `json:"total_reverse"`
	GoodReverse  uint64 `json:"good_reverse"`
}

// Q30Forward is the fraction of forward-read clusters at Q30 or better.
func (s QualitySummary) Q30Forward() float64 {
	if s.TotalCount == 0 {
		return 0
	}
	return float64(s.GoodCount) / float64(s.TotalCount)
}

// Q30Reverse is the fraction of reverse-read clusters at Q30 or better.
func (s QualitySummary) Q30Reverse() float64 {
	if s.TotalReverse == 0 {
		return 0
	}
	return float64(s.GoodReverse) / float64(s.TotalReverse)
}

// MarshalJSON includes the derived values alongside the raw counts.
func (s QualitySummary) MarshalJSON() ([]byte, error) {
	type alias QualitySummary
	return json.Marshal(struct {
		alias
		Q30Forward float64 `json:"q30_forward"`
		Q30Reverse float64 `json:"q30_reverse"`
	}{alias(s), s.Q30Forward(), s.Q30Reverse()})
}

// goodBinStart is the first histogram index counted as "good": bin 30 (Q30)
// at zero-based index 29.
const goodBinStart = 29

// SummarizeQuality folds quality records into a QualitySummary. With a nil
// readLengths every cycle counts toward the forward read; otherwise cycles
// after the forward read and before the reverse read (the index cycles) are
// skipped.
func SummarizeQuality(records []interop.QualityRecord, readLengths *ReadLengths) QualitySummary {
	var s QualitySummary
	for _, rec := range records {
		var clusters, good uint64
		for i, count := range rec.Bins {
			clusters += uint64(count)
			if i >= goodBinStart {
				good += uint64(count)
			}
		}
		switch {
		case readLengths == nil || int(rec.Cycle) <= readLengths.LastForwardCycle():
			s.TotalCount += clusters
			s.GoodCount += good
		case int(rec.Cycle) >= readLengths.FirstReverseCycle():
			s.TotalReverse += clusters
			s.GoodReverse += good
		}
	}
	return s
}

// ErrorSummary aggregates phiX error metrics over a run, split into forward
// and reverse reads when read lengths are known.
type ErrorSummary struct {
	SumForward   float64 `json:"error_sum_forward"`
	CountForward int     `json:"error_count_forward"`
	SumReverse   float64 `json:"error_sum_reverse"`
	CountReverse int     `json:"error_count_reverse"`
}

// RateForward is the mean per-cycle error rate over the forward read.
func (s ErrorSummary) RateForward() float64 {
	if s.CountForward == 0 {
		return 0
	}
	return s.SumForward / float64(s.CountForward)
}

// RateReverse is the mean per-cycle error rate over the reverse read.
func (s ErrorSummary) RateReverse() float64 {
	if s.CountReverse == 0 {
		return 0
	}
	return s.SumReverse / float64(s.CountReverse)
}

// MarshalJSON includes the derived values alongside the raw accumulators.
func (s ErrorSummary) MarshalJSON() ([]byte, error) {
	type alias ErrorSummary
	return json.Marshal(struct {
		alias
		RateForward float64 `json:"error_rate_forward"`
		RateReverse float64 `json:"error_rate_reverse"`
	}{alias(s), s.RateForward(), s.RateReverse()})
}

// SummarizeErrors folds error records into an ErrorSummary using the same
// forward/reverse cycle split as SummarizeQuality.
func SummarizeErrors(records []interop.ErrorRecord, readLengths *ReadLengths) ErrorSummary {
	var s ErrorSummary
	for _, rec := range records {
		switch {
		case readLengths == nil || int(rec.Cycle) <= readLengths.LastForwardCycle():
			s.SumForward += float64(rec.ErrorRate)
			s.CountForward++
		case int(rec.Cycle) >= readLengths.FirstReverseCycle():
			s.SumReverse += float64(rec.ErrorRate)
			s.CountReverse++
		}
	}
	return s
}

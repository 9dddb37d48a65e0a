// Package interoptest builds synthetic InterOp metric files for tests. Each
// helper packs records the way the instrument does: a version/record-length
// header followed by little-endian rows.
package interoptest

import (
	"encoding/binary"
	"math"
	"math/rand"
	"os"

	"github.com/miseqtools/miseqinterop/internal/interop"
)

// Versions and record lengths written by default for each format.
const (
	TileVersion       = 2
	TileRecordLen     = 10
	ErrorVersion      = 3
	ErrorRecordLen    = 30
	QualityVersion    = 4
	QualityRecordLen  = 206
	CorrectedVersion  = 2
	CorrectedRecLen   = 48
	ExtractionVersion = 2
	ExtractionRecLen  = 38
	ImageVersion      = 1
	ImageRecordLen    = 12
	PhasingVersion    = 1
	PhasingRecordLen  = 14
	CollapsedQVersion = 2
	CollapsedQRecLen  = 22
	IndexVersion      = 1
)

type packer struct{ buf []byte }

func (p *packer) u16(v uint16) { p.buf = binary.LittleEndian.AppendUint16(p.buf, v) }
func (p *packer) u32(v uint32) { p.buf = binary.LittleEndian.AppendUint32(p.buf, v) }
func (p *packer) u64(v uint64) { p.buf = binary.LittleEndian.AppendUint64(p.buf, v) }
func (p *packer) f32(v float32) {
	p.buf = binary.LittleEndian.AppendUint32(p.buf, math.Float32bits(v))
}

// File assembles a metric file from a header and packed records.
func File(version, recordLength byte, records ...[]byte) []byte {
	out := []byte{version, recordLength}
	for _, rec := range records {
		out = append(out, rec...)
	}
	return out
}

// WriteFile writes an assembled metric file to disk.
func WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

// PackTile packs one tile metrics record.
func PackTile(r interop.TileRecord) []byte {
	p := &packer{}
	p.u16(r.Lane)
	p.u16(r.Tile)
	p.u16(r.MetricCode)
	p.f32(r.MetricValue)
	return p.buf
}

// TileFile assembles a tile metrics file with the default header.
func TileFile(records ...interop.TileRecord) []byte {
	packed := make([][]byte, len(records))
	for i, r := range records {
		packed[i] = PackTile(r)
	}
	return File(TileVersion, TileRecordLen, packed...)
}

// PackError packs one error metrics record.
func PackError(r interop.ErrorRecord) []byte {
	p := &packer{}
	p.u16(r.Lane)
	p.u16(r.Tile)
	p.u16(r.Cycle)
	p.f32(r.ErrorRate)
	p.u32(r.NumPerfect)
	p.u32(r.NumOne)
	p.u32(r.NumTwo)
	p.u32(r.NumThree)
	p.u32(r.NumFour)
	return p.buf
}

// ErrorFile assembles an error metrics file with the default header.
func ErrorFile(records ...interop.ErrorRecord) []byte {
	packed := make([][]byte, len(records))
	for i, r := range records {
		packed[i] = PackError(r)
	}
	return File(ErrorVersion, ErrorRecordLen, packed...)
}

// PackQuality packs one quality metrics record.
func PackQuality(r interop.QualityRecord) []byte {
	p := &packer{}
	p.u16(r.Lane)
	p.u16(r.Tile)
	p.u16(r.Cycle)
	for _, bin := range r.Bins {
		p.u32(bin)
	}
	return p.buf
}

// QualityFile assembles a quality metrics file with the default header.
func QualityFile(records ...interop.QualityRecord) []byte {
	packed := make([][]byte, len(records))
	for i, r := range records {
		packed[i] = PackQuality(r)
	}
	return File(QualityVersion, QualityRecordLen, packed...)
}

// PackCorrectedIntensity packs one corrected intensity metrics record.
func PackCorrectedIntensity(r interop.CorrectedIntensityRecord) []byte {
	p := &packer{}
	p.u16(r.Lane)
	p.u16(r.Tile)
	p.u16(r.Cycle)
	p.u16(r.AvgCycleIntensity)
	p.u16(r.AvgCorrectedA)
	p.u16(r.AvgCorrectedC)
	p.u16(r.AvgCorrectedG)
	p.u16(r.AvgCorrectedT)
	p.u16(r.AvgCorrectedClusterA)
	p.u16(r.AvgCorrectedClusterC)
	p.u16(r.AvgCorrectedClusterG)
	p.u16(r.AvgCorrectedClusterT)
	p.u32(r.NumBaseCallsNone)
	p.u32(r.NumBaseCallsA)
	p.u32(r.NumBaseCallsC)
	p.u32(r.NumBaseCallsG)
	p.u32(r.NumBaseCallsT)
	p.f32(r.SNR)
	return p.buf
}

// CorrectedIntensityFile assembles a corrected intensity metrics file.
func CorrectedIntensityFile(records ...interop.CorrectedIntensityRecord) []byte {
	packed := make([][]byte, len(records))
	for i, r := range records {
		packed[i] = PackCorrectedIntensity(r)
	}
	return File(CorrectedVersion, CorrectedRecLen, packed...)
}

// PackExtraction packs one extraction metrics record.
func PackExtraction(r interop.ExtractionRecord) []byte {
	p := &packer{}
	p.u16(r.Lane)
	p.u16(r.Tile)
	p.u16(r.Cycle)
	p.f32(r.FocusA)
	p.f32(r.FocusC)
	p.f32(r.FocusG)
	p.f32(r.FocusT)
	p.u16(r.MaxIntensityA)
	p.u16(r.MaxIntensityC)
	p.u16(r.MaxIntensityG)
	p.u16(r.MaxIntensityT)
	p.u64(r.Datestamp)
	return p.buf
}

// ExtractionFile assembles an extraction metrics file.
func ExtractionFile(records ...interop.ExtractionRecord) []byte {
	packed := make([][]byte, len(records))
	for i, r := range records {
		packed[i] = PackExtraction(r)
	}
	return File(ExtractionVersion, ExtractionRecLen, packed...)
}

// PackImage packs one image metrics record.
func PackImage(r interop.ImageRecord) []byte {
	p := &packer{}
	p.u16(r.Lane)
	p.u16(r.Tile)
	p.u16(r.Cycle)
	p.u16(r.Channel)
	p.u16(r.MinContrast)
	p.u16(r.MaxContrast)
	return p.buf
}

// ImageFile assembles an image metrics file.
func ImageFile(records ...interop.ImageRecord) []byte {
	packed := make([][]byte, len(records))
	for i, r := range records {
		packed[i] = PackImage(r)
	}
	return File(ImageVersion, ImageRecordLen, packed...)
}

// PackPhasing packs one phasing metrics record.
func PackPhasing(r interop.PhasingRecord) []byte {
	p := &packer{}
	p.u16(r.Lane)
	p.u16(r.Tile)
	p.u16(r.Cycle)
	p.f32(r.PhasingWeight)
	p.f32(r.PrephasingWeight)
	return p.buf
}

// PhasingFile assembles a phasing metrics file.
func PhasingFile(records ...interop.PhasingRecord) []byte {
	packed := make([][]byte, len(records))
	for i, r := range records {
		packed[i] = PackPhasing(r)
	}
	return File(PhasingVersion, PhasingRecordLen, packed...)
}

// PackCollapsedQ packs one collapsed quality metrics record.
func PackCollapsedQ(r interop.CollapsedQRecord) []byte {
	p := &packer{}
	p.u16(r.Lane)
	p.u16(r.Tile)
	p.u16(r.Cycle)
	p.u32(r.Q20)
	p.u32(r.Q30)
	p.u32(r.TotalCount)
	p.f32(r.MedianScore)
	return p.buf
}

// CollapsedQFile assembles a collapsed quality metrics file.
func CollapsedQFile(records ...interop.CollapsedQRecord) []byte {
	packed := make([][]byte, len(records))
	for i, r := range records {
		packed[i] = PackCollapsedQ(r)
	}
	return File(CollapsedQVersion, CollapsedQRecLen, packed...)
}

// PackIndex packs one variable-length index metrics record.
func PackIndex(r interop.IndexRecord) []byte {
	p := &packer{}
	p.u16(r.Lane)
	p.u16(r.Tile)
	p.u16(r.Read)
	p.u16(uint16(len(r.IndexName)))
	p.buf = append(p.buf, r.IndexName...)
	p.u32(r.ClusterCount)
	p.u16(uint16(len(r.SampleName)))
	p.buf = append(p.buf, r.SampleName...)
	p.u16(uint16(len(r.ProjectName)))
	p.buf = append(p.buf, r.ProjectName...)
	return p.buf
}

// IndexFile assembles an index metrics file (one-byte header).
func IndexFile(records ...interop.IndexRecord) []byte {
	out := []byte{IndexVersion}
	for _, r := range records {
		out = append(out, PackIndex(r)...)
	}
	return out
}

// RandomTile returns a tile record with fields drawn from rng.
func RandomTile(rng *rand.Rand) interop.TileRecord {
	return interop.TileRecord{
		Lane:        uint16(rng.Intn(1 << 16)),
		Tile:        uint16(rng.Intn(1 << 16)),
		MetricCode:  uint16(rng.Intn(1 << 16)),
		MetricValue: rng.Float32(),
	}
}

// RandomError returns an error record with fields drawn from rng.
func RandomError(rng *rand.Rand) interop.ErrorRecord {
	return interop.ErrorRecord{
		Lane:       uint16(rng.Intn(1 << 16)),
		Tile:       uint16(rng.Intn(1 << 16)),
		Cycle:      uint16(rng.Intn(1 << 16)),
		ErrorRate:  rng.Float32(),
		NumPerfect: rng.Uint32(),
		NumOne:     rng.Uint32(),
		NumTwo:     rng.Uint32(),
		NumThree:   rng.Uint32(),
		NumFour:    rng.Uint32(),
	}
}

// RandomQuality returns a quality record with fields drawn from rng.
func RandomQuality(rng *rand.Rand) interop.QualityRecord {
	rec := interop.QualityRecord{
		Lane:  uint16(rng.Intn(1 << 16)),
		Tile:  uint16(rng.Intn(1 << 16)),
		Cycle: uint16(rng.Intn(1 << 16)),
	}
	for i := range rec.Bins {
		rec.Bins[i] = uint32(rng.Intn(1 << 20))
	}
	return rec
}

package interop

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// cursor walks a raw record buffer field by field. All fixed-size formats are
// little endian.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) u16() uint16 {
	v := binary.LittleEndian.Uint16(c.buf[c.off:])
	c.off += 2
	return v
}

func (c *cursor) u32() uint32 {
	v := binary.LittleEndian.Uint32(c.buf[c.off:])
	c.off += 4
	return v
}

func (c *cursor) u64() uint64 {
	v := binary.LittleEndian.Uint64(c.buf[c.off:])
	c.off += 8
	return v
}

func (c *cursor) f32() float32 {
	return math.Float32frombits(c.u32())
}

// ReadTiles decodes a tile metrics file.
func ReadTiles(r io.Reader) ([]TileRecord, error) {
	raw, err := readRecords(r, tileLayout)
	if err != nil {
		return nil, err
	}
	records := make([]TileRecord, 0, len(raw))
	for _, buf := range raw {
		c := cursor{buf: buf}
		records = append(records, TileRecord{
			Lane:        c.u16(),
			Tile:        c.u16(),
			MetricCode:  c.u16(),
			MetricValue: c.f32(),
		})
	}
	return records, nil
}

// ReadErrors decodes a phiX error metrics file.
func ReadErrors(r io.Reader) ([]ErrorRecord, error) {
	raw, err := readRecords(r, errorLayout)
	if err != nil {
		return nil, err
	}
	records := make([]ErrorRecord, 0, len(raw))
	for _, buf := range raw {
		c := cursor{buf: buf}
		records = append(records, ErrorRecord{
			Lane:       c.u16(),
			Tile:       c.u16(),
			Cycle:      c.u16(),
			ErrorRate:  c.f32(),
			NumPerfect: c.u32(),
			NumOne:     c.u32(),
			NumTwo:     c.u32(),
			NumThree:   c.u32(),
			NumFour:    c.u32(),
		})
	}
	return records, nil
}

// ReadQuality decodes a quality metrics file.
func ReadQuality(r io.Reader) ([]QualityRecord, error) {
	raw, err := readRecords(r, qualityLayout)
	if err != nil {
		return nil, err
	}
	records := make([]QualityRecord, 0, len(raw))
	for _, buf := range raw {
		c := cursor{buf: buf}
		rec := QualityRecord{
			Lane:  c.u16(),
			Tile:  c.u16(),
			Cycle: c.u16(),
		}
		for i := range rec.Bins {
			rec.Bins[i] = c.u32()
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadCorrectedIntensities decodes a corrected intensity metrics file.
func ReadCorrectedIntensities(r io.Reader) ([]CorrectedIntensityRecord, error) {
	raw, err := readRecords(r, correctedLayout)
	if err != nil {
		return nil, err
	}
	records := make([]CorrectedIntensityRecord, 0, len(raw))
	for _, buf := range raw {
		c := cursor{buf: buf}
		records = append(records, CorrectedIntensityRecord{
			Lane:                 c.u16(),
			Tile:                 c.u16(),
			Cycle:                c.u16(),
			AvgCycleIntensity:    c.u16(),
			AvgCorrectedA:        c.u16(),
			AvgCorrectedC:        c.u16(),
			AvgCorrectedG:        c.u16(),
			AvgCorrectedT:        c.u16(),
			AvgCorrectedClusterA: c.u16(),
			AvgCorrectedClusterC: c.u16(),
			AvgCorrectedClusterG: c.u16(),
			AvgCorrectedClusterT: c.u16(),
			NumBaseCallsNone:     c.u32(),
			NumBaseCallsA:        c.u32(),
			NumBaseCallsC:        c.u32(),
			NumBaseCallsG:        c.u32(),
			NumBaseCallsT:        c.u32(),
			SNR:                  c.f32(),
		})
	}
	return records, nil
}

// ReadExtractions decodes an extraction metrics file.
func ReadExtractions(r io.Reader) ([]ExtractionRecord, error) {
	raw, err := readRecords(r, extractionLayout)
	if err != nil {
		return nil, err
	}
	records := make([]ExtractionRecord, 0, len(raw))
	for _, buf := range raw {
		c := cursor{buf: buf}
		records = append(records, ExtractionRecord{
			Lane:          c.u16(),
			Tile:          c.u16(),
			Cycle:         c.u16(),
			FocusA:        c.f32(),
			FocusC:        c.f32(),
			FocusG:        c.f32(),
			FocusT:        c.f32(),
			MaxIntensityA: c.u16(),
			MaxIntensityC: c.u16(),
			MaxIntensityG: c.u16(),
			MaxIntensityT: c.u16(),
			Datestamp:     c.u64(),
		})
	}
	return records, nil
}

// ReadImages decodes an image metrics file.
func ReadImages(r io.Reader) ([]ImageRecord, error) {
	raw, err := readRecords(r, imageLayout)
	if err != nil {
		return nil, err
	}
	records := make([]ImageRecord, 0, len(raw))
	for _, buf := range raw {
		c := cursor{buf: buf}
		records = append(records, ImageRecord{
			Lane:        c.u16(),
			Tile:        c.u16(),
			Cycle:       c.u16(),
			Channel:     c.u16(),
			MinContrast: c.u16(),
			MaxContrast: c.u16(),
		})
	}
	return records, nil
}

// ReadPhasing decodes an empirical phasing metrics file.
func ReadPhasing(r io.Reader) ([]PhasingRecord, error) {
	raw, err := readRecords(r, phasingLayout)
	if err != nil {
		return nil, err
	}
	records := make([]PhasingRecord, 0, len(raw))
	for _, buf := range raw {
		c := cursor{buf: buf}
		records = append(records, PhasingRecord{
			Lane:             c.u16(),
			Tile:             c.u16(),
			Cycle:            c.u16(),
			PhasingWeight:    c.f32(),
			PrephasingWeight: c.f32(),
		})
	}
	return records, nil
}

// ReadCollapsedQ decodes a collapsed quality metrics file.
func ReadCollapsedQ(r io.Reader) ([]CollapsedQRecord, error) {
	raw, err := readRecords(r, collapsedQLayout)
	if err != nil {
		return nil, err
	}
	records := make([]CollapsedQRecord, 0, len(raw))
	for _, buf := range raw {
		c := cursor{buf: buf}
		records = append(records, CollapsedQRecord{
			Lane:        c.u16(),
			Tile:        c.u16(),
			Cycle:       c.u16(),
			Q20:         c.u32(),
			Q30:         c.u32(),
			TotalCount:  c.u32(),
			MedianScore: c.f32(),
		})
	}
	return records, nil
}

// ReadIndexes decodes an index metrics file. The format differs from the
// fixed-size families: a one-byte header (version only) and variable-length
// records with length-prefixed names.
func ReadIndexes(r io.Reader) ([]IndexRecord, error) {
	var header [1]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("interop: read index metrics header: %w", err)
	}
	if v := int(header[0]); v < indexMinVersion {
		return nil, fmt.Errorf("interop: index metrics file version %d is less than minimum version %d", v, indexMinVersion)
	}
	var records []IndexRecord
	for {
		var fixed [6]byte
		n, err := io.ReadFull(r, fixed[:])
		if err == io.EOF {
			return records, nil
		}
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("interop: partial index metrics record of length %d", n)
		}
		if err != nil {
			return nil, fmt.Errorf("interop: read index metrics record: %w", err)
		}
		rec := IndexRecord{
			Lane: binary.LittleEndian.Uint16(fixed[0:]),
			Tile: binary.LittleEndian.Uint16(fixed[2:]),
			Read: binary.LittleEndian.Uint16(fixed[4:]),
		}
		if rec.IndexName, err = readPrefixedString(r); err != nil {
			return nil, fmt.Errorf("interop: read index name: %w", err)
		}
		var count [4]byte
		if _, err := io.ReadFull(r, count[:]); err != nil {
			return nil, fmt.Errorf("interop: read index cluster count: %w", err)
		}
		rec.ClusterCount = binary.LittleEndian.Uint32(count[:])
		if rec.SampleName, err = readPrefixedString(r); err != nil {
			return nil, fmt.Errorf("interop: read sample name: %w", err)
		}
		if rec.ProjectName, err = readPrefixedString(r); err != nil {
			return nil, fmt.Errorf("interop: read project name: %w", err)
		}
		records = append(records, rec)
	}
}

// readPrefixedString reads a uint16 length followed by that many bytes.
func readPrefixedString(r io.Reader) (string, error) {
	var prefix [2]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return "", err
	}
	length := binary.LittleEndian.Uint16(prefix[:])
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

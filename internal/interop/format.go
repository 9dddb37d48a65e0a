// Package interop decodes the binary InterOp metrics files an Illumina MiSeq
// writes into a run directory. Every fixed-size format starts with a two-byte
// header (file version, record length) followed by back-to-back records in
// little-endian layout. The index metrics file is the odd one out: a one-byte
// header and variable-length records.
package interop

import (
	"fmt"
	"io"
)

// recordLayout describes one fixed-size record format: the smallest file
// version this decoder understands and the number of bytes it decodes from
// the front of each record. Files may declare a larger record length than
// the decoded prefix; the remainder of each record is skipped.
type recordLayout struct {
	name       string
	minVersion int
	size       int
}

var (
	tileLayout       = recordLayout{name: "tile metrics", minVersion: 2, size: 10}
	errorLayout      = recordLayout{name: "error metrics", minVersion: 3, size: 30}
	qualityLayout    = recordLayout{name: "quality metrics", minVersion: 4, size: 206}
	correctedLayout  = recordLayout{name: "corrected intensity metrics", minVersion: 2, size: 48}
	extractionLayout = recordLayout{name: "extraction metrics", minVersion: 2, size: 38}
	imageLayout      = recordLayout{name: "image metrics", minVersion: 1, size: 12}
	phasingLayout    = recordLayout{name: "phasing metrics", minVersion: 1, size: 14}
	collapsedQLayout = recordLayout{name: "collapsed quality metrics", minVersion: 2, size: 22}
)

// QualityBinCount is the number of per-cycle quality histogram bins (Q1..Q50).
const QualityBinCount = 50

// indexMinVersion is the oldest supported index metrics file version. The
// index file header carries only the version byte; record lengths are encoded
// per field.
const indexMinVersion = 1

// readHeader consumes the two-byte header and checks the version floor.
func readHeader(r io.Reader, layout recordLayout) (recordLength int, err error) {
	var header [2]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, fmt.Errorf("interop: read %s header: %w", layout.name, err)
	}
	version := int(header[0])
	if version < layout.minVersion {
		return 0, fmt.Errorf("interop: %s file version %d is less than minimum version %d", layout.name, version, layout.minVersion)
	}
	recordLength = int(header[1])
	if recordLength < layout.size {
		return 0, fmt.Errorf("interop: %s record length %d is shorter than the %d-byte layout", layout.name, recordLength, layout.size)
	}
	return recordLength, nil
}

// readRecords returns the raw records that follow the header. A trailing
// record shorter than the declared record length is an error; an empty record
// section is not.
func readRecords(r io.Reader, layout recordLayout) ([][]byte, error) {
	recordLength, err := readHeader(r, layout)
	if err != nil {
		return nil, err
	}
	var records [][]byte
	for {
		buf := make([]byte, recordLength)
		n, err := io.ReadFull(r, buf)
		if err == io.EOF {
			return records, nil
		}
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("interop: partial %s record of length %d", layout.name, n)
		}
		if err != nil {
			return nil, fmt.Errorf("interop: read %s record: %w", layout.name, err)
		}
		records = append(records, buf)
	}
}

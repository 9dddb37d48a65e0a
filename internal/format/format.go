// Package format renders extracted records and summaries as JSON, CSV, or
// aligned text tables.
package format

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Create opens path for writing, creating parent directories as needed.
func Create(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("format: ensure %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("format: create %s: %w", path, err)
	}
	return f, nil
}

// JSON writes v as indented JSON followed by a newline.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("format: encode json: %w", err)
	}
	return nil
}

// CSV writes a header row followed by the data rows. Empty input writes
// nothing at all, matching the behavior callers rely on to skip empty
// metric files.
func CSV(w io.Writer, columns []string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("format: write csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("format: write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("format: flush csv: %w", err)
	}
	return nil
}

// KV is one labelled value for key/value table output.
type KV struct {
	Key   string
	Value string
}

// KeyValueTable writes aligned "key : value" lines.
func KeyValueTable(w io.Writer, pairs []KV) error {
	width := 0
	for _, kv := range pairs {
		if len(kv.Key) > width {
			width = len(kv.Key)
		}
	}
	for _, kv := range pairs {
		if _, err := fmt.Fprintf(w, "%-*s : %s\n", width, kv.Key, kv.Value); err != nil {
			return err
		}
	}
	return nil
}

// RowTable writes a column-aligned table with a dashed separator under the
// header. Empty input prints "No data to display".
func RowTable(w io.Writer, columns []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No data to display")
		return err
	}
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	writeRow := func(cells []string) error {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		_, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
		return err
	}
	if err := writeRow(columns); err != nil {
		return err
	}
	dashes := make([]string, len(columns))
	for i := range dashes {
		dashes[i] = strings.Repeat("-", widths[i])
	}
	if err := writeRow(dashes); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeRow(row); err != nil {
			return err
		}
	}
	return nil
}

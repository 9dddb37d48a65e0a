package run

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// Filter narrows a Discover scan. Zero value matches every valid run.
type Filter struct {
	// NeedsProcessing keeps only runs whose needsprocessing marker exists.
	NeedsProcessing bool
	// QCUploaded keeps only runs whose qc_uploaded marker exists.
	QCUploaded bool
	// Pattern, when non-nil, must match the run directory name.
	Pattern *regexp.Regexp
}

// Discover scans the immediate children of runsDir and returns the valid run
// directories that pass the filter, sorted by name. Children that are not
// valid run directories, or that fail to open, are skipped.
func Discover(runsDir string, filter Filter) ([]*Run, error) {
	info, err := os.Stat(runsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("run: directory does not exist: %s", runsDir)
		}
		return nil, fmt.Errorf("run: stat %s: %w", runsDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("run: %s is not a directory", runsDir)
	}

	entries, err := os.ReadDir(runsDir)
	if err != nil {
		return nil, fmt.Errorf("run: read %s: %w", runsDir, err)
	}

	var runs []*Run
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if filter.Pattern != nil && !filter.Pattern.MatchString(entry.Name()) {
			continue
		}
		path := filepath.Join(runsDir, entry.Name())
		if !IsRunDir(path) {
			continue
		}
		r, err := Open(path)
		if err != nil {
			continue
		}
		if filter.NeedsProcessing && !r.NeedsProcessing {
			continue
		}
		if filter.QCUploaded && !r.QCUploaded {
			continue
		}
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Name < runs[j].Name })
	return runs, nil
}

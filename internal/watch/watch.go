// Package watch observes a runs directory and reports runs whose processing
// state changes: a new run directory appearing, a needsprocessing marker
// being dropped or cleared, QC results being uploaded.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/miseqtools/miseqinterop/internal/run"
)

// Kind classifies a watch event.
type Kind int

const (
	// Pending: the run needs processing (new run or marker created).
	Pending Kind = iota
	// Processed: the needsprocessing marker was cleared.
	Processed
	// Uploaded: the qc_uploaded marker appeared.
	Uploaded
)

func (k Kind) String() string {
	switch k {
	case Pending:
		return "pending"
	case Processed:
		return "processed"
	case Uploaded:
		return "uploaded"
	}
	return "unknown"
}

// Event is one observed state change for a run directory.
type Event struct {
	Kind Kind
	Name string
	Dir  string
}

// Option configures a Watch call.
type Option func(*options)

type options struct {
	logf func(format string, args ...any)
}

// WithLogf routes watcher diagnostics (failed directory adds, fsnotify
// errors) to logf instead of dropping them.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(o *options) { o.logf = logf }
}

// Watch starts observing runsDir and returns the event channel. The channel
// is closed when ctx is canceled or the underlying watcher fails. Runs that
// already need processing at start are emitted immediately.
//
// The runs directory itself and each run directory are watched; fsnotify
// does not recurse, so new run directories are added to the watcher as they
// appear.
func Watch(ctx context.Context, runsDir string, opts ...Option) (<-chan Event, error) {
	o := options{logf: func(string, ...any) {}}
	for _, opt := range opts {
		opt(&o)
	}

	runs, err := run.Discover(runsDir, run.Filter{})
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	if err := w.Add(runsDir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch: watch %s: %w", runsDir, err)
	}
	for _, r := range runs {
		if err := w.Add(r.Dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("watch: watch %s: %w", r.Dir, err)
		}
	}

	events := make(chan Event)
	go func() {
		defer close(events)
		defer w.Close()

		// Pending state already on disk counts as an event so a fresh
		// watcher does not miss runs that arrived while nobody looked.
		pending := map[string]bool{}
		for _, r := range runs {
			if r.NeedsProcessing {
				pending[r.Dir] = true
				select {
				case events <- Event{Kind: Pending, Name: r.Name, Dir: r.Dir}:
				case <-ctx.Done():
					return
				}
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				for _, out := range interpret(w, ev, runsDir, pending, o.logf) {
					select {
					case events <- out:
					case <-ctx.Done():
						return
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				o.logf("watch: %v", err)
			}
		}
	}()
	return events, nil
}

// interpret turns one fsnotify event into zero or more watch events and
// keeps the watcher and pending set up to date.
func interpret(w *fsnotify.Watcher, ev fsnotify.Event, runsDir string, pending map[string]bool, logf func(format string, args ...any)) []Event {
	dir := filepath.Dir(ev.Name)
	base := filepath.Base(ev.Name)

	// A new child of the runs directory: start watching it, and if it is
	// already a complete pending run, report it.
	if dir == filepath.Clean(runsDir) && ev.Op.Has(fsnotify.Create) {
		info, err := os.Stat(ev.Name)
		if err != nil || !info.IsDir() {
			return nil
		}
		if err := w.Add(ev.Name); err != nil {
			logf("watch: watch %s: %v", ev.Name, err)
		}
		if r, err := run.Open(ev.Name); err == nil && r.NeedsProcessing && !pending[r.Dir] {
			pending[r.Dir] = true
			return []Event{{Kind: Pending, Name: r.Name, Dir: r.Dir}}
		}
		return nil
	}

	switch base {
	case run.NeedsProcessingMarker:
		r, err := run.Open(dir)
		if err != nil {
			return nil
		}
		if ev.Op.Has(fsnotify.Create) && !pending[r.Dir] {
			pending[r.Dir] = true
			return []Event{{Kind: Pending, Name: r.Name, Dir: r.Dir}}
		}
		if ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename) {
			delete(pending, r.Dir)
			return []Event{{Kind: Processed, Name: r.Name, Dir: r.Dir}}
		}
	case run.QCUploadedMarker:
		if ev.Op.Has(fsnotify.Create) {
			if r, err := run.Open(dir); err == nil {
				return []Event{{Kind: Uploaded, Name: r.Name, Dir: r.Dir}}
			}
		}
	}
	return nil
}

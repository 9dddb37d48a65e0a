package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/miseqtools/miseqinterop/internal/run"
)

func makeRunDir(t *testing.T, parent, name string, markers ...string) string {
	t.Helper()
	dir := filepath.Join(parent, name)
	if err := os.MkdirAll(filepath.Join(dir, run.InterOpDirName), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, run.SampleSheetName), []byte("[Header]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	for _, marker := range markers {
		if err := os.WriteFile(filepath.Join(dir, marker), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func nextEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-events:
		if !ok {
			t.Fatal("event channel closed")
		}
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestKindString(t *testing.T) {
	if Pending.String() != "pending" || Processed.String() != "processed" || Uploaded.String() != "uploaded" {
		t.Errorf("%s/%s/%s", Pending, Processed, Uploaded)
	}
	if Kind(99).String() != "unknown" {
		t.Errorf("Kind(99) = %s", Kind(99))
	}
}

func TestWatchEmitsExistingPendingRuns(t *testing.T) {
	runsDir := t.TempDir()
	makeRunDir(t, runsDir, "160101_M01234_0001_A", run.NeedsProcessingMarker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := Watch(ctx, runsDir)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	ev := nextEvent(t, events)
	if ev.Kind != Pending || ev.Name != "160101_M01234_0001_A" {
		t.Errorf("event = %+v", ev)
	}
}

func TestWatchMarkerTransitions(t *testing.T) {
	runsDir := t.TempDir()
	dir := makeRunDir(t, runsDir, "160101_M01234_0001_A")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := Watch(ctx, runsDir)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	marker := filepath.Join(dir, run.NeedsProcessingMarker)
	if err := os.WriteFile(marker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	ev := nextEvent(t, events)
	if ev.Kind != Pending {
		t.Fatalf("after marker create: %+v", ev)
	}

	if err := os.Remove(marker); err != nil {
		t.Fatal(err)
	}
	ev = nextEvent(t, events)
	if ev.Kind != Processed {
		t.Fatalf("after marker remove: %+v", ev)
	}

	if err := os.WriteFile(filepath.Join(dir, run.QCUploadedMarker), nil, 0644); err != nil {
		t.Fatal(err)
	}
	ev = nextEvent(t, events)
	if ev.Kind != Uploaded {
		t.Fatalf("after upload marker: %+v", ev)
	}
}

func TestWatchClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	events, err := Watch(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	cancel()
	select {
	case _, ok := <-events:
		if ok {
			t.Fatal("expected closed channel, got event")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestWatchMissingRunsDir(t *testing.T) {
	if _, err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing runs directory")
	}
}

func TestInterpretLogsFailedAdd(t *testing.T) {
	runsDir := t.TempDir()
	dir := makeRunDir(t, runsDir, "160101_M01234_0001_A")

	w, err := fsnotify.NewWatcher()
	if err != nil {
		t.Fatal(err)
	}
	w.Close()

	var logged []string
	logf := func(format string, args ...any) {
		logged = append(logged, fmt.Sprintf(format, args...))
	}
	ev := fsnotify.Event{Name: dir, Op: fsnotify.Create}
	interpret(w, ev, runsDir, map[string]bool{}, logf)

	if len(logged) == 0 {
		t.Fatal("failed Add was not logged")
	}
	if !strings.Contains(logged[0], dir) {
		t.Errorf("logged %q, want mention of %s", logged[0], dir)
	}
}

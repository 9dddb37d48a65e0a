package format_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/miseqtools/miseqinterop/internal/format"
)

func TestCreateMakesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.json")
	f, err := format.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.WriteString("{}"); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{}" {
		t.Errorf("file contents = %q", data)
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := format.JSON(&buf, map[string]int{"count": 3}); err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"count\": 3\n}\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	err := format.CSV(&buf, []string{"lane", "tile"}, [][]string{{"1", "1101"}, {"1", "1102"}})
	if err != nil {
		t.Fatal(err)
	}
	want := "lane,tile\n1,1101\n1,1102\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestCSVEmptyRowsWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	if err := format.CSV(&buf, []string{"lane"}, nil); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("got %q, want empty output", buf.String())
	}
}

func TestKeyValueTableAlignment(t *testing.T) {
	var buf bytes.Buffer
	err := format.KeyValueTable(&buf, []format.KV{
		{Key: "run_name", Value: "160101_M01234"},
		{Key: "path", Value: "/runs/160101_M01234"},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "run_name : 160101_M01234\npath     : /runs/160101_M01234\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestRowTable(t *testing.T) {
	var buf bytes.Buffer
	err := format.RowTable(&buf, []string{"lane", "metric_value"}, [][]string{{"1", "1250.5"}})
	if err != nil {
		t.Fatal(err)
	}
	want := "lane  metric_value\n----  ------------\n1     1250.5\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestRowTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := format.RowTable(&buf, []string{"lane"}, nil); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "No data to display\n" {
		t.Errorf("got %q", buf.String())
	}
}

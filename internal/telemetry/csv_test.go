package telemetry

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/vovakirdan/dinoevo/internal/evolve"
)

func readRecords(t *testing.T, r io.Reader) []GenerationRecord {
	t.Helper()
	var records []GenerationRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		t.Fatalf("gocsv.Unmarshal() error = %v", err)
	}
	return records
}

func sampleStats(gen int) evolve.GenerationStats {
	return evolve.GenerationStats{
		Generation: gen,
		Size:       50,
		Best:       float64(gen) + 0.5,
		Mean:       1.25,
		StdDev:     0.5,
		Worst:      -1,
		BestID:     gen + 7,
		Ticks:      120,
		Elapsed:    250 * time.Millisecond,
	}
}

func TestWriterHeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	for gen := 0; gen < 3; gen++ {
		if err := w.Write(sampleStats(gen)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header plus 3 rows:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "generation,population,best") {
		t.Errorf("header = %q", lines[0])
	}
	if strings.Count(buf.String(), "generation,") != 1 {
		t.Error("header written more than once")
	}

	records := readRecords(t, strings.NewReader(buf.String()))
	if len(records) != 3 || records[2].Generation != 2 || records[2].BestID != 9 || records[2].ElapsedMS != 250 {
		t.Errorf("records = %+v", records)
	}
}

func TestCreateAndReporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "generations.csv")
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	r := NewReporter(w)
	r.StartGeneration(0)
	r.EndGeneration(sampleStats(0), nil)
	r.EndGeneration(sampleStats(1), nil)
	if err := r.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()
	records := readRecords(t, f)
	if len(records) != 2 || records[1].Best != 1.5 {
		t.Errorf("records = %+v", records)
	}
}

// Package telemetry exports per-generation statistics as CSV.
package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/vovakirdan/dinoevo/internal/evolve"
)

// GenerationRecord is one CSV row.
type GenerationRecord struct {
	Generation int     `csv:"generation"`
	Size       int     `csv:"population"`
	Best       float64 `csv:"best"`
	Mean       float64 `csv:"mean"`
	StdDev     float64 `csv:"stddev"`
	Worst      float64 `csv:"worst"`
	BestID     int     `csv:"best_genome"`
	Ticks      int     `csv:"ticks"`
	Survivors  int     `csv:"survivors"`
	Capped     bool    `csv:"capped"`
	ElapsedMS  int64   `csv:"elapsed_ms"`
}

// NewRecord converts generation statistics to a CSV row.
func NewRecord(s evolve.GenerationStats) GenerationRecord {
	return GenerationRecord{
		Generation: s.Generation,
		Size:       s.Size,
		Best:       s.Best,
		Mean:       s.Mean,
		StdDev:     s.StdDev,
		Worst:      s.Worst,
		BestID:     s.BestID,
		Ticks:      s.Ticks,
		Survivors:  s.Survivors,
		Capped:     s.Capped,
		ElapsedMS:  s.Elapsed.Milliseconds(),
	}
}

// Writer appends generation rows to a CSV stream. The header is written
// with the first row.
type Writer struct {
	w             io.Writer
	closer        io.Closer
	headerWritten bool
}

// NewWriter writes rows to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Create opens path for writing, creating parent directories.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("telemetry: creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating %s: %w", path, err)
	}
	return &Writer{w: f, closer: f}, nil
}

// Write appends one row.
func (w *Writer) Write(s evolve.GenerationStats) error {
	records := []GenerationRecord{NewRecord(s)}

	if !w.headerWritten {
		if err := gocsv.Marshal(records, w.w); err != nil {
			return fmt.Errorf("telemetry: writing generation: %w", err)
		}
		w.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, w.w); err != nil {
		return fmt.Errorf("telemetry: writing generation: %w", err)
	}
	return nil
}

// Close closes the underlying file when the writer owns one.
func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

// Reporter adapts a Writer to evolve.Reporter. The first write error is kept
// and later rows are skipped.
type Reporter struct {
	w   *Writer
	err error
}

// NewReporter creates a reporter writing through w.
func NewReporter(w *Writer) *Reporter {
	return &Reporter{w: w}
}

func (r *Reporter) StartGeneration(int) {}

func (r *Reporter) EndGeneration(s evolve.GenerationStats, _ *evolve.Genome) {
	if r.err != nil {
		return
	}
	r.err = r.w.Write(s)
}

func (r *Reporter) FoundSolution(int, *evolve.Genome) {}

// Err returns the first write error.
func (r *Reporter) Err() error {
	return r.err
}


package telemetry

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// Recorder buffers tick statistics in memory and flushes them to a CSV
// file. Flush may be called repeatedly: the first call truncates the file
// and writes the header, later calls append rows only, so long runs can
// flush periodically instead of holding every row until shutdown. A zero
// path disables recording entirely; Record and Flush become no-ops, so
// callers don't need to branch.
type Recorder struct {
	path      string
	rows      []*TickStats
	total     int
	appending bool
}

// NewRecorder creates a recorder writing to path on Flush.
func NewRecorder(path string) *Recorder {
	return &Recorder{path: path}
}

// Record appends one tick's statistics.
func (r *Recorder) Record(s TickStats) {
	if r.path == "" {
		return
	}
	r.rows = append(r.rows, &s)
	r.total++
}

// Len returns the number of rows buffered since the last Flush.
func (r *Recorder) Len() int {
	return len(r.rows)
}

// Total returns the number of rows recorded over the recorder's lifetime.
func (r *Recorder) Total() int {
	return r.total
}

// Flush writes the buffered rows to the CSV file and empties the buffer.
func (r *Recorder) Flush() error {
	if r.path == "" || len(r.rows) == 0 {
		return nil
	}

	flags := os.O_WRONLY | os.O_CREATE
	if r.appending {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(r.path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open telemetry file: %w", err)
	}
	defer f.Close()

	if r.appending {
		err = gocsv.MarshalWithoutHeaders(&r.rows, f)
	} else {
		err = gocsv.MarshalFile(&r.rows, f)
	}
	if err != nil {
		return fmt.Errorf("failed to write telemetry csv: %w", err)
	}

	r.appending = true
	r.rows = r.rows[:0]
	return nil
}

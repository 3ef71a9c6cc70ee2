package attendance

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/andresmejia3/facelog/internal/types"
)

// TimestampLayout is the format of the second column of a log row.
const TimestampLayout = "2006-01-02 15:04:05"

// DefaultLogPath is the log file written in the working directory.
const DefaultLogPath = "face_log.csv"

// Sink receives every record after it has been written to the CSV log.
type Sink interface {
	RecordAttendance(ctx context.Context, rec types.Record) error
}

// Logger appends one row per person per session. It owns the session log set:
// a name is in the set iff its row has been written during this run.
type Logger struct {
	Path string
	Sink Sink

	logged map[string]struct{}
}

// NewLogger returns a Logger with an empty session log set.
func NewLogger(path string, sink Sink) *Logger {
	return &Logger{Path: path, Sink: sink, logged: make(map[string]struct{})}
}

// Log writes a row for name unless it was already logged this session or is
// Unknown. It reports whether a row was written.
func (l *Logger) Log(ctx context.Context, name string, now time.Time) (bool, error) {
	if name == "" || name == types.UnknownName {
		return false, nil
	}
	if _, done := l.logged[name]; done {
		return false, nil
	}

	rec := types.Record{Name: name, Time: now}
	if err := appendRow(l.Path, rec); err != nil {
		return false, err
	}
	l.logged[name] = struct{}{}

	if l.Sink != nil {
		if err := l.Sink.RecordAttendance(ctx, rec); err != nil {
			// The CSV row stands; the caller decides whether a sink failure matters
			return true, fmt.Errorf("attendance sink: %w", err)
		}
	}
	return true, nil
}

// Seen reports whether name has been logged in this session.
func (l *Logger) Seen(name string) bool {
	_, ok := l.logged[name]
	return ok
}

// Logged returns the names logged so far, sorted.
func (l *Logger) Logged() []string {
	names := make([]string, 0, len(l.logged))
	for n := range l.logged {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// appendRow opens the log, writes one row and closes it again.
func appendRow(path string, rec types.Record) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open attendance log: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{rec.Name, rec.Time.Format(TimestampLayout)}); err != nil {
		f.Close()
		return fmt.Errorf("write attendance row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush attendance row: %w", err)
	}
	return f.Close()
}

// ReadRecords parses a log file written by Logger.
func ReadRecords(path string) ([]types.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	records := make([]types.Record, 0, len(rows))
	for i, row := range rows {
		ts, err := time.ParseInLocation(TimestampLayout, row[1], time.Local)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+1, err)
		}
		records = append(records, types.Record{Name: row[0], Time: ts})
	}
	return records, nil
}

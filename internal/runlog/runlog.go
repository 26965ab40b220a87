// Package runlog appends timestamped run records to a plain text log,
// one line per event, with untimestamped trailer lines between runs.
package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const timeFormat = "2006-01-02 15:04:05"

// Log writes run records to a file. A nil *Log swallows every call, so
// callers never guard on logging being enabled.
type Log struct {
	f     *os.File
	jobID string
}

// Open appends to the file at path, creating parent directories as
// needed. jobID may be empty.
func Open(path, jobID string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return &Log{f: f, jobID: jobID}, nil
}

// Printf writes one line: the timestamp, the job id when one is set, a
// dash, and the text.
func (l *Log) Printf(format string, args ...any) {
	if l == nil {
		return
	}
	line := time.Now().Format(timeFormat) + " "
	if l.jobID != "" {
		line += "jobid: " + l.jobID + " "
	}
	line += "- " + fmt.Sprintf(format, args...)
	fmt.Fprintln(l.f, line)
}

// Start writes the opening record for a run, preceded by a blank line
// so runs stay visually separated in a shared file.
func (l *Log) Start(format string, args ...any) {
	if l == nil {
		return
	}
	fmt.Fprintln(l.f)
	l.Printf(format, args...)
}

// Banner writes an untimestamped trailer line.
func (l *Log) Banner(text string) {
	if l == nil {
		return
	}
	fmt.Fprintln(l.f, "| "+text)
}

func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	return l.f.Close()
}

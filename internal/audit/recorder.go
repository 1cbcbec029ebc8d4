// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package audit maintains the append-only JSONL trail of privileged
// operations.
package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Recorder appends records to a JSONL file, one object per line.
type Recorder struct {
	mu   sync.Mutex
	path string
}

// NewRecorder returns a recorder for path. Nothing is touched on disk until
// the first Append.
func NewRecorder(path string) *Recorder {
	return &Recorder{path: path}
}

// Append writes rec as a single line, creating the log and its parent
// directories as needed.
func (r *Recorder) Append(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	data = append(data, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0700); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync audit log: %w", err)
	}
	return nil
}

// Path returns the audit log file path.
func (r *Recorder) Path() string {
	return r.path
}

// Summarize summarizes the most recent limit records. See Summarize.
func (r *Recorder) Summarize(limit int) (*Summary, error) {
	return Summarize(r.path, limit)
}

// Tail returns the last n valid records.
func (r *Recorder) Tail(n int) ([]Record, error) {
	return Tail(r.path, n)
}

// Verify checks the log's ordering and well-formedness.
func (r *Recorder) Verify() error {
	return Verify(r.path)
}

// scanLines calls fn for every non-empty line of the log. terminated is
// false only for a final line with no trailing newline.
func scanLines(path string, fn func(lineNo int, line []byte, terminated bool) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	for lineNo := 1; ; lineNo++ {
		line, err := br.ReadBytes('\n')
		terminated := err == nil
		if n := len(line); terminated {
			line = line[:n-1]
		}
		if len(line) > 0 {
			if ferr := fn(lineNo, line, terminated); ferr != nil {
				return ferr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read audit log: %w", err)
		}
	}
}

// readRecords returns the last limit valid records (all when limit <= 0),
// silently skipping lines that do not parse.
func readRecords(path string, limit int) ([]Record, error) {
	var recs []Record
	err := scanLines(path, func(_ int, line []byte, _ bool) error {
		var rec Record
		if json.Unmarshal(line, &rec) != nil {
			return nil
		}
		recs = append(recs, rec)
		if limit > 0 && len(recs) > limit {
			recs = recs[1:]
		}
		return nil
	})
	return recs, err
}

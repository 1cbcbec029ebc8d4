// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"encoding/json"
	"fmt"
	"time"
)

// Verify reads the audit log and checks that every line is a valid record
// and that timestamps never go backwards. A final line without a newline is
// a write interrupted by a crash and is tolerated.
// Returns nil if the log is valid, or an error describing the first violation.
func Verify(path string) error {
	var prev time.Time
	var prevLine int
	err := scanLines(path, func(lineNo int, line []byte, terminated bool) error {
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			if !terminated {
				return nil
			}
			return fmt.Errorf("line %d: invalid record: %w", lineNo, err)
		}
		if rec.Timestamp.Before(prev) {
			return fmt.Errorf("line %d: timestamp %s precedes line %d (%s)",
				lineNo, rec.Timestamp.Format(time.RFC3339Nano), prevLine, prev.Format(time.RFC3339Nano))
		}
		prev, prevLine = rec.Timestamp, lineNo
		return nil
	})
	if err != nil {
		return fmt.Errorf("verify audit log: %w", err)
	}
	return nil
}

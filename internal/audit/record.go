// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/marcelocantos/elevate/internal/operation"
)

// Record is one line of the audit log: a completed operation attempt.
type Record struct {
	ID        string            `json:"id,omitempty"`
	Timestamp time.Time         `json:"timestamp"` // operation start
	Operation string            `json:"operation"` // argv joined by spaces
	Tier      operation.Tier    `json:"permission_level"`
	Result    operation.Outcome `json:"result"`
	User      string            `json:"user"`
	Details   Details           `json:"details"`
}

// Details carries the free-form part of a record.
type Details struct {
	Description      string  `json:"description"`
	DurationSeconds  float64 `json:"duration_seconds"`
	Message          string  `json:"message"`
	WorkingDirectory string  `json:"working_directory"` // empty = inherited
	ExitCode         *int    `json:"exit_code,omitempty"`
	Escalated        bool    `json:"escalated,omitempty"`
}

// Duration returns the recorded wall-clock duration.
func (r Record) Duration() time.Duration {
	return time.Duration(r.Details.DurationSeconds * float64(time.Second))
}

// Logs written by older tools carry naive local timestamps.
const naiveTimestamp = "2006-01-02T15:04:05.999999999"

// UnmarshalJSON rejects lines missing the fields every record must have,
// so a stray "{}" is not mistaken for a successful basic operation.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        string             `json:"id"`
		Timestamp string             `json:"timestamp"`
		Operation string             `json:"operation"`
		Tier      *operation.Tier    `json:"permission_level"`
		Result    *operation.Outcome `json:"result"`
		User      string             `json:"user"`
		Details   Details            `json:"details"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Tier == nil || raw.Result == nil {
		return errors.New("audit record: missing permission_level or result")
	}
	ts, err := time.Parse(time.RFC3339Nano, raw.Timestamp)
	if err != nil {
		ts, err = time.ParseInLocation(naiveTimestamp, raw.Timestamp, time.Local)
		if err != nil {
			return fmt.Errorf("audit record: bad timestamp %q", raw.Timestamp)
		}
	}
	*r = Record{
		ID:        raw.ID,
		Timestamp: ts,
		Operation: raw.Operation,
		Tier:      *raw.Tier,
		Result:    *raw.Result,
		User:      raw.User,
		Details:   raw.Details,
	}
	return nil
}

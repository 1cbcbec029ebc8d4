// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"errors"
	"io/fs"

	"github.com/marcelocantos/elevate/internal/operation"
)

const (
	// DefaultSummaryLimit is used when Summarize is given a non-positive limit.
	DefaultSummaryLimit = 50
	// recentCount is how many records a Summary carries verbatim.
	recentCount = 10
)

// Summary aggregates the most recent records of the log.
type Summary struct {
	TotalEntries       int      `json:"total_entries"`
	SuccessCount       int      `json:"success_count"`
	FailureCount       int      `json:"failure_count"`
	ElevatedOperations int      `json:"elevated_operations"` // elevated + administrative
	RecentOperations   []Record `json:"recent_operations"`
}

// Summarize reads the log at path, keeps the most recent limit valid
// records and aggregates them. Malformed lines are skipped. A missing log is
// an empty summary, not an error.
func Summarize(path string, limit int) (*Summary, error) {
	if limit <= 0 {
		limit = DefaultSummaryLimit
	}
	recs, err := readRecords(path, limit)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Summary{RecentOperations: []Record{}}, nil
		}
		return nil, err
	}

	s := &Summary{TotalEntries: len(recs)}
	for _, rec := range recs {
		if rec.Result == operation.Success {
			s.SuccessCount++
		} else {
			s.FailureCount++
		}
		if rec.Tier >= operation.Elevated {
			s.ElevatedOperations++
		}
	}
	start := max(len(recs)-recentCount, 0)
	s.RecentOperations = append([]Record{}, recs[start:]...)
	return s, nil
}

// Tail returns the last n valid records from the log at path.
func Tail(path string, n int) ([]Record, error) {
	if n <= 0 {
		return nil, nil
	}
	recs, err := readRecords(path, n)
	if err != nil {
		return nil, err
	}
	return recs, nil
}

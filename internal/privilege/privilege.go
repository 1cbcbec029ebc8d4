// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package privilege reports what the current process is allowed to do and
// on whose behalf it acts.
package privilege

import (
	"os"
	"os/user"

	"github.com/marcelocantos/elevate/internal/operation"
)

// Current returns the tier the running process already holds: Administrative
// when running as root, Basic otherwise.
func Current() operation.Tier {
	if isRoot() {
		return operation.Administrative
	}
	return operation.Basic
}

// User returns the acting user's name for audit records.
func User() string {
	for _, key := range []string{"USER", "USERNAME"} {
		if name := os.Getenv(key); name != "" {
			return name
		}
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "unknown"
}

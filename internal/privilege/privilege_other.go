// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package privilege

// Elevation state is not detected off unix; every tier above Basic is
// treated as needing escalation.
func isRoot() bool {
	return false
}

// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package privilege

import "golang.org/x/sys/unix"

func isRoot() bool {
	return unix.Geteuid() == 0
}

// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package executor

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

var errNotDir error = unix.ENOTDIR

// searchable fails when the calling user may not chdir into dir. The child
// changes directory before the prefix runs, so this is the user's view.
func searchable(dir string) error {
	if err := unix.Access(dir, unix.X_OK); err != nil {
		return &fs.PathError{Op: "chdir", Path: dir, Err: err}
	}
	return nil
}

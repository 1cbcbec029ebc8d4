// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package executor

import "errors"

var errNotDir = errors.New("not a directory")

func searchable(string) error { return nil }

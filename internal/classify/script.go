// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package classify

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/marcelocantos/elevate/internal/operation"
)

// maxScriptSteps bounds a single classify() call.
const maxScriptSteps = 1_000_000

// Script is a Starlark file defining
//
//	def classify(argv):
//	    return ELEVATED  # or BASIC, ADMINISTRATIVE, None
//
// The predeclared constants BASIC, ELEVATED and ADMINISTRATIVE hold the tier
// names; returning None means no opinion.
type Script struct {
	path string
	fn   starlark.Callable
}

var scriptPredeclared = starlark.StringDict{
	"BASIC":          starlark.String(operation.Basic.String()),
	"ELEVATED":       starlark.String(operation.Elevated.String()),
	"ADMINISTRATIVE": starlark.String(operation.Administrative.String()),
}

// LoadScript executes the file at path and looks up its classify function.
func LoadScript(path string) (*Script, error) {
	return loadScript(path, nil)
}

func loadScript(path string, src any) (*Script, error) {
	thread := &starlark.Thread{Name: "load " + path}
	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, path, src, scriptPredeclared)
	if err != nil {
		return nil, fmt.Errorf("load classifier script %s: %w", path, err)
	}
	globals.Freeze()

	fn, ok := globals["classify"].(starlark.Callable)
	if !ok {
		return nil, fmt.Errorf("classifier script %s: no classify function", path)
	}
	return &Script{path: path, fn: fn}, nil
}

// Path returns the script's file name.
func (s *Script) Path() string {
	return s.path
}

// Eval calls classify(argv). ok is false when the script returned None.
func (s *Script) Eval(argv []string) (tier operation.Tier, ok bool, err error) {
	thread := &starlark.Thread{Name: "classify"}
	thread.SetMaxExecutionSteps(maxScriptSteps)

	elems := make([]starlark.Value, len(argv))
	for i, a := range argv {
		elems[i] = starlark.String(a)
	}
	v, err := starlark.Call(thread, s.fn, starlark.Tuple{starlark.NewList(elems)}, nil)
	if err != nil {
		return 0, false, err
	}

	switch v := v.(type) {
	case starlark.NoneType:
		return 0, false, nil
	case starlark.String:
		tier, err := operation.ParseTier(string(v))
		if err != nil {
			return 0, false, err
		}
		return tier, true, nil
	default:
		return 0, false, fmt.Errorf("classify returned %s, want string or None", v.Type())
	}
}

// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package executor

import (
	"slices"
	"strings"
)

// mergeEnv returns base with overlay applied. Overlay entries replace base
// entries with the same key in place; new keys are appended in sorted order
// so the result is deterministic.
func mergeEnv(base []string, overlay map[string]string) []string {
	result := make([]string, 0, len(base)+len(overlay))
	applied := make(map[string]bool, len(overlay))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if applied[key] {
			continue // drop duplicates of an overridden key
		}
		if v, ok := overlay[key]; ok {
			result = append(result, key+"="+v)
			applied[key] = true
			continue
		}
		result = append(result, kv)
	}

	keys := make([]string, 0, len(overlay))
	for k := range overlay {
		if !applied[k] {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	for _, k := range keys {
		result = append(result, k+"="+overlay[k])
	}
	return result
}

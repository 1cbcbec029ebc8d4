// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package executor

import "bytes"

// limitedWriter keeps at most limit bytes and silently drops the rest, so
// a chatty child never sees a short write.
type limitedWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	room := w.limit - w.buf.Len()
	if room <= 0 {
		return len(p), nil
	}
	if len(p) > room {
		if _, err := w.buf.Write(p[:room]); err != nil {
			return 0, err
		}
		return len(p), nil
	}
	return w.buf.Write(p)
}

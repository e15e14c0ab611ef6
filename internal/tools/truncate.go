// ABOUTME: Grapheme-safe truncation of tool output before it enters the conversation
// ABOUTME: Cuts on cluster boundaries so emoji and combining marks never split

package tools

import (
	"github.com/rivo/uniseg"
)

const (
	// maxToolOutput bounds how much tool text reaches the model.
	maxToolOutput = 50 * 1024

	truncationMarker = "\n... (truncated)"
)

// truncateOutput cuts s to at most maxBytes, breaking only on grapheme
// cluster boundaries and appending a marker when anything was dropped.
func truncateOutput(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}

	var (
		g    = uniseg.NewGraphemes(s)
		kept int
	)
	for g.Next() {
		_, to := g.Positions()
		if to > maxBytes {
			break
		}
		kept = to
	}
	return s[:kept] + truncationMarker
}

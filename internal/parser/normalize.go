package parser

import "strings"

// Normalize splits raw OCR output into trimmed, non-empty lines.
// Line order matches the source text and is never changed afterwards;
// every downstream extractor works over this slice. Normalizing an
// already-normalized sequence is a no-op.
func Normalize(raw string) []string {
	var out []string
	for _, l := range strings.Split(raw, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Package parser turns raw OCR text into a structured receipt record.
//
// Parsing runs independent heuristic extractors over one normalized line
// sequence. No extractor ever fails; a field that cannot be detected
// resolves to its unknown representation instead.
package parser

import "github.com/starford/fehu/internal/models"

// Parse is the single entry point: raw OCR text in, ParsedReceipt out.
// It does no I/O; identical input yields an identical record. The store,
// date, total, and item extractors all work over the same normalized
// line sequence.
func Parse(raw string) models.ParsedReceipt {
	lines := Normalize(raw)
	return models.ParsedReceipt{
		Store: extractStore(lines),
		Date:  extractDate(lines),
		Total: extractTotal(lines),
		Items: ExtractItems(lines),
	}
}

package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/fehu/internal/models"
)

// itemRe matches from the start of a line: a non-greedy run of
// letters/digits/spaces/hyphens (the name), whitespace, an optional $, and
// a price with exactly two fractional digits.
var itemRe = regexp.MustCompile(`^([A-Za-z0-9\s\-]+?)\s+\$?(\d+\.\d{2})`)

// ExtractItems derives (name, price) pairs from the normalized lines.
// Lines carrying a total/amount keyword never contribute an item, a line
// contributes at most one item, and output order follows input order.
// Items are never deduplicated or merged.
//
// This is a lossy heuristic: multi-line descriptions, quantity lines, and
// tax lines are either skipped or misread as a single item.
func ExtractItems(lines []string) []models.LineItem {
	var items []models.LineItem
	for _, l := range lines {
		if keywordRe.MatchString(l) {
			continue
		}
		m := itemRe.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if name == "" {
			continue
		}
		price, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		items = append(items, models.LineItem{Name: name, Price: price})
	}
	return items
}

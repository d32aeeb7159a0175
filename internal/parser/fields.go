package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	dateRe      = regexp.MustCompile(`\d{2,4}[-/]\d{1,2}[-/]\d{1,4}`)
	keywordRe   = regexp.MustCompile(`(?i)(total|amount due|amount)`)
	totalRe     = regexp.MustCompile(`(?i)(total|amount due|amount)\s*[:\-]?\s*\$?([\d,.]+)`)
	bareTotalRe = regexp.MustCompile(`\$([\d,.]+)`)
)

// extractStore returns the first line that looks like neither a date nor a
// total line, scanning top to bottom. OCR'd receipts put the merchant name
// on top, before any transaction details. Falls back to "Unknown".
func extractStore(lines []string) string {
	for _, l := range lines {
		if dateRe.MatchString(l) || keywordRe.MatchString(l) {
			continue
		}
		return l
	}
	return "Unknown"
}

// extractDate returns the first date-shaped substring found, verbatim and
// unreformatted. When no line contains one, a second pass accepts a line
// that parses exactly as YYYY-MM-DD. Empty string means no date.
func extractDate(lines []string) string {
	for _, l := range lines {
		if m := dateRe.FindString(l); m != "" {
			return m
		}
	}
	for _, l := range lines {
		if _, err := time.Parse("2006-01-02", l); err == nil {
			return l
		}
	}
	return ""
}

// extractTotal scans bottom to top for a total/amount keyword followed by a
// numeric run. Totals sit near the end of a receipt, after the item lines,
// so scanning from the end avoids item lines that happen to say "amount".
// A keyword match always wins over the bare-$ fallback, regardless of
// position. Returns nil when nothing parses.
func extractTotal(lines []string) *float64 {
	for i := len(lines) - 1; i >= 0; i-- {
		if m := totalRe.FindStringSubmatch(lines[i]); m != nil {
			return parseAmount(m[2])
		}
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if m := bareTotalRe.FindStringSubmatch(lines[i]); m != nil {
			return parseAmount(m[1])
		}
	}
	return nil
}

// parseAmount strips thousands separators and parses the run as a decimal.
// A malformed run yields nil rather than an error.
func parseAmount(s string) *float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return nil
	}
	return &v
}

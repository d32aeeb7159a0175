// Package models defines the domain types for Fehu.
package models

import "time"

// LineItem is one purchased product or service on a receipt.
// Name is never empty and Price is non-negative; both come straight
// from the item extractor.
type LineItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ParsedReceipt is the pure output of the receipt parser, before any
// identity or ownership is attached.
//
// Store falls back to "Unknown" when no candidate line exists. Date keeps
// the matched substring verbatim (it is not normalised to ISO); an empty
// string means no date was found. Total is nil when no amount could be
// extracted.
type ParsedReceipt struct {
	Store string     `json:"store"`
	Date  string     `json:"date,omitempty"`
	Total *float64   `json:"total,omitempty"`
	Items []LineItem `json:"items"`
}

// Receipt is a persisted receipt record scoped to an owner key.
type Receipt struct {
	ID        int64      `json:"id"`
	OwnerKey  string     `json:"-"`
	Store     string     `json:"store"`
	Date      string     `json:"date,omitempty"`
	Total     *float64   `json:"total,omitempty"`
	Items     []LineItem `json:"items,omitempty"`
	Checksum  string     `json:"checksum"`
	ImagePath string     `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
}

// MonthTotal is one row of the monthly spending summary.
type MonthTotal struct {
	Month string  `json:"month"` // YYYY-MM prefix of the stored date
	Total float64 `json:"total"`
}

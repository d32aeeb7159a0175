// Package query answers free-text spending questions over stored receipts.
//
// This is deliberately not an NLP system: classification is a single pass
// through an ordered list of (predicate, handler) rules over the lowercased
// question. The first predicate that matches wins and no later rule is
// evaluated, so the rule order is part of the contract and is locked by
// tests.
package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/fehu/internal/models"
)

// Store is the read-only data access the interpreter needs. ListReceipts
// must return records most-recent-date-first.
type Store interface {
	ListReceipts(owner string) ([]models.Receipt, error)
	ListItems(owner string, receiptID int64) ([]models.LineItem, error)
}

// Intent names for the recognized question kinds, in priority order.
const (
	IntentMonthlyTotal     = "monthly_total"
	IntentVendorSpend      = "vendor_spend"
	IntentLastReceiptItems = "last_receipt_items"
	IntentItemsAtVendor    = "items_at_vendor"
	IntentSpendOnItem      = "spend_on_item"
	IntentListAllItems     = "list_all_items"
	IntentCategoryTotal    = "category_total"
	IntentGrandTotal       = "grand_total"
	IntentListReceipts     = "list_receipts"
	IntentUnrecognized     = "unrecognized"
)

const fallbackAnswer = "Sorry, I couldn't understand your question. Try asking about totals, vendors, or months."

// Interpreter maps questions to aggregate computations over one owner's
// records. The clock is injectable so month-relative rules are testable.
type Interpreter struct {
	store Store
	now   func() time.Time
}

// New creates an Interpreter backed by the given store.
func New(store Store) *Interpreter {
	return &Interpreter{store: store, now: time.Now}
}

type rule struct {
	intent string
	match  func(q string) bool
	handle func(q, owner string) (string, error)
}

// rules returns the priority chain. Order matters: it is a short-circuit
// cascade, not a set of independent classifiers.
func (in *Interpreter) rules() []rule {
	return []rule{
		{IntentMonthlyTotal, matchAny("this month", "current month"), in.monthlyTotal},
		{IntentVendorSpend, matchWord("from", "at"), in.vendorSpend},
		{IntentLastReceiptItems, matchAny("last receipt", "latest receipt"), in.lastReceiptItems},
		// "what did i buy at X" contains the word "at", so the vendor
		// rule above claims it first and this rule never fires through
		// Answer. itemsAtVendor still defines the item-listing reply this
		// phrasing would get if the chain order changed.
		{IntentItemsAtVendor, matchAny("what did i buy at"), in.itemsAtVendor},
		{IntentSpendOnItem, matchAny("how much did i spend on"), in.spendOnItem},
		{IntentListAllItems, matchAny("list all items", "show all items"), in.listAllItems},
		{IntentCategoryTotal, matchAny("grocer", "supermarket", "food"), in.categoryTotal},
		{IntentGrandTotal, matchAny("total", "all", "everything"), in.grandTotal},
		{IntentListReceipts, matchAny("list", "show"), in.listReceipts},
	}
}

// Answer classifies the question and computes a formatted, multi-line reply.
// An unrecognized question gets the fixed guidance message; it is intent
// number ten, not an error.
func (in *Interpreter) Answer(question, owner string) (string, error) {
	q := strings.ToLower(strings.TrimSpace(question))
	for _, r := range in.rules() {
		if r.match(q) {
			return r.handle(q, owner)
		}
	}
	return fallbackAnswer, nil
}

// classify returns the intent the question would resolve to. Used by tests
// to lock the rule ordering.
func (in *Interpreter) classify(question string) string {
	q := strings.ToLower(strings.TrimSpace(question))
	for _, r := range in.rules() {
		if r.match(q) {
			return r.intent
		}
	}
	return IntentUnrecognized
}

// --- predicates ---

func matchAny(subs ...string) func(string) bool {
	return func(q string) bool {
		for _, s := range subs {
			if strings.Contains(q, s) {
				return true
			}
		}
		return false
	}
}

// matchWord matches whole whitespace-delimited tokens, so "at" does not
// fire inside "what".
func matchWord(words ...string) func(string) bool {
	return func(q string) bool {
		for _, tok := range strings.Fields(q) {
			tok = trimToken(tok)
			for _, w := range words {
				if tok == w {
					return true
				}
			}
		}
		return false
	}
}

func trimToken(tok string) string {
	return strings.Trim(tok, "?,.!:;\"'")
}

// tokenAfter returns the single token following the first occurrence of any
// of the trigger words. Multi-word names are not supported by this
// heuristic; callers get one token only.
func tokenAfter(q string, words ...string) string {
	fields := strings.Fields(q)
	for i, tok := range fields {
		tok = trimToken(tok)
		for _, w := range words {
			if tok == w && i+1 < len(fields) {
				return trimToken(fields[i+1])
			}
		}
	}
	return ""
}

// textAfter returns the trimmed remainder of q after the first occurrence
// of phrase.
func textAfter(q, phrase string) string {
	idx := strings.Index(q, phrase)
	if idx < 0 {
		return ""
	}
	return strings.Trim(q[idx+len(phrase):], " ?,.!")
}

// --- handlers ---

func (in *Interpreter) monthlyTotal(_, owner string) (string, error) {
	recs, err := in.store.ListReceipts(owner)
	if err != nil {
		return "", err
	}
	prefix := in.now().Format("2006-01")
	sum, found := sumTotals(recs, func(r models.Receipt) bool {
		return strings.HasPrefix(r.Date, prefix)
	})
	if !found {
		return "No receipts for this month.", nil
	}
	return fmt.Sprintf("Total spent this month: %s", money(sum)), nil
}

func (in *Interpreter) vendorSpend(q, owner string) (string, error) {
	vendor := tokenAfter(q, "from", "at")
	if vendor == "" {
		return "No matching vendor found.", nil
	}
	recs, err := in.store.ListReceipts(owner)
	if err != nil {
		return "", err
	}
	matched := filterByStore(recs, vendor)
	if len(matched) == 0 {
		return fmt.Sprintf("No receipts found for %s.", title(vendor)), nil
	}
	sum, found := sumTotals(matched, nil)
	if !found {
		return fmt.Sprintf("No spending recorded for %s.", title(vendor)), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Total spent at %s: %s", title(vendor), money(sum))
	for _, r := range matched {
		fmt.Fprintf(&b, "\n%s: %s", displayDate(r.Date), displayTotal(r.Total))
	}
	return b.String(), nil
}

func (in *Interpreter) lastReceiptItems(_, owner string) (string, error) {
	recs, err := in.store.ListReceipts(owner)
	if err != nil {
		return "", err
	}
	if len(recs) == 0 {
		return "No receipts found.", nil
	}
	last := recs[0]
	items, err := in.store.ListItems(owner, last.ID)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return fmt.Sprintf("No items found on your last receipt (%s, %s).", last.Store, displayDate(last.Date)), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Your last receipt (%s, %s):", last.Store, displayDate(last.Date))
	for _, it := range items {
		fmt.Fprintf(&b, "\n- %s: %s", it.Name, money(it.Price))
	}
	return b.String(), nil
}

func (in *Interpreter) itemsAtVendor(q, owner string) (string, error) {
	vendor := textAfter(q, "what did i buy at")
	if vendor == "" {
		return "No matching vendor found.", nil
	}
	recs, err := in.store.ListReceipts(owner)
	if err != nil {
		return "", err
	}
	matched := filterByStore(recs, vendor)
	if len(matched) == 0 {
		return fmt.Sprintf("No receipts found for %s.", title(vendor)), nil
	}
	var b strings.Builder
	n := 0
	for _, r := range matched {
		items, err := in.store.ListItems(owner, r.ID)
		if err != nil {
			return "", err
		}
		for _, it := range items {
			fmt.Fprintf(&b, "\n%s (%s): %s - %s", r.Store, displayDate(r.Date), it.Name, money(it.Price))
			n++
		}
	}
	if n == 0 {
		return fmt.Sprintf("No items found for %s.", title(vendor)), nil
	}
	return fmt.Sprintf("Items bought at %s:", title(vendor)) + b.String(), nil
}

func (in *Interpreter) spendOnItem(q, owner string) (string, error) {
	frag := firstToken(textAfter(q, "how much did i spend on"))
	if frag == "" {
		return "No matching item found.", nil
	}
	recs, err := in.store.ListReceipts(owner)
	if err != nil {
		return "", err
	}
	var sum float64
	var found bool
	for _, r := range recs {
		items, err := in.store.ListItems(owner, r.ID)
		if err != nil {
			return "", err
		}
		for _, it := range items {
			if strings.Contains(strings.ToLower(it.Name), frag) {
				sum += it.Price
				found = true
			}
		}
	}
	if !found || sum == 0 {
		return fmt.Sprintf("No items matching %s.", frag), nil
	}
	return fmt.Sprintf("Total spent on %s: %s", frag, money(sum)), nil
}

func (in *Interpreter) listAllItems(_, owner string) (string, error) {
	recs, err := in.store.ListReceipts(owner)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	n := 0
	for _, r := range recs {
		items, err := in.store.ListItems(owner, r.ID)
		if err != nil {
			return "", err
		}
		for _, it := range items {
			fmt.Fprintf(&b, "\n%s (%s): %s - %s", r.Store, displayDate(r.Date), it.Name, money(it.Price))
			n++
		}
	}
	if n == 0 {
		return "No items found.", nil
	}
	return "All items:" + b.String(), nil
}

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

func (in *Interpreter) categoryTotal(q, owner string) (string, error) {
	recs, err := in.store.ListReceipts(owner)
	if err != nil {
		return "", err
	}
	month := 0
	for i, name := range monthNames {
		if strings.Contains(q, name) {
			month = i + 1
			break
		}
	}
	if month > 0 {
		// Month named: current year assumed, matched by YYYY-MM prefix.
		prefix := fmt.Sprintf("%04d-%02d", in.now().Year(), month)
		sum, found := sumTotals(recs, func(r models.Receipt) bool {
			return isGrocery(r.Store) && strings.HasPrefix(r.Date, prefix)
		})
		if !found {
			return fmt.Sprintf("No grocery receipts for %s.", title(monthNames[month-1])), nil
		}
		return fmt.Sprintf("Total groceries in %s: %s", title(monthNames[month-1]), money(sum)), nil
	}
	sum, found := sumTotals(recs, func(r models.Receipt) bool {
		return isGrocery(r.Store)
	})
	if !found {
		return "No grocery receipts found.", nil
	}
	return fmt.Sprintf("Total groceries: %s", money(sum)), nil
}

func (in *Interpreter) grandTotal(_, owner string) (string, error) {
	recs, err := in.store.ListReceipts(owner)
	if err != nil {
		return "", err
	}
	sum, found := sumTotals(recs, nil)
	if !found {
		return "No receipts found.", nil
	}
	return fmt.Sprintf("Total spent: %s", money(sum)), nil
}

func (in *Interpreter) listReceipts(_, owner string) (string, error) {
	recs, err := in.store.ListReceipts(owner)
	if err != nil {
		return "", err
	}
	if len(recs) == 0 {
		return "No receipts found.", nil
	}
	lines := make([]string, len(recs))
	for i, r := range recs {
		lines[i] = fmt.Sprintf("%s - %s: %s", displayDate(r.Date), r.Store, displayTotal(r.Total))
	}
	return strings.Join(lines, "\n"), nil
}

// --- helpers ---

// sumTotals adds the non-nil totals of records passing the filter. A nil
// total is skipped, never treated as zero. found reports whether anything
// contributed a positive sum: zero and absent both mean "no data".
func sumTotals(recs []models.Receipt, filter func(models.Receipt) bool) (float64, bool) {
	var sum float64
	for _, r := range recs {
		if filter != nil && !filter(r) {
			continue
		}
		if r.Total == nil {
			continue
		}
		sum += *r.Total
	}
	return sum, sum != 0
}

func filterByStore(recs []models.Receipt, fragment string) []models.Receipt {
	var out []models.Receipt
	for _, r := range recs {
		if strings.Contains(strings.ToLower(r.Store), fragment) {
			out = append(out, r)
		}
	}
	return out
}

func isGrocery(store string) bool {
	s := strings.ToLower(store)
	return strings.Contains(s, "groc") || strings.Contains(s, "supermarket") || strings.Contains(s, "food")
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func displayTotal(v *float64) string {
	if v == nil {
		return "total unknown"
	}
	return money(*v)
}

func displayDate(d string) string {
	if d == "" {
		return "unknown date"
	}
	return d
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return trimToken(fields[0])
}

// title upper-cases the first letter of each word for display, mirroring
// how vendor fragments are echoed back in answers.
func title(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	return strings.Join(fields, " ")
}

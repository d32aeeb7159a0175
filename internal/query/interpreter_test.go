package query

import (
	"strings"
	"testing"
	"time"

	"github.com/starford/fehu/internal/models"
)

// fakeStore serves canned records, most-recent-date-first as the Store
// contract requires.
type fakeStore struct {
	recs  []models.Receipt
	items map[int64][]models.LineItem
}

func (f *fakeStore) ListReceipts(owner string) ([]models.Receipt, error) {
	var out []models.Receipt
	for _, r := range f.recs {
		if r.OwnerKey == owner {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListItems(_ string, id int64) ([]models.LineItem, error) {
	return f.items[id], nil
}

func amount(v float64) *float64 { return &v }

func testInterpreter(recs []models.Receipt, items map[int64][]models.LineItem) *Interpreter {
	in := New(&fakeStore{recs: recs, items: items})
	in.now = func() time.Time {
		return time.Date(2023, time.May, 15, 12, 0, 0, 0, time.UTC)
	}
	return in
}

func TestClassify_PriorityOrder(t *testing.T) {
	in := testInterpreter(nil, nil)
	cases := []struct {
		question string
		intent   string
	}{
		{"How much did I spend this month?", IntentMonthlyTotal},
		{"how much did i spend at walmart", IntentVendorSpend},
		{"receipts from costco", IntentVendorSpend},
		{"show my last receipt", IntentLastReceiptItems},
		{"how much did i spend on milk", IntentSpendOnItem},
		{"list all items", IntentListAllItems},
		{"grocery spending", IntentCategoryTotal},
		{"what did i spend on food in january", IntentCategoryTotal},
		{"what is my total", IntentGrandTotal},
		// "total" outranks "list": rule 8 before rule 9.
		{"show total", IntentGrandTotal},
		{"list receipts", IntentListReceipts},
		{"tell me a joke", IntentUnrecognized},
		// "this month" outranks the vendor rule.
		{"spending at walmart this month", IntentMonthlyTotal},
		// the word "at" must not fire inside "what".
		{"what was spent yesterday", IntentUnrecognized},
		// the vendor rule claims the "buy at" phrasing: its word "at"
		// matches before the phrase rule is reached.
		{"what did i buy at walmart", IntentVendorSpend},
	}
	for _, c := range cases {
		if got := in.classify(c.question); got != c.intent {
			t.Errorf("classify(%q) = %q, want %q", c.question, got, c.intent)
		}
	}
}

func TestMonthlyTotal(t *testing.T) {
	in := testInterpreter([]models.Receipt{
		{ID: 1, OwnerKey: "alice", Store: "A", Date: "2023-05-20", Total: amount(4)},
		{ID: 2, OwnerKey: "alice", Store: "B", Date: "2023-05-01", Total: amount(6)},
		{ID: 3, OwnerKey: "alice", Store: "C", Date: "2023-04-30", Total: amount(100)},
		{ID: 4, OwnerKey: "alice", Store: "D", Date: "2023-05-02"}, // nil total skipped
	}, nil)

	got, err := in.Answer("How much did I spend this month?", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Total spent this month: $10.00" {
		t.Errorf("answer = %q", got)
	}
}

func TestMonthlyTotal_NoReceipts(t *testing.T) {
	in := testInterpreter(nil, nil)
	got, err := in.Answer("How much did I spend this month?", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if got != "No receipts for this month." {
		t.Errorf("answer = %q, want the no-receipts message, never $0.00", got)
	}
}

func TestVendorSpend(t *testing.T) {
	in := testInterpreter([]models.Receipt{
		{ID: 1, OwnerKey: "alice", Store: "Walmart Supercenter", Date: "2023-05-02", Total: amount(20)},
		{ID: 2, OwnerKey: "alice", Store: "Costco", Date: "2023-04-01", Total: amount(50)},
		{ID: 3, OwnerKey: "alice", Store: "Walmart", Date: "2023-03-10", Total: amount(5)},
	}, nil)

	got, err := in.Answer("how much did i spend at walmart?", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "Total spent at Walmart: $25.00") {
		t.Errorf("answer = %q", got)
	}
	if !strings.Contains(got, "2023-05-02: $20.00") || !strings.Contains(got, "2023-03-10: $5.00") {
		t.Errorf("per-record listing missing: %q", got)
	}
	if strings.Contains(got, "Costco") || strings.Contains(got, "50") {
		t.Errorf("non-matching vendor leaked: %q", got)
	}
}

func TestVendorSpend_SingleTokenFragment(t *testing.T) {
	// Single-token extraction: "whole foods" filters on "whole" only.
	in := testInterpreter([]models.Receipt{
		{ID: 1, OwnerKey: "alice", Store: "Whole Foods Market", Date: "2023-05-02", Total: amount(30)},
	}, nil)

	got, _ := in.Answer("spending at whole foods", "alice")
	if !strings.HasPrefix(got, "Total spent at Whole: $30.00") {
		t.Errorf("answer = %q", got)
	}
}

func TestVendorSpend_NoMatch(t *testing.T) {
	in := testInterpreter(nil, nil)
	got, _ := in.Answer("what did i get from target", "alice")
	if got != "No receipts found for Target." {
		t.Errorf("answer = %q", got)
	}
}

func TestVendorSpend_TrailingTrigger(t *testing.T) {
	in := testInterpreter(nil, nil)
	// "at" is the final token: no fragment to extract.
	got, _ := in.Answer("where was i at", "alice")
	if got != "No matching vendor found." {
		t.Errorf("answer = %q", got)
	}
}

func TestBuyAtPhrase_AnsweredAsVendorSpend(t *testing.T) {
	in := testInterpreter([]models.Receipt{
		{ID: 1, OwnerKey: "alice", Store: "Walmart", Date: "2023-05-02", Total: amount(20)},
	}, map[int64][]models.LineItem{
		1: {{Name: "Milk", Price: 3.50}},
	})

	got, err := in.Answer("what did i buy at walmart", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "Total spent at Walmart: $20.00") {
		t.Errorf("answer = %q, want the vendor spend reply", got)
	}
}

func TestItemsAtVendor(t *testing.T) {
	in := testInterpreter([]models.Receipt{
		{ID: 2, OwnerKey: "alice", Store: "Corner Store", Date: "2023-05-02"},
		{ID: 1, OwnerKey: "alice", Store: "Gas Station", Date: "2023-04-01"},
	}, map[int64][]models.LineItem{
		2: {{Name: "Milk", Price: 3.50}, {Name: "Bread", Price: 2.00}},
		1: {{Name: "Fuel", Price: 40.00}},
	})

	got, err := in.itemsAtVendor("what did i buy at corner store", "alice")
	if err != nil {
		t.Fatal(err)
	}
	want := "Items bought at Corner Store:" +
		"\nCorner Store (2023-05-02): Milk - $3.50" +
		"\nCorner Store (2023-05-02): Bread - $2.00"
	if got != want {
		t.Errorf("answer = %q, want %q", got, want)
	}
	if strings.Contains(got, "Fuel") {
		t.Errorf("non-matching vendor leaked: %q", got)
	}
}

func TestItemsAtVendor_NoData(t *testing.T) {
	in := testInterpreter([]models.Receipt{
		{ID: 1, OwnerKey: "alice", Store: "Empty Mart", Date: "2023-05-02"},
	}, nil)

	if got, _ := in.itemsAtVendor("what did i buy at target", "alice"); got != "No receipts found for Target." {
		t.Errorf("answer = %q", got)
	}
	if got, _ := in.itemsAtVendor("what did i buy at empty", "alice"); got != "No items found for Empty." {
		t.Errorf("answer = %q", got)
	}
	if got, _ := in.itemsAtVendor("what did i buy at", "alice"); got != "No matching vendor found." {
		t.Errorf("answer = %q", got)
	}
}

func TestLastReceiptItems(t *testing.T) {
	in := testInterpreter([]models.Receipt{
		{ID: 2, OwnerKey: "alice", Store: "Corner Store", Date: "2023-05-02", Total: amount(5.5)},
		{ID: 1, OwnerKey: "alice", Store: "Old Shop", Date: "2023-01-01", Total: amount(9)},
	}, map[int64][]models.LineItem{
		2: {{Name: "Milk", Price: 3.50}, {Name: "Bread", Price: 2.00}},
		1: {{Name: "Stale", Price: 9.00}},
	})

	got, err := in.Answer("what's on my last receipt", "alice")
	if err != nil {
		t.Fatal(err)
	}
	want := "Your last receipt (Corner Store, 2023-05-02):\n- Milk: $3.50\n- Bread: $2.00"
	if got != want {
		t.Errorf("answer = %q, want %q", got, want)
	}
}

func TestSpendOnItem(t *testing.T) {
	in := testInterpreter([]models.Receipt{
		{ID: 1, OwnerKey: "alice", Store: "A", Date: "2023-05-02"},
		{ID: 2, OwnerKey: "alice", Store: "B", Date: "2023-04-01"},
	}, map[int64][]models.LineItem{
		1: {{Name: "Whole Milk", Price: 3.50}, {Name: "Bread", Price: 2.00}},
		2: {{Name: "Milk Chocolate", Price: 4.00}},
	})

	got, err := in.Answer("how much did i spend on milk", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Total spent on milk: $7.50" {
		t.Errorf("answer = %q", got)
	}

	got, _ = in.Answer("how much did i spend on caviar", "alice")
	if got != "No items matching caviar." {
		t.Errorf("answer = %q", got)
	}
}

func TestListAllItems(t *testing.T) {
	in := testInterpreter([]models.Receipt{
		{ID: 1, OwnerKey: "alice", Store: "Shop", Date: "2023-05-02"},
	}, map[int64][]models.LineItem{
		1: {{Name: "Milk", Price: 3.50}},
	})

	got, _ := in.Answer("list all items", "alice")
	want := "All items:\nShop (2023-05-02): Milk - $3.50"
	if got != want {
		t.Errorf("answer = %q, want %q", got, want)
	}

	empty := testInterpreter(nil, nil)
	if got, _ := empty.Answer("list all items", "alice"); got != "No items found." {
		t.Errorf("answer = %q", got)
	}
}

func TestCategoryTotal(t *testing.T) {
	in := testInterpreter([]models.Receipt{
		{ID: 1, OwnerKey: "alice", Store: "FreshFoods", Date: "2023-01-10", Total: amount(30)},
		{ID: 2, OwnerKey: "alice", Store: "Corner Grocery", Date: "2023-02-01", Total: amount(20)},
		{ID: 3, OwnerKey: "alice", Store: "Gas Station", Date: "2023-01-11", Total: amount(99)},
	}, nil)

	got, _ := in.Answer("grocery spending in january", "alice")
	if got != "Total groceries in January: $30.00" {
		t.Errorf("answer = %q", got)
	}

	got, _ = in.Answer("how much on groceries", "alice")
	if got != "Total groceries: $50.00" {
		t.Errorf("answer = %q", got)
	}

	got, _ = in.Answer("supermarket spend in june", "alice")
	if got != "No grocery receipts for June." {
		t.Errorf("answer = %q", got)
	}
}

func TestGrandTotal(t *testing.T) {
	in := testInterpreter([]models.Receipt{
		{ID: 1, OwnerKey: "alice", Store: "A", Date: "2023-05-02", Total: amount(1.25)},
		{ID: 2, OwnerKey: "alice", Store: "B", Date: "2023-04-01", Total: amount(2.75)},
		{ID: 3, OwnerKey: "alice", Store: "C", Date: "2023-03-01"},
	}, nil)

	got, _ := in.Answer("what is my total spending across everything", "alice")
	if got != "Total spent: $4.00" {
		t.Errorf("answer = %q", got)
	}

	empty := testInterpreter(nil, nil)
	if got, _ := empty.Answer("total", "alice"); got != "No receipts found." {
		t.Errorf("answer = %q", got)
	}
}

func TestListReceipts_MostRecentFirst(t *testing.T) {
	in := testInterpreter([]models.Receipt{
		{ID: 2, OwnerKey: "alice", Store: "B", Date: "2023-02-01", Total: amount(5)},
		{ID: 1, OwnerKey: "alice", Store: "A", Date: "2023-01-02", Total: amount(10)},
	}, nil)

	got, _ := in.Answer("list", "alice")
	want := "2023-02-01 - B: $5.00\n2023-01-02 - A: $10.00"
	if got != want {
		t.Errorf("answer = %q, want %q", got, want)
	}
}

func TestAnswer_OwnerScoped(t *testing.T) {
	in := testInterpreter([]models.Receipt{
		{ID: 1, OwnerKey: "alice", Store: "A", Date: "2023-05-02", Total: amount(10)},
	}, nil)

	if got, _ := in.Answer("total", "bob"); got != "No receipts found." {
		t.Errorf("bob sees alice's data: %q", got)
	}
}

func TestAnswer_Unrecognized(t *testing.T) {
	in := testInterpreter(nil, nil)
	got, err := in.Answer("tell me a joke", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if got != fallbackAnswer {
		t.Errorf("answer = %q", got)
	}
}

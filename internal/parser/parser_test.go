package parser

import (
	"reflect"
	"testing"

	"github.com/starford/fehu/internal/models"
)

func TestNormalize(t *testing.T) {
	got := Normalize("  Corner Store \n\n\t2023-05-01\n   \nMilk 3.50\n")
	want := []string{"Corner Store", "2023-05-01", "Milk 3.50"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize = %v, want %v", got, want)
	}
}

func TestNormalize_Empty(t *testing.T) {
	if got := Normalize("\n \n\t\n"); got != nil {
		t.Errorf("Normalize = %v, want nil", got)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	once := Normalize("a\n b \nc")
	var joined string
	for i, l := range once {
		if i > 0 {
			joined += "\n"
		}
		joined += l
	}
	if twice := Normalize(joined); !reflect.DeepEqual(once, twice) {
		t.Errorf("re-normalize = %v, want %v", twice, once)
	}
}

func TestParse_Basic(t *testing.T) {
	raw := "Corner Store\n2023-05-01\nMilk 3.50\nBread 2.00\nTotal: $5.50"
	r := Parse(raw)

	if r.Store != "Corner Store" {
		t.Errorf("store = %q, want %q", r.Store, "Corner Store")
	}
	if r.Date != "2023-05-01" {
		t.Errorf("date = %q, want %q", r.Date, "2023-05-01")
	}
	if r.Total == nil || *r.Total != 5.50 {
		t.Errorf("total = %v, want 5.50", r.Total)
	}
	want := []models.LineItem{{Name: "Milk", Price: 3.50}, {Name: "Bread", Price: 2.00}}
	if !reflect.DeepEqual(r.Items, want) {
		t.Errorf("items = %v, want %v", r.Items, want)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	r := Parse("")
	if r.Store != "Unknown" {
		t.Errorf("store = %q, want Unknown", r.Store)
	}
	if r.Date != "" {
		t.Errorf("date = %q, want empty", r.Date)
	}
	if r.Total != nil {
		t.Errorf("total = %v, want nil", r.Total)
	}
	if len(r.Items) != 0 {
		t.Errorf("items = %v, want none", r.Items)
	}
}

func TestParse_Deterministic(t *testing.T) {
	raw := "Shop\n12/05/2023\nEggs $4.20\nTotal $4.20"
	a, b := Parse(raw), Parse(raw)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Parse not deterministic: %v vs %v", a, b)
	}
}

func TestParse_NeverPanicsOnGarbage(t *testing.T) {
	inputs := []string{
		"$$$\n---\n....",
		"Total: abc\nAmount: ,,,",
		"\x00\x01 binary junk $",
		"only one line",
	}
	for _, in := range inputs {
		r := Parse(in)
		if r.Store == "" {
			t.Errorf("Parse(%q): store must never be empty", in)
		}
	}
}

package pricing_test

import (
	"testing"

	"luxstay/internal/pricing"
)

func TestPerNight_PriorityOrder(t *testing.T) {
	// nightly alias wins even when a total is also present
	rec := map[string]any{
		"price_per_night": 110.0,
		"total":           900.0,
	}
	a, ok := pricing.PerNight(rec, 3)
	if !ok || a.PerNight != 110.0 {
		t.Fatalf("expected nightly alias 110, got %+v ok=%v", a, ok)
	}
}

func TestPerNight_TotalDividedByNights(t *testing.T) {
	rec := map[string]any{"total": 300.0, "currency": "eur"}
	a, ok := pricing.PerNight(rec, 3)
	if !ok {
		t.Fatalf("expected a price")
	}
	if a.PerNight != 100.0 {
		t.Fatalf("expected 300/3 = 100, got %v", a.PerNight)
	}
	if a.Currency != "EUR" {
		t.Fatalf("currency should be upper-cased, got %q", a.Currency)
	}
}

func TestPerNight_TotalWithBadNights(t *testing.T) {
	rec := map[string]any{"grand_total": 200.0}
	a, ok := pricing.PerNight(rec, 0)
	if !ok || a.PerNight != 200.0 {
		t.Fatalf("nights<1 must divide by 1, got %+v ok=%v", a, ok)
	}
}

func TestPerNight_NestedAverage(t *testing.T) {
	rec := map[string]any{
		"price": map[string]any{
			"currency": "GBP",
			"variations": map[string]any{
				"average": map[string]any{"base": "142.50"},
			},
		},
	}
	a, ok := pricing.PerNight(rec, 4)
	if !ok || a.PerNight != 142.50 {
		t.Fatalf("expected nested average 142.50 undivided, got %+v ok=%v", a, ok)
	}
	if a.Currency != "GBP" {
		t.Fatalf("expected GBP, got %q", a.Currency)
	}
}

func TestPerNight_FormattedText(t *testing.T) {
	rec := map[string]any{"display_price": "from £123.00/night"}
	a, ok := pricing.PerNight(rec, 2)
	if !ok || a.PerNight != 123.0 {
		t.Fatalf("expected 123 from text, got %+v ok=%v", a, ok)
	}
}

func TestPerNight_RawRescan(t *testing.T) {
	rec := map[string]any{
		"name": "Hotel X",
		"raw":  map[string]any{"nightly_rate": 88.0},
	}
	a, ok := pricing.PerNight(rec, 2)
	if !ok || a.PerNight != 88.0 {
		t.Fatalf("expected rescan inside raw to find 88, got %+v ok=%v", a, ok)
	}
}

func TestPerNight_NoSignal(t *testing.T) {
	cases := []map[string]any{
		nil,
		{},
		{"name": "Hotel Y", "stars": 4.0},
		{"price": map[string]any{"refundable": true}},
		{"price_text": "call for rates"},
	}
	for i, rec := range cases {
		if _, ok := pricing.PerNight(rec, 2); ok {
			t.Fatalf("case %d: expected no price, got one", i)
		}
	}
}

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"123.45", 123.45, true},
		{"1,234.56", 1234.56, true}, // comma as thousands
		{"90,80", 90.80, true},      // comma as decimal mark
		{"£1,299", 1299, true},
		{"EUR 85.00", 85.00, true},
		{"-12.5", -12.5, true},
		{"", 0, false},
		{"n/a", 0, false},
	}
	for _, c := range cases {
		got, ok := pricing.ParseDecimal(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Fatalf("ParseDecimal(%q) = %v,%v want %v,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestNights(t *testing.T) {
	cases := []struct {
		ci, co string
		want   int
	}{
		{"2025-09-12", "2025-09-15", 3},
		{"2025-09-12", "2025-09-13", 1},
		{"2025-09-15", "2025-09-12", 1}, // reversed clamps to 1
		{"", "2025-09-15", 1},
		{"garbage", "2025-09-15", 1},
	}
	for _, c := range cases {
		if got := pricing.Nights(c.ci, c.co); got != c.want {
			t.Fatalf("Nights(%q,%q) = %d want %d", c.ci, c.co, got, c.want)
		}
	}
}

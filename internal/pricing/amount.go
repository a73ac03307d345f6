// Package pricing extracts a numeric per-night price from arbitrarily
// shaped hotel records. Providers disagree wildly on field names and
// nesting, so extraction runs an ordered list of alias rules; new
// provider quirks are additive entries, not structural changes.
package pricing

import (
	"strconv"
	"strings"
	"time"
)

// Amount is a resolved per-night price. Currency may be empty; the
// normalizer is currency-label-agnostic and never converts.
type Amount struct {
	PerNight float64
	Currency string
}

/********** alias registries (single source of truth) **********/

// Fields that already hold a nightly rate. Never divided.
var nightlyAliases = []string{
	"price_per_night", "per_night", "nightly", "nightly_rate", "nightly_price",
	"avg_nightly", "average_nightly", "avg_night_price",
	"est_price", "est_price_gbp", "rate_per_night",
}

// Text fields that may embed a formatted amount ("from £123.00/night").
var textAliases = []string{
	"price_text", "rate_text", "display_price", "formatted_price", "price_display",
}

// Nested objects scanned for nightly sub-shapes.
var nestedAliases = []string{"price", "pricing"}

// Paths inside a nested price object that report an average nightly rate.
var nestedAveragePaths = []string{
	"variations.average.base", "variations.average.total", "average.base", "average.total",
}

// Generic scalar fields that may already be nightly. Never divided.
var scalarAliases = []string{"price", "rate", "amount", "cost"}

// Whole-stay totals. Always divided by max(nights, 1).
var totalAliases = []string{
	"total", "grand_total", "grandTotal", "total_price", "stay_total", "price_total",
}

// Currency keys read adjacent to wherever the amount was found.
var currencyAliases = []string{"currency", "curr", "code"}

// PerNight scans rec in fixed priority order and returns the per-night
// amount, or ok=false when no price signal parses. It never panics on
// malformed input.
func PerNight(rec map[string]any, nights int) (Amount, bool) {
	if rec == nil {
		return Amount{}, false
	}
	if a, ok := perNightOnce(rec, nights); ok {
		return a, true
	}
	// Same scan repeated inside a nested raw sub-object.
	if raw, ok := rec["raw"].(map[string]any); ok {
		return perNightOnce(raw, nights)
	}
	return Amount{}, false
}

func perNightOnce(rec map[string]any, nights int) (Amount, bool) {
	// 1) explicit nightly fields
	for _, k := range nightlyAliases {
		if v, ok := toFloat(rec[k]); ok {
			return Amount{PerNight: v, Currency: currencyNear(rec)}, true
		}
	}

	// 2) formatted text fields
	for _, k := range textAliases {
		if s, ok := rec[k].(string); ok {
			if v, ok := ParseDecimal(s); ok {
				return Amount{PerNight: v, Currency: currencyNear(rec)}, true
			}
		}
	}

	// 3) nested price/pricing objects (incl. variations.average.*)
	for _, k := range nestedAliases {
		obj, ok := rec[k].(map[string]any)
		if !ok {
			continue
		}
		for _, p := range nestedAveragePaths {
			if v, ok := toFloat(lookup(obj, p)); ok {
				return Amount{PerNight: v, Currency: currencyNear(obj)}, true
			}
		}
		for _, nk := range nightlyAliases {
			if v, ok := toFloat(obj[nk]); ok {
				return Amount{PerNight: v, Currency: currencyNear(obj)}, true
			}
		}
	}

	// 4) generic scalars that may already be nightly
	for _, k := range scalarAliases {
		if v, ok := toFloat(rec[k]); ok {
			return Amount{PerNight: v, Currency: currencyNear(rec)}, true
		}
	}

	// 5) whole-stay totals, divided by nights
	n := nights
	if n < 1 {
		n = 1
	}
	for _, k := range totalAliases {
		if v, ok := toFloat(rec[k]); ok {
			return Amount{PerNight: v / float64(n), Currency: currencyNear(rec)}, true
		}
	}
	for _, k := range nestedAliases {
		if obj, ok := rec[k].(map[string]any); ok {
			for _, tk := range totalAliases {
				if v, ok := toFloat(obj[tk]); ok {
					return Amount{PerNight: v / float64(n), Currency: currencyNear(obj)}, true
				}
			}
		}
	}

	return Amount{}, false
}

// Nights returns the stay length from ISO dates, defaulting to 1 on
// malformed or missing input (and never below 1).
func Nights(checkIn, checkOut string) int {
	ci, err := time.Parse("2006-01-02", checkIn)
	if err != nil {
		return 1
	}
	co, err := time.Parse("2006-01-02", checkOut)
	if err != nil {
		return 1
	}
	d := int(co.Sub(ci).Hours() / 24)
	if d < 1 {
		return 1
	}
	return d
}

/********** tiny helpers **********/

// lookup: safe nested lookup with dot paths on maps.
func lookup(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func currencyNear(m map[string]any) string {
	for _, k := range currencyAliases {
		if s, ok := m[k].(string); ok && s != "" {
			return strings.ToUpper(s)
		}
	}
	return ""
}

// toFloat accepts float64/int/string shapes as they come out of JSON.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		return ParseDecimal(t)
	}
	return 0, false
}

// ParseDecimal parses an amount string that may carry thousands
// separators and either '.' or ',' as the decimal mark. If a comma
// appears and no dot does, the comma is the decimal separator;
// otherwise commas are thousands separators and stripped. Characters
// outside [0-9,.-] are dropped before parsing.
func ParseDecimal(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}
	if strings.Contains(cleaned, ",") && !strings.Contains(cleaned, ".") {
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

package amenity_test

import (
	"reflect"
	"testing"

	"luxstay/internal/amenity"
)

func TestHasIndoorPool(t *testing.T) {
	cases := []struct {
		list []string
		want bool
	}{
		{[]string{"Indoor Pool"}, true},
		{[]string{"heated indoor swimming pool"}, true},
		{[]string{"Pool (outdoor)"}, false},
		{[]string{"Gym", "Spa"}, false},
		{nil, false},
	}
	for i, c := range cases {
		if got := amenity.HasIndoorPool(c.list); got != c.want {
			t.Fatalf("case %d: HasIndoorPool(%v) = %v want %v", i, c.list, got, c.want)
		}
	}
}

func TestHasGym(t *testing.T) {
	if !amenity.HasGym([]string{"24h Fitness Centre"}) {
		t.Fatalf("fitness centre should count as gym")
	}
	if amenity.HasGym([]string{"Swimming Pool"}) {
		t.Fatalf("pool is not a gym")
	}
}

func TestCoerce(t *testing.T) {
	if got := amenity.Coerce([]any{"Wifi", 3, "Spa"}); !reflect.DeepEqual(got, []string{"Wifi", "Spa"}) {
		t.Fatalf("mixed []any: got %v", got)
	}
	if got := amenity.Coerce("Parking"); !reflect.DeepEqual(got, []string{"Parking"}) {
		t.Fatalf("bare string: got %v", got)
	}
	if got := amenity.Coerce(nil); got != nil {
		t.Fatalf("nil input: got %v", got)
	}
}

func TestDedupe(t *testing.T) {
	got := amenity.Dedupe([]string{"WiFi", "wifi", " WIFI ", "Spa"})
	if !reflect.DeepEqual(got, []string{"WiFi", "Spa"}) {
		t.Fatalf("expected first-seen casing kept, got %v", got)
	}
}

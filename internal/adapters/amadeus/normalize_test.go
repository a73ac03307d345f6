package amadeus

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"luxstay/internal/domain"
)

func testClient() *Client {
	opts := Options{}
	opts.defaults()
	return &Client{opts: opts, places: domain.NopPlaceLookup{}, log: zerolog.Nop()}
}

func TestNormalize_LowestOfferWins(t *testing.T) {
	item := map[string]any{
		"hotel": map[string]any{"hotelId": "H1", "name": "Grand"},
		"offers": []any{
			map[string]any{"price": map[string]any{"total": "450.00", "currency": "EUR"}},
			map[string]any{"price": map[string]any{"total": "300.00", "currency": "GBP"}},
			map[string]any{"price": map[string]any{"total": "0", "currency": "USD"}}, // non-positive, ignored
		},
	}
	card := testClient().normalize(context.Background(), item, nil, domain.Stay{}, 3)
	if card.PricePerNight == nil || *card.PricePerNight != 100 {
		t.Fatalf("expected lowest total 300 over 3 nights, got %v", card.PricePerNight)
	}
	if card.Currency != "GBP" {
		t.Fatalf("currency follows the winning line: %q", card.Currency)
	}
}

func TestNormalize_AmenitiesMergedAndDeduped(t *testing.T) {
	item := map[string]any{
		"hotel": map[string]any{
			"hotelId":   "H1",
			"name":      "Grand",
			"amenities": []any{"WiFi", "Indoor Pool"},
		},
		"offers": []any{
			map[string]any{"amenities": []any{"wifi", "Gym"}},
		},
	}
	card := testClient().normalize(context.Background(), item, nil, domain.Stay{}, 1)
	want := []string{"WiFi", "Indoor Pool", "Gym"}
	if len(card.Amenities) != len(want) {
		t.Fatalf("amenities: %v", card.Amenities)
	}
	for i, a := range want {
		if card.Amenities[i] != a {
			t.Fatalf("amenities: %v", card.Amenities)
		}
	}
}

func TestNormalize_BackfillFromListingMeta(t *testing.T) {
	meta := map[string]listing{
		"H1": {HotelID: "H1", Name: "Grand Meta", Rating: "4", GeoCode: &struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		}{Latitude: 48.85, Longitude: 2.35}},
	}
	item := map[string]any{
		"hotel":  map[string]any{"hotelId": "H1"},
		"offers": []any{},
	}
	card := testClient().normalize(context.Background(), item, meta, domain.Stay{}, 1)
	if card.Name != "Grand Meta" || card.Stars != 4 {
		t.Fatalf("backfill: %+v", card)
	}
	if card.Coords == nil || card.Coords.Lat != 48.85 {
		t.Fatalf("coords: %+v", card.Coords)
	}
	// with coordinates the map link is coordinate-based
	if !strings.Contains(card.URL, "48.85%2C2.35") {
		t.Fatalf("url: %q", card.URL)
	}
}

func TestNormalize_MapURLFallsBackToName(t *testing.T) {
	item := map[string]any{
		"hotel":  map[string]any{"hotelId": "H1", "name": "Hôtel de la Paix"},
		"offers": []any{},
	}
	card := testClient().normalize(context.Background(), item, nil, domain.Stay{}, 1)
	if !strings.HasPrefix(card.URL, "https://www.google.com/maps/search/?api=1&query=") {
		t.Fatalf("url: %q", card.URL)
	}
}

func TestNormalize_PhotoCap(t *testing.T) {
	c := testClient()
	c.opts.MaxPhotos = 2
	item := map[string]any{
		"hotel": map[string]any{
			"hotelId": "H1", "name": "Grand",
			"media": []any{
				map[string]any{"uri": "https://img/1"},
				map[string]any{"url": "https://img/2"},
				map[string]any{"href": "https://img/3"},
			},
		},
		"offers": []any{},
	}
	card := c.normalize(context.Background(), item, nil, domain.Stay{}, 1)
	if len(card.Images) != 2 {
		t.Fatalf("images: %v", card.Images)
	}
}

type fixedPlaces struct{ info domain.PlaceInfo }

func (f fixedPlaces) Resolve(context.Context, string, string) (domain.PlaceInfo, error) {
	return f.info, nil
}

func TestNormalize_PlaceEnrichmentFillsGaps(t *testing.T) {
	c := testClient()
	c.places = fixedPlaces{info: domain.PlaceInfo{
		URL:    "https://hotel.example",
		Images: []string{"https://img/a", "https://img/b"},
		Coords: &domain.Coords{Lat: 1, Lon: 2},
	}}
	item := map[string]any{
		"hotel":  map[string]any{"hotelId": "H1", "name": "Grand"},
		"offers": []any{},
	}
	card := c.normalize(context.Background(), item, nil, domain.Stay{CityCode: "PAR"}, 1)
	if card.URL != "https://hotel.example" {
		t.Fatalf("url: %q", card.URL)
	}
	if len(card.Images) != 2 || card.Coords == nil || card.Coords.Lat != 1 {
		t.Fatalf("enrichment: %+v", card)
	}
}

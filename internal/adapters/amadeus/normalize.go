// internal/adapters/amadeus/normalize.go
package amadeus

import (
	"context"
	"net/url"
	"strings"

	"luxstay/internal/amenity"
	"luxstay/internal/domain"
	"luxstay/internal/pricing"
)

// normalize turns one offers-response item (hotel + offer lines) into a
// HotelCard. Missing hotel fields are backfilled from the city-listing
// metadata; provider values are only filled when absent, never replaced.
func (c *Client) normalize(ctx context.Context, item map[string]any, meta map[string]listing, stay domain.Stay, nights int) domain.HotelCard {
	hotel, _ := item["hotel"].(map[string]any)
	if hotel == nil {
		hotel = map[string]any{}
	}

	card := domain.HotelCard{
		ID:   str(hotel["hotelId"]),
		Name: str(hotel["name"]),
		Raw:  item,
	}
	if f, ok := asFloat(hotel["rating"]); ok {
		card.Stars = f
	}
	if geo, ok := hotel["geoCode"].(map[string]any); ok {
		lat, okLat := asFloat(geo["latitude"])
		lon, okLon := asFloat(geo["longitude"])
		if okLat && okLon {
			card.Coords = &domain.Coords{Lat: lat, Lon: lon}
		}
	}

	// Amenities: hotel-level plus every offer line, deduplicated.
	ams := amenity.Coerce(hotel["amenities"])
	offers, _ := item["offers"].([]any)
	for _, o := range offers {
		if om, ok := o.(map[string]any); ok {
			ams = append(ams, amenity.Coerce(om["amenities"])...)
		}
	}
	card.Amenities = amenity.Dedupe(ams)

	// Lowest-priced line item regardless of reported currency, then
	// per-night via nights-of-stay.
	if total, currency, ok := bestTotal(offers); ok {
		per := total / float64(max(nights, 1))
		card.PricePerNight = &per
		card.Currency = currency
	}

	// Backfill from listing metadata when the offers payload is sparse.
	if m, ok := meta[card.ID]; ok {
		if card.Name == "" {
			card.Name = m.Name
		}
		if card.Stars == 0 {
			if f, ok := pricing.ParseDecimal(m.Rating); ok {
				card.Stars = f
			}
		}
		if card.Coords == nil && m.GeoCode != nil {
			card.Coords = &domain.Coords{Lat: m.GeoCode.Latitude, Lon: m.GeoCode.Longitude}
		}
	}

	card.Images = collectPhotos(hotel, c.opts.MaxPhotos)

	// Optional enrichment: photos and a canonical URL from the place
	// lookup collaborator. Best-effort only.
	if (len(card.Images) == 0 || card.URL == "") && card.Name != "" {
		if info, err := c.places.Resolve(ctx, card.Name, CityHint(stay.CityCode, stay.City)); err == nil {
			if card.URL == "" {
				card.URL = info.URL
			}
			if len(card.Images) == 0 && len(info.Images) > 0 {
				imgs := info.Images
				if len(imgs) > c.opts.MaxPhotos {
					imgs = imgs[:c.opts.MaxPhotos]
				}
				card.Images = imgs
			}
			if card.Coords == nil {
				card.Coords = info.Coords
			}
		}
	}
	if card.URL == "" {
		card.URL = mapURL(card)
	}
	return card
}

// bestTotal scans offer lines for the lowest positive total (falling
// back to base), regardless of currency.
func bestTotal(offers []any) (float64, string, bool) {
	var best float64
	var currency string
	found := false
	for _, o := range offers {
		om, ok := o.(map[string]any)
		if !ok {
			continue
		}
		price, ok := om["price"].(map[string]any)
		if !ok {
			continue
		}
		amt, ok := asFloat(price["total"])
		if !ok {
			amt, ok = asFloat(price["base"])
		}
		if !ok || amt <= 0 {
			continue
		}
		if !found || amt < best {
			best = amt
			found = true
			if s, ok := price["currency"].(string); ok {
				currency = strings.ToUpper(s)
			}
		}
	}
	return best, currency, found
}

// collectPhotos pulls image URLs out of the media shapes providers use.
func collectPhotos(hotel map[string]any, limit int) []string {
	var out []string
	for _, key := range []string{"media", "photos", "images"} {
		raw, ok := hotel[key].([]any)
		if !ok {
			continue
		}
		for _, it := range raw {
			switch t := it.(type) {
			case string:
				if t != "" {
					out = append(out, t)
				}
			case map[string]any:
				for _, uk := range []string{"uri", "url", "href"} {
					if u, ok := t[uk].(string); ok && u != "" {
						out = append(out, u)
						break
					}
				}
			}
			if len(out) >= limit {
				return out
			}
		}
	}
	return out
}

// mapURL prefers precise coordinates, falling back to a text query.
func mapURL(card domain.HotelCard) string {
	if card.Coords != nil {
		return "https://www.google.com/maps/search/?api=1&query=" +
			formatFloat(card.Coords.Lat) + "%2C" + formatFloat(card.Coords.Lon)
	}
	if card.Name == "" {
		return ""
	}
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(card.Name)
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		return pricing.ParseDecimal(t)
	}
	return 0, false
}

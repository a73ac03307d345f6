// internal/adapters/amadeus/search.go
package amadeus

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"luxstay/internal/domain"
	"luxstay/internal/pricing"
)

// listing is the hotel metadata returned by the by-city/by-geocode
// reference endpoints, kept for backfilling sparse offer payloads.
type listing struct {
	HotelID string  `json:"hotelId"`
	Name    string  `json:"name"`
	Rating  string  `json:"rating"`
	GeoCode *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"geoCode"`
}

type listingResponse struct {
	Data []listing `json:"data"`
}

// offersResponse items stay loosely typed: price shapes vary too much
// for a rigid schema and flow into the amount normalizer downstream.
type offersResponse struct {
	Data []map[string]any `json:"data"`
}

// Small fallback maps; callers with a real geocoder can pass coordinates
// on the Stay instead.
var cityToIATA = map[string]string{
	"paris":     "PAR",
	"london":    "LON",
	"rome":      "ROM",
	"new york":  "NYC",
	"barcelona": "BCN",
	"amsterdam": "AMS",
	"madrid":    "MAD",
	"berlin":    "BER",
}

var iataToCity = map[string]string{
	"PAR": "Paris", "LON": "London", "ROM": "Rome", "NYC": "New York",
	"BCN": "Barcelona", "AMS": "Amsterdam", "MAD": "Madrid", "BER": "Berlin",
	"SFO": "San Francisco", "TYO": "Tokyo",
}

// SearchHotels resolves the stay's location to hotel IDs, pages through
// offers in batches under the ambient deadline, and returns normalized
// cards. Partial results are normal; only authentication/configuration
// failures abort the search.
//
// Strategy:
//
//	A) list hotel IDs by city code
//	B) if empty, resolve the free-text city and list by geocode
//	C) if offers still empty, query offers directly by geocode
func (c *Client) SearchHotels(ctx context.Context, stay domain.Stay) ([]domain.HotelCard, error) {
	deadline := c.deadline(ctx)
	nights := pricing.Nights(stay.CheckIn, stay.CheckOut)

	meta := map[string]listing{}
	ids, err := c.resolveIDs(ctx, stay, meta)
	if err != nil {
		return nil, err // auth/config only; lookups degrade internally
	}
	ids = capIDs(dedupe(ids), c.opts.IDCap)

	offers, err := c.fetchOffers(ctx, stay, ids, deadline)
	if err != nil {
		return nil, err
	}

	// C) last resort: geo-direct offers, no hotel IDs.
	if len(offers) == 0 && !time.Now().After(deadline) {
		lat, lon := c.centerFor(stay)
		q := c.offerParams(stay)
		q.Set("latitude", formatFloat(lat))
		q.Set("longitude", formatFloat(lon))
		q.Set("radius", strconv.Itoa(c.radiusFor(stay)))
		var resp offersResponse
		if gerr := c.get(ctx, "/v3/shopping/hotel-offers", q, &resp); gerr != nil {
			if errors.Is(gerr, ErrUnauthorized) {
				return nil, gerr
			}
			c.log.Warn().Err(gerr).Msg("geo-direct offers failed")
		} else {
			offers = resp.Data
		}
	}

	cards := make([]domain.HotelCard, 0, len(offers))
	for _, item := range offers {
		cards = append(cards, c.normalize(ctx, item, meta, stay, nights))
	}
	c.log.Info().
		Int("ids", len(ids)).
		Int("offers", len(offers)).
		Int("nights", nights).
		Msg("hotel search done")
	return cards, nil
}

// deadline derives the absolute cutoff for issuing new batches: the
// ambient deadline minus a safety buffer, or a fixed fallback budget.
func (c *Client) deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d.Add(-c.opts.SafetyBuffer)
	}
	return time.Now().Add(c.opts.FallbackBudget)
}

// resolveIDs runs steps A and B of the strategy, filling meta with
// listing metadata keyed by hotel ID as a side effect.
func (c *Client) resolveIDs(ctx context.Context, stay domain.Stay, meta map[string]listing) ([]string, error) {
	code := strings.ToUpper(strings.TrimSpace(stay.CityCode))

	if code != "" {
		ids, err := c.listByCity(ctx, code, stay.RadiusKm, meta)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				return nil, err
			}
			c.log.Warn().Err(err).Str("city", code).Msg("by-city listing failed")
		}
		if len(ids) > 0 {
			return ids, nil
		}
	}

	// Fallback: free-text city name → code, then geocode.
	if code == "" {
		if mapped, ok := cityToIATA[strings.ToLower(strings.TrimSpace(stay.City))]; ok {
			ids, err := c.listByCity(ctx, mapped, stay.RadiusKm, meta)
			if err != nil && errors.Is(err, ErrUnauthorized) {
				return nil, err
			}
			if len(ids) > 0 {
				return ids, nil
			}
		}
	}

	lat, lon := c.centerFor(stay)
	ids, err := c.listByGeocode(ctx, lat, lon, c.radiusFor(stay), meta)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, err
		}
		c.log.Warn().Err(err).Msg("by-geocode listing failed")
		return nil, nil
	}
	return ids, nil
}

func (c *Client) centerFor(stay domain.Stay) (float64, float64) {
	if stay.Lat != nil && stay.Lon != nil {
		return *stay.Lat, *stay.Lon
	}
	return c.opts.FallbackLat, c.opts.FallbackLon
}

func (c *Client) radiusFor(stay domain.Stay) int {
	if stay.RadiusKm > 0 {
		return stay.RadiusKm
	}
	return c.opts.FallbackRadiusKm
}

func (c *Client) listByCity(ctx context.Context, code string, radiusKm int, meta map[string]listing) ([]string, error) {
	cacheKey := fmt.Sprintf("hotelids:%s:%d", code, radiusKm)
	var cached []listing
	if c.cache != nil {
		if ok, _ := c.cache.Get(ctx, cacheKey, &cached); ok {
			return collectIDs(cached, meta), nil
		}
	}

	q := url.Values{"cityCode": {code}, "page[limit]": {"50"}}
	if radiusKm > 0 {
		q.Set("radius", strconv.Itoa(radiusKm))
	}
	var resp listingResponse
	if err := c.get(ctx, "/v1/reference-data/locations/hotels/by-city", q, &resp); err != nil {
		return nil, err
	}
	if c.cache != nil && len(resp.Data) > 0 {
		_ = c.cache.Set(ctx, cacheKey, resp.Data, 0)
	}
	return collectIDs(resp.Data, meta), nil
}

func (c *Client) listByGeocode(ctx context.Context, lat, lon float64, radiusKm int, meta map[string]listing) ([]string, error) {
	q := url.Values{
		"latitude":    {formatFloat(lat)},
		"longitude":   {formatFloat(lon)},
		"radius":      {strconv.Itoa(radiusKm)},
		"page[limit]": {"50"},
	}
	var resp listingResponse
	if err := c.get(ctx, "/v1/reference-data/locations/hotels/by-geocode", q, &resp); err != nil {
		return nil, err
	}
	return collectIDs(resp.Data, meta), nil
}

func collectIDs(ls []listing, meta map[string]listing) []string {
	ids := make([]string, 0, len(ls))
	for _, l := range ls {
		if l.HotelID == "" {
			continue
		}
		ids = append(ids, l.HotelID)
		meta[l.HotelID] = l
	}
	return ids
}

// fetchOffers pages through fixed-size ID batches, pacing between them,
// until the target count is reached or the deadline passes. A batch that
// exhausts its retries is dropped; the engine keeps whatever it has.
func (c *Client) fetchOffers(ctx context.Context, stay domain.Stay, ids []string, deadline time.Time) ([]map[string]any, error) {
	var out []map[string]any
	for i := 0; i < len(ids); i += c.opts.ChunkSize {
		if time.Now().After(deadline) {
			c.log.Info().Int("collected", len(out)).Msg("offer batching stopped at deadline")
			break
		}
		if len(out) >= c.opts.TargetOffers {
			break
		}
		if i > 0 && !sleepCtx(ctx, c.opts.Pacing) {
			break
		}

		end := i + c.opts.ChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		q := c.offerParams(stay)
		q.Set("hotelIds", strings.Join(ids[i:end], ","))

		var resp offersResponse
		if err := c.get(ctx, "/v3/shopping/hotel-offers", q, &resp); err != nil {
			if errors.Is(err, ErrUnauthorized) {
				return nil, err
			}
			c.log.Warn().Err(err).Int("batch_start", i).Msg("offer batch dropped")
			continue
		}
		out = append(out, resp.Data...)
	}
	return out, nil
}

func (c *Client) offerParams(stay domain.Stay) url.Values {
	adults := stay.Adults
	if adults <= 0 {
		adults = 2
	}
	q := url.Values{
		"adults":       {strconv.Itoa(adults)},
		"checkInDate":  {stay.CheckIn},
		"checkOutDate": {stay.CheckOut},
		"roomQuantity": {"1"},
		"bestRateOnly": {"true"},
	}
	if stay.Currency != "" {
		q.Set("currency", strings.ToUpper(stay.Currency))
	}
	return q
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func capIDs(ids []string, n int) []string {
	if len(ids) > n {
		return ids[:n]
	}
	return ids
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// CityHint maps an IATA city code to a human city name for enrichment
// queries, falling back to the code itself.
func CityHint(cityCode, fallback string) string {
	code := strings.ToUpper(strings.TrimSpace(cityCode))
	if code == "" {
		return fallback
	}
	if name, ok := iataToCity[code]; ok {
		return name
	}
	return code
}

package places

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"googlemaps.github.io/maps"

	"luxstay/internal/domain"
)

// Lookup resolves hotel names to canonical place data: a link, photo
// URLs and coordinates. It implements the place-lookup port.
type Lookup struct {
	client    *maps.Client
	apiKey    string // kept for photo URL construction
	maxPhotos int
}

func New(apiKey string, maxPhotos int) (*Lookup, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("places: missing api key")
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("places: create client: %w", err)
	}
	if maxPhotos <= 0 {
		maxPhotos = 4
	}
	return &Lookup{client: client, apiKey: apiKey, maxPhotos: maxPhotos}, nil
}

// Resolve text-searches "name, cityHint", retrying without the city when
// nothing matches, then pulls details for the top hit. The returned URL
// falls back to a maps search link so callers always get something
// clickable.
func (l *Lookup) Resolve(ctx context.Context, name, cityHint string) (domain.PlaceInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.PlaceInfo{}, fmt.Errorf("places: empty name")
	}

	result, err := l.search(ctx, joinQuery(name, cityHint))
	if err != nil && cityHint != "" {
		result, err = l.search(ctx, name)
	}
	if err != nil {
		return domain.PlaceInfo{}, err
	}

	info := domain.PlaceInfo{
		Images: l.photoURLs(result.Photos),
		Coords: &domain.Coords{
			Lat: result.Geometry.Location.Lat,
			Lon: result.Geometry.Location.Lng,
		},
	}

	if result.PlaceID != "" {
		details, derr := l.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{PlaceID: result.PlaceID})
		if derr == nil {
			if details.Website != "" {
				info.URL = details.Website
			} else if details.URL != "" {
				info.URL = details.URL
			}
			if len(info.Images) == 0 {
				info.Images = l.photoURLs(details.Photos)
			}
		}
	}
	if info.URL == "" {
		info.URL = "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(joinQuery(name, cityHint))
	}
	return info, nil
}

func (l *Lookup) search(ctx context.Context, query string) (maps.PlacesSearchResult, error) {
	resp, err := l.client.TextSearch(ctx, &maps.TextSearchRequest{Query: query})
	if err != nil {
		return maps.PlacesSearchResult{}, fmt.Errorf("places: text search: %w", err)
	}
	if len(resp.Results) == 0 {
		return maps.PlacesSearchResult{}, fmt.Errorf("places: no results for %q", query)
	}
	return resp.Results[0], nil
}

func (l *Lookup) photoURLs(photos []maps.Photo) []string {
	out := make([]string, 0, l.maxPhotos)
	for _, p := range photos {
		if p.PhotoReference == "" {
			continue
		}
		out = append(out, fmt.Sprintf(
			"https://maps.googleapis.com/maps/api/place/photo?maxwidth=800&photo_reference=%s&key=%s",
			url.QueryEscape(p.PhotoReference), url.QueryEscape(l.apiKey)))
		if len(out) >= l.maxPhotos {
			break
		}
	}
	return out
}

func joinQuery(name, cityHint string) string {
	if strings.TrimSpace(cityHint) == "" {
		return name
	}
	return name + ", " + cityHint
}

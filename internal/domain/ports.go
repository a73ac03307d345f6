package domain

import (
	"context"
	"errors"
)

// HotelProvider turns a Stay into a best-effort list of hotel cards
// within the caller's deadline. Partial results are a normal outcome.
type HotelProvider interface {
	SearchHotels(ctx context.Context, stay Stay) ([]HotelCard, error)
}

// TextGenerator is a pluggable text-generation capability. Callers must
// treat it as unreliable and keep a non-LLM fallback path.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error)
}

// PlaceInfo is the result of a best-effort place lookup.
type PlaceInfo struct {
	URL    string
	Images []string
	Coords *Coords
}

// PlaceLookup resolves a hotel name to a map URL, photos, and coordinates.
// Entirely optional; absence never affects price or ranking logic.
type PlaceLookup interface {
	Resolve(ctx context.Context, name, cityHint string) (PlaceInfo, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// ErrNoGenerator is returned by NopGenerator so callers take their
// deterministic fallback path.
var ErrNoGenerator = errors.New("no text generator configured")

type NopGenerator struct{}

func (NopGenerator) Generate(context.Context, string, int, float32) (string, error) {
	return "", ErrNoGenerator
}

var ErrNoPlaceLookup = errors.New("no place lookup configured")

type NopPlaceLookup struct{}

func (NopPlaceLookup) Resolve(context.Context, string, string) (PlaceInfo, error) {
	return PlaceInfo{}, ErrNoPlaceLookup
}

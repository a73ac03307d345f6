package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"luxstay/internal/app"
	"luxstay/internal/domain"
)

func TestNarrate_UsesGeneratorText(t *testing.T) {
	r := app.NewResponder(&fakeGen{out: "  Stay at the Grand.  "}, zerolog.Nop())
	got := r.Narrate(context.Background(), []domain.HotelCard{card("Grand", fptr(80))}, nil)
	if got != "Stay at the Grand." {
		t.Fatalf("narrative: %q", got)
	}
}

func TestNarrate_EmptyInputs(t *testing.T) {
	r := app.NewResponder(&fakeGen{out: "should not be called"}, zerolog.Nop())
	got := r.Narrate(context.Background(), nil, nil)
	if !strings.Contains(got, "No hotels matched") {
		t.Fatalf("empty-result message: %q", got)
	}
}

func TestNarrate_FallbackOnGeneratorError(t *testing.T) {
	r := app.NewResponder(&fakeGen{err: errors.New("llm down")}, zerolog.Nop())
	top := []domain.HotelCard{
		card("Alpha", fptr(90)), card("Beta", fptr(110)),
		card("Gamma", fptr(120)), card("Delta", fptr(130)),
	}
	got := r.Narrate(context.Background(), top, top)
	if got != "Top picks: Alpha, Beta, Gamma." {
		t.Fatalf("fallback: %q", got)
	}
}

func TestNarrate_FallbackUsesCandidatesWhenTopEmpty(t *testing.T) {
	r := app.NewResponder(domain.NopGenerator{}, zerolog.Nop())
	got := r.Narrate(context.Background(), nil, []domain.HotelCard{card("Only", fptr(60))})
	if got != "Top picks: Only." {
		t.Fatalf("fallback: %q", got)
	}
}

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"luxstay/internal/domain"
)

// Responder turns ranked results into a short traveller-facing
// narrative. LLM output is preferred; a deterministic sentence covers
// every failure mode so the caller always gets text back.
type Responder struct {
	gen domain.TextGenerator
	log zerolog.Logger
}

func NewResponder(gen domain.TextGenerator, log zerolog.Logger) *Responder {
	if gen == nil {
		gen = domain.NopGenerator{}
	}
	return &Responder{gen: gen, log: log}
}

// context payloads are capped so a huge result set cannot blow the
// prompt budget
const narrateJSONCap = 3000

const narratePromptTmpl = `You are a concise travel assistant.
Using ONLY the data below, write 2-4 sentences recommending hotels to the
traveller. Mention prices per night where present. No markdown.

Top picks:
%s

Other candidates:
%s

Reply:
`

// Narrate produces the narrative for a ranked result.
func (r *Responder) Narrate(ctx context.Context, top, candidates []domain.HotelCard) string {
	if len(top) == 0 && len(candidates) == 0 {
		return "No hotels matched the search. Try widening the dates, raising the budget, or searching a nearby area."
	}

	prompt := fmt.Sprintf(narratePromptTmpl, compactJSON(narrateView(top)), compactJSON(narrateView(candidates)))
	text, err := r.gen.Generate(ctx, prompt, 600, 0.15)
	if err == nil {
		if s := strings.TrimSpace(text); s != "" {
			return s
		}
	} else if err != domain.ErrNoGenerator {
		r.log.Warn().Err(err).Msg("narrate llm call failed; using fallback")
	}
	return fallbackNarrative(top, candidates)
}

// narrateView strips cards down to what the narrative needs.
func narrateView(cards []domain.HotelCard) []map[string]any {
	out := make([]map[string]any, 0, len(cards))
	for _, c := range cards {
		v := map[string]any{"name": c.Name}
		if c.PricePerNight != nil {
			v["price_per_night"] = *c.PricePerNight
			if c.Currency != "" {
				v["currency"] = c.Currency
			}
		}
		if c.Stars > 0 {
			v["stars"] = c.Stars
		}
		if c.HasIndoorPool {
			v["indoor_pool"] = true
		}
		out = append(out, v)
	}
	return out
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	s := string(b)
	if len(s) > narrateJSONCap {
		s = s[:narrateJSONCap]
	}
	return s
}

func fallbackNarrative(top, candidates []domain.HotelCard) string {
	picks := top
	if len(picks) == 0 {
		picks = candidates
	}
	names := make([]string, 0, 3)
	for _, c := range picks {
		if c.Name == "" {
			continue
		}
		names = append(names, c.Name)
		if len(names) == 3 {
			break
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("Found %d matching hotels.", len(picks))
	}
	return fmt.Sprintf("Top picks: %s.", strings.Join(names, ", "))
}

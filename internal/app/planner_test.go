package app_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"luxstay/internal/app"
	"luxstay/internal/domain"
)

// ---- fakes ----

type fakeGen struct {
	out string
	err error
}

func (f *fakeGen) Generate(context.Context, string, int, float32) (string, error) {
	return f.out, f.err
}

func steps(p domain.Plan) []string {
	out := make([]string, 0, len(p.Agents))
	for _, a := range p.Agents {
		out = append(out, string(a))
	}
	return out
}

// ---- tests ----

func TestParseQuery_DayRangeForm(t *testing.T) {
	bits := app.ParseQuery("Paris (PAR) 12-15 Sep 2025, 2 adults, under £150, indoor pool")
	if bits.CheckIn != "2025-09-12" || bits.CheckOut != "2025-09-15" {
		t.Fatalf("dates: %q %q", bits.CheckIn, bits.CheckOut)
	}
	if bits.CityCode != "PAR" {
		t.Fatalf("city: %q", bits.CityCode)
	}
	if bits.Adults != 2 {
		t.Fatalf("adults: %d", bits.Adults)
	}
	if bits.MaxPrice == nil || *bits.MaxPrice != 150 {
		t.Fatalf("max price: %v", bits.MaxPrice)
	}
	if !bits.WantsIndoorPool {
		t.Fatalf("pool flag missing")
	}
}

func TestParseQuery_ISORangeForm(t *testing.T) {
	bits := app.ParseQuery("hotel in LON 2025-10-01 to 2025-10-04 for 3 adults")
	if bits.CheckIn != "2025-10-01" || bits.CheckOut != "2025-10-04" {
		t.Fatalf("dates: %q %q", bits.CheckIn, bits.CheckOut)
	}
	if bits.CityCode != "LON" {
		t.Fatalf("city: %q", bits.CityCode)
	}
	if bits.Adults != 3 {
		t.Fatalf("adults: %d", bits.Adults)
	}
	if bits.MaxPrice != nil || bits.WantsIndoorPool {
		t.Fatalf("unexpected extras: %+v", bits)
	}
}

func TestParseQuery_Defaults(t *testing.T) {
	bits := app.ParseQuery("somewhere nice")
	if bits.Adults != 2 {
		t.Fatalf("adults default: %d", bits.Adults)
	}
	if bits.CheckIn != "" || bits.CityCode != "" || bits.MaxPrice != nil {
		t.Fatalf("expected zero values: %+v", bits)
	}
}

func TestPlan_GeneratorErrorFallsBack(t *testing.T) {
	p := app.NewPlanner(&fakeGen{err: errors.New("boom")}, false, zerolog.Nop())
	plan := p.Plan(context.Background(), "PAR under £100")
	if plan.UsedLLM {
		t.Fatalf("fallback plan must not claim LLM use")
	}
	if got := steps(plan); !reflect.DeepEqual(got, []string{"hotel_search", "budget_filter"}) {
		t.Fatalf("steps: %v", got)
	}
}

func TestPlan_NopGeneratorFallsBack(t *testing.T) {
	p := app.NewPlanner(domain.NopGenerator{}, true, zerolog.Nop())
	plan := p.Plan(context.Background(), "anywhere")
	if got := steps(plan); !reflect.DeepEqual(got, []string{"hotel_search", "budget_filter", "responder_narrate"}) {
		t.Fatalf("steps: %v", got)
	}
}

func TestPlan_SanitizesReversedAndUnknownSteps(t *testing.T) {
	gen := &fakeGen{out: `{"agents":["budget_filter","rm_rf","hotel_search","budget_filter"],"notes":"llm notes"}`}
	p := app.NewPlanner(gen, false, zerolog.Nop())
	plan := p.Plan(context.Background(), "whatever")
	if got := steps(plan); !reflect.DeepEqual(got, []string{"hotel_search", "budget_filter"}) {
		t.Fatalf("order must be forced and unknowns dropped: %v", got)
	}
	if !plan.UsedLLM {
		t.Fatalf("should record LLM use")
	}
	if plan.Notes != "llm notes" {
		t.Fatalf("notes: %q", plan.Notes)
	}
}

func TestPlan_ResponderOnlyWhenEnabled(t *testing.T) {
	gen := &fakeGen{out: `{"agents":["hotel_search","budget_filter","responder_narrate"],"notes":""}`}

	off := app.NewPlanner(gen, false, zerolog.Nop())
	if got := steps(off.Plan(context.Background(), "q")); !reflect.DeepEqual(got, []string{"hotel_search", "budget_filter"}) {
		t.Fatalf("responder must be stripped when disabled: %v", got)
	}

	on := app.NewPlanner(gen, true, zerolog.Nop())
	if got := steps(on.Plan(context.Background(), "q")); !reflect.DeepEqual(got, []string{"hotel_search", "budget_filter", "responder_narrate"}) {
		t.Fatalf("responder missing when enabled: %v", got)
	}
}

func TestPlan_TolerantOfFencedJSON(t *testing.T) {
	gen := &fakeGen{out: "```json\n{\"agents\":[\"hotel_search\",\"budget_filter\"],\"notes\":\"fenced\"}\n```"}
	p := app.NewPlanner(gen, false, zerolog.Nop())
	plan := p.Plan(context.Background(), "q")
	if !plan.UsedLLM || plan.Notes != "fenced" {
		t.Fatalf("fenced JSON should parse: %+v", plan)
	}
}

func TestPlan_GarbageOutputFallsBack(t *testing.T) {
	gen := &fakeGen{out: "sorry, I cannot help with that"}
	p := app.NewPlanner(gen, false, zerolog.Nop())
	plan := p.Plan(context.Background(), "PAR trip")
	if plan.UsedLLM {
		t.Fatalf("garbage output must fall back")
	}
	if got := steps(plan); !reflect.DeepEqual(got, []string{"hotel_search", "budget_filter"}) {
		t.Fatalf("steps: %v", got)
	}
}

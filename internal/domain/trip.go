package domain

type Coords struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Stay is the search request. Immutable once constructed.
type Stay struct {
	CheckIn         string   `json:"check_in"`
	CheckOut        string   `json:"check_out"`
	Adults          int      `json:"adults"`
	CityCode        string   `json:"city_code,omitempty"`
	City            string   `json:"city,omitempty"`
	Country         string   `json:"country,omitempty"`
	Lat             *float64 `json:"lat,omitempty"`
	Lon             *float64 `json:"lon,omitempty"`
	RadiusKm        int      `json:"radius_km,omitempty"`
	MaxPrice        *float64 `json:"max_price,omitempty"`
	WantsIndoorPool bool     `json:"wants_indoor_pool,omitempty"`
	Currency        string   `json:"currency,omitempty"` // hint forwarded to the provider, never converted
}

// HotelCard is the normalized, provider-agnostic representation of one
// hotel search result. Later stages fill fields that are absent but never
// overwrite provider values.
type HotelCard struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Stars     float64  `json:"stars"`
	Amenities []string `json:"amenities"`
	URL       string   `json:"url"`
	Images    []string `json:"images,omitempty"`
	Coords    *Coords  `json:"coords,omitempty"`

	// Per-night price with its reporting currency. Nil price means unpriced.
	PricePerNight *float64 `json:"price_per_night"`
	Currency      string   `json:"currency,omitempty"`

	// Budget annotations, set by the ranker.
	Nights        int      `json:"nights,omitempty"`
	HasIndoorPool bool     `json:"has_indoor_pool"`
	PassesBudget  bool     `json:"passes_budget"`
	BudgetGap     *float64 `json:"budget_gap"`
	BudgetReason  string   `json:"budget_reason,omitempty"` // no_max_price|no_price|under|over

	// Raw provider payload, kept for diagnostics and late price resolution.
	Raw map[string]any `json:"-"`
}

// RankMeta summarizes one ranking pass.
type RankMeta struct {
	TotalIn     int    `json:"total_in"`
	UnderBudget int    `json:"under_budget"`
	Nights      int    `json:"nights"`
	Unit        string `json:"unit"`
}

// RankedResult is the budget filter output. Candidates holds the
// under-budget subset in final sort order; Considered holds the full
// sorted superset for diagnostics. The two are never conflated.
type RankedResult struct {
	Top        []HotelCard `json:"top"`
	Candidates []HotelCard `json:"candidates"`
	Considered []HotelCard `json:"considered,omitempty"`
	Meta       RankMeta    `json:"meta"`
}

// PlanStep names one pipeline stage.
type PlanStep string

const (
	StepHotelSearch      PlanStep = "hotel_search"
	StepBudgetFilter     PlanStep = "budget_filter"
	StepResponderNarrate PlanStep = "responder_narrate"
)

// Plan is an ordered, deduplicated step sequence. Invariant: hotel_search
// precedes budget_filter whenever both are present.
type Plan struct {
	Agents  []PlanStep `json:"agents"`
	Notes   string     `json:"notes"`
	UsedLLM bool       `json:"used_llm"`
}

// Task is the envelope routed through the tool router.
type Task struct {
	Agent  string
	TaskID string
	Args   map[string]any
}

package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"luxstay/internal/domain"
)

// Agent names routable through the orchestrator.
const (
	AgentHotelSearch      = "hotel_search"
	AgentBudgetFilter     = "budget_filter"
	AgentResponderNarrate = "responder_narrate"
)

// SearchRequest is one end-to-end pipeline run. Query drives planning
// and fills Stay fields the caller left empty; explicit Stay fields win.
type SearchRequest struct {
	Query        string      `json:"query"`
	Stay         domain.Stay `json:"stay"`
	TopN         int         `json:"top_n"`
	Debug        bool        `json:"debug"`
	UseResponder bool        `json:"use_responder"`
}

// StageError records a pipeline stage that failed without sinking the
// whole run.
type StageError struct {
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// SearchResponse is always well-formed: stage failures surface in
// Errors while the remaining fields keep whatever was produced.
type SearchResponse struct {
	TaskID     string             `json:"task_id"`
	Plan       domain.Plan        `json:"plan"`
	Top        []domain.HotelCard `json:"top"`
	Candidates []domain.HotelCard `json:"candidates"`
	Considered []domain.HotelCard `json:"considered,omitempty"`
	Narrative  string             `json:"narrative,omitempty"`
	Meta       domain.RankMeta    `json:"meta"`
	Errors     []StageError       `json:"errors,omitempty"`
}

// Orchestrator wires the planner, the tool router and the registered
// agents into the full query-to-answer pipeline.
type Orchestrator struct {
	planner   *Planner
	responder *Responder
	router    *Router
	provider  domain.HotelProvider
	topN      int
	log       zerolog.Logger
}

func NewOrchestrator(planner *Planner, responder *Responder, router *Router, provider domain.HotelProvider, topN int, log zerolog.Logger) *Orchestrator {
	o := &Orchestrator{
		planner:   planner,
		responder: responder,
		router:    router,
		provider:  provider,
		topN:      topN,
		log:       log,
	}
	router.Register(AgentHotelSearch, o.hotelSearchAgent)
	router.Register(AgentBudgetFilter, o.budgetFilterAgent)
	router.Register(AgentResponderNarrate, o.narrateAgent)
	return o
}

// Search plans, routes each step, and assembles the response. A failed
// hotel search still yields a valid (empty) ranking; a failed narration
// still yields the ranking.
func (o *Orchestrator) Search(ctx context.Context, req SearchRequest) SearchResponse {
	plan := o.planner.Plan(ctx, req.Query)
	stay := mergeStay(req.Stay, ParseQuery(req.Query))
	taskID := uuid.NewString()

	resp := SearchResponse{TaskID: taskID, Plan: plan}

	var hotels []domain.HotelCard
	var ranked domain.RankedResult

	for _, step := range plan.Agents {
		switch step {
		case domain.StepHotelSearch:
			out := o.router.Route(ctx, domain.Task{
				Agent:  AgentHotelSearch,
				TaskID: taskID,
				Args:   map[string]any{"stay": stay},
			})
			if msg, failed := stageError(out); failed {
				resp.Errors = append(resp.Errors, StageError{Stage: AgentHotelSearch, Error: msg})
				continue
			}
			if cards, ok := out["data"].([]domain.HotelCard); ok {
				hotels = cards
			}

		case domain.StepBudgetFilter:
			out := o.router.Route(ctx, domain.Task{
				Agent:  AgentBudgetFilter,
				TaskID: taskID,
				Args: map[string]any{
					"hotels":    hotels,
					"max_price": stay.MaxPrice,
					"check_in":  stay.CheckIn,
					"check_out": stay.CheckOut,
					"top_n":     o.effectiveTopN(req.TopN),
				},
			})
			if msg, failed := stageError(out); failed {
				resp.Errors = append(resp.Errors, StageError{Stage: AgentBudgetFilter, Error: msg})
				continue
			}
			if r, ok := out["data"].(domain.RankedResult); ok {
				ranked = r
			}

		case domain.StepResponderNarrate:
			if !req.UseResponder {
				continue
			}
			out := o.router.Route(ctx, domain.Task{
				Agent:  AgentResponderNarrate,
				TaskID: taskID,
				Args:   map[string]any{"top": ranked.Top, "candidates": ranked.Candidates},
			})
			if msg, failed := stageError(out); failed {
				resp.Errors = append(resp.Errors, StageError{Stage: AgentResponderNarrate, Error: msg})
				continue
			}
			if s, ok := out["data"].(string); ok {
				resp.Narrative = s
			}
		}
	}

	resp.Top = ranked.Top
	resp.Candidates = ranked.Candidates
	resp.Meta = ranked.Meta
	if req.Debug {
		resp.Considered = ranked.Considered
	}
	if resp.Top == nil {
		resp.Top = []domain.HotelCard{}
	}
	if resp.Candidates == nil {
		resp.Candidates = []domain.HotelCard{}
	}
	return resp
}

func (o *Orchestrator) effectiveTopN(reqTopN int) int {
	if reqTopN > 0 {
		return reqTopN
	}
	if o.topN > 0 {
		return o.topN
	}
	return defaultTopN
}

func (o *Orchestrator) hotelSearchAgent(ctx context.Context, task domain.Task) (any, error) {
	stay, ok := task.Args["stay"].(domain.Stay)
	if !ok {
		return nil, fmt.Errorf("hotel_search: missing stay")
	}
	if stay.CheckIn == "" || stay.CheckOut == "" {
		return nil, fmt.Errorf("hotel_search: check-in and check-out dates are required")
	}
	return o.provider.SearchHotels(ctx, stay)
}

func (o *Orchestrator) budgetFilterAgent(_ context.Context, task domain.Task) (any, error) {
	hotels, _ := task.Args["hotels"].([]domain.HotelCard)
	maxPrice, _ := task.Args["max_price"].(*float64)
	checkIn, _ := task.Args["check_in"].(string)
	checkOut, _ := task.Args["check_out"].(string)
	topN, _ := task.Args["top_n"].(int)
	return Rank(RankRequest{
		Hotels:   hotels,
		MaxPrice: maxPrice,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		TopN:     topN,
	}), nil
}

func (o *Orchestrator) narrateAgent(ctx context.Context, task domain.Task) (any, error) {
	top, _ := task.Args["top"].([]domain.HotelCard)
	candidates, _ := task.Args["candidates"].([]domain.HotelCard)
	return o.responder.Narrate(ctx, top, candidates), nil
}

// mergeStay fills stay fields the caller left empty with regex-derived
// query bits. Explicit fields always win.
func mergeStay(stay domain.Stay, bits QueryBits) domain.Stay {
	if stay.CheckIn == "" {
		stay.CheckIn = bits.CheckIn
	}
	if stay.CheckOut == "" {
		stay.CheckOut = bits.CheckOut
	}
	if stay.CityCode == "" {
		stay.CityCode = bits.CityCode
	}
	if stay.Adults <= 0 {
		stay.Adults = bits.Adults
	}
	if stay.MaxPrice == nil {
		stay.MaxPrice = bits.MaxPrice
	}
	if bits.WantsIndoorPool {
		stay.WantsIndoorPool = true
	}
	return stay
}

func stageError(out map[string]any) (string, bool) {
	if s, _ := out["status"].(string); s == "error" {
		msg, _ := out["error"].(string)
		if msg == "" {
			msg = "unknown error"
		}
		return msg, true
	}
	return "", false
}

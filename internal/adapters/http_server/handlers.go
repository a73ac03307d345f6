// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"luxstay/internal/app"
)

// Searcher is the pipeline entrypoint the HTTP layer depends on.
// Satisfied by the orchestrator; fakes implement it in handler tests.
type Searcher interface {
	Search(ctx context.Context, req app.SearchRequest) app.SearchResponse
}

type Handlers struct{ S Searcher }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/trips/search", h.searchTrips)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func (h *Handlers) searchTrips(w http.ResponseWriter, r *http.Request) {
	var req app.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "request body must be valid JSON")
		return
	}

	// Dates must come from the stay or be derivable from the query.
	if req.Stay.CheckIn == "" || req.Stay.CheckOut == "" {
		bits := app.ParseQuery(req.Query)
		if bits.CheckIn == "" || bits.CheckOut == "" {
			writeProblem(w, http.StatusBadRequest, "Missing dates",
				"check-in and check-out are required, either as stay fields or inside the query text")
			return
		}
	}
	if strings.TrimSpace(req.Query) == "" && req.Stay.CityCode == "" && req.Stay.City == "" &&
		(req.Stay.Lat == nil || req.Stay.Lon == nil) {
		writeProblem(w, http.StatusBadRequest, "Missing location",
			"provide a query, a city code, a city name or coordinates")
		return
	}

	resp := h.S.Search(r.Context(), req)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("failed to write search response")
	}
}

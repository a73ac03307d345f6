// searchctl runs one search pipeline pass from the command line and
// prints the JSON response. Provider configuration comes from the same
// environment variables the API server uses.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"luxstay/internal/adapters/amadeus"
	"luxstay/internal/adapters/gemini"
	"luxstay/internal/adapters/observability"
	"luxstay/internal/app"
	"luxstay/internal/domain"
	"luxstay/internal/shared"
)

func main() {
	var (
		query    = flag.String("query", "", "free-text request, e.g. \"Paris (PAR) 12-15 Sep 2025, 2 adults, under £150, indoor pool\"")
		cityCode = flag.String("city-code", "", "IATA city code override")
		checkIn  = flag.String("check-in", "", "check-in date YYYY-MM-DD")
		checkOut = flag.String("check-out", "", "check-out date YYYY-MM-DD")
		adults   = flag.Int("adults", 0, "number of adults")
		maxPrice = flag.Float64("max-price", 0, "nightly budget; 0 means no budget")
		pool     = flag.Bool("pool", false, "require an indoor pool")
		topN     = flag.Int("top", 0, "number of top picks")
		debug    = flag.Bool("debug", false, "include the full considered list")
		narrate  = flag.Bool("narrate", false, "ask the responder for a narrative")
		timeout  = flag.Duration("timeout", 30*time.Second, "overall pipeline timeout")
	)
	flag.Parse()

	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	var creds amadeus.CredentialSource
	if cfg.AmadeusCreds != "" {
		c, err := amadeus.JSONCredentials(cfg.AmadeusCreds)
		if err != nil {
			log.Fatal().Err(err).Msg("bad AMADEUS_CREDENTIALS_JSON")
		}
		creds = c
	} else {
		creds = amadeus.StaticCredentials{ClientID: cfg.AmadeusID, ClientSecret: cfg.AmadeusSecret}
	}

	provider, err := amadeus.New(cfg.AmadeusBase, creds, amadeus.Options{
		RPS:              cfg.ProviderRPS,
		RequestTimeout:   cfg.RequestTimeout,
		IDCap:            cfg.IDCap,
		ChunkSize:        cfg.ChunkSize,
		TargetOffers:     cfg.TargetOffers,
		Pacing:           cfg.Pacing,
		SafetyBuffer:     cfg.SafetyBuffer,
		FallbackBudget:   cfg.FallbackBudget,
		FallbackLat:      cfg.FallbackLat,
		FallbackLon:      cfg.FallbackLon,
		FallbackRadiusKm: cfg.FallbackRadiusKm,
		MaxPhotos:        cfg.MaxPhotos,
	}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("amadeus client failed")
	}

	var gen domain.TextGenerator = domain.NopGenerator{}
	if cfg.GeminiKey != "" {
		g, gerr := gemini.New(context.Background(), cfg.GeminiKey)
		if gerr != nil {
			log.Fatal().Err(gerr).Msg("gemini client failed")
		}
		defer g.Close()
		gen = g
	}

	planner := app.NewPlanner(gen, *narrate, log.Logger)
	responder := app.NewResponder(gen, log.Logger)
	router := app.NewRouter(log.Logger)
	orch := app.NewOrchestrator(planner, responder, router, provider, cfg.TopN, log.Logger)

	stay := domain.Stay{
		CheckIn:         *checkIn,
		CheckOut:        *checkOut,
		CityCode:        *cityCode,
		Adults:          *adults,
		WantsIndoorPool: *pool,
	}
	if *maxPrice > 0 {
		stay.MaxPrice = maxPrice
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	resp := orch.Search(ctx, app.SearchRequest{
		Query:        *query,
		Stay:         stay,
		TopN:         *topN,
		Debug:        *debug,
		UseResponder: *narrate,
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		log.Fatal().Err(err).Msg("encode response failed")
	}
}

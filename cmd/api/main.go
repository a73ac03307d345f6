package main

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"luxstay/internal/adapters/amadeus"
	"luxstay/internal/adapters/gemini"
	server "luxstay/internal/adapters/http_server"
	"luxstay/internal/adapters/observability"
	"luxstay/internal/adapters/places"
	redisad "luxstay/internal/adapters/redis"
	"luxstay/internal/app"
	"luxstay/internal/domain"
	"luxstay/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// provider credentials: JSON blob wins, discrete vars as fallback
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

	if cfg.RedisAddr != "" {
		cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.CacheTTL)
		provider.WithListingCache(cache, cfg.CacheTTL)
		log.Info().Str("addr", cfg.RedisAddr).Msg("listing cache enabled")
	}
	if cfg.EnablePhotos && cfg.PlacesKey != "" {
		pl, err := places.New(cfg.PlacesKey, cfg.MaxPhotos)
		if err != nil {
			log.Fatal().Err(err).Msg("places lookup failed")
		}
		provider.WithPlaceLookup(pl)
		log.Info().Msg("places enrichment enabled")
	}

	// text generation: optional, everything degrades without it
	var gen domain.TextGenerator = domain.NopGenerator{}
	if cfg.GeminiKey != "" {
		g, err := gemini.New(context.Background(), cfg.GeminiKey)
		if err != nil {
			log.Fatal().Err(err).Msg("gemini client failed")
		}
		defer g.Close()
		gen = g
		log.Info().Msg("llm planning/narration enabled")
	}

	planner := app.NewPlanner(gen, cfg.IncludeResponder, log.Logger)
	responder := app.NewResponder(gen, log.Logger)
	router := app.NewRouter(log.Logger)
	orch := app.NewOrchestrator(planner, responder, router, provider, cfg.TopN, log.Logger)

	// http
	srv := server.New(cfg.RequestTimeout + cfg.FallbackBudget)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{S: orch})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

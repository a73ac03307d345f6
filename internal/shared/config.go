package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	// Provider
	AmadeusBase    string
	AmadeusCreds   string // JSON blob {"client_id":"...","client_secret":"..."}
	AmadeusID      string // discrete fallback for the blob
	AmadeusSecret  string
	ProviderRPS    int
	RequestTimeout time.Duration

	// Fetch engine tuning
	IDCap            int
	ChunkSize        int
	TargetOffers     int
	Pacing           time.Duration
	SafetyBuffer     time.Duration
	FallbackBudget   time.Duration
	FallbackLat      float64
	FallbackLon      float64
	FallbackRadiusKm int
	MaxPhotos        int

	// Pipeline
	TopN             int
	IncludeResponder bool
	EnablePhotos     bool

	// Collaborators
	GeminiKey string
	PlacesKey string

	// Optional listing cache
	RedisAddr string
	RedisPass string
	RedisDB   int
	CacheTTL  time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),

		AmadeusBase:    env("AMADEUS_BASE_URL", "https://test.api.amadeus.com"),
		AmadeusCreds:   env("AMADEUS_CREDENTIALS_JSON", ""),
		AmadeusID:      env("AMADEUS_CLIENT_ID", ""),
		AmadeusSecret:  env("AMADEUS_CLIENT_SECRET", ""),
		ProviderRPS:    atoi("AMADEUS_RPS", 5),
		RequestTimeout: time.Duration(atoi("AMADEUS_TIMEOUT_SECONDS", 20)) * time.Second,

		IDCap:            atoi("AMADEUS_ID_CAP", 40),
		ChunkSize:        atoi("AMADEUS_OFFERS_CHUNK_SIZE", 20),
		TargetOffers:     atoi("AMADEUS_TARGET_OFFERS", 30),
		Pacing:           time.Duration(atoi("AMADEUS_PACING_MS", 250)) * time.Millisecond,
		SafetyBuffer:     time.Duration(atoi("SEARCH_SAFETY_BUFFER_MS", 2000)) * time.Millisecond,
		FallbackBudget:   time.Duration(atoi("SEARCH_FALLBACK_BUDGET_MS", 15000)) * time.Millisecond,
		FallbackLat:      atof("AMADEUS_FALLBACK_LAT", 51.5074),
		FallbackLon:      atof("AMADEUS_FALLBACK_LON", -0.1278),
		FallbackRadiusKm: atoi("AMADEUS_FALLBACK_RADIUS_KM", 20),
		MaxPhotos:        atoi("MAX_PHOTOS_PER_HOTEL", 4),

		TopN:             atoi("TOP_N", 5),
		IncludeResponder: boolEnv("INCLUDE_RESPONDER"),
		EnablePhotos:     boolEnv("ENABLE_PLACES_PHOTOS"),

		GeminiKey: env("GEMINI_API_KEY", ""),
		PlacesKey: env("GOOGLE_PLACES_API_KEY", ""),

		RedisAddr: env("REDIS_ADDR", ""),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),
		CacheTTL:  time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	if c.AmadeusCreds == "" && (c.AmadeusID == "" || c.AmadeusSecret == "") {
		log.Warn().Msg("amadeus credentials are not configured")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func boolEnv(k string) bool {
	switch os.Getenv(k) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// internal/adapters/amadeus/client.go
package amadeus

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"luxstay/internal/adapters/observability"
	"luxstay/internal/domain"
)

// Options tunes the fetch engine. Zero values fall back to defaults.
type Options struct {
	RPS            int
	RequestTimeout time.Duration

	IDCap          int           // max hotel IDs after dedupe, independent of ChunkSize
	ChunkSize      int           // hotel IDs per offers request
	TargetOffers   int           // stop batching once this many offers accumulated
	Pacing         time.Duration // sleep between offer batches
	SafetyBuffer   time.Duration // shaved off the ambient deadline
	FallbackBudget time.Duration // wall-clock budget when ctx has no deadline

	FallbackLat      float64
	FallbackLon      float64
	FallbackRadiusKm int
	MaxPhotos        int
}

func (o *Options) defaults() {
	if o.RPS <= 0 {
		o.RPS = 5
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 20 * time.Second
	}
	if o.IDCap <= 0 {
		o.IDCap = 40
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = 20
	}
	if o.TargetOffers <= 0 {
		o.TargetOffers = 30
	}
	if o.Pacing <= 0 {
		o.Pacing = 250 * time.Millisecond
	}
	if o.SafetyBuffer <= 0 {
		o.SafetyBuffer = 2 * time.Second
	}
	if o.FallbackBudget <= 0 {
		o.FallbackBudget = 15 * time.Second
	}
	if o.FallbackLat == 0 && o.FallbackLon == 0 {
		o.FallbackLat, o.FallbackLon = 51.5074, -0.1278 // central London
	}
	if o.FallbackRadiusKm <= 0 {
		o.FallbackRadiusKm = 20
	}
	if o.MaxPhotos <= 0 {
		o.MaxPhotos = 4
	}
}

// Client talks to the hotel-offers provider. It owns the OAuth token
// cache and the client-side rate limiter; one instance is safe for
// concurrent use.
type Client struct {
	base   string
	hc     *http.Client
	tokens *tokenCache
	rl     *rate.Limiter
	opts   Options

	cache  domain.Cache       // optional city→IDs listing cache
	places domain.PlaceLookup // optional photo/URL enrichment
	log    zerolog.Logger
}

func New(base string, creds CredentialSource, opts Options, log zerolog.Logger) (*Client, error) {
	if creds == nil {
		return nil, errors.New("amadeus: credential source is required")
	}
	opts.defaults()
	base = strings.TrimRight(base, "/")
	return &Client{
		base:   base,
		hc:     &http.Client{Timeout: opts.RequestTimeout},
		tokens: newTokenCache(base, creds, opts.RequestTimeout),
		rl:     rate.NewLimiter(rate.Limit(opts.RPS), opts.RPS),
		opts:   opts,
		places: domain.NopPlaceLookup{},
		log:    log,
	}, nil
}

// WithListingCache enables best-effort caching of city→hotel-ID listings.
func (c *Client) WithListingCache(cache domain.Cache, _ time.Duration) *Client {
	c.cache = cache
	return c
}

// WithPlaceLookup enables photo/map-URL enrichment.
func (c *Client) WithPlaceLookup(pl domain.PlaceLookup) *Client {
	if pl != nil {
		c.places = pl
	}
	return c
}

// ---- error taxonomy ----

var (
	// ErrUnauthorized marks authentication/configuration failures. These
	// propagate to the caller instead of degrading to partial results.
	ErrUnauthorized = errors.New("amadeus: unauthorized")
)

// APIError is a terminal (non-retryable) provider response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("amadeus: status %d: %s", e.Status, e.Body)
}

// ---- HTTP core ----

const maxAttempts = 4

// get performs a GET with client-side rate limiting, bearer auth, and
// retries on 429/transient 5xx honoring Retry-After when provided. Any
// other 4xx is terminal.
func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	tok, err := c.tokens.token(ctx, c.hc)
	if err != nil {
		return err
	}

	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+tok)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "luxstay/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			observability.ObserveExternal("amadeus", path, 0, time.Since(start))
			lastErr = err
			if i < maxAttempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("amadeus", path, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case http.StatusUnauthorized, http.StatusForbidden:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("amadeus: remote %d", resp.StatusCode)
			if i < maxAttempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
		}
	}
	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay with concurrency-safe jitter.
// Base doubles each attempt (200ms, 400ms, 800ms...), plus up to +50%.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}

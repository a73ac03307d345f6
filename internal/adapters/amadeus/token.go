// internal/adapters/amadeus/token.go
package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Credentials is the client id/secret pair for the provider's OAuth
// client-credentials flow.
type Credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// CredentialSource supplies provider credentials. Implementations may
// read a secret store, the environment, or a fixture.
type CredentialSource interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// StaticCredentials is a CredentialSource backed by fixed values.
type StaticCredentials Credentials

func (s StaticCredentials) Credentials(context.Context) (Credentials, error) {
	if s.ClientID == "" || s.ClientSecret == "" {
		return Credentials{}, fmt.Errorf("%w: missing client credentials", ErrUnauthorized)
	}
	return Credentials(s), nil
}

// JSONCredentials parses a secret blob of the form
// {"client_id":"...","client_secret":"..."}.
func JSONCredentials(blob string) (CredentialSource, error) {
	var c Credentials
	if err := json.Unmarshal([]byte(blob), &c); err != nil {
		return nil, fmt.Errorf("amadeus: parse credentials blob: %w", err)
	}
	return StaticCredentials(c), nil
}

// tokenCache is a time-boxed, read-mostly bearer-token cache scoped to
// one client. The clock is injectable so tests can control expiry.
// Concurrent refreshes collapse through singleflight; the worst case of
// the check-then-use race is one extra token fetch.
type tokenCache struct {
	base    string
	creds   CredentialSource
	timeout time.Duration
	now     func() time.Time

	mu  sync.Mutex
	val string
	exp time.Time
	sf  singleflight.Group
}

func newTokenCache(base string, creds CredentialSource, timeout time.Duration) *tokenCache {
	return &tokenCache{base: base, creds: creds, timeout: timeout, now: time.Now}
}

// expiry headroom so a token is never used in its final seconds
const tokenSlack = 30 * time.Second

func (t *tokenCache) token(ctx context.Context, hc *http.Client) (string, error) {
	t.mu.Lock()
	if t.val != "" && t.now().Before(t.exp.Add(-tokenSlack)) {
		v := t.val
		t.mu.Unlock()
		return v, nil
	}
	t.mu.Unlock()

	v, err, _ := t.sf.Do("token", func() (any, error) {
		return t.fetch(ctx, hc)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (t *tokenCache) fetch(ctx context.Context, hc *http.Client) (string, error) {
	creds, err := t.creds.Credentials(ctx)
	if err != nil {
		return "", err
	}
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {creds.ClientID},
		"client_secret": {creds.ClientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.base+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("amadeus: token exchange: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("%w: token exchange status %d: %s", ErrUnauthorized, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("amadeus: decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrUnauthorized)
	}
	if payload.ExpiresIn <= 0 {
		payload.ExpiresIn = 1800
	}

	t.mu.Lock()
	t.val = payload.AccessToken
	t.exp = t.now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	t.mu.Unlock()
	return payload.AccessToken, nil
}

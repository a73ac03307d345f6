package amadeus

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestTokenCache_ReusesUntilSlackWindow(t *testing.T) {
	var fetches int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fetches, 1)
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 100})
	}))
	defer ts.Close()

	now := time.Now()
	tc := newTokenCache(ts.URL, StaticCredentials{ClientID: "id", ClientSecret: "sec"}, time.Second)
	tc.now = func() time.Time { return now }

	hc := &http.Client{Timeout: time.Second}
	for i := 0; i < 3; i++ {
		tok, err := tc.token(context.Background(), hc)
		if err != nil || tok != "tok" {
			t.Fatalf("token: %q err=%v", tok, err)
		}
	}
	if got := atomic.LoadInt32(&fetches); got != 1 {
		t.Fatalf("expected a single fetch for a fresh token, got %d", got)
	}

	// 100s lifetime minus the 30s slack: at +71s the token is stale.
	now = now.Add(71 * time.Second)
	if _, err := tc.token(context.Background(), hc); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := atomic.LoadInt32(&fetches); got != 2 {
		t.Fatalf("expected a refresh inside the slack window, got %d fetches", got)
	}
}

func TestTokenCache_DefaultExpiry(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// no expires_in field at all
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok"})
	}))
	defer ts.Close()

	now := time.Now()
	tc := newTokenCache(ts.URL, StaticCredentials{ClientID: "id", ClientSecret: "sec"}, time.Second)
	tc.now = func() time.Time { return now }

	if _, err := tc.token(context.Background(), &http.Client{Timeout: time.Second}); err != nil {
		t.Fatalf("token: %v", err)
	}
	if want := now.Add(1800 * time.Second); !tc.exp.Equal(want) {
		t.Fatalf("expiry: got %v want %v", tc.exp, want)
	}
}

func TestTokenCache_EmptyTokenRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "", "expires_in": 100})
	}))
	defer ts.Close()

	tc := newTokenCache(ts.URL, StaticCredentials{ClientID: "id", ClientSecret: "sec"}, time.Second)
	if _, err := tc.token(context.Background(), &http.Client{Timeout: time.Second}); err == nil {
		t.Fatalf("expected error for empty access token")
	}
}

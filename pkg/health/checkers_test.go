package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gorillaadapter "github.com/HarshaM0211/jira-software/pkg/server/router/gorilla"
)

type stubAdapter struct {
	err   error
	delay time.Duration
}

func (s *stubAdapter) HealthCheck(ctx context.Context) error {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.err
}

func TestAdapterChecker(t *testing.T) {
	tests := []struct {
		name    string
		checker *AdapterChecker
		want    Status
		wantErr bool
	}{
		{"store ok", NewStoreChecker("postgres", &stubAdapter{}), StatusHealthy, false},
		{"store down", NewStoreChecker("postgres", &stubAdapter{err: errors.New("connection refused")}), StatusUnhealthy, true},
		{"cache down degrades", NewCacheChecker(&stubAdapter{err: errors.New("dial tcp")}), StatusDegraded, true},
		{"timeout", NewAdapterChecker("store:mongodb", &stubAdapter{delay: time.Second}, 10*time.Millisecond), StatusUnhealthy, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.checker.Check(context.Background())
			if result.Status != tt.want {
				t.Fatalf("status = %s, want %s", result.Status, tt.want)
			}
			if (result.Error != "") != tt.wantErr {
				t.Fatalf("error = %q, wantErr %v", result.Error, tt.wantErr)
			}
			if result.Name != tt.checker.Name() {
				t.Fatalf("result name %q != checker name %q", result.Name, tt.checker.Name())
			}
		})
	}
}

func TestCheckerNames(t *testing.T) {
	if got := NewStoreChecker("sqlite", &stubAdapter{}).Name(); got != "store:sqlite" {
		t.Fatalf("store checker name = %q", got)
	}
	if got := NewCacheChecker(&stubAdapter{}).Name(); got != "cache:redis" {
		t.Fatalf("cache checker name = %q", got)
	}
	if got := NewPingChecker("store:memory").Check(context.Background()); got.Status != StatusHealthy {
		t.Fatalf("ping checker = %+v", got)
	}
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		storeErr   error
		cacheErr   error
		wantCode   int
		wantStatus Status
	}{
		{"healthy", nil, nil, http.StatusOK, StatusHealthy},
		{"degraded", nil, errors.New("cache down"), http.StatusOK, StatusDegraded},
		{"unhealthy", errors.New("db down"), nil, http.StatusServiceUnavailable, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewRegistry()
			registry.Register(NewStoreChecker("postgres", &stubAdapter{err: tt.storeErr}))
			registry.Register(NewCacheChecker(&stubAdapter{err: tt.cacheErr}))

			r := gorillaadapter.NewRouter()
			r.GET("/health", Handler(registry))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			if w.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", w.Code, tt.wantCode)
			}

			var body AggregatedResult
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tt.wantStatus || len(body.Checks) != 2 {
				t.Fatalf("unexpected body: %+v", body)
			}
		})
	}
}

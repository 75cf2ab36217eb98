package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/HarshaM0211/jira-software/pkg/observability/logger"
)

func newMiniredisAdapter(t *testing.T) (*Adapter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewAdapterFromClient(client, Config{}, logger.NewNop()), mr
}

func TestNewAdapter_Validation(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "empty url", url: ""},
		{name: "invalid scheme", url: "invalid://url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewAdapter(Config{URL: tt.url}, logger.NewNop()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewAdapter_ConnectsToServer(t *testing.T) {
	mr := miniredis.RunT(t)
	a, err := NewAdapter(Config{URL: "redis://" + mr.Addr() + "/0", MaxConns: 4, OperationTimeout: time.Second}, logger.NewNop())
	if err != nil {
		t.Fatalf("NewAdapter() error = %v", err)
	}
	defer a.Close()

	if err := a.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}
}

func TestAdapter_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	a, mr := newMiniredisAdapter(t)

	if _, err := a.Get(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get(missing) error = %v, want ErrCacheMiss", err)
	}

	if err := a.SetWithTTL(ctx, "project:1", []byte(`{"id":1}`), time.Minute); err != nil {
		t.Fatalf("SetWithTTL() error = %v", err)
	}
	got, err := a.Get(ctx, "project:1")
	if err != nil || string(got) != `{"id":1}` {
		t.Fatalf("Get() = %q, %v", got, err)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := a.Get(ctx, "project:1"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get() after expiry error = %v", err)
	}

	_ = a.SetWithTTL(ctx, "a", []byte("1"), 0)
	_ = a.SetWithTTL(ctx, "b", []byte("2"), 0)
	if err := a.Delete(ctx, "a", "b"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if mr.Exists("a") || mr.Exists("b") {
		t.Fatal("keys still present after Delete")
	}
	if err := a.Delete(ctx); err != nil {
		t.Fatalf("Delete() without keys error = %v", err)
	}
}

func TestAdapter_SetIfGeneration(t *testing.T) {
	ctx := context.Background()
	a, mr := newMiniredisAdapter(t)

	gen, err := a.Generation(ctx, "project:1:gen")
	if err != nil || gen != 0 {
		t.Fatalf("Generation(absent) = %d, %v, want 0", gen, err)
	}
	stored, err := a.SetIfGeneration(ctx, "project:1", []byte("v1"), time.Minute, "project:1:gen", gen)
	if err != nil || !stored {
		t.Fatalf("SetIfGeneration() = %v, %v, want stored", stored, err)
	}

	if err := a.BumpGenerations(ctx, time.Hour, []string{"project:1:gen"}, "project:1"); err != nil {
		t.Fatalf("BumpGenerations() error = %v", err)
	}
	if mr.Exists("project:1") {
		t.Fatal("BumpGenerations must delete the entry")
	}
	if ttl := mr.TTL("project:1:gen"); ttl != time.Hour {
		t.Errorf("generation TTL = %v, want 1h", ttl)
	}

	stored, err = a.SetIfGeneration(ctx, "project:1", []byte("stale"), time.Minute, "project:1:gen", gen)
	if err != nil || stored {
		t.Fatalf("SetIfGeneration(old generation) = %v, %v, want skipped", stored, err)
	}
	if mr.Exists("project:1") {
		t.Fatal("a write at an old generation must not be stored")
	}

	current, err := a.Generation(ctx, "project:1:gen")
	if err != nil || current != 1 {
		t.Fatalf("Generation() = %d, %v, want 1", current, err)
	}
	if stored, err := a.SetIfGeneration(ctx, "project:1", []byte("v2"), time.Minute, "project:1:gen", current); err != nil || !stored {
		t.Fatalf("SetIfGeneration(current) = %v, %v, want stored", stored, err)
	}
	if got, _ := a.Get(ctx, "project:1"); string(got) != "v2" {
		t.Errorf("Get() = %q, want v2", got)
	}
}

func TestAdapter_HealthCheckFailsWhenServerStops(t *testing.T) {
	a, mr := newMiniredisAdapter(t)
	mr.Close()

	if err := a.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health check error")
	}
}

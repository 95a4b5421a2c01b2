package currency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type countingStore struct {
	*MemoryStore
	gets int
}

func (s *countingStore) GetRate(ctx context.Context, code Code) (Rate, error) {
	s.gets++
	return s.MemoryStore.GetRate(ctx, code)
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("cache down")
}

func (failingCache) Set(context.Context, string, string, time.Duration) error {
	return errors.New("cache down")
}

func (failingCache) Delete(context.Context, string) error {
	return errors.New("cache down")
}

func TestCachedStoreReadThrough(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{MemoryStore: NewMemoryStore(DefaultRates()...)}
	store := NewCachedStore(backing, NewMemoryCache(), time.Minute)

	first, err := store.GetRate(ctx, GYD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := store.GetRate(ctx, GYD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if backing.gets != 1 {
		t.Fatalf("expected 1 backing lookup, got %d", backing.gets)
	}
	if !first.UnitsPerUSD.Equal(second.UnitsPerUSD) || second.Code != GYD {
		t.Fatalf("expected cached rate %+v, got %+v", first, second)
	}
}

func TestCachedStoreSetRateInvalidates(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{MemoryStore: NewMemoryStore(DefaultRates()...)}
	store := NewCachedStore(backing, NewMemoryCache(), time.Minute)

	if _, err := store.GetRate(ctx, JMD); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated := Rate{Code: JMD, UnitsPerUSD: decimal.RequireFromString("160"), UpdatedAt: time.Now().UTC()}
	if err := store.SetRate(ctx, updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.GetRate(ctx, JMD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.UnitsPerUSD.Equal(updated.UnitsPerUSD) {
		t.Fatalf("expected %s after update, got %s", updated.UnitsPerUSD, got.UnitsPerUSD)
	}
	if backing.gets != 2 {
		t.Fatalf("expected 2 backing lookups, got %d", backing.gets)
	}
}

func TestCachedStoreFallsBackWhenCacheFails(t *testing.T) {
	ctx := context.Background()
	store := NewCachedStore(NewMemoryStore(DefaultRates()...), failingCache{}, time.Minute)

	got, err := store.GetRate(ctx, USD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.UnitsPerUSD.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected USD rate 1, got %s", got.UnitsPerUSD)
	}
}

func TestCachedStoreMissingRate(t *testing.T) {
	store := NewCachedStore(NewMemoryStore(), NewMemoryCache(), time.Minute)

	if _, err := store.GetRate(context.Background(), GYD); !errors.Is(err, ErrRateNotFound) {
		t.Fatalf("expected ErrRateNotFound, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := NewMemoryCache()
	cache.now = func() time.Time { return now }

	if err := cache.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, ok, _ := cache.Get(ctx, "k"); !ok || v != "v" {
		t.Fatalf("expected hit with %q, got %q (hit=%t)", "v", v, ok)
	}

	now = now.Add(time.Minute)
	if _, ok, _ := cache.Get(ctx, "k"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestMemoryStoreListRatesSorted(t *testing.T) {
	store := NewMemoryStore(DefaultRates()...)

	rates, err := store.ListRates(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Code{GYD, JMD, USD}
	if len(rates) != len(want) {
		t.Fatalf("expected %d rates, got %d", len(want), len(rates))
	}
	for i, code := range want {
		if rates[i].Code != code {
			t.Fatalf("rate %d: expected %s, got %s", i, code, rates[i].Code)
		}
	}
}

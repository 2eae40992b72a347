package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/AryanKumarOfficial/bloodchain/internal/geo"
)

func TestLocationCacheUpdateAndGet(t *testing.T) {
	cache := NewLocationCache(nil, time.Hour, zap.NewNop())
	ctx := context.Background()

	coord := geo.Coordinate{Latitude: 28.6139, Longitude: 77.2090}
	cache.Update(ctx, "user-1", coord)

	got, ok := cache.Get(ctx, "user-1")
	if !ok {
		t.Fatal("Get() miss for a freshly updated entry")
	}
	if got != coord {
		t.Errorf("Get() = %+v, want %+v", got, coord)
	}

	if _, ok := cache.Get(ctx, "user-unknown"); ok {
		t.Error("Get() hit for an unknown user")
	}
}

func TestLocationCacheOverwrite(t *testing.T) {
	cache := NewLocationCache(nil, time.Hour, zap.NewNop())
	ctx := context.Background()

	cache.Update(ctx, "user-1", geo.Coordinate{Latitude: 10, Longitude: 10})
	latest := geo.Coordinate{Latitude: 20, Longitude: 20}
	cache.Update(ctx, "user-1", latest)

	got, ok := cache.Get(ctx, "user-1")
	if !ok || got != latest {
		t.Errorf("Get() = %+v, %v; want latest coordinate %+v", got, ok, latest)
	}
	if cache.Size() != 1 {
		t.Errorf("Size() = %d, want 1 after overwrite", cache.Size())
	}
}

func TestLocationCacheStaleEntryMisses(t *testing.T) {
	cache := NewLocationCache(nil, 5*time.Millisecond, zap.NewNop())
	ctx := context.Background()

	cache.Update(ctx, "user-1", geo.Coordinate{Latitude: 10, Longitude: 10})
	time.Sleep(20 * time.Millisecond)

	if _, ok := cache.Get(ctx, "user-1"); ok {
		t.Error("Get() hit for an entry past its max age")
	}
}

func TestLocationCacheDelete(t *testing.T) {
	cache := NewLocationCache(nil, time.Hour, zap.NewNop())
	ctx := context.Background()

	cache.Update(ctx, "user-1", geo.Coordinate{Latitude: 10, Longitude: 10})
	cache.Delete(ctx, "user-1")

	if _, ok := cache.Get(ctx, "user-1"); ok {
		t.Error("Get() hit after Delete()")
	}
	if cache.Size() != 0 {
		t.Errorf("Size() = %d, want 0 after delete", cache.Size())
	}
}

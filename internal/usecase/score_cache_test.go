package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/courtside/netball-hub/internal/domain/gamestat"
	"github.com/courtside/netball-hub/internal/domain/scores"
)

func sampleScores() scores.GameScores {
	return scores.Build([]scores.QuarterScore{
		{Quarter: 1, TeamScore: 7, OpponentScore: 4},
		{Quarter: 2}, {Quarter: 3}, {Quarter: 4},
	})
}

func TestScoreCache_FingerprintSensitivity(t *testing.T) {
	t.Parallel()

	cache := NewScoreCache(DefaultScoreCacheTTL)
	ctx := context.Background()

	statsA := []gamestat.Stat{
		{ID: "s1", Quarter: 1, Position: "GS", GoalsFor: 5, GoalsAgainst: 3},
		{ID: "s2", Quarter: 1, Position: "GA", GoalsFor: 2, GoalsAgainst: 1},
	}
	cache.Set(ctx, "g1", sampleScores(), statsA, "completed")

	if _, ok := cache.Get(ctx, "g1", statsA, "completed"); !ok {
		t.Fatal("identical stats should hit")
	}

	reordered := []gamestat.Stat{statsA[1], statsA[0]}
	if _, ok := cache.Get(ctx, "g1", reordered, "completed"); !ok {
		t.Fatal("reordered stats should still hit (order-independent fingerprint)")
	}

	statsB := append([]gamestat.Stat(nil), statsA...)
	statsB[0].GoalsFor = 6
	if _, ok := cache.Get(ctx, "g1", statsB, "completed"); ok {
		t.Fatal("changed goalsFor must miss even within TTL")
	}

	if _, ok := cache.Get(ctx, "g1", statsA, "in-progress"); ok {
		t.Fatal("changed status must miss")
	}
}

func TestScoreCache_TTLExpiry(t *testing.T) {
	t.Parallel()

	ttl := DefaultScoreCacheTTL
	base := time.Date(2026, 6, 13, 9, 0, 0, 0, time.UTC)
	current := base
	cache := NewScoreCacheWithClock(ttl, func() time.Time { return current })
	ctx := context.Background()

	stats := []gamestat.Stat{{ID: "s1", Quarter: 1, GoalsFor: 5, GoalsAgainst: 3}}
	cache.Set(ctx, "g1", sampleScores(), stats, "completed")

	current = base.Add(ttl - time.Minute)
	if _, ok := cache.Get(ctx, "g1", stats, "completed"); !ok {
		t.Fatal("expected hit inside TTL window")
	}

	current = base.Add(ttl + time.Minute)
	if _, ok := cache.Get(ctx, "g1", stats, "completed"); ok {
		t.Fatal("expected miss past TTL")
	}
}

func TestScoreCache_InvalidateIsPrefixScoped(t *testing.T) {
	t.Parallel()

	cache := NewScoreCache(DefaultScoreCacheTTL)
	ctx := context.Background()

	statsA := []gamestat.Stat{{ID: "s1", Quarter: 1, GoalsFor: 1}}
	statsB := []gamestat.Stat{{ID: "s1", Quarter: 1, GoalsFor: 2}}
	cache.Set(ctx, "g1", sampleScores(), statsA, "completed")
	cache.Set(ctx, "g1", sampleScores(), statsB, "completed")
	cache.Set(ctx, "g2", sampleScores(), statsA, "completed")

	cache.Invalidate(ctx, "g1")

	if _, ok := cache.Get(ctx, "g1", statsA, "completed"); ok {
		t.Fatal("g1 entry A should be invalidated")
	}
	if _, ok := cache.Get(ctx, "g1", statsB, "completed"); ok {
		t.Fatal("g1 entry B should be invalidated")
	}
	if _, ok := cache.Get(ctx, "g2", statsA, "completed"); !ok {
		t.Fatal("g2 entry must survive an unrelated invalidation")
	}
}

func TestScoreCache_Clear(t *testing.T) {
	t.Parallel()

	cache := NewScoreCache(DefaultScoreCacheTTL)
	ctx := context.Background()
	stats := []gamestat.Stat{{ID: "s1", Quarter: 1, GoalsFor: 1}}

	cache.Set(ctx, "g1", sampleScores(), stats, "completed")
	cache.Clear(ctx)

	if _, ok := cache.Get(ctx, "g1", stats, "completed"); ok {
		t.Fatal("clear must drop every entry")
	}
}

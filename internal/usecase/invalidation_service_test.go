package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/courtside/netball-hub/internal/domain/gamestat"
	"github.com/courtside/netball-hub/internal/platform/cache"
)

func newInvalidationFixture() (*InvalidationService, *ScoreCache, *cache.Store) {
	scoreCache := NewScoreCache(DefaultScoreCacheTTL)
	queryCache := cache.NewStore(time.Minute)
	return NewInvalidationService(scoreCache, queryCache, nil), scoreCache, queryCache
}

func seedQueryCache(store *cache.Store) {
	ctx := context.Background()
	store.Set(ctx, "batch:club-1:team-1:g1,g2:src", 1)
	store.Set(ctx, "batch:club-1::g1:c", 2)
	store.Set(ctx, "batch:club-1::g3:sr", 3)
	store.Set(ctx, GameDetailKey("g1"), 4)
	store.Set(ctx, GamesListKey(), 5)
	store.Set(ctx, ClubDashboardKey("club-1"), 6)
	store.Set(ctx, TeamScopedPrefix("team-1")+"players", 7)
}

func TestInvalidationService_ScoreUpdated(t *testing.T) {
	t.Parallel()

	service, scoreCache, queryCache := newInvalidationFixture()
	ctx := context.Background()
	seedQueryCache(queryCache)

	stats := []gamestat.Stat{{ID: "s1", Quarter: 1, GoalsFor: 5}}
	scoreCache.Set(ctx, "g1", sampleScores(), stats, "completed")

	service.ScoreUpdated(ctx, "club-1", "g1")

	if _, ok := scoreCache.Get(ctx, "g1", stats, "completed"); ok {
		t.Fatal("resolved scores for the game must be dropped")
	}
	if _, ok := queryCache.Get(ctx, "batch:club-1:team-1:g1,g2:src"); ok {
		t.Fatal("batch including the game's scores must be dropped")
	}
	if _, ok := queryCache.Get(ctx, "batch:club-1::g1:c"); ok {
		t.Fatal("score-only batch for the game must be dropped")
	}
	if _, ok := queryCache.Get(ctx, ClubDashboardKey("club-1")); ok {
		t.Fatal("club dashboard list must be dropped")
	}

	// Score-only update keeps everything else.
	if _, ok := queryCache.Get(ctx, GameDetailKey("g1")); !ok {
		t.Fatal("game detail must survive a score-only update")
	}
	if _, ok := queryCache.Get(ctx, "batch:club-1::g3:sr"); !ok {
		t.Fatal("batches without the game must survive")
	}
	if _, ok := queryCache.Get(ctx, GamesListKey()); !ok {
		t.Fatal("unscoped games list must survive a score-only update")
	}
}

func TestInvalidationService_GameDataUpdated(t *testing.T) {
	t.Parallel()

	service, _, queryCache := newInvalidationFixture()
	ctx := context.Background()
	seedQueryCache(queryCache)

	service.GameDataUpdated(ctx, "g1")

	for _, key := range []string{
		"batch:club-1:team-1:g1,g2:src",
		"batch:club-1::g1:c",
		GameDetailKey("g1"),
		GamesListKey(),
	} {
		if _, ok := queryCache.Get(ctx, key); ok {
			t.Fatalf("key %q must be dropped by a full game update", key)
		}
	}

	if _, ok := queryCache.Get(ctx, "batch:club-1::g3:sr"); !ok {
		t.Fatal("unrelated batch must survive")
	}
	if _, ok := queryCache.Get(ctx, TeamScopedPrefix("team-1")+"players"); !ok {
		t.Fatal("team players must survive a game update")
	}
}

func TestInvalidationService_TeamUpdated(t *testing.T) {
	t.Parallel()

	service, _, queryCache := newInvalidationFixture()
	ctx := context.Background()
	seedQueryCache(queryCache)

	service.TeamUpdated(ctx, "team-1")

	if _, ok := queryCache.Get(ctx, TeamScopedPrefix("team-1")+"players"); ok {
		t.Fatal("team-scoped entries must be dropped")
	}
	if _, ok := queryCache.Get(ctx, "batch:club-1:team-1:g1,g2:src"); ok {
		t.Fatal("batches scoped to the team must be dropped")
	}
	if _, ok := queryCache.Get(ctx, "batch:club-1::g1:c"); !ok {
		t.Fatal("batches without the team must survive")
	}
	if _, ok := queryCache.Get(ctx, GamesListKey()); !ok {
		t.Fatal("games list must survive a team update")
	}
}

func TestInvalidationService_BatchKeysWithDelimiterIDs(t *testing.T) {
	t.Parallel()

	service, _, queryCache := newInvalidationFixture()
	ctx := context.Background()

	// Upstream IDs are opaque strings and may carry the key delimiters.
	gameID := "game:7,a"
	teamID := "team:blue"
	key := batchFetchKey("club-1", teamID, []string{gameID, "g2"}, true, false, true)

	queryCache.Set(ctx, key, 1)
	if got := batchKeySegments(key); len(got) != 5 {
		t.Fatalf("key %q splits into %d segments, want 5", key, len(got))
	}

	service.GameDataUpdated(ctx, gameID)
	if _, ok := queryCache.Get(ctx, key); ok {
		t.Fatal("batch referencing the delimiter-bearing game must be dropped")
	}

	queryCache.Set(ctx, key, 1)
	service.TeamUpdated(ctx, teamID)
	if _, ok := queryCache.Get(ctx, key); ok {
		t.Fatal("batch scoped to the delimiter-bearing team must be dropped")
	}

	// A plain ID sharing a prefix with the escaped one must not match.
	queryCache.Set(ctx, key, 1)
	service.GameDataUpdated(ctx, "game")
	if _, ok := queryCache.Get(ctx, key); !ok {
		t.Fatal("batch must survive an update for an unrelated game")
	}
}

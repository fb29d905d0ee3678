package usecase

import (
	"context"
	"time"

	"github.com/courtside/netball-hub/internal/domain/gamestat"
	"github.com/courtside/netball-hub/internal/domain/scores"
	"github.com/courtside/netball-hub/internal/platform/cache"
	"github.com/courtside/netball-hub/internal/platform/fingerprint"
)

const DefaultScoreCacheTTL = 30 * time.Minute

// ScoreCache memoizes resolved GameScores. The cache key embeds a
// content fingerprint of the stat rows plus the game status, so a stale
// read is structurally impossible while the fingerprint reflects the
// current inputs; Invalidate is memory reclamation, not the correctness
// mechanism.
type ScoreCache struct {
	store *cache.Store
}

func NewScoreCache(ttl time.Duration) *ScoreCache {
	if ttl <= 0 {
		ttl = DefaultScoreCacheTTL
	}
	return &ScoreCache{store: cache.NewStore(ttl)}
}

// NewScoreCacheWithClock injects a clock for expiry tests.
func NewScoreCacheWithClock(ttl time.Duration, now func() time.Time) *ScoreCache {
	if ttl <= 0 {
		ttl = DefaultScoreCacheTTL
	}
	return &ScoreCache{store: cache.NewStoreWithClock(ttl, now)}
}

func (c *ScoreCache) Get(ctx context.Context, gameID string, stats []gamestat.Stat, status string) (scores.GameScores, bool) {
	if gameID == "" {
		return scores.GameScores{}, false
	}

	value, ok := c.store.Get(ctx, scoreCacheKey(gameID, stats, status))
	if !ok {
		return scores.GameScores{}, false
	}

	cached, ok := value.(scores.GameScores)
	return cached, ok
}

func (c *ScoreCache) Set(ctx context.Context, gameID string, resolved scores.GameScores, stats []gamestat.Stat, status string) {
	if gameID == "" {
		return
	}
	c.store.Set(ctx, scoreCacheKey(gameID, stats, status), resolved)
}

// Invalidate drops every entry for the game regardless of the stats and
// status portion of the key.
func (c *ScoreCache) Invalidate(ctx context.Context, gameID string) {
	if gameID == "" {
		return
	}
	c.store.DeletePrefix(ctx, "scores:"+gameID+":")
}

func (c *ScoreCache) Clear(ctx context.Context) {
	c.store.Clear(ctx)
}

func scoreCacheKey(gameID string, stats []gamestat.Stat, status string) string {
	return "scores:" + gameID + ":" + statFingerprint(stats) + ":" + status
}

func statFingerprint(stats []gamestat.Stat) string {
	tuples := make([]fingerprint.Tuple, 0, len(stats))
	for _, s := range stats {
		tuples = append(tuples, fingerprint.Tuple{
			ID:       s.ID,
			Quarter:  s.Quarter,
			Position: s.Position,
			ValueA:   s.GoalsFor,
			ValueB:   s.GoalsAgainst,
		})
	}
	return fingerprint.Hash(tuples)
}

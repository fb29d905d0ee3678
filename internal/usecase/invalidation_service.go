package usecase

import (
	"context"
	"strings"

	"github.com/courtside/netball-hub/internal/platform/cache"
	"github.com/courtside/netball-hub/internal/platform/logging"
)

// Query cache key layout shared with GameDataService and the HTTP
// layer. Batch keys are "batch:{club}:{team}:{id,id,...}:{kinds}" where
// kinds is a subset of "s" (stats), "r" (rosters), "c" (scores); club,
// team and game segments are percent-escaped (see escapeBatchSegment).
func GameDetailKey(gameID string) string    { return "games:detail:" + gameID }
func GamesListKey() string                  { return "games:list" }
func ClubDashboardKey(clubID string) string { return "club:" + clubID + ":dashboard" }
func TeamScopedPrefix(teamID string) string { return "team:" + teamID + ":" }

// InvalidationService maps a confirmed domain mutation onto the minimal
// set of cache entries that must be dropped. Reads and navigation never
// invalidate; only successful mutations do, which keeps routine
// browsing from causing refetch storms.
type InvalidationService struct {
	scoreCache *ScoreCache
	queryCache *cache.Store
	logger     *logging.Logger
}

func NewInvalidationService(scoreCache *ScoreCache, queryCache *cache.Store, logger *logging.Logger) *InvalidationService {
	if logger == nil {
		logger = logging.Default()
	}
	return &InvalidationService{
		scoreCache: scoreCache,
		queryCache: queryCache,
		logger:     logger,
	}
}

// ScoreUpdated handles a score-only mutation: resolved scores for the
// game, batch entries that cover its scores, and the club dashboard
// list (aggregate win/loss displays). Game detail and roster entries
// survive.
func (s *InvalidationService) ScoreUpdated(ctx context.Context, clubID, gameID string) {
	ctx, span := startUsecaseSpan(ctx, "usecase.InvalidationService.ScoreUpdated")
	defer span.End()

	s.scoreCache.Invalidate(ctx, gameID)
	s.queryCache.DeleteFunc(ctx, func(key string) bool {
		if key == ClubDashboardKey(clubID) {
			return true
		}
		return batchKeyReferencesGame(key, gameID) && batchKeyHasKind(key, 'c')
	})

	s.logger.DebugContext(ctx, "invalidated score caches", "game_id", gameID, "club_id", clubID)
}

// GameDataUpdated handles a stats/roster/status mutation: everything
// referencing the game plus the unscoped games list.
func (s *InvalidationService) GameDataUpdated(ctx context.Context, gameID string) {
	ctx, span := startUsecaseSpan(ctx, "usecase.InvalidationService.GameDataUpdated")
	defer span.End()

	s.scoreCache.Invalidate(ctx, gameID)
	s.queryCache.DeleteFunc(ctx, func(key string) bool {
		if key == GameDetailKey(gameID) || key == GamesListKey() {
			return true
		}
		return batchKeyReferencesGame(key, gameID)
	})

	s.logger.DebugContext(ctx, "invalidated game caches", "game_id", gameID)
}

// TeamUpdated handles a roster-composition mutation: team-scoped
// player/roster entries and batches scoped to the team.
func (s *InvalidationService) TeamUpdated(ctx context.Context, teamID string) {
	ctx, span := startUsecaseSpan(ctx, "usecase.InvalidationService.TeamUpdated")
	defer span.End()

	prefix := TeamScopedPrefix(teamID)
	s.queryCache.DeleteFunc(ctx, func(key string) bool {
		if strings.HasPrefix(key, prefix) {
			return true
		}
		return batchKeyTeam(key) == escapeBatchSegment(teamID)
	})

	s.logger.DebugContext(ctx, "invalidated team caches", "team_id", teamID)
}

func batchKeySegments(key string) []string {
	if !strings.HasPrefix(key, "batch:") {
		return nil
	}
	parts := strings.Split(key, ":")
	if len(parts) != 5 {
		return nil
	}
	return parts
}

func batchKeyReferencesGame(key, gameID string) bool {
	parts := batchKeySegments(key)
	if parts == nil {
		return false
	}
	want := escapeBatchSegment(gameID)
	for _, id := range strings.Split(parts[3], ",") {
		if id == want {
			return true
		}
	}
	return false
}

func batchKeyHasKind(key string, kind byte) bool {
	parts := batchKeySegments(key)
	if parts == nil {
		return false
	}
	return strings.IndexByte(parts[4], kind) >= 0
}

func batchKeyTeam(key string) string {
	parts := batchKeySegments(key)
	if parts == nil {
		return ""
	}
	return parts[2]
}

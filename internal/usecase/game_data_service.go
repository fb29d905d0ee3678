package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc"

	"github.com/courtside/netball-hub/internal/domain/gamestat"
	"github.com/courtside/netball-hub/internal/domain/officialscore"
	"github.com/courtside/netball-hub/internal/domain/roster"
	"github.com/courtside/netball-hub/internal/platform/cache"
	"github.com/courtside/netball-hub/internal/platform/logging"
)

const defaultFallbackWorkers = 4

// GameDataClient is the HTTP data-access collaborator. Batch calls
// return one slice per requested game; per-game calls back the batch
// path up when it fails.
type GameDataClient interface {
	BatchGameStats(ctx context.Context, gameIDs []string) (map[string][]gamestat.Stat, error)
	BatchGameRosters(ctx context.Context, gameIDs []string) (map[string][]roster.Entry, error)
	BatchGameScores(ctx context.Context, gameIDs []string) (map[string][]officialscore.Score, error)
	GameStats(ctx context.Context, gameID string) ([]gamestat.Stat, error)
	GameRosters(ctx context.Context, gameID string) ([]roster.Entry, error)
	GameScores(ctx context.Context, gameID string) ([]officialscore.Score, error)
}

type BatchFetchInput struct {
	GameIDs        []string
	ClubID         string
	TeamID         string
	IncludeStats   bool
	IncludeRosters bool
	IncludeScores  bool
}

type GameDataBundle struct {
	Stats   map[string][]gamestat.Stat
	Rosters map[string][]roster.Entry
	Scores  map[string][]officialscore.Score
}

// GameDataService fetches stats, rosters and official scores for sets
// of games. Identical concurrent requests collapse into one network
// round trip per data kind, and resolved bundles are memoized in the
// query cache until a mutation invalidates them.
type GameDataService struct {
	client          GameDataClient
	queryCache      *cache.Store
	logger          *logging.Logger
	fallbackWorkers int
}

func NewGameDataService(client GameDataClient, queryCache *cache.Store, logger *logging.Logger) *GameDataService {
	if logger == nil {
		logger = logging.Default()
	}
	return &GameDataService{
		client:          client,
		queryCache:      queryCache,
		logger:          logger,
		fallbackWorkers: defaultFallbackWorkers,
	}
}

// BatchFetchGameData resolves every requested data kind for the given
// games under the given tenant scope. The in-flight key covers club,
// team, the normalized game id set and the requested kinds, so two
// concurrent identical calls share one fetch and receive the same
// resolved bundle.
func (s *GameDataService) BatchFetchGameData(ctx context.Context, input BatchFetchInput) (GameDataBundle, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameDataService.BatchFetchGameData")
	defer span.End()

	gameIDs := normalizeGameIDs(input.GameIDs)
	if len(gameIDs) == 0 || (!input.IncludeStats && !input.IncludeRosters && !input.IncludeScores) {
		return GameDataBundle{}, nil
	}

	key := batchFetchKey(input.ClubID, input.TeamID, gameIDs, input.IncludeStats, input.IncludeRosters, input.IncludeScores)
	value, err := s.queryCache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return s.fetchBundle(ctx, gameIDs, input)
	})
	if err != nil {
		return GameDataBundle{}, err
	}

	bundle, _ := value.(GameDataBundle)
	return bundle, nil
}

func (s *GameDataService) fetchBundle(ctx context.Context, gameIDs []string, input BatchFetchInput) (GameDataBundle, error) {
	bundle := GameDataBundle{}
	var mu sync.Mutex
	var wg conc.WaitGroup

	if input.IncludeStats {
		wg.Go(func() {
			out := fetchKind(ctx, s, "stats", gameIDs, s.client.BatchGameStats, s.client.GameStats)
			mu.Lock()
			bundle.Stats = out
			mu.Unlock()
		})
	}
	if input.IncludeRosters {
		wg.Go(func() {
			out := fetchKind(ctx, s, "rosters", gameIDs, s.client.BatchGameRosters, s.client.GameRosters)
			mu.Lock()
			bundle.Rosters = out
			mu.Unlock()
		})
	}
	if input.IncludeScores {
		wg.Go(func() {
			out := fetchKind(ctx, s, "scores", gameIDs, s.client.BatchGameScores, s.client.GameScores)
			mu.Lock()
			bundle.Scores = out
			mu.Unlock()
		})
	}

	wg.Wait()
	return bundle, nil
}

// fetchKind tries the batched endpoint first. A batch failure degrades
// to per-game requests on a bounded worker pool; an individual failure
// leaves that one game's slot empty rather than failing the batch.
func fetchKind[T any](
	ctx context.Context,
	s *GameDataService,
	kind string,
	gameIDs []string,
	batch func(context.Context, []string) (map[string][]T, error),
	single func(context.Context, string) ([]T, error),
) map[string][]T {
	out, err := batch(ctx, gameIDs)
	if err == nil {
		if out == nil {
			out = make(map[string][]T, len(gameIDs))
		}
		for _, gameID := range gameIDs {
			if _, ok := out[gameID]; !ok {
				out[gameID] = []T{}
			}
		}
		return out
	}

	s.logger.WarnContext(ctx, "batch fetch failed, falling back to per-game requests",
		"kind", kind,
		"game_count", len(gameIDs),
		"error", err,
	)

	out = make(map[string][]T, len(gameIDs))
	var mu sync.Mutex

	workers := s.fallbackWorkers
	if workers > len(gameIDs) {
		workers = len(gameIDs)
	}
	pool, poolErr := ants.NewPool(workers)
	if poolErr != nil {
		pool = nil
	} else {
		defer pool.Release()
	}

	var inner sync.WaitGroup
	for _, gameID := range gameIDs {
		gameID := gameID
		inner.Add(1)
		task := func() {
			defer inner.Done()
			records, singleErr := single(ctx, gameID)
			if singleErr != nil {
				s.logger.WarnContext(ctx, "per-game fallback fetch failed, returning empty slot",
					"kind", kind,
					"game_id", gameID,
					"error", singleErr,
				)
				records = []T{}
			}
			if records == nil {
				records = []T{}
			}
			mu.Lock()
			out[gameID] = records
			mu.Unlock()
		}
		if pool == nil || pool.Submit(task) != nil {
			task()
		}
	}
	inner.Wait()

	return out
}

func normalizeGameIDs(gameIDs []string) []string {
	seen := make(map[string]struct{}, len(gameIDs))
	out := make([]string, 0, len(gameIDs))
	for _, id := range gameIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Batch keys use ":" between segments and "," between game IDs, so IDs
// carrying either byte are percent-escaped. Matching sides escape the
// queried ID the same way rather than unescaping segments.
var batchKeyEscaper = strings.NewReplacer("%", "%25", ":", "%3A", ",", "%2C")

func escapeBatchSegment(v string) string {
	return batchKeyEscaper.Replace(v)
}

func batchFetchKey(clubID, teamID string, gameIDs []string, stats, rosters, scoresKind bool) string {
	escaped := make([]string, len(gameIDs))
	for i, id := range gameIDs {
		escaped[i] = escapeBatchSegment(id)
	}

	var sb strings.Builder
	sb.WriteString("batch:")
	sb.WriteString(escapeBatchSegment(clubID))
	sb.WriteString(":")
	sb.WriteString(escapeBatchSegment(teamID))
	sb.WriteString(":")
	sb.WriteString(strings.Join(escaped, ","))
	sb.WriteString(":")
	if stats {
		sb.WriteString("s")
	}
	if rosters {
		sb.WriteString("r")
	}
	if scoresKind {
		sb.WriteString("c")
	}
	return sb.String()
}

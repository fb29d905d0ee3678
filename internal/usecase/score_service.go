package usecase

import (
	"context"

	"github.com/courtside/netball-hub/internal/domain/game"
	"github.com/courtside/netball-hub/internal/domain/gamestat"
	"github.com/courtside/netball-hub/internal/domain/officialscore"
	"github.com/courtside/netball-hub/internal/domain/scores"
	"github.com/courtside/netball-hub/internal/domain/tenant"
	"github.com/courtside/netball-hub/internal/platform/logging"
)

// ScoreService computes authoritative game scores from whatever sources
// exist, applying a strict priority order: officially entered scores,
// then a status-fixed score, then legacy forfeit statuses, then stat
// aggregation (inter-club variant first). The first matching source
// short-circuits the rest.
type ScoreService struct {
	cache  *ScoreCache
	logger *logging.Logger
}

func NewScoreService(cache *ScoreCache, logger *logging.Logger) *ScoreService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScoreService{
		cache:  cache,
		logger: logger,
	}
}

// ResolveScores produces the per-quarter and total scores for a game
// from the current team's perspective. The output always holds exactly
// 4 quarters, zero-filled where no source contributes, and the result
// is derived from the totals alone.
func (s *ScoreService) ResolveScores(
	ctx context.Context,
	g game.Game,
	stats []gamestat.Stat,
	official []officialscore.Score,
	current tenant.Context,
) scores.GameScores {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreService.ResolveScores")
	defer span.End()

	if len(official) > 0 {
		return scores.Build(s.quartersFromOfficial(g, official, current))
	}

	if g.StatusScore != nil {
		return scores.Build(fixedQuarters(g.StatusScore.TeamScore, g.StatusScore.OpponentScore))
	}

	switch game.NormalizeStatus(g.Status) {
	case game.StatusForfeitWin:
		return scores.Build(fixedQuarters(game.ForfeitGoals, 0))
	case game.StatusForfeitLos:
		return scores.Build(fixedQuarters(0, game.ForfeitGoals))
	}

	if g.IsInterClub && g.HomeTeamID != "" && g.AwayTeamID != "" && current.TeamID != "" {
		return scores.Build(s.quartersFromInterClubStats(g, stats, current))
	}

	return scores.Build(quartersFromStats(stats, current.TeamID))
}

// ResolveScoresCached is ResolveScores behind the score cache: a hit on
// (gameID, stat fingerprint, status) skips recomputation; a miss
// resolves and stores.
func (s *ScoreService) ResolveScoresCached(
	ctx context.Context,
	g game.Game,
	stats []gamestat.Stat,
	official []officialscore.Score,
	current tenant.Context,
) scores.GameScores {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreService.ResolveScoresCached")
	defer span.End()

	if s.cache == nil {
		return s.ResolveScores(ctx, g, stats, official, current)
	}

	status := game.NormalizeStatus(g.Status)
	if cached, ok := s.cache.Get(ctx, g.ID, stats, status); ok {
		return cached
	}

	resolved := s.ResolveScores(ctx, g, stats, official, current)
	s.cache.Set(ctx, g.ID, resolved, stats, status)
	return resolved
}

// quartersFromOfficial builds quarters from directly entered scores.
// A (team, quarter) combination without a row scores 0.
func (s *ScoreService) quartersFromOfficial(g game.Game, official []officialscore.Score, current tenant.Context) []scores.QuarterScore {
	teamID, opponentID := perspectiveTeams(g, current)

	out := make([]scores.QuarterScore, 0, scores.Quarters)
	for quarter := 1; quarter <= scores.Quarters; quarter++ {
		out = append(out, scores.QuarterScore{
			Quarter:       quarter,
			TeamScore:     officialscore.ForTeamQuarter(official, teamID, quarter),
			OpponentScore: officialscore.ForTeamQuarter(official, opponentID, quarter),
		})
	}
	return out
}

// quartersFromInterClubStats aggregates per-quarter scores for a game
// where both clubs report independently. The home team's own rows are
// preferred; quarters the home team never entered fall back to the away
// team's rows with for/against swapped.
func (s *ScoreService) quartersFromInterClubStats(g game.Game, stats []gamestat.Stat, current tenant.Context) []scores.QuarterScore {
	teamIsAway := current.TeamID == g.AwayTeamID

	out := make([]scores.QuarterScore, 0, scores.Quarters)
	for quarter := 1; quarter <= scores.Quarters; quarter++ {
		var homeRows, awayRows []gamestat.Stat
		for _, row := range stats {
			if row.Quarter != quarter {
				continue
			}
			switch row.TeamID {
			case g.HomeTeamID:
				homeRows = append(homeRows, row)
			case g.AwayTeamID:
				awayRows = append(awayRows, row)
			}
		}

		var homeScore, awayScore int
		if len(homeRows) > 0 {
			homeScore, awayScore = gamestat.TotalsForTeam(homeRows, g.HomeTeamID)
		} else {
			awayScore, homeScore = gamestat.TotalsForTeam(awayRows, g.AwayTeamID)
		}

		qs := scores.QuarterScore{Quarter: quarter, TeamScore: homeScore, OpponentScore: awayScore}
		if teamIsAway {
			qs.TeamScore, qs.OpponentScore = awayScore, homeScore
		}
		out = append(out, qs)
	}
	return out
}

// quartersFromStats is the default aggregation: goalsFor as the team
// score and goalsAgainst as the opponent score, filtered to teamID when
// one is set.
func quartersFromStats(stats []gamestat.Stat, teamID string) []scores.QuarterScore {
	out := make([]scores.QuarterScore, 0, scores.Quarters)
	for quarter := 1; quarter <= scores.Quarters; quarter++ {
		qs := scores.QuarterScore{Quarter: quarter}
		for _, row := range stats {
			if row.Quarter != quarter {
				continue
			}
			if teamID != "" && row.TeamID != teamID {
				continue
			}
			qs.TeamScore += row.GoalsFor
			qs.OpponentScore += row.GoalsAgainst
		}
		out = append(out, qs)
	}
	return out
}

func fixedQuarters(teamScore, opponentScore int) []scores.QuarterScore {
	out := make([]scores.QuarterScore, 0, scores.Quarters)
	for quarter := 1; quarter <= scores.Quarters; quarter++ {
		qs := scores.QuarterScore{Quarter: quarter}
		if quarter == 1 {
			qs.TeamScore = teamScore
			qs.OpponentScore = opponentScore
		}
		out = append(out, qs)
	}
	return out
}

// perspectiveTeams maps home/away onto team/opponent: when the current
// team is the away side, "team" is away; in every other case, including
// no current team, "team" is home.
func perspectiveTeams(g game.Game, current tenant.Context) (teamID, opponentID string) {
	if current.TeamID != "" && current.TeamID == g.AwayTeamID {
		return g.AwayTeamID, g.HomeTeamID
	}
	return g.HomeTeamID, g.AwayTeamID
}

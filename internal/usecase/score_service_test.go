package usecase

import (
	"context"
	"testing"

	"github.com/courtside/netball-hub/internal/domain/game"
	"github.com/courtside/netball-hub/internal/domain/gamestat"
	"github.com/courtside/netball-hub/internal/domain/officialscore"
	"github.com/courtside/netball-hub/internal/domain/scores"
	"github.com/courtside/netball-hub/internal/domain/tenant"
)

func newTestScoreService() *ScoreService {
	return NewScoreService(nil, nil)
}

func assertQuarterCount(t *testing.T, got scores.GameScores) {
	t.Helper()
	if len(got.QuarterScores) != scores.Quarters {
		t.Fatalf("expected %d quarters, got %d", scores.Quarters, len(got.QuarterScores))
	}
	for i, qs := range got.QuarterScores {
		if qs.Quarter != i+1 {
			t.Fatalf("quarter %d out of order: %+v", i+1, qs)
		}
		if qs.TeamScore < 0 || qs.OpponentScore < 0 {
			t.Fatalf("negative score in quarter %d: %+v", i+1, qs)
		}
	}
}

func TestScoreService_ResolveScores_DefaultAggregation(t *testing.T) {
	t.Parallel()

	service := newTestScoreService()
	g := game.Game{ID: "g1", HomeTeamID: "t1", AwayTeamID: "t2"}
	stats := []gamestat.Stat{
		{ID: "s1", GameID: "g1", TeamID: "t1", Position: "GS", Quarter: 1, GoalsFor: 5, GoalsAgainst: 3},
		{ID: "s2", GameID: "g1", TeamID: "t1", Position: "GA", Quarter: 1, GoalsFor: 2, GoalsAgainst: 1},
	}

	got := service.ResolveScores(context.Background(), g, stats, nil, tenant.Context{ClubID: "c1", TeamID: "t1"})

	assertQuarterCount(t, got)
	if got.QuarterScores[0].TeamScore != 7 || got.QuarterScores[0].OpponentScore != 4 {
		t.Fatalf("quarter 1 = %+v, want 7-4", got.QuarterScores[0])
	}
	for _, qs := range got.QuarterScores[1:] {
		if qs.TeamScore != 0 || qs.OpponentScore != 0 {
			t.Fatalf("quarter %d should be zero-filled: %+v", qs.Quarter, qs)
		}
	}
	if got.TotalTeamScore != 7 || got.TotalOpponentScore != 4 {
		t.Fatalf("totals = %d-%d, want 7-4", got.TotalTeamScore, got.TotalOpponentScore)
	}
	if got.Result != scores.ResultWin {
		t.Fatalf("result = %s, want win", got.Result)
	}
}

func TestScoreService_ResolveScores_ResultConsistency(t *testing.T) {
	t.Parallel()

	service := newTestScoreService()
	cases := []struct {
		name       string
		goalsFor   int
		against    int
		wantResult string
	}{
		{"win", 10, 5, scores.ResultWin},
		{"loss", 3, 9, scores.ResultLoss},
		{"draw", 6, 6, scores.ResultDraw},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			stats := []gamestat.Stat{
				{ID: "s1", GameID: "g1", TeamID: "t1", Quarter: 1, GoalsFor: tc.goalsFor, GoalsAgainst: tc.against},
			}
			got := service.ResolveScores(context.Background(), game.Game{ID: "g1"}, stats, nil, tenant.Context{TeamID: "t1"})

			assertQuarterCount(t, got)
			if got.Result != tc.wantResult {
				t.Fatalf("result = %s, want %s", got.Result, tc.wantResult)
			}
		})
	}
}

func TestScoreService_ResolveScores_OfficialScoresBeatFixedScore(t *testing.T) {
	t.Parallel()

	service := newTestScoreService()
	g := game.Game{
		ID:          "g1",
		HomeTeamID:  "t1",
		AwayTeamID:  "t2",
		Status:      game.StatusCompleted,
		StatusScore: &game.FixedScore{TeamScore: 3, OpponentScore: 3},
	}
	official := []officialscore.Score{
		{GameID: "g1", TeamID: "t1", Quarter: 1, Score: 10},
		{GameID: "g1", TeamID: "t2", Quarter: 1, Score: 5},
	}

	got := service.ResolveScores(context.Background(), g, nil, official, tenant.Context{TeamID: "t1"})

	if got.TotalTeamScore != 10 || got.TotalOpponentScore != 5 {
		t.Fatalf("totals = %d-%d, want official 10-5 over fixed 3-3", got.TotalTeamScore, got.TotalOpponentScore)
	}
	if got.Result != scores.ResultWin {
		t.Fatalf("result = %s, want win", got.Result)
	}
}

func TestScoreService_ResolveScores_OfficialAwayPerspective(t *testing.T) {
	t.Parallel()

	service := newTestScoreService()
	g := game.Game{ID: "g1", HomeTeamID: "t1", AwayTeamID: "t2"}
	official := []officialscore.Score{
		{GameID: "g1", TeamID: "t1", Quarter: 1, Score: 8},
		{GameID: "g1", TeamID: "t2", Quarter: 1, Score: 12},
		{GameID: "g1", TeamID: "t2", Quarter: 2, Score: 4},
	}

	got := service.ResolveScores(context.Background(), g, nil, official, tenant.Context{TeamID: "t2"})

	if got.QuarterScores[0].TeamScore != 12 || got.QuarterScores[0].OpponentScore != 8 {
		t.Fatalf("quarter 1 from away perspective = %+v, want 12-8", got.QuarterScores[0])
	}
	if got.QuarterScores[1].TeamScore != 4 || got.QuarterScores[1].OpponentScore != 0 {
		t.Fatalf("quarter 2 missing-row default = %+v, want 4-0", got.QuarterScores[1])
	}
	if got.TotalTeamScore != 16 || got.TotalOpponentScore != 8 {
		t.Fatalf("totals = %d-%d, want 16-8", got.TotalTeamScore, got.TotalOpponentScore)
	}
}

func TestScoreService_ResolveScores_ForfeitStatuses(t *testing.T) {
	t.Parallel()

	service := newTestScoreService()

	win := service.ResolveScores(context.Background(), game.Game{ID: "g1", Status: game.StatusForfeitWin}, nil, nil, tenant.Context{})
	assertQuarterCount(t, win)
	if win.QuarterScores[0].TeamScore != 10 || win.QuarterScores[0].OpponentScore != 0 {
		t.Fatalf("forfeit-win quarter 1 = %+v, want 10-0", win.QuarterScores[0])
	}
	if win.TotalTeamScore != 10 || win.TotalOpponentScore != 0 || win.Result != scores.ResultWin {
		t.Fatalf("forfeit-win = %+v", win)
	}

	loss := service.ResolveScores(context.Background(), game.Game{ID: "g1", Status: game.StatusForfeitLos}, nil, nil, tenant.Context{})
	if loss.TotalTeamScore != 0 || loss.TotalOpponentScore != 10 || loss.Result != scores.ResultLoss {
		t.Fatalf("forfeit-loss = %+v", loss)
	}
	for _, qs := range loss.QuarterScores[1:] {
		if qs.TeamScore != 0 || qs.OpponentScore != 0 {
			t.Fatalf("forfeit quarters 2-4 must be zero: %+v", qs)
		}
	}
}

func TestScoreService_ResolveScores_StatusFixedScoreInQuarterOne(t *testing.T) {
	t.Parallel()

	service := newTestScoreService()
	g := game.Game{
		ID:          "g1",
		Status:      game.StatusCompleted,
		StatusScore: &game.FixedScore{TeamScore: 20, OpponentScore: 0},
	}
	// Stat rows exist but the fixed score short-circuits aggregation.
	stats := []gamestat.Stat{{ID: "s1", GameID: "g1", Quarter: 2, GoalsFor: 9, GoalsAgainst: 9}}

	got := service.ResolveScores(context.Background(), g, stats, nil, tenant.Context{})

	if got.QuarterScores[0].TeamScore != 20 || got.QuarterScores[1].TeamScore != 0 {
		t.Fatalf("fixed score must land entirely in quarter 1: %+v", got.QuarterScores)
	}
	if got.TotalTeamScore != 20 || got.TotalOpponentScore != 0 {
		t.Fatalf("totals = %d-%d, want 20-0", got.TotalTeamScore, got.TotalOpponentScore)
	}
}

func TestScoreService_ResolveScores_InterClubPrefersHomeRows(t *testing.T) {
	t.Parallel()

	service := newTestScoreService()
	g := game.Game{ID: "g1", HomeTeamID: "home", AwayTeamID: "away", IsInterClub: true}
	stats := []gamestat.Stat{
		// Quarter 1: both teams reported; home rows win.
		{ID: "s1", GameID: "g1", TeamID: "home", Quarter: 1, GoalsFor: 11, GoalsAgainst: 7},
		{ID: "s2", GameID: "g1", TeamID: "away", Quarter: 1, GoalsFor: 6, GoalsAgainst: 12},
		// Quarter 2: only the away team reported; for/against swap.
		{ID: "s3", GameID: "g1", TeamID: "away", Quarter: 2, GoalsFor: 9, GoalsAgainst: 4},
	}

	home := service.ResolveScores(context.Background(), g, stats, nil, tenant.Context{TeamID: "home"})
	if home.QuarterScores[0].TeamScore != 11 || home.QuarterScores[0].OpponentScore != 7 {
		t.Fatalf("quarter 1 should come from home rows: %+v", home.QuarterScores[0])
	}
	if home.QuarterScores[1].TeamScore != 4 || home.QuarterScores[1].OpponentScore != 9 {
		t.Fatalf("quarter 2 should swap away rows: %+v", home.QuarterScores[1])
	}

	away := service.ResolveScores(context.Background(), g, stats, nil, tenant.Context{TeamID: "away"})
	if away.QuarterScores[0].TeamScore != 7 || away.QuarterScores[0].OpponentScore != 11 {
		t.Fatalf("away perspective quarter 1 = %+v, want 7-11", away.QuarterScores[0])
	}
	if away.QuarterScores[1].TeamScore != 9 || away.QuarterScores[1].OpponentScore != 4 {
		t.Fatalf("away perspective quarter 2 = %+v, want 9-4", away.QuarterScores[1])
	}
}

func TestScoreService_ResolveScoresCached_SecondCallHitsCache(t *testing.T) {
	t.Parallel()

	cache := NewScoreCache(DefaultScoreCacheTTL)
	service := NewScoreService(cache, nil)
	g := game.Game{ID: "g1", Status: game.StatusCompleted}
	stats := []gamestat.Stat{{ID: "s1", GameID: "g1", TeamID: "t1", Quarter: 1, GoalsFor: 3, GoalsAgainst: 1}}
	current := tenant.Context{TeamID: "t1"}

	first := service.ResolveScoresCached(context.Background(), g, stats, nil, current)
	if _, ok := cache.Get(context.Background(), "g1", stats, game.NormalizeStatus(g.Status)); !ok {
		t.Fatal("resolved value should be cached")
	}

	second := service.ResolveScoresCached(context.Background(), g, stats, nil, current)
	if first.TotalTeamScore != second.TotalTeamScore || first.Result != second.Result {
		t.Fatalf("cached result diverged: %+v vs %+v", first, second)
	}
}

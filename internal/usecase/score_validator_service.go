package usecase

import (
	"context"
	"fmt"
	"math"

	"github.com/courtside/netball-hub/internal/domain/gamestat"
	"github.com/courtside/netball-hub/internal/platform/logging"
)

// Notifier surfaces non-blocking findings to a human-visible sink.
type Notifier interface {
	Warn(ctx context.Context, message string)
}

// TeamReportedTotals is one team's self-reported goals for an
// inter-club fixture.
type TeamReportedTotals struct {
	GoalsFor     int
	GoalsAgainst int
}

// ValidationReport quantifies the mismatch between two clubs'
// independently submitted statistics for the same fixture. A
// discrepancy is informational, never an error: the resolver does not
// consume it.
type ValidationReport struct {
	HasDiscrepancy      bool   `json:"hasDiscrepancy"`
	HomeTeamDiscrepancy int    `json:"homeTeamDiscrepancy"`
	AwayTeamDiscrepancy int    `json:"awayTeamDiscrepancy"`
	Message             string `json:"message,omitempty"`
}

// ReconciledScore is a best-effort estimate when the two reports
// disagree: the rounded average of each team's own "for" and the
// opponent's "against" for the same team. Advisory only.
type ReconciledScore struct {
	HomeScore int `json:"homeScore"`
	AwayScore int `json:"awayScore"`
}

type ScoreValidatorService struct {
	notifier Notifier
	logger   *logging.Logger
}

func NewScoreValidatorService(notifier Notifier, logger *logging.Logger) *ScoreValidatorService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScoreValidatorService{
		notifier: notifier,
		logger:   logger,
	}
}

func (s *ScoreValidatorService) ValidateInterClubScores(ctx context.Context, home, away TeamReportedTotals) ValidationReport {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreValidatorService.ValidateInterClubScores")
	defer span.End()

	report := ValidationReport{
		HomeTeamDiscrepancy: home.GoalsFor - away.GoalsAgainst,
		AwayTeamDiscrepancy: away.GoalsFor - home.GoalsAgainst,
	}
	if report.HomeTeamDiscrepancy != 0 || report.AwayTeamDiscrepancy != 0 {
		report.HasDiscrepancy = true
		report.Message = fmt.Sprintf(
			"score discrepancy between clubs: home reported %d for / %d against, away reported %d for / %d against",
			home.GoalsFor, home.GoalsAgainst, away.GoalsFor, away.GoalsAgainst,
		)

		s.logger.WarnContext(ctx, "inter-club score discrepancy detected",
			"home_discrepancy", report.HomeTeamDiscrepancy,
			"away_discrepancy", report.AwayTeamDiscrepancy,
		)
		if s.notifier != nil {
			s.notifier.Warn(ctx, report.Message)
		}
	}

	return report
}

// GetReconciledScore averages each side's self-reported "for" with the
// opposing report's "against". The formula is kept literal; no
// tie-breaking is applied when the reports are internally inconsistent.
func (s *ScoreValidatorService) GetReconciledScore(ctx context.Context, home, away TeamReportedTotals) ReconciledScore {
	_, span := startUsecaseSpan(ctx, "usecase.ScoreValidatorService.GetReconciledScore")
	defer span.End()

	return ReconciledScore{
		HomeScore: roundHalfAway(float64(home.GoalsFor+away.GoalsAgainst) / 2),
		AwayScore: roundHalfAway(float64(away.GoalsFor+home.GoalsAgainst) / 2),
	}
}

// TotalsFromStats collapses one club's stat rows into reported totals.
func TotalsFromStats(stats []gamestat.Stat, teamID string) TeamReportedTotals {
	goalsFor, goalsAgainst := gamestat.TotalsForTeam(stats, teamID)
	return TeamReportedTotals{GoalsFor: goalsFor, GoalsAgainst: goalsAgainst}
}

func roundHalfAway(v float64) int {
	return int(math.Round(v))
}

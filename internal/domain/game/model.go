package game

import (
	"strings"
	"time"
)

const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusForfeitWin = "forfeit-win"
	StatusForfeitLos = "forfeit-loss"
	StatusBye        = "bye"
)

// Legacy forfeit statuses carry a fixed 10-0 result attributed to quarter 1.
const ForfeitGoals = 10

// FixedScore is a score attached directly to a game status, e.g. an
// administrative override. It supersedes stat aggregation but not
// officially entered scores.
type FixedScore struct {
	TeamScore     int
	OpponentScore int
}

// Game is a scheduled fixture. Games are created and completed by
// schedule management; this service only reads them.
type Game struct {
	ID          string
	SeasonID    string
	HomeTeamID  string
	AwayTeamID  string
	StartsAt    time.Time
	Status      string
	StatusScore *FixedScore
	IsInterClub bool
	Completed   bool
}

func NormalizeStatus(value string) string {
	status := strings.ToLower(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsForfeitStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusForfeitWin, StatusForfeitLos:
		return true
	default:
		return false
	}
}

package clubapi

import (
	"strings"
	"time"

	"github.com/courtside/netball-hub/internal/domain/gamestat"
	"github.com/courtside/netball-hub/internal/domain/officialscore"
	"github.com/courtside/netball-hub/internal/domain/roster"
)

type statRow struct {
	ID            string   `json:"id"`
	GameID        string   `json:"gameId"`
	TeamID        string   `json:"teamId"`
	Position      string   `json:"position"`
	Quarter       int      `json:"quarter"`
	GoalsFor      int      `json:"goalsFor"`
	GoalsAgainst  int      `json:"goalsAgainst"`
	MissedGoals   int      `json:"missedGoals"`
	Rebounds      int      `json:"rebounds"`
	Intercepts    int      `json:"intercepts"`
	BadPass       int      `json:"badPass"`
	HandlingError int      `json:"handlingError"`
	PickUp        int      `json:"pickUp"`
	Infringement  int      `json:"infringement"`
	Rating        *float64 `json:"rating"`
}

func (r statRow) toDomain() gamestat.Stat {
	return gamestat.Stat{
		ID:            strings.TrimSpace(r.ID),
		GameID:        strings.TrimSpace(r.GameID),
		TeamID:        strings.TrimSpace(r.TeamID),
		Position:      strings.TrimSpace(r.Position),
		Quarter:       r.Quarter,
		GoalsFor:      r.GoalsFor,
		GoalsAgainst:  r.GoalsAgainst,
		MissedGoals:   r.MissedGoals,
		Rebounds:      r.Rebounds,
		Intercepts:    r.Intercepts,
		BadPass:       r.BadPass,
		HandlingError: r.HandlingError,
		PickUp:        r.PickUp,
		Infringement:  r.Infringement,
		Rating:        r.Rating,
	}
}

type rosterRow struct {
	ID       string `json:"id"`
	GameID   string `json:"gameId"`
	TeamID   string `json:"teamId"`
	PlayerID string `json:"playerId"`
	Position string `json:"position"`
	Quarter  int    `json:"quarter"`
}

func (r rosterRow) toDomain() roster.Entry {
	return roster.Entry{
		ID:       strings.TrimSpace(r.ID),
		GameID:   strings.TrimSpace(r.GameID),
		TeamID:   strings.TrimSpace(r.TeamID),
		PlayerID: strings.TrimSpace(r.PlayerID),
		Position: strings.TrimSpace(r.Position),
		Quarter:  r.Quarter,
	}
}

type scoreRow struct {
	ID        string `json:"id"`
	GameID    string `json:"gameId"`
	TeamID    string `json:"teamId"`
	Quarter   int    `json:"quarter"`
	Score     int    `json:"score"`
	Notes     string `json:"notes"`
	EnteredBy string `json:"enteredBy"`
	EnteredAt string `json:"enteredAt"`
}

func (r scoreRow) toDomain() officialscore.Score {
	return officialscore.Score{
		ID:        strings.TrimSpace(r.ID),
		GameID:    strings.TrimSpace(r.GameID),
		TeamID:    strings.TrimSpace(r.TeamID),
		Quarter:   r.Quarter,
		Score:     r.Score,
		Notes:     strings.TrimSpace(r.Notes),
		EnteredBy: strings.TrimSpace(r.EnteredBy),
		EnteredAt: parseAPITime(r.EnteredAt),
	}
}

func parseAPITime(raw string) time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

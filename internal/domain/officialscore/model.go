package officialscore

import "time"

// Score is a directly entered per-(game, team, quarter) score. When any
// official score exists for a game it is the highest-priority source of
// truth and supersedes stat aggregation entirely.
type Score struct {
	ID        string
	GameID    string
	TeamID    string
	Quarter   int
	Score     int
	Notes     string
	EnteredBy string
	EnteredAt time.Time
}

// ForTeamQuarter returns the entered score for (teamID, quarter), or 0
// when no row exists for that combination.
func ForTeamQuarter(scores []Score, teamID string, quarter int) int {
	for _, s := range scores {
		if s.TeamID == teamID && s.Quarter == quarter {
			return s.Score
		}
	}
	return 0
}

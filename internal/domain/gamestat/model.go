package gamestat

// Stat is one per-(game, team, position, quarter) statistics record
// entered during or after a game. Up to 4 quarters x N positions x 2
// teams exist for an inter-club game.
type Stat struct {
	ID            string
	GameID        string
	TeamID        string
	Position      string
	Quarter       int
	GoalsFor      int
	GoalsAgainst  int
	MissedGoals   int
	Rebounds      int
	Intercepts    int
	BadPass       int
	HandlingError int
	PickUp        int
	Infringement  int
	// Rating is only meaningful on quarter 1 rows in some entry flows.
	Rating *float64
}

// TotalsForTeam sums goalsFor/goalsAgainst across rows belonging to teamID.
// An empty teamID matches every row.
func TotalsForTeam(stats []Stat, teamID string) (goalsFor, goalsAgainst int) {
	for _, s := range stats {
		if teamID != "" && s.TeamID != teamID {
			continue
		}
		goalsFor += s.GoalsFor
		goalsAgainst += s.GoalsAgainst
	}
	return goalsFor, goalsAgainst
}

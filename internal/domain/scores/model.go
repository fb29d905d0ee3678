package scores

const Quarters = 4

const (
	ResultWin  = "win"
	ResultLoss = "loss"
	ResultDraw = "draw"
)

// QuarterScore is one quarter of a resolved game, seen from the current
// team's perspective.
type QuarterScore struct {
	Quarter       int `json:"quarter"`
	TeamScore     int `json:"teamScore"`
	OpponentScore int `json:"opponentScore"`
}

// GameScores is a fully resolved game. QuarterScores always holds
// exactly 4 entries ordered by quarter; totals are the sums of those
// entries and Result is derived strictly from the totals.
type GameScores struct {
	QuarterScores      []QuarterScore `json:"quarterScores"`
	TotalTeamScore     int            `json:"totalTeamScore"`
	TotalOpponentScore int            `json:"totalOpponentScore"`
	Result             string         `json:"result"`
}

// ResultFromTotals derives win/loss/draw from total scores.
func ResultFromTotals(teamScore, opponentScore int) string {
	switch {
	case teamScore > opponentScore:
		return ResultWin
	case teamScore < opponentScore:
		return ResultLoss
	default:
		return ResultDraw
	}
}

// Build assembles a GameScores from per-quarter entries, filling totals
// and result. The input must hold one entry per quarter 1..4.
func Build(quarterScores []QuarterScore) GameScores {
	out := GameScores{QuarterScores: quarterScores}
	for _, qs := range quarterScores {
		out.TotalTeamScore += qs.TeamScore
		out.TotalOpponentScore += qs.OpponentScore
	}
	out.Result = ResultFromTotals(out.TotalTeamScore, out.TotalOpponentScore)
	return out
}

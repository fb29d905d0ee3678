package roster

// Entry assigns a player to a position for one quarter of a game.
type Entry struct {
	ID       string
	GameID   string
	TeamID   string
	PlayerID string
	Position string
	Quarter  int
}

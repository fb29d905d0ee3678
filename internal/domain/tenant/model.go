package tenant

// Context is a snapshot of the active club/team selection. Every
// outbound data request is scoped by it.
type Context struct {
	ClubID string
	TeamID string
}

// Settings is the durable club/team selection for one user profile,
// surviving restarts.
type Settings struct {
	ProfileID string
	ClubID    string
	TeamID    string
}

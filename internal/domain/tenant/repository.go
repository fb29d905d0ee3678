package tenant

import "context"

// Repository persists the active club/team selection per user profile.
type Repository interface {
	Get(ctx context.Context, profileID string) (Settings, bool, error)
	SaveClub(ctx context.Context, profileID, clubID string) error
	SaveTeam(ctx context.Context, profileID, teamID string) error
}

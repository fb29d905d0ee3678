package postgres

import "time"

type tenantSettingsModel struct {
	ProfileID string    `db:"profile_id"`
	ClubID    string    `db:"club_id"`
	TeamID    string    `db:"team_id"`
	UpdatedAt time.Time `db:"updated_at"`
}

package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/courtside/netball-hub/internal/domain/tenant"
)

// TenantSettingsRepository persists the last selected club/team per
// profile so a returning user lands back in the scope they left.
type TenantSettingsRepository struct {
	db *sqlx.DB
}

func NewTenantSettingsRepository(db *sqlx.DB) *TenantSettingsRepository {
	return &TenantSettingsRepository{db: db}
}

func (r *TenantSettingsRepository) Get(ctx context.Context, profileID string) (tenant.Settings, bool, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return tenant.Settings{}, false, fmt.Errorf("profile id is required")
	}

	var model tenantSettingsModel
	err := r.db.GetContext(ctx, &model, `SELECT profile_id, club_id, team_id, updated_at
FROM tenant_settings
WHERE profile_id = $1`, profileID)
	if err != nil {
		if isNotFound(err) {
			return tenant.Settings{}, false, nil
		}
		return tenant.Settings{}, false, fmt.Errorf("get tenant settings profile_id=%s: %w", profileID, err)
	}

	return tenant.Settings{
		ProfileID: model.ProfileID,
		ClubID:    model.ClubID,
		TeamID:    model.TeamID,
	}, true, nil
}

func (r *TenantSettingsRepository) SaveClub(ctx context.Context, profileID, clubID string) error {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return fmt.Errorf("profile id is required")
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO tenant_settings (profile_id, club_id, team_id, updated_at)
VALUES ($1, $2, '', NOW())
ON CONFLICT (profile_id)
DO UPDATE SET club_id = EXCLUDED.club_id, updated_at = NOW()`, profileID, strings.TrimSpace(clubID))
	if err != nil {
		return fmt.Errorf("save tenant club profile_id=%s: %w", profileID, err)
	}
	return nil
}

func (r *TenantSettingsRepository) SaveTeam(ctx context.Context, profileID, teamID string) error {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return fmt.Errorf("profile id is required")
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO tenant_settings (profile_id, club_id, team_id, updated_at)
VALUES ($1, '', $2, NOW())
ON CONFLICT (profile_id)
DO UPDATE SET team_id = EXCLUDED.team_id, updated_at = NOW()`, profileID, strings.TrimSpace(teamID))
	if err != nil {
		return fmt.Errorf("save tenant team profile_id=%s: %w", profileID, err)
	}
	return nil
}

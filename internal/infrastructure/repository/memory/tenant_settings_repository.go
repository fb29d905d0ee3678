package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/courtside/netball-hub/internal/domain/tenant"
)

// TenantSettingsRepository is the in-memory fallback used when no
// database is configured. Selections survive for the process lifetime
// only.
type TenantSettingsRepository struct {
	mu        sync.RWMutex
	byProfile map[string]tenant.Settings
}

func NewTenantSettingsRepository() *TenantSettingsRepository {
	return &TenantSettingsRepository{byProfile: make(map[string]tenant.Settings)}
}

func (r *TenantSettingsRepository) Get(_ context.Context, profileID string) (tenant.Settings, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	settings, ok := r.byProfile[strings.TrimSpace(profileID)]
	return settings, ok, nil
}

func (r *TenantSettingsRepository) SaveClub(_ context.Context, profileID, clubID string) error {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	settings := r.byProfile[profileID]
	settings.ProfileID = profileID
	settings.ClubID = strings.TrimSpace(clubID)
	r.byProfile[profileID] = settings
	return nil
}

func (r *TenantSettingsRepository) SaveTeam(_ context.Context, profileID, teamID string) error {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	settings := r.byProfile[profileID]
	settings.ProfileID = profileID
	settings.TeamID = strings.TrimSpace(teamID)
	r.byProfile[profileID] = settings
	return nil
}

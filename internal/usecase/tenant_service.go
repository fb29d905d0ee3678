package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/courtside/netball-hub/internal/domain/club"
	"github.com/courtside/netball-hub/internal/domain/tenant"
	"github.com/courtside/netball-hub/internal/platform/debounce"
	"github.com/courtside/netball-hub/internal/platform/logging"
)

const (
	TenantStateUninitialized = "uninitialized"
	TenantStateInitializing  = "initializing"
	TenantStateReady         = "ready"
)

const DefaultTeamSelectDebounce = 100 * time.Millisecond

// ScopePropagator pushes the active club/team scope into the
// data-access layer. Propagation is synchronous: once it returns, every
// subsequent outbound request carries the new scope.
type ScopePropagator interface {
	SetScope(clubID, teamID string)
}

type TenantServiceConfig struct {
	ProfileID          string
	FallbackClubID     string
	TeamSelectDebounce time.Duration
}

// TenantService is the single source of truth for the active club/team
// selection. One instance is constructed at wiring time; all mutation
// goes through its operations so the persisted selection and the
// data-access scope never diverge.
type TenantService struct {
	repo       tenant.Repository
	propagator ScopePropagator
	debouncer  *debounce.Debouncer
	logger     *logging.Logger

	profileID      string
	fallbackClubID string

	mu          sync.Mutex
	state       string
	initialized bool
	accessible  []club.Club
	current     tenant.Context
}

func NewTenantService(repo tenant.Repository, propagator ScopePropagator, cfg TenantServiceConfig, logger *logging.Logger) *TenantService {
	if logger == nil {
		logger = logging.Default()
	}
	interval := cfg.TeamSelectDebounce
	if interval <= 0 {
		interval = DefaultTeamSelectDebounce
	}

	return &TenantService{
		repo:           repo,
		propagator:     propagator,
		debouncer:      debounce.New(interval),
		logger:         logger,
		profileID:      cfg.ProfileID,
		fallbackClubID: cfg.FallbackClubID,
		state:          TenantStateUninitialized,
	}
}

func (s *TenantService) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns a snapshot of the active selection.
func (s *TenantService) Current() tenant.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Initialize resolves the active club once the accessible-club set has
// loaded. The target is (a) the persisted club if still accessible,
// else (b) the designated fallback club, else (c) the first accessible
// club. The selection is persisted and propagated to the data-access
// scope BEFORE the state becomes ready, so no fetch issued after
// readiness can observe a missing or stale scope. The transition fires
// exactly once; later calls are no-ops.
func (s *TenantService) Initialize(ctx context.Context, accessible []club.Club) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TenantService.Initialize")
	defer span.End()

	if len(accessible) == 0 {
		return fmt.Errorf("%w: no accessible clubs", ErrInvalidInput)
	}

	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return nil
	}
	s.initialized = true
	s.state = TenantStateInitializing
	s.accessible = append([]club.Club(nil), accessible...)
	s.mu.Unlock()

	persisted, found, err := s.repo.Get(ctx, s.profileID)
	if err != nil {
		// A broken settings read degrades to the fallback rule, it
		// never blocks startup.
		s.logger.WarnContext(ctx, "load persisted tenant settings failed", "error", err)
		found = false
	}

	target := ""
	teamID := ""
	if found {
		if _, ok := club.FindByID(accessible, persisted.ClubID); ok {
			target = persisted.ClubID
			teamID = persisted.TeamID
		}
	}
	if target == "" {
		if _, ok := club.FindByID(accessible, s.fallbackClubID); ok {
			target = s.fallbackClubID
		} else {
			target = accessible[0].ID
		}
	}

	if err := s.repo.SaveClub(ctx, s.profileID, target); err != nil {
		s.logger.WarnContext(ctx, "persist resolved club failed", "club_id", target, "error", err)
	}

	s.mu.Lock()
	s.current = tenant.Context{ClubID: target, TeamID: teamID}
	s.mu.Unlock()

	// Propagate before marking ready: a fetch triggered by readiness
	// must already see the resolved club.
	s.propagator.SetScope(target, teamID)

	s.mu.Lock()
	s.state = TenantStateReady
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "tenant context ready", "club_id", target, "team_id", teamID)
	return nil
}

// SwitchClub activates a different accessible club. The team selection
// never carries across clubs. Persistence and scope propagation happen
// synchronously before return, so no fetch can run scoped to the old
// club once the caller regains control.
func (s *TenantService) SwitchClub(ctx context.Context, clubID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TenantService.SwitchClub")
	defer span.End()

	if clubID == "" {
		return fmt.Errorf("%w: club id is required", ErrInvalidInput)
	}

	s.mu.Lock()
	_, ok := club.FindByID(s.accessible, clubID)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: club=%s", ErrAccessDenied, clubID)
	}

	// A pending debounced team update belongs to the old club.
	s.debouncer.Cancel()

	if err := s.repo.SaveClub(ctx, s.profileID, clubID); err != nil {
		return fmt.Errorf("persist club selection: %w", err)
	}
	if err := s.repo.SaveTeam(ctx, s.profileID, ""); err != nil {
		s.logger.WarnContext(ctx, "clear persisted team failed", "error", err)
	}

	s.mu.Lock()
	s.current = tenant.Context{ClubID: clubID, TeamID: ""}
	s.mu.Unlock()

	s.propagator.SetScope(clubID, "")

	s.logger.InfoContext(ctx, "switched club", "club_id", clubID)
	return nil
}

// SetCurrentTeamID selects a team (empty clears). Rapid repeated calls
// within the debounce window coalesce: only the last one is persisted
// and propagated. The in-memory snapshot updates immediately so reads
// never lag the user's latest choice.
func (s *TenantService) SetCurrentTeamID(ctx context.Context, teamID string) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TenantService.SetCurrentTeamID")
	defer span.End()

	s.mu.Lock()
	s.current.TeamID = teamID
	clubID := s.current.ClubID
	s.mu.Unlock()

	s.debouncer.Schedule(func() {
		// Once the timer has fired, Cancel in SwitchClub can no longer
		// stop this callback. A selection that changed underneath it,
		// before or during the save, supersedes this pair.
		if !s.selectionIs(clubID, teamID) {
			return
		}
		if err := s.repo.SaveTeam(context.WithoutCancel(ctx), s.profileID, teamID); err != nil {
			s.logger.WarnContext(ctx, "persist team selection failed", "team_id", teamID, "error", err)
		}
		if !s.selectionIs(clubID, teamID) {
			return
		}
		s.propagator.SetScope(clubID, teamID)
	})
}

func (s *TenantService) selectionIs(clubID, teamID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.ClubID == clubID && s.current.TeamID == teamID
}

// HasPermission reports the named boolean flag on the active club's
// accessible-club record. No selection or an unset flag is false.
func (s *TenantService) HasPermission(permission string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.ClubID == "" {
		return false
	}
	active, ok := club.FindByID(s.accessible, s.current.ClubID)
	if !ok {
		return false
	}
	return active.Permissions[permission]
}

package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/courtside/netball-hub/internal/domain/club"
	"github.com/courtside/netball-hub/internal/domain/game"
	"github.com/courtside/netball-hub/internal/domain/gamestat"
	"github.com/courtside/netball-hub/internal/domain/officialscore"
	"github.com/courtside/netball-hub/internal/domain/roster"
	"github.com/courtside/netball-hub/internal/usecase"
)

type Handler struct {
	scoreService        *usecase.ScoreService
	validatorService    *usecase.ScoreValidatorService
	tenantService       *usecase.TenantService
	gameDataService     *usecase.GameDataService
	invalidationService *usecase.InvalidationService
	logger              *slog.Logger
	validator           *validator.Validate
}

func NewHandler(
	scoreService *usecase.ScoreService,
	validatorService *usecase.ScoreValidatorService,
	tenantService *usecase.TenantService,
	gameDataService *usecase.GameDataService,
	invalidationService *usecase.InvalidationService,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		scoreService:        scoreService,
		validatorService:    validatorService,
		tenantService:       tenantService,
		gameDataService:     gameDataService,
		invalidationService: invalidationService,
		logger:              logger,
		validator:           validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// ResolveScores computes the displayed quarter-by-quarter result for a
// game from the caller-supplied inputs, seen from the active team's
// perspective.
func (h *Handler) ResolveScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResolveScores")
	defer span.End()

	var req resolveScoresRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	resolved := h.scoreService.ResolveScoresCached(
		ctx,
		req.Game.toDomain(),
		statsToDomain(req.Stats),
		officialToDomain(req.OfficialScores),
		h.tenantService.Current(),
	)

	writeSuccess(ctx, w, http.StatusOK, resolved)
}

// ValidateScores compares two clubs' independently reported totals for
// the same fixture and returns the discrepancy report plus the
// advisory reconciled score.
func (h *Handler) ValidateScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ValidateScores")
	defer span.End()

	var req validateScoresRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	home := usecase.TeamReportedTotals{GoalsFor: req.Home.GoalsFor, GoalsAgainst: req.Home.GoalsAgainst}
	away := usecase.TeamReportedTotals{GoalsFor: req.Away.GoalsFor, GoalsAgainst: req.Away.GoalsAgainst}

	report := h.validatorService.ValidateInterClubScores(ctx, home, away)
	reconciled := h.validatorService.GetReconciledScore(ctx, home, away)

	writeSuccess(ctx, w, http.StatusOK, validateScoresResponse{
		Report:     report,
		Reconciled: reconciled,
	})
}

func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTenant")
	defer span.End()

	current := h.tenantService.Current()
	writeSuccess(ctx, w, http.StatusOK, tenantDTO{
		State:  h.tenantService.State(),
		ClubID: current.ClubID,
		TeamID: current.TeamID,
	})
}

// InitializeTenant loads the accessible-club set and resolves the
// active club. Repeated calls after a successful initialization are
// no-ops.
func (h *Handler) InitializeTenant(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.InitializeTenant")
	defer span.End()

	var req initializeTenantRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	accessible := make([]club.Club, 0, len(req.Clubs))
	for _, item := range req.Clubs {
		accessible = append(accessible, club.Club{
			ID:          strings.TrimSpace(item.ID),
			Name:        strings.TrimSpace(item.Name),
			Permissions: item.Permissions,
		})
	}

	if err := h.tenantService.Initialize(ctx, accessible); err != nil {
		h.logger.WarnContext(ctx, "tenant initialization failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	current := h.tenantService.Current()
	writeSuccess(ctx, w, http.StatusOK, tenantDTO{
		State:  h.tenantService.State(),
		ClubID: current.ClubID,
		TeamID: current.TeamID,
	})
}

func (h *Handler) SwitchClub(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SwitchClub")
	defer span.End()

	var req switchClubRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.tenantService.SwitchClub(ctx, req.ClubID); err != nil {
		h.logger.WarnContext(ctx, "club switch failed", "club_id", req.ClubID, "error", err)
		writeError(ctx, w, err)
		return
	}

	current := h.tenantService.Current()
	writeSuccess(ctx, w, http.StatusOK, tenantDTO{
		State:  h.tenantService.State(),
		ClubID: current.ClubID,
		TeamID: current.TeamID,
	})
}

func (h *Handler) SelectTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SelectTeam")
	defer span.End()

	var req selectTeamRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.tenantService.SetCurrentTeamID(ctx, req.TeamID)

	current := h.tenantService.Current()
	writeSuccess(ctx, w, http.StatusOK, tenantDTO{
		State:  h.tenantService.State(),
		ClubID: current.ClubID,
		TeamID: current.TeamID,
	})
}

// BatchFetchGameData fetches stats, rosters and official scores for a
// set of games in one round trip per data kind.
func (h *Handler) BatchFetchGameData(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BatchFetchGameData")
	defer span.End()

	var req batchFetchRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	current := h.tenantService.Current()
	bundle, err := h.gameDataService.BatchFetchGameData(ctx, usecase.BatchFetchInput{
		GameIDs:        req.GameIDs,
		ClubID:         current.ClubID,
		TeamID:         current.TeamID,
		IncludeStats:   req.IncludeStats,
		IncludeRosters: req.IncludeRosters,
		IncludeScores:  req.IncludeScores,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "batch game data fetch failed", "game_count", len(req.GameIDs), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, bundleToDTO(bundle))
}

func (h *Handler) ScoreMutated(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ScoreMutated")
	defer span.End()

	var req scoreMutationRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.invalidationService.ScoreUpdated(ctx, req.ClubID, req.GameID)
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) GameDataMutated(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GameDataMutated")
	defer span.End()

	var req gameMutationRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.invalidationService.GameDataUpdated(ctx, req.GameID)
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) TeamMutated(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TeamMutated")
	defer span.End()

	var req teamMutationRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.invalidationService.TeamUpdated(ctx, req.TeamID)
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, target any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, target)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type resolveScoresRequest struct {
	Game           gamePayload            `json:"game" validate:"required"`
	Stats          []statPayload          `json:"stats" validate:"dive"`
	OfficialScores []officialScorePayload `json:"officialScores" validate:"dive"`
}

type gamePayload struct {
	ID          string             `json:"id" validate:"required"`
	SeasonID    string             `json:"seasonId"`
	HomeTeamID  string             `json:"homeTeamId"`
	AwayTeamID  string             `json:"awayTeamId"`
	StartsAt    string             `json:"startsAt"`
	Status      string             `json:"status"`
	StatusScore *fixedScorePayload `json:"statusScore"`
	IsInterClub bool               `json:"isInterClub"`
	Completed   bool               `json:"completed"`
}

type fixedScorePayload struct {
	TeamScore     int `json:"teamScore"`
	OpponentScore int `json:"opponentScore"`
}

type statPayload struct {
	ID            string   `json:"id"`
	GameID        string   `json:"gameId"`
	TeamID        string   `json:"teamId"`
	Position      string   `json:"position"`
	Quarter       int      `json:"quarter" validate:"min=0,max=4"`
	GoalsFor      int      `json:"goalsFor"`
	GoalsAgainst  int      `json:"goalsAgainst"`
	MissedGoals   int      `json:"missedGoals"`
	Rebounds      int      `json:"rebounds"`
	Intercepts    int      `json:"intercepts"`
	BadPass       int      `json:"badPass"`
	HandlingError int      `json:"handlingError"`
	PickUp        int      `json:"pickUp"`
	Infringement  int      `json:"infringement"`
	Rating        *float64 `json:"rating"`
}

type officialScorePayload struct {
	ID        string `json:"id"`
	GameID    string `json:"gameId"`
	TeamID    string `json:"teamId" validate:"required"`
	Quarter   int    `json:"quarter" validate:"min=1,max=4"`
	Score     int    `json:"score" validate:"min=0"`
	Notes     string `json:"notes"`
	EnteredBy string `json:"enteredBy"`
	EnteredAt string `json:"enteredAt"`
}

type validateScoresRequest struct {
	Home reportedTotalsPayload `json:"home" validate:"required"`
	Away reportedTotalsPayload `json:"away" validate:"required"`
}

type reportedTotalsPayload struct {
	GoalsFor     int `json:"goalsFor" validate:"min=0"`
	GoalsAgainst int `json:"goalsAgainst" validate:"min=0"`
}

type validateScoresResponse struct {
	Report     usecase.ValidationReport `json:"report"`
	Reconciled usecase.ReconciledScore  `json:"reconciledScore"`
}

type initializeTenantRequest struct {
	Clubs []clubPayload `json:"clubs" validate:"required,min=1,dive"`
}

type clubPayload struct {
	ID          string          `json:"id" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Permissions map[string]bool `json:"permissions"`
}

type switchClubRequest struct {
	ClubID string `json:"clubId" validate:"required"`
}

type selectTeamRequest struct {
	TeamID string `json:"teamId"`
}

type batchFetchRequest struct {
	GameIDs        []string `json:"gameIds" validate:"required,min=1,dive,required"`
	IncludeStats   bool     `json:"includeStats"`
	IncludeRosters bool     `json:"includeRosters"`
	IncludeScores  bool     `json:"includeScores"`
}

type scoreMutationRequest struct {
	ClubID string `json:"clubId" validate:"required"`
	GameID string `json:"gameId" validate:"required"`
}

type gameMutationRequest struct {
	GameID string `json:"gameId" validate:"required"`
}

type teamMutationRequest struct {
	TeamID string `json:"teamId" validate:"required"`
}

type tenantDTO struct {
	State  string `json:"state"`
	ClubID string `json:"clubId"`
	TeamID string `json:"teamId"`
}

type statDTO struct {
	ID            string   `json:"id"`
	GameID        string   `json:"gameId"`
	TeamID        string   `json:"teamId"`
	Position      string   `json:"position"`
	Quarter       int      `json:"quarter"`
	GoalsFor      int      `json:"goalsFor"`
	GoalsAgainst  int      `json:"goalsAgainst"`
	MissedGoals   int      `json:"missedGoals"`
	Rebounds      int      `json:"rebounds"`
	Intercepts    int      `json:"intercepts"`
	BadPass       int      `json:"badPass"`
	HandlingError int      `json:"handlingError"`
	PickUp        int      `json:"pickUp"`
	Infringement  int      `json:"infringement"`
	Rating        *float64 `json:"rating"`
}

type rosterDTO struct {
	ID       string `json:"id"`
	GameID   string `json:"gameId"`
	TeamID   string `json:"teamId"`
	PlayerID string `json:"playerId"`
	Position string `json:"position"`
	Quarter  int    `json:"quarter"`
}

type officialScoreDTO struct {
	ID        string `json:"id"`
	GameID    string `json:"gameId"`
	TeamID    string `json:"teamId"`
	Quarter   int    `json:"quarter"`
	Score     int    `json:"score"`
	Notes     string `json:"notes"`
	EnteredBy string `json:"enteredBy"`
	EnteredAt string `json:"enteredAt"`
}

type bundleDTO struct {
	Stats   map[string][]statDTO          `json:"stats,omitempty"`
	Rosters map[string][]rosterDTO        `json:"rosters,omitempty"`
	Scores  map[string][]officialScoreDTO `json:"scores,omitempty"`
}

func (p gamePayload) toDomain() game.Game {
	g := game.Game{
		ID:          strings.TrimSpace(p.ID),
		SeasonID:    strings.TrimSpace(p.SeasonID),
		HomeTeamID:  strings.TrimSpace(p.HomeTeamID),
		AwayTeamID:  strings.TrimSpace(p.AwayTeamID),
		Status:      p.Status,
		IsInterClub: p.IsInterClub,
		Completed:   p.Completed,
	}
	if p.StatusScore != nil {
		g.StatusScore = &game.FixedScore{
			TeamScore:     p.StatusScore.TeamScore,
			OpponentScore: p.StatusScore.OpponentScore,
		}
	}
	if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(p.StartsAt)); err == nil {
		g.StartsAt = parsed.UTC()
	}
	return g
}

func statsToDomain(items []statPayload) []gamestat.Stat {
	out := make([]gamestat.Stat, 0, len(items))
	for _, item := range items {
		out = append(out, gamestat.Stat{
			ID:            item.ID,
			GameID:        item.GameID,
			TeamID:        item.TeamID,
			Position:      item.Position,
			Quarter:       item.Quarter,
			GoalsFor:      item.GoalsFor,
			GoalsAgainst:  item.GoalsAgainst,
			MissedGoals:   item.MissedGoals,
			Rebounds:      item.Rebounds,
			Intercepts:    item.Intercepts,
			BadPass:       item.BadPass,
			HandlingError: item.HandlingError,
			PickUp:        item.PickUp,
			Infringement:  item.Infringement,
			Rating:        item.Rating,
		})
	}
	return out
}

func officialToDomain(items []officialScorePayload) []officialscore.Score {
	out := make([]officialscore.Score, 0, len(items))
	for _, item := range items {
		row := officialscore.Score{
			ID:        item.ID,
			GameID:    item.GameID,
			TeamID:    item.TeamID,
			Quarter:   item.Quarter,
			Score:     item.Score,
			Notes:     item.Notes,
			EnteredBy: item.EnteredBy,
		}
		if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(item.EnteredAt)); err == nil {
			row.EnteredAt = parsed.UTC()
		}
		out = append(out, row)
	}
	return out
}

func bundleToDTO(bundle usecase.GameDataBundle) bundleDTO {
	out := bundleDTO{}

	if bundle.Stats != nil {
		out.Stats = make(map[string][]statDTO, len(bundle.Stats))
		for gameID, rows := range bundle.Stats {
			items := make([]statDTO, 0, len(rows))
			for _, row := range rows {
				items = append(items, statDTO{
					ID:            row.ID,
					GameID:        row.GameID,
					TeamID:        row.TeamID,
					Position:      row.Position,
					Quarter:       row.Quarter,
					GoalsFor:      row.GoalsFor,
					GoalsAgainst:  row.GoalsAgainst,
					MissedGoals:   row.MissedGoals,
					Rebounds:      row.Rebounds,
					Intercepts:    row.Intercepts,
					BadPass:       row.BadPass,
					HandlingError: row.HandlingError,
					PickUp:        row.PickUp,
					Infringement:  row.Infringement,
					Rating:        row.Rating,
				})
			}
			out.Stats[gameID] = items
		}
	}

	if bundle.Rosters != nil {
		out.Rosters = make(map[string][]rosterDTO, len(bundle.Rosters))
		for gameID, rows := range bundle.Rosters {
			out.Rosters[gameID] = rosterEntriesToDTO(rows)
		}
	}

	if bundle.Scores != nil {
		out.Scores = make(map[string][]officialScoreDTO, len(bundle.Scores))
		for gameID, rows := range bundle.Scores {
			items := make([]officialScoreDTO, 0, len(rows))
			for _, row := range rows {
				item := officialScoreDTO{
					ID:        row.ID,
					GameID:    row.GameID,
					TeamID:    row.TeamID,
					Quarter:   row.Quarter,
					Score:     row.Score,
					Notes:     row.Notes,
					EnteredBy: row.EnteredBy,
				}
				if !row.EnteredAt.IsZero() {
					item.EnteredAt = row.EnteredAt.UTC().Format(time.RFC3339)
				}
				items = append(items, item)
			}
			out.Scores[gameID] = items
		}
	}

	return out
}

func rosterEntriesToDTO(rows []roster.Entry) []rosterDTO {
	items := make([]rosterDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, rosterDTO{
			ID:       row.ID,
			GameID:   row.GameID,
			TeamID:   row.TeamID,
			PlayerID: row.PlayerID,
			Position: row.Position,
			Quarter:  row.Quarter,
		})
	}
	return items
}

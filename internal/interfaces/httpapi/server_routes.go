package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/scores/resolve", handler.ResolveScores)
	mux.HandleFunc("POST /v1/scores/validate", handler.ValidateScores)

	mux.HandleFunc("GET /v1/tenant", handler.GetTenant)
	mux.HandleFunc("POST /v1/tenant/initialize", handler.InitializeTenant)
	mux.HandleFunc("POST /v1/tenant/club", handler.SwitchClub)
	mux.HandleFunc("POST /v1/tenant/team", handler.SelectTeam)

	mux.HandleFunc("POST /v1/games/batch", handler.BatchFetchGameData)
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalToken string) {
	mux.Handle("POST /v1/internal/mutations/score", RequireInternalToken(internalToken, http.HandlerFunc(handler.ScoreMutated)))
	mux.Handle("POST /v1/internal/mutations/game", RequireInternalToken(internalToken, http.HandlerFunc(handler.GameDataMutated)))
	mux.Handle("POST /v1/internal/mutations/team", RequireInternalToken(internalToken, http.HandlerFunc(handler.TeamMutated)))
}

package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/courtside/netball-hub/external/clubapi"
	"github.com/courtside/netball-hub/external/notify"
	"github.com/courtside/netball-hub/internal/config"
	"github.com/courtside/netball-hub/internal/domain/tenant"
	"github.com/courtside/netball-hub/internal/infrastructure/repository/memory"
	"github.com/courtside/netball-hub/internal/infrastructure/repository/postgres"
	"github.com/courtside/netball-hub/internal/interfaces/httpapi"
	"github.com/courtside/netball-hub/internal/platform/cache"
	idgen "github.com/courtside/netball-hub/internal/platform/id"
	"github.com/courtside/netball-hub/internal/platform/logging"
	"github.com/courtside/netball-hub/internal/platform/resilience"
	"github.com/courtside/netball-hub/internal/usecase"
)

func NewHTTPServer(cfg config.Config, logger *slog.Logger) (*http.Server, error) {
	appLogger := logging.Default()

	tenantRepo, err := newTenantRepository(cfg)
	if err != nil {
		return nil, err
	}

	clubClient := clubapi.NewClient(clubapi.ClientConfig{
		BaseURL:    cfg.ClubAPIBaseURL,
		Token:      cfg.ClubAPIToken,
		Timeout:    cfg.ClubAPITimeout,
		MaxRetries: cfg.ClubAPIMaxRetries,
		Logger:     appLogger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ClubAPICircuitEnabled,
			FailureThreshold: cfg.ClubAPICircuitFailureCount,
			OpenTimeout:      cfg.ClubAPICircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ClubAPICircuitHalfOpenMaxReq,
		},
	})

	var notifier usecase.Notifier
	if cfg.WebhookEnabled {
		notifier = notify.NewWebhookNotifier(notify.WebhookNotifierConfig{
			URL:     cfg.WebhookURL,
			Token:   cfg.WebhookToken,
			Channel: cfg.WebhookChannel,
			Timeout: cfg.WebhookTimeout,
		}, appLogger)
	}

	// The query cache doubles as the request collapser for batch
	// fetches, so it is always constructed; disabling the cache only
	// turns off score memoization.
	queryCache := cache.NewStore(cfg.CacheTTL)
	scoreCache := usecase.NewScoreCache(cfg.ScoreCacheTTL)

	resolverCache := scoreCache
	if !cfg.CacheEnabled {
		resolverCache = nil
	}

	scoreSvc := usecase.NewScoreService(resolverCache, appLogger)
	validatorSvc := usecase.NewScoreValidatorService(notifier, appLogger)
	tenantSvc := usecase.NewTenantService(tenantRepo, clubClient, usecase.TenantServiceConfig{
		ProfileID:          cfg.TenantProfileID,
		FallbackClubID:     cfg.TenantFallbackClubID,
		TeamSelectDebounce: cfg.TeamSelectDebounce,
	}, appLogger)
	gameDataSvc := usecase.NewGameDataService(clubClient, queryCache, appLogger)
	invalidationSvc := usecase.NewInvalidationService(scoreCache, queryCache, appLogger)

	handler := httpapi.NewHandler(scoreSvc, validatorSvc, tenantSvc, gameDataSvc, invalidationSvc, logger)
	router := httpapi.NewRouter(handler, logger, idgen.NewRandomGenerator(), cfg.CORSAllowedOrigins, cfg.InternalAPIToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

func newTenantRepository(cfg config.Config) (tenant.Repository, error) {
	if !cfg.DBEnabled {
		return memory.NewTenantSettingsRepository(), nil
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	return postgres.NewTenantSettingsRepository(db), nil
}

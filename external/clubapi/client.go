package clubapi

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/courtside/netball-hub/internal/domain/gamestat"
	"github.com/courtside/netball-hub/internal/domain/officialscore"
	"github.com/courtside/netball-hub/internal/domain/roster"
	"github.com/courtside/netball-hub/internal/platform/logging"
	"github.com/courtside/netball-hub/internal/platform/resilience"
	"github.com/courtside/netball-hub/internal/usecase"
)

const (
	defaultBaseURL   = "https://api.courtside.app/v1"
	defaultTimeout   = 15 * time.Second
	maxResponseBytes = 6 << 20
)

var errClubAPITransient = crerr.New("club api transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type scope struct {
	clubID string
	teamID string
}

// Client talks to the club data API. Every request carries the active
// club/team scope as headers, so a scope switch takes effect on the
// next request without rebuilding the client. Identical in-flight
// requests collapse to one round trip.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	scope          atomic.Pointer[scope]
}

var _ usecase.GameDataClient = (*Client)(nil)
var _ usecase.ScopePropagator = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	c := &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
	c.scope.Store(&scope{})
	return c
}

// SetScope records the active club/team pair for subsequent requests.
func (c *Client) SetScope(clubID, teamID string) {
	c.scope.Store(&scope{
		clubID: strings.TrimSpace(clubID),
		teamID: strings.TrimSpace(teamID),
	})
}

func (c *Client) BatchGameStats(ctx context.Context, gameIDs []string) (map[string][]gamestat.Stat, error) {
	rows, err := fetchRows[statRow](ctx, c, "/games/stats", batchQuery(gameIDs))
	if err != nil {
		return nil, fmt.Errorf("batch game stats: %w", err)
	}
	out := make(map[string][]gamestat.Stat, len(gameIDs))
	for _, row := range rows {
		stat := row.toDomain()
		out[stat.GameID] = append(out[stat.GameID], stat)
	}
	return out, nil
}

func (c *Client) BatchGameRosters(ctx context.Context, gameIDs []string) (map[string][]roster.Entry, error) {
	rows, err := fetchRows[rosterRow](ctx, c, "/games/rosters", batchQuery(gameIDs))
	if err != nil {
		return nil, fmt.Errorf("batch game rosters: %w", err)
	}
	out := make(map[string][]roster.Entry, len(gameIDs))
	for _, row := range rows {
		entry := row.toDomain()
		out[entry.GameID] = append(out[entry.GameID], entry)
	}
	return out, nil
}

func (c *Client) BatchGameScores(ctx context.Context, gameIDs []string) (map[string][]officialscore.Score, error) {
	rows, err := fetchRows[scoreRow](ctx, c, "/games/scores", batchQuery(gameIDs))
	if err != nil {
		return nil, fmt.Errorf("batch game scores: %w", err)
	}
	out := make(map[string][]officialscore.Score, len(gameIDs))
	for _, row := range rows {
		score := row.toDomain()
		out[score.GameID] = append(out[score.GameID], score)
	}
	return out, nil
}

func (c *Client) GameStats(ctx context.Context, gameID string) ([]gamestat.Stat, error) {
	rows, err := fetchRows[statRow](ctx, c, "/games/"+url.PathEscape(gameID)+"/stats", nil)
	if err != nil {
		return nil, fmt.Errorf("game stats game_id=%s: %w", gameID, err)
	}
	out := make([]gamestat.Stat, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (c *Client) GameRosters(ctx context.Context, gameID string) ([]roster.Entry, error) {
	rows, err := fetchRows[rosterRow](ctx, c, "/games/"+url.PathEscape(gameID)+"/rosters", nil)
	if err != nil {
		return nil, fmt.Errorf("game rosters game_id=%s: %w", gameID, err)
	}
	out := make([]roster.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (c *Client) GameScores(ctx context.Context, gameID string) ([]officialscore.Score, error) {
	rows, err := fetchRows[scoreRow](ctx, c, "/games/"+url.PathEscape(gameID)+"/scores", nil)
	if err != nil {
		return nil, fmt.Errorf("game scores game_id=%s: %w", gameID, err)
	}
	out := make([]officialscore.Score, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func batchQuery(gameIDs []string) map[string]string {
	return map[string]string{"ids": strings.Join(gameIDs, ",")}
}

func fetchRows[T any](ctx context.Context, c *Client, path string, query map[string]string) ([]T, error) {
	raw, err := c.doRequest(ctx, path, query)
	if err != nil {
		return nil, err
	}
	return decodeRows[T](raw)
}

// decodeRows accepts both response shapes the API is known to emit: a
// bare JSON array and a {"data": [...]} envelope. Callers only ever see
// the row slice.
func decodeRows[T any](raw []byte) ([]T, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var rows []T
		if err := sonic.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("decode rows: %w", err)
		}
		return rows, nil
	}

	var envelope struct {
		Data []T `json:"data"`
	}
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return envelope.Data, nil
}

func (c *Client) doRequest(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "club api circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: club data api is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	current := c.scope.Load()
	key := fullURL + "|" + current.clubID + "|" + current.teamID
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL, *current)
		if c.circuitEnabled {
			if reqErr != nil && isClubAPICircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string, current scope) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		if c.token != "" {
			req.Header.Set("authorization", "Bearer "+c.token)
		}
		if current.clubID != "" {
			req.Header.Set("x-club-id", current.clubID)
		}
		if current.teamID != "" {
			req.Header.Set("x-team-id", current.teamID)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errClubAPITransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errClubAPITransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: api status=%d body=%s", errClubAPITransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("api status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("api request failed")
	}
	c.logger.WarnContext(ctx, "club api request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isClubAPICircuitFailure(err error) bool {
	return stderrors.Is(err, errClubAPITransient)
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" || token == "" {
		return value
	}
	return strings.ReplaceAll(value, token, "REDACTED")
}

func abbreviateBody(raw []byte) string {
	body := strings.TrimSpace(string(raw))
	if len(body) > 240 {
		return body[:240] + "..."
	}
	return body
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

package notify

import (
	"context"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/courtside/netball-hub/internal/platform/logging"
	"github.com/courtside/netball-hub/internal/usecase"
)

const defaultWebhookTimeout = 5 * time.Second

type WebhookNotifierConfig struct {
	URL     string
	Token   string
	Channel string
	Timeout time.Duration
}

// WebhookNotifier posts validation warnings to an operations webhook.
// Delivery is best effort: failures are logged and swallowed so a
// broken webhook can never block score reconciliation.
type WebhookNotifier struct {
	client  *fasthttp.Client
	url     string
	token   string
	channel string
	timeout time.Duration
	logger  *logging.Logger
}

var _ usecase.Notifier = (*WebhookNotifier)(nil)

func NewWebhookNotifier(cfg WebhookNotifierConfig, logger *logging.Logger) *WebhookNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	return &WebhookNotifier{
		client:  &fasthttp.Client{ReadTimeout: timeout, WriteTimeout: timeout},
		url:     strings.TrimSpace(cfg.URL),
		token:   strings.TrimSpace(cfg.Token),
		channel: strings.TrimSpace(cfg.Channel),
		timeout: timeout,
		logger:  logger,
	}
}

func (n *WebhookNotifier) Warn(ctx context.Context, message string) {
	message = strings.TrimSpace(message)
	if n.url == "" || message == "" {
		return
	}

	if err := n.post(message); err != nil {
		n.logger.WarnContext(ctx, "webhook notification failed", "error", err, "preview", previewMessage(message))
		return
	}
	n.logger.DebugContext(ctx, "webhook notification sent", "preview", previewMessage(message))
}

func (n *WebhookNotifier) post(message string) error {
	body, err := sonic.Marshal(map[string]any{
		"channel":  n.channel,
		"severity": "warning",
		"message":  message,
		"sentAt":   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return crerr.Wrap(err, "marshal webhook payload")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(n.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}
	req.SetBody(body)

	if err := n.client.DoTimeout(req, resp, n.timeout); err != nil {
		return crerr.Wrap(err, "post webhook")
	}
	if status := resp.StatusCode(); status/100 != 2 {
		return crerr.Newf("webhook status=%d body=%s", status, previewMessage(string(resp.Body())))
	}
	return nil
}

func previewMessage(message string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	limit := len(message)
	truncated := false
	if limit > 160 {
		limit = 160
		truncated = true
	}
	_, _ = buf.WriteString(message[:limit])
	if truncated {
		_, _ = buf.WriteString("...(truncated)")
	}
	return buf.String()
}

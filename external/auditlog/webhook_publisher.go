package auditlog

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jvasek/tipliga/internal/domain/audit"
	"github.com/jvasek/tipliga/internal/platform/logging"
	"github.com/jvasek/tipliga/internal/platform/resilience"
)

var errWebhookTransient = crerr.New("audit webhook transient failure")

type WebhookPublisherConfig struct {
	WebhookURL          string
	Token               string
	Timeout             time.Duration
	CircuitBreaker      resilience.CircuitBreakerConfig
	CaptureRequestBody  bool
	RequestBodyMaxBytes int
}

// WebhookPublisher delivers audit entries to an external collector over
// HTTP. Delivery is best effort by contract; callers log the returned error
// and move on, so the breaker here only protects the collector from a
// request storm while it is down.
type WebhookPublisher struct {
	client         *http.Client
	webhookURL     string
	token          string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	captureBody    bool
	bodyMaxBytes   int
}

func NewWebhookPublisher(cfg WebhookPublisherConfig, logger *logging.Logger) *WebhookPublisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
	bodyMaxBytes := cfg.RequestBodyMaxBytes
	if bodyMaxBytes <= 0 {
		bodyMaxBytes = 4096
	}

	return &WebhookPublisher{
		client: &http.Client{
			Timeout: timeout,
		},
		webhookURL:     strings.TrimSpace(cfg.WebhookURL),
		token:          strings.TrimSpace(cfg.Token),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		captureBody:    cfg.CaptureRequestBody,
		bodyMaxBytes:   bodyMaxBytes,
	}
}

type webhookEntry struct {
	ActorID    string         `json:"actorId"`
	LeagueID   string         `json:"leagueId,omitempty"`
	EntityID   string         `json:"entityId"`
	Action     string         `json:"action"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	DurationMS int64          `json:"durationMs"`
	RecordedAt time.Time      `json:"recordedAt"`
}

func (p *WebhookPublisher) Record(ctx context.Context, entry audit.Entry) error {
	if p.circuitEnabled {
		if err := p.breaker.Allow(); err != nil {
			p.logger.WarnContext(ctx, "audit webhook circuit breaker rejected request", "state", p.breaker.State())
			return fmt.Errorf("audit webhook is temporarily unavailable: %w", err)
		}
	}

	webhookURL, err := validateHTTPURL(p.webhookURL)
	if err != nil {
		return crerr.Wrap(err, "invalid audit webhook url")
	}

	body, err := sonic.Marshal(webhookEntry{
		ActorID:    entry.ActorID,
		LeagueID:   entry.LeagueID,
		EntityID:   entry.EntityID,
		Action:     string(entry.Action),
		Metadata:   entry.Metadata,
		DurationMS: entry.Duration.Milliseconds(),
		RecordedAt: time.Now().UTC(),
	})
	if err != nil {
		return crerr.Wrap(err, "marshal audit entry")
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("audit.webhook_url", webhookURL),
			attribute.String("audit.action", string(entry.Action)),
		)
		if p.captureBody {
			bodyText := truncateForLog(string(body), p.bodyMaxBytes)
			span.SetAttributes(
				attribute.String("audit.request_body", bodyText),
				attribute.String("audit.request_curl_preview", buildCurlPreview(webhookURL, bodyText, p.token != "")),
			)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, strings.NewReader(string(body)))
	if err != nil {
		return crerr.Wrap(err, "create audit webhook request")
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		callErr := fmt.Errorf("%w: deliver audit entry action=%s: %v", errWebhookTransient, entry.Action, err)
		p.recordCircuitResult(callErr)
		return callErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		callErr := fmt.Errorf(
			"%w: deliver audit entry status=%d action=%s body=%s",
			errWebhookTransient,
			resp.StatusCode,
			entry.Action,
			strings.TrimSpace(string(raw)),
		)
		if !isRetryableStatus(resp.StatusCode) {
			callErr = fmt.Errorf(
				"deliver audit entry status=%d action=%s body=%s",
				resp.StatusCode,
				entry.Action,
				strings.TrimSpace(string(raw)),
			)
		}
		p.recordCircuitResult(callErr)
		return callErr
	}

	p.recordCircuitResult(nil)
	return nil
}

func (p *WebhookPublisher) recordCircuitResult(err error) {
	if !p.circuitEnabled || p.breaker == nil {
		return
	}
	if err == nil {
		p.breaker.RecordSuccess()
		return
	}
	if stderrors.Is(err, errWebhookTransient) {
		p.breaker.RecordFailure()
		return
	}
	p.breaker.RecordSuccess()
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

func validateHTTPURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return candidate, nil
}

func buildCurlPreview(webhookURL, body string, withToken bool) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendPart := func(part string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(part)
	}

	appendPart("curl")
	appendPart("-X")
	appendPart("POST")
	appendPart(shellQuote(webhookURL))
	appendPart("-H")
	appendPart(shellQuote("Content-Type: application/json"))
	if withToken {
		appendPart("-H")
		appendPart(shellQuote("Authorization: Bearer ***"))
	}
	appendPart("-d")
	appendPart(shellQuote(body))

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}

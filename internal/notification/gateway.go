package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// GatewayConfig configures the webhook gateway.
type GatewayConfig struct {
	// WebhookURL is the robot endpoint notices are posted to.
	WebhookURL string
	// Timeout bounds one delivery attempt.
	Timeout time.Duration
	// MaxRequests is the number of probes allowed in half-open state.
	MaxRequests uint32
	// Interval is the cyclic period of the closed state.
	Interval time.Duration
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
	// FailureThreshold trips the breaker after this many consecutive
	// failures.
	FailureThreshold uint32
}

// DefaultGatewayConfig returns sensible defaults.
func DefaultGatewayConfig(webhookURL string) GatewayConfig {
	return GatewayConfig{
		WebhookURL:       webhookURL,
		Timeout:          10 * time.Second,
		MaxRequests:      3,
		Interval:         10 * time.Second,
		OpenTimeout:      30 * time.Second,
		FailureThreshold: 5,
	}
}

// WebhookGateway posts notice cards to an IM robot endpoint. Deliveries run
// through a circuit breaker so a dead endpoint cannot stall confirmation
// batches; a rejected or failed delivery surfaces in the DeliveryResult and
// is recorded on the assignment, never retried inline.
type WebhookGateway struct {
	cfg     GatewayConfig
	client  *http.Client
	tokens  TokenProvider
	breaker *gobreaker.CircuitBreaker[int]
	logger  *slog.Logger
}

// NewWebhookGateway creates a breaker-protected webhook notifier.
func NewWebhookGateway(cfg GatewayConfig, tokens TokenProvider, logger *slog.Logger) *WebhookGateway {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	g := &WebhookGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		tokens: tokens,
		logger: logger,
	}

	settings := gobreaker.Settings{
		Name:        "notification-webhook",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}
	g.breaker = gobreaker.NewCircuitBreaker[int](settings)

	return g
}

// noticeCard is the wire shape of one delivery.
type noticeCard struct {
	RecipientIM  string     `json:"recipient_im"`
	Title        string     `json:"title"`
	Summary      string     `json:"summary,omitempty"`
	PlannedHours float64    `json:"planned_hours,omitempty"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	DetailURL    string     `json:"detail_url"`
	AcceptURL    string     `json:"accept_url"`
	RejectURL    string     `json:"reject_url"`
}

// NotifyAssignment posts one notice card. The returned result carries the
// failure detail instead of an error because delivery outcome is data.
func (g *WebhookGateway) NotifyAssignment(ctx context.Context, notice AssignmentNotice) DeliveryResult {
	start := time.Now()

	status, err := g.breaker.Execute(func() (int, error) {
		return g.post(ctx, notice)
	})

	result := DeliveryResult{
		Sent:       err == nil,
		StatusCode: status,
		Duration:   time.Since(start),
	}
	if err != nil {
		result.Error = err.Error()
		g.logger.WarnContext(ctx, "notification delivery failed",
			"assignment_id", notice.AssignmentID,
			"person_id", notice.PersonID,
			"status", status,
			"error", err,
		)
	}
	return result
}

func (g *WebhookGateway) post(ctx context.Context, notice AssignmentNotice) (int, error) {
	token, err := g.tokens.Token(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire token: %w", err)
	}

	body, err := json.Marshal(noticeCard{
		RecipientIM:  notice.RecipientIM,
		Title:        notice.Title,
		Summary:      notice.Summary,
		PlannedHours: notice.PlannedHours,
		Deadline:     notice.Deadline,
		DetailURL:    notice.DetailURL,
		AcceptURL:    notice.AcceptURL,
		RejectURL:    notice.RejectURL,
	})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

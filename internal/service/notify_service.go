package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"escrow-settlement/internal/core/domain"
	"escrow-settlement/internal/core/ports"
	"escrow-settlement/internal/metrics"

	"github.com/rs/zerolog"
)

// webhookRetryIntervals is the delay before each redelivery attempt.
var webhookRetryIntervals = []time.Duration{
	15 * time.Second,
	60 * time.Second,
	2 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
}

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// LogNotifier writes events to the log. Used when no delivery channel is configured.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, ev domain.Event) {
	entry := n.log.Info().Str("event", string(ev.Type)).Str("status", ev.Status)
	if ev.OrderID != nil {
		entry = entry.Str("order_id", ev.OrderID.String())
	}
	if ev.DisputeID != nil {
		entry = entry.Str("dispute_id", ev.DisputeID.String())
	}
	if ev.PayoutID != nil {
		entry = entry.Str("payout_id", ev.PayoutID.String())
	}
	entry.Int64("amount", ev.AmountCents).Msg("notification")
	metrics.NotificationsTotal.WithLabelValues("log", "ok").Inc()
}

// webhookNotifier POSTs signed events to the notification collaborator with retries.
type webhookNotifier struct {
	url        string
	secret     string
	sigSvc     ports.SignatureService
	httpClient HTTPClient
	intervals  []time.Duration
	log        zerolog.Logger
}

// NewWebhookNotifier creates a notifier that delivers each event in the background.
// The body is signed with HMAC-SHA256 in the X-Escrow-Signature header.
func NewWebhookNotifier(
	url string,
	secret string,
	sigSvc ports.SignatureService,
	httpClient HTTPClient,
	log zerolog.Logger,
) ports.Notifier {
	return &webhookNotifier{
		url:        url,
		secret:     secret,
		sigSvc:     sigSvc,
		httpClient: httpClient,
		intervals:  webhookRetryIntervals,
		log:        log,
	}
}

// Notify never blocks the caller; delivery failures are logged and counted.
func (s *webhookNotifier) Notify(_ context.Context, ev domain.Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		s.log.Error().Err(err).Str("event", string(ev.Type)).Msg("webhook: failed to marshal event")
		return
	}
	signature := s.sigSvc.Sign(s.secret, string(body))
	go s.deliverWithRetries(body, signature, ev)
}

// deliverWithRetries attempts delivery until a 2xx or the retry schedule runs out.
func (s *webhookNotifier) deliverWithRetries(body []byte, signature string, ev domain.Event) {
	for attempt := 0; attempt <= len(s.intervals); attempt++ {
		if attempt > 0 {
			time.Sleep(s.intervals[attempt-1])
		}

		status, err := s.post(body, signature, ev)
		if err != nil {
			s.log.Warn().Err(err).Str("event", string(ev.Type)).Int("attempt", attempt+1).Msg("webhook: delivery failed")
			continue
		}
		if status >= 200 && status < 300 {
			metrics.NotificationsTotal.WithLabelValues("webhook", "ok").Inc()
			s.log.Debug().Str("event", string(ev.Type)).Int("attempt", attempt+1).Msg("webhook: delivered")
			return
		}
		s.log.Warn().Str("event", string(ev.Type)).Int("attempt", attempt+1).Int("status", status).Msg("webhook: non-2xx response, retrying")
	}

	metrics.NotificationsTotal.WithLabelValues("webhook", "failed").Inc()
	s.log.Error().Str("event", string(ev.Type)).Msg("webhook: all retry attempts exhausted")
}

func (s *webhookNotifier) post(body []byte, signature string, ev domain.Event) (int, error) {
	req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Escrow-Event", string(ev.Type))
	req.Header.Set("X-Escrow-Event-Version", strconv.Itoa(ev.Version))
	req.Header.Set("X-Escrow-Signature", signature)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

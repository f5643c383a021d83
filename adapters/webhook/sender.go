// Package webhook delivers alert events to registered HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/slavayosome/seriously-ai-sub000/domain/webhook"
	"github.com/slavayosome/seriously-ai-sub000/ports"
)

// Signature and event type header names on outgoing deliveries.
const (
	HeaderSignature = "X-Guard-Signature"
	HeaderEventType = "X-Guard-Event"
	HeaderEventID   = "X-Guard-Event-Id"
)

// Sender posts signed alert payloads to every subscribed endpoint.
// Deliveries run synchronously with bounded in-process retries; the
// long-backoff retry schedule is for a persistent delivery queue, which
// this sender does not keep.
type Sender struct {
	endpoints []webhook.Endpoint
	client    *http.Client
	clock     ports.Clock
	logger    zerolog.Logger
}

// NewSender creates a webhook sender for a fixed endpoint set.
func NewSender(endpoints []webhook.Endpoint, clock ports.Clock, logger zerolog.Logger) *Sender {
	return &Sender{
		endpoints: endpoints,
		client:    &http.Client{Timeout: 30 * time.Second},
		clock:     clock,
		logger:    logger.With().Str("component", "webhook_sender").Logger(),
	}
}

// Dispatch delivers an event to every endpoint subscribed to its type.
func (s *Sender) Dispatch(ctx context.Context, event webhook.Event) {
	payload := webhook.BuildPayload(event)
	body, err := webhook.SerializePayload(payload)
	if err != nil {
		s.logger.Error().Err(err).Str("event", string(event.Type)).Msg("serialize payload")
		return
	}

	for _, endpoint := range webhook.FilterEndpointsForEvent(s.endpoints, event.Type) {
		s.deliver(ctx, endpoint, event, body)
	}
}

func (s *Sender) deliver(ctx context.Context, endpoint webhook.Endpoint, event webhook.Event, body []byte) {
	delivery := webhook.NewDelivery(endpoint, event, string(body), s.clock.Now())

	for {
		status, respBody, err := s.post(ctx, endpoint, event, body)
		now := s.clock.Now()
		if err == nil && status >= 200 && status < 300 {
			delivery = webhook.MarkSuccess(delivery, status, respBody, 0, now)
			s.logger.Debug().
				Str("endpoint", endpoint.Name).
				Str("event", string(event.Type)).
				Int("status", status).
				Msg("webhook delivered")
			return
		}

		errMsg := ""
		if err != nil {
			errMsg = err.Error()
		}
		delivery = webhook.MarkFailed(delivery, status, respBody, errMsg, 0, now)
		if delivery.Status != webhook.DeliveryRetrying {
			s.logger.Warn().
				Str("endpoint", endpoint.Name).
				Str("event", string(event.Type)).
				Int("status", status).
				Str("error", errMsg).
				Int("attempts", delivery.Attempt).
				Msg("webhook delivery failed")
			return
		}
		delivery = webhook.IncrementAttempt(delivery, now)

		// Short in-process pause between attempts
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

func (s *Sender) post(ctx context.Context, endpoint webhook.Endpoint, event webhook.Event, body []byte) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(body))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderSignature, webhook.SignPayload(body, endpoint.Secret))
	req.Header.Set(HeaderEventType, string(event.Type))
	req.Header.Set(HeaderEventID, event.ID)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return resp.StatusCode, string(respBody), nil
}

// Ensure interface compliance.
var _ ports.AlertDispatcher = (*Sender)(nil)

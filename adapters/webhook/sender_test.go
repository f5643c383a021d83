package webhook_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/slavayosome/seriously-ai-sub000/adapters/clock"
	adapterwebhook "github.com/slavayosome/seriously-ai-sub000/adapters/webhook"
	"github.com/slavayosome/seriously-ai-sub000/domain/webhook"
)

type capturedRequest struct {
	body      []byte
	signature string
	eventType string
	eventID   string
}

// receiver is a test endpoint that records deliveries and replies with a
// fixed status code.
type receiver struct {
	mu       sync.Mutex
	status   int
	requests []capturedRequest
}

func (r *receiver) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	r.requests = append(r.requests, capturedRequest{
		body:      body,
		signature: req.Header.Get(adapterwebhook.HeaderSignature),
		eventType: req.Header.Get(adapterwebhook.HeaderEventType),
		eventID:   req.Header.Get(adapterwebhook.HeaderEventID),
	})
	r.mu.Unlock()
	w.WriteHeader(r.status)
}

func (r *receiver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func testEvent() webhook.Event {
	return webhook.Event{
		ID:        "evt_1",
		Type:      webhook.EventAlertCritical,
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Data:      map[string]interface{}{"message": "error rate exceeded"},
	}
}

func endpointFor(url, secret string, events ...webhook.EventType) webhook.Endpoint {
	return webhook.Endpoint{
		ID:         "ep_0",
		Name:       "test",
		URL:        url,
		Secret:     secret,
		Events:     events,
		RetryCount: 3,
		Enabled:    true,
	}
}

func newSender(endpoints ...webhook.Endpoint) *adapterwebhook.Sender {
	clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return adapterwebhook.NewSender(endpoints, clk, zerolog.Nop())
}

func TestSender_DeliversSignedPayload(t *testing.T) {
	rec := &receiver{status: http.StatusOK}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	secret := "whsec_test"
	sender := newSender(endpointFor(srv.URL, secret, webhook.EventAlertCritical))

	sender.Dispatch(context.Background(), testEvent())

	if rec.count() != 1 {
		t.Fatalf("requests = %d, want 1", rec.count())
	}
	got := rec.requests[0]
	if got.eventType != "alert.critical" {
		t.Errorf("event type header = %q, want alert.critical", got.eventType)
	}
	if got.eventID != "evt_1" {
		t.Errorf("event id header = %q, want evt_1", got.eventID)
	}
	if !webhook.VerifySignature(got.body, got.signature, secret) {
		t.Error("signature does not verify against the delivered body")
	}
}

func TestSender_SkipsUnsubscribedEndpoints(t *testing.T) {
	rec := &receiver{status: http.StatusOK}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	sender := newSender(endpointFor(srv.URL, "s", webhook.EventAlertResolved))

	sender.Dispatch(context.Background(), testEvent())

	if rec.count() != 0 {
		t.Errorf("requests = %d, want 0 for unsubscribed endpoint", rec.count())
	}
}

func TestSender_NoRetryOnClientError(t *testing.T) {
	rec := &receiver{status: http.StatusBadRequest}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	sender := newSender(endpointFor(srv.URL, "s", webhook.EventAlertCritical))

	sender.Dispatch(context.Background(), testEvent())

	if rec.count() != 1 {
		t.Errorf("requests = %d, want 1 (4xx is terminal)", rec.count())
	}
}

func TestSender_RetriesOnServerError(t *testing.T) {
	rec := &receiver{status: http.StatusInternalServerError}
	srv := httptest.NewServer(rec)
	defer srv.Close()

	ep := endpointFor(srv.URL, "s", webhook.EventAlertCritical)
	ep.RetryCount = 2
	sender := newSender(ep)

	sender.Dispatch(context.Background(), testEvent())

	if rec.count() != 2 {
		t.Errorf("requests = %d, want 2 (initial attempt plus one retry)", rec.count())
	}
}

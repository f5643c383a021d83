package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/slavayosome/seriously-ai-sub000/adapters/clock"
	"github.com/slavayosome/seriously-ai-sub000/adapters/idgen"
	"github.com/slavayosome/seriously-ai-sub000/app"
	"github.com/slavayosome/seriously-ai-sub000/domain/webhook"
)

type captureDispatcher struct {
	events []webhook.Event
}

func (d *captureDispatcher) Dispatch(_ context.Context, event webhook.Event) {
	d.events = append(d.events, event)
}

func (d *captureDispatcher) types() []webhook.EventType {
	out := make([]webhook.EventType, len(d.events))
	for i, e := range d.events {
		out[i] = e.Type
	}
	return out
}

func newAlertFixture(t *testing.T) (*app.Monitor, *app.AlertNotifier, *captureDispatcher) {
	t.Helper()

	clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	thresholds := app.DefaultThresholds()
	thresholds.MemoryCeilingMB = 1 << 20 // Keep the memory alert out of these tests

	monitor := app.NewMonitor(thresholds, clk, zerolog.Nop())
	dispatcher := &captureDispatcher{}
	notifier := app.NewAlertNotifier(app.AlertDeps{
		Monitor:    monitor,
		Dispatcher: dispatcher,
		IDGen:      idgen.NewSequential("evt"),
		Clock:      clk,
		Logger:     zerolog.Nop(),
	})
	return monitor, notifier, dispatcher
}

func TestAlertNotifier_RaisesOnThresholdViolation(t *testing.T) {
	monitor, notifier, dispatcher := newAlertFixture(t)

	// Every request fails: 100% error rate, critical alert
	for i := 0; i < 4; i++ {
		monitor.StartRequest("r", "/research/report")
		monitor.CompleteRequest("r", "paid", false, "store_connection_error")
	}

	notifier.Check(context.Background())

	types := dispatcher.types()
	if len(types) != 1 || types[0] != webhook.EventAlertCritical {
		t.Fatalf("events = %v, want single alert.critical", types)
	}
	if dispatcher.events[0].Data["level"] != "critical" {
		t.Errorf("level = %v, want critical", dispatcher.events[0].Data["level"])
	}
}

func TestAlertNotifier_DoesNotRepeatActiveAlerts(t *testing.T) {
	monitor, notifier, dispatcher := newAlertFixture(t)

	monitor.StartRequest("r", "/research/report")
	monitor.CompleteRequest("r", "paid", false, "timeout_error")

	notifier.Check(context.Background())
	notifier.Check(context.Background())

	if len(dispatcher.events) != 1 {
		t.Errorf("events = %d, want 1 (no re-send while alert stays active)", len(dispatcher.events))
	}
}

func TestAlertNotifier_ResolvesClearedAlerts(t *testing.T) {
	monitor, notifier, dispatcher := newAlertFixture(t)

	monitor.StartRequest("r", "/research/report")
	monitor.CompleteRequest("r", "paid", false, "timeout_error")
	notifier.Check(context.Background())

	monitor.Reset()
	notifier.Check(context.Background())

	types := dispatcher.types()
	if len(types) != 2 || types[1] != webhook.EventAlertResolved {
		t.Fatalf("events = %v, want [alert.critical alert.resolved]", types)
	}
}

func TestAlertNotifier_QuietWhenHealthy(t *testing.T) {
	monitor, notifier, dispatcher := newAlertFixture(t)

	monitor.StartRequest("r", "/pricing")
	monitor.CompleteRequest("r", "public", true, "")
	monitor.RecordCacheHit("route_classification")

	notifier.Check(context.Background())

	if len(dispatcher.events) != 0 {
		t.Errorf("events = %v, want none for a healthy snapshot", dispatcher.types())
	}
}

func TestAlertNotifier_NotifySendsOneOffEvent(t *testing.T) {
	_, notifier, dispatcher := newAlertFixture(t)

	notifier.Notify(context.Background(), webhook.EventConfigReload, map[string]interface{}{
		"pipelines": 3,
	})

	types := dispatcher.types()
	if len(types) != 1 || types[0] != webhook.EventConfigReload {
		t.Fatalf("events = %v, want single config.reload", types)
	}
	if dispatcher.events[0].ID == "" {
		t.Error("event ID not set")
	}
}

func TestAlertNotifier_WarningForLowCacheHitRate(t *testing.T) {
	monitor, notifier, dispatcher := newAlertFixture(t)

	// All misses: 0% hit rate, below the 70% floor
	for i := 0; i < 5; i++ {
		monitor.RecordCacheMiss("route_classification")
	}
	monitor.StartRequest("r", "/pricing")
	monitor.CompleteRequest("r", "public", true, "")

	notifier.Check(context.Background())

	types := dispatcher.types()
	if len(types) != 1 || types[0] != webhook.EventAlertWarning {
		t.Fatalf("events = %v, want single alert.warning", types)
	}
}

package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/slavayosome/seriously-ai-sub000/domain/webhook"
	"github.com/slavayosome/seriously-ai-sub000/ports"
)

// DefaultAlertInterval is how often the notifier polls the monitor.
const DefaultAlertInterval = 30 * time.Second

// AlertNotifier polls the performance monitor and dispatches webhook
// events on alert transitions: one event when an alert first appears,
// one when it clears. Steady-state alerts are not re-sent.
type AlertNotifier struct {
	monitor    *Monitor
	dispatcher ports.AlertDispatcher
	idGen      ports.IDGenerator
	clock      ports.Clock
	logger     zerolog.Logger
	interval   time.Duration

	active map[string]string // alert message -> level
}

// AlertDeps contains dependencies for AlertNotifier.
type AlertDeps struct {
	Monitor    *Monitor
	Dispatcher ports.AlertDispatcher
	IDGen      ports.IDGenerator
	Clock      ports.Clock
	Logger     zerolog.Logger
	Interval   time.Duration
}

// NewAlertNotifier creates an alert notifier.
func NewAlertNotifier(deps AlertDeps) *AlertNotifier {
	interval := deps.Interval
	if interval <= 0 {
		interval = DefaultAlertInterval
	}
	return &AlertNotifier{
		monitor:    deps.Monitor,
		dispatcher: deps.Dispatcher,
		idGen:      deps.IDGen,
		clock:      deps.Clock,
		logger:     deps.Logger.With().Str("component", "alert_notifier").Logger(),
		interval:   interval,
		active:     make(map[string]string),
	}
}

// Run polls until the context is cancelled.
func (n *AlertNotifier) Run(ctx context.Context) {
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.Check(ctx)
		}
	}
}

// Check evaluates the current snapshot once and dispatches transitions.
func (n *AlertNotifier) Check(ctx context.Context) {
	snap := n.monitor.Export()

	current := make(map[string]string, len(snap.Alerts))
	for _, alert := range snap.Alerts {
		current[alert.Message] = alert.Level
	}

	// Newly raised alerts
	for message, level := range current {
		if _, seen := n.active[message]; seen {
			continue
		}
		eventType := webhook.EventAlertWarning
		if level == "critical" {
			eventType = webhook.EventAlertCritical
		}
		n.dispatch(ctx, eventType, map[string]interface{}{
			"level":         level,
			"message":       message,
			"errorRate":     snap.Stats.ErrorRate,
			"cacheHitRate":  snap.Stats.CacheHitRate,
			"memoryMb":      snap.Stats.MemoryMB,
			"totalRequests": snap.Stats.TotalRequests,
		})
		n.logger.Info().Str("level", level).Str("message", message).Msg("alert raised")
	}

	// Cleared alerts
	for message, level := range n.active {
		if _, still := current[message]; still {
			continue
		}
		n.dispatch(ctx, webhook.EventAlertResolved, map[string]interface{}{
			"level":   level,
			"message": message,
		})
		n.logger.Info().Str("message", message).Msg("alert resolved")
	}

	n.active = current
}

// Notify dispatches a one-off event outside the alert lifecycle,
// such as a configuration reload or a test delivery.
func (n *AlertNotifier) Notify(ctx context.Context, eventType webhook.EventType, data map[string]interface{}) {
	n.dispatch(ctx, eventType, data)
}

func (n *AlertNotifier) dispatch(ctx context.Context, eventType webhook.EventType, data map[string]interface{}) {
	n.dispatcher.Dispatch(ctx, webhook.Event{
		ID:        n.idGen.New(),
		Type:      eventType,
		Timestamp: n.clock.Now(),
		Data:      data,
	})
}

// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"time"

	"github.com/slavayosome/seriously-ai-sub000/domain/credit"
	"github.com/slavayosome/seriously-ai-sub000/domain/webhook"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers (request ids).
type IDGenerator interface {
	New() string
}

// CacheRecorder receives cache hit/miss events. The performance monitor
// implements this; caches depend on the capability instead of the monitor
// so the dependency graph stays acyclic.
type CacheRecorder interface {
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
}

// OutcomeRecorder receives gate-check outcomes and categorized failures
// for metrics export. The Prometheus collector implements this; services
// take it as an optional dependency so the adapter stays swappable.
type OutcomeRecorder interface {
	RecordCreditCheck(allowed bool)
	RecordPlanCheck(allowed bool)
	RecordFault(category, severity string)
}

// NopCacheRecorder discards all cache events.
type NopCacheRecorder struct{}

func (NopCacheRecorder) RecordCacheHit(string)  {}
func (NopCacheRecorder) RecordCacheMiss(string) {}

// Ensure interface compliance.
var _ CacheRecorder = NopCacheRecorder{}

// -----------------------------------------------------------------------------
// External Collaborator Ports
// -----------------------------------------------------------------------------

// Session is the identity provider's view of one session (value type).
type Session struct {
	Valid         bool
	UserID        string
	Email         string
	EmailVerified bool
	ExpiresAt     time.Time
}

// SessionStore resolves a session token to a session. Issuance and
// verification internals belong to the identity provider, not this core.
type SessionStore interface {
	Get(ctx context.Context, token string) (Session, error)
}

// WalletStore reads per-user credit wallets. The write path (deduction,
// refill) lives outside this core; writers must invalidate the matching
// cache entry after every successful mutation.
type WalletStore interface {
	Get(ctx context.Context, userID string) (credit.Wallet, error)
}

// PipelineRegistry supplies dynamically priced pipeline operations,
// registered into the credit configuration at startup or on reload.
type PipelineRegistry interface {
	List(ctx context.Context) ([]credit.PipelineCost, error)
}

// AlertDispatcher delivers alert events to registered webhook endpoints.
type AlertDispatcher interface {
	Dispatch(ctx context.Context, event webhook.Event)
}

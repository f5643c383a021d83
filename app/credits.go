package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/slavayosome/seriously-ai-sub000/domain/credit"
	"github.com/slavayosome/seriously-ai-sub000/ports"
)

// WalletCacheName identifies the wallet cache in recorder events.
const WalletCacheName = "credit_wallet"

// DefaultWalletTTL bounds wallet staleness between explicit invalidations.
const DefaultWalletTTL = 60 * time.Second

// LedgerChecker answers "has enough credits" questions against the external
// wallet store, caching per-user wallets for a short TTL. Store failures
// are converted into fail-closed results, never surfaced as errors.
type LedgerChecker struct {
	wallets  ports.WalletStore
	costs    *CreditConfig
	cache    *TTLCache[credit.Wallet]
	outcomes ports.OutcomeRecorder
	logger   zerolog.Logger
}

// LedgerDeps contains dependencies for LedgerChecker.
type LedgerDeps struct {
	Wallets  ports.WalletStore
	Costs    *CreditConfig
	TTL      time.Duration
	Size     int
	Recorder ports.CacheRecorder
	Outcomes ports.OutcomeRecorder
	Logger   zerolog.Logger
}

// NewLedgerChecker creates a credit ledger checker.
func NewLedgerChecker(deps LedgerDeps) *LedgerChecker {
	ttl := deps.TTL
	if ttl <= 0 {
		ttl = DefaultWalletTTL
	}
	return &LedgerChecker{
		wallets:  deps.Wallets,
		costs:    deps.Costs,
		cache:    NewTTLCache[credit.Wallet](WalletCacheName, deps.Size, ttl, deps.Recorder),
		outcomes: deps.Outcomes,
		logger:   deps.Logger.With().Str("component", "ledger_checker").Logger(),
	}
}

// wallet returns the user's wallet from cache or store.
func (l *LedgerChecker) wallet(ctx context.Context, userID string) (credit.Wallet, error) {
	if w, ok := l.cache.Get(userID); ok {
		return w, nil
	}
	w, err := l.wallets.Get(ctx, userID)
	if err != nil {
		return credit.Wallet{}, err
	}
	l.cache.Set(userID, w)
	return w, nil
}

// Check evaluates whether the user can afford one operation.
// On store failure the result is fail-closed: no credits, zero balance,
// starter tier.
func (l *LedgerChecker) Check(ctx context.Context, userID, operation string) credit.CheckResult {
	required := l.costs.CostOf(operation)

	w, err := l.wallet(ctx, userID)
	if err != nil {
		l.logger.Warn().Err(err).Str("user_id", userID).Str("operation", operation).
			Msg("wallet fetch failed, failing closed")
		l.record(false)
		return credit.FailClosed(required)
	}

	res := credit.Evaluate(w, required)
	l.record(res.HasCredits)
	return res
}

func (l *LedgerChecker) record(allowed bool) {
	if l.outcomes != nil {
		l.outcomes.RecordCreditCheck(allowed)
	}
}

// HasAnyCredits is a cheap short-circuit for low-cost gating: true when the
// balance is positive. Fails closed on store error.
func (l *LedgerChecker) HasAnyCredits(ctx context.Context, userID string) bool {
	w, err := l.wallet(ctx, userID)
	if err != nil {
		l.logger.Warn().Err(err).Str("user_id", userID).Msg("wallet fetch failed, failing closed")
		return false
	}
	return w.Balance > 0
}

// CheckMultiple evaluates several operations against one wallet fetch,
// avoiding a store round-trip per operation. Results are keyed by operation.
func (l *LedgerChecker) CheckMultiple(ctx context.Context, userID string, operations []string) map[string]credit.CheckResult {
	results := make(map[string]credit.CheckResult, len(operations))

	w, err := l.wallet(ctx, userID)
	if err != nil {
		l.logger.Warn().Err(err).Str("user_id", userID).Msg("wallet fetch failed, failing closed")
		for _, op := range operations {
			results[op] = credit.FailClosed(l.costs.CostOf(op))
		}
		return results
	}

	for _, op := range operations {
		results[op] = credit.Evaluate(w, l.costs.CostOf(op))
	}
	return results
}

// Invalidate drops the user's cached wallet. External mutators call this
// synchronously after every balance-changing transaction.
func (l *LedgerChecker) Invalidate(userID string) {
	l.cache.Invalidate(userID)
}

// ClearCache drops all cached wallets (test determinism).
func (l *LedgerChecker) ClearCache() {
	l.cache.Clear()
}

// CacheStats exposes wallet cache statistics.
func (l *LedgerChecker) CacheStats() CacheStats {
	return l.cache.Stats()
}

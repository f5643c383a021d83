package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/slavayosome/seriously-ai-sub000/domain/plan"
	"github.com/slavayosome/seriously-ai-sub000/ports"
)

// TierCacheName identifies the plan-tier cache in recorder events.
const TierCacheName = "plan_tier"

// DefaultTierTTL is longer than the wallet TTL: tier changes are far rarer
// than balance changes.
const DefaultTierTTL = 5 * time.Minute

// AccessChecker answers plan-tier feature entitlement questions. The tier
// is read from the wallet store and cached independently of the wallet
// balance. Fails closed to the starter tier on any lookup error.
type AccessChecker struct {
	wallets  ports.WalletStore
	cache    *TTLCache[plan.Tier]
	outcomes ports.OutcomeRecorder
	logger   zerolog.Logger
}

// AccessDeps contains dependencies for AccessChecker.
type AccessDeps struct {
	Wallets  ports.WalletStore
	TTL      time.Duration
	Size     int
	Recorder ports.CacheRecorder
	Outcomes ports.OutcomeRecorder
	Logger   zerolog.Logger
}

// NewAccessChecker creates a plan access checker.
func NewAccessChecker(deps AccessDeps) *AccessChecker {
	ttl := deps.TTL
	if ttl <= 0 {
		ttl = DefaultTierTTL
	}
	return &AccessChecker{
		wallets:  deps.Wallets,
		cache:    NewTTLCache[plan.Tier](TierCacheName, deps.Size, ttl, deps.Recorder),
		outcomes: deps.Outcomes,
		logger:   deps.Logger.With().Str("component", "access_checker").Logger(),
	}
}

// tier returns the user's plan tier from cache or store.
func (a *AccessChecker) tier(ctx context.Context, userID string) (plan.Tier, error) {
	if t, ok := a.cache.Get(userID); ok {
		return t, nil
	}
	w, err := a.wallets.Get(ctx, userID)
	if err != nil {
		return plan.TierStarter, err
	}
	t := plan.Parse(string(w.PlanTier))
	a.cache.Set(userID, t)
	return t, nil
}

// CheckFeatureAccess evaluates whether the user's tier grants a feature.
func (a *AccessChecker) CheckFeatureAccess(ctx context.Context, userID string, feature plan.Feature) plan.AccessResult {
	t, err := a.tier(ctx, userID)
	if err != nil {
		a.logger.Warn().Err(err).Str("user_id", userID).Str("feature", string(feature)).
			Msg("tier fetch failed, failing closed")
		a.record(false)
		return plan.AccessResult{
			HasAccess:      false,
			UserPlan:       plan.TierStarter,
			UpgradeOptions: plan.UpgradeOptions(plan.TierStarter),
		}
	}
	res := plan.CheckAccess(t, feature)
	a.record(res.HasAccess)
	return res
}

func (a *AccessChecker) record(allowed bool) {
	if a.outcomes != nil {
		a.outcomes.RecordPlanCheck(allowed)
	}
}

// CheckPathAccess detects the feature gated by a path and delegates.
// Paths exercising no known feature are allowed.
func (a *AccessChecker) CheckPathAccess(ctx context.Context, userID, path string) plan.AccessResult {
	feature, ok := plan.DetectFeature(path)
	if !ok {
		t, err := a.tier(ctx, userID)
		if err != nil {
			t = plan.TierStarter
		}
		return plan.AccessResult{HasAccess: true, UserPlan: t}
	}
	return a.CheckFeatureAccess(ctx, userID, feature)
}

// Invalidate drops the user's cached tier. Called by external mutators
// after plan changes.
func (a *AccessChecker) Invalidate(userID string) {
	a.cache.Invalidate(userID)
}

// ClearCache drops all cached tiers (test determinism).
func (a *AccessChecker) ClearCache() {
	a.cache.Clear()
}

// CacheStats exposes tier cache statistics.
func (a *AccessChecker) CacheStats() CacheStats {
	return a.cache.Stats()
}

package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/slavayosome/seriously-ai-sub000/app"
	"github.com/slavayosome/seriously-ai-sub000/domain/credit"
	"github.com/slavayosome/seriously-ai-sub000/domain/plan"
)

func newAccess(store *fakeWalletStore) *app.AccessChecker {
	return app.NewAccessChecker(app.AccessDeps{
		Wallets: store,
		Logger:  zerolog.Nop(),
	})
}

func TestAccessChecker_FeatureAccess(t *testing.T) {
	store := &fakeWalletStore{wallets: map[string]credit.Wallet{
		"starter": {UserID: "starter", Balance: 10, PlanTier: plan.TierStarter},
		"pro":     {UserID: "pro", Balance: 10, PlanTier: plan.TierPro},
	}}
	checker := newAccess(store)

	res := checker.CheckFeatureAccess(context.Background(), "starter", plan.FeatureResearchAdvanced)
	if res.HasAccess {
		t.Error("starter must not access research_advanced")
	}
	if res.RequiredPlan != plan.TierPlus {
		t.Errorf("RequiredPlan = %s, want plus", res.RequiredPlan)
	}
	if len(res.UpgradeOptions) != 2 {
		t.Errorf("UpgradeOptions = %v, want [plus pro]", res.UpgradeOptions)
	}

	res = checker.CheckFeatureAccess(context.Background(), "pro", plan.FeatureResearchAdvanced)
	if !res.HasAccess {
		t.Error("pro must access research_advanced")
	}
}

func TestAccessChecker_PathAccess(t *testing.T) {
	store := &fakeWalletStore{wallets: map[string]credit.Wallet{
		"starter": {UserID: "starter", Balance: 10, PlanTier: plan.TierStarter},
	}}
	checker := newAccess(store)

	res := checker.CheckPathAccess(context.Background(), "starter", "/research/bulk")
	if res.HasAccess {
		t.Error("starter must not access /research/bulk")
	}
	if res.RequiredPlan != plan.TierPro {
		t.Errorf("RequiredPlan = %s, want pro", res.RequiredPlan)
	}

	// Paths gating no known feature are allowed.
	res = checker.CheckPathAccess(context.Background(), "starter", "/dashboard/reports")
	if !res.HasAccess {
		t.Error("ungated path must be allowed")
	}
}

func TestAccessChecker_RecordsCheckOutcomes(t *testing.T) {
	store := &fakeWalletStore{wallets: map[string]credit.Wallet{
		"starter": {UserID: "starter", Balance: 10, PlanTier: plan.TierStarter},
	}}
	outcomes := &fakeOutcomes{}
	checker := app.NewAccessChecker(app.AccessDeps{
		Wallets:  store,
		Outcomes: outcomes,
		Logger:   zerolog.Nop(),
	})

	checker.CheckPathAccess(context.Background(), "starter", "/research/bulk")
	checker.CheckPathAccess(context.Background(), "starter", "/research/query")

	if outcomes.planDenied != 1 || outcomes.planAllowed != 1 {
		t.Errorf("recorded denied/allowed = %d/%d, want 1/1",
			outcomes.planDenied, outcomes.planAllowed)
	}

	// Ungated paths run no entitlement check and record nothing.
	checker.CheckPathAccess(context.Background(), "starter", "/dashboard/reports")
	if outcomes.planDenied+outcomes.planAllowed != 2 {
		t.Error("ungated path must not record a plan check")
	}
}

func TestAccessChecker_FailClosed(t *testing.T) {
	store := &fakeWalletStore{err: errors.New("connection refused")}
	checker := newAccess(store)

	res := checker.CheckFeatureAccess(context.Background(), "u1", plan.FeatureResearchBasic)
	if res.HasAccess {
		t.Error("lookup failure must fail closed")
	}
	if res.UserPlan != plan.TierStarter {
		t.Errorf("UserPlan = %s, want starter", res.UserPlan)
	}
}

func TestAccessChecker_TierCache(t *testing.T) {
	store := &fakeWalletStore{wallets: map[string]credit.Wallet{
		"u1": {UserID: "u1", Balance: 10, PlanTier: plan.TierPlus},
	}}
	checker := newAccess(store)

	checker.CheckFeatureAccess(context.Background(), "u1", plan.FeatureAnalytics)
	checker.CheckFeatureAccess(context.Background(), "u1", plan.FeatureResearchAdvanced)

	if calls := store.calls.Load(); calls != 1 {
		t.Errorf("store calls = %d, want 1 (tier cached)", calls)
	}

	checker.Invalidate("u1")
	checker.CheckFeatureAccess(context.Background(), "u1", plan.FeatureAnalytics)
	if calls := store.calls.Load(); calls != 2 {
		t.Errorf("store calls = %d, want 2 after invalidation", calls)
	}
}

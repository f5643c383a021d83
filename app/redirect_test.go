package app_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/slavayosome/seriously-ai-sub000/adapters/clock"
	"github.com/slavayosome/seriously-ai-sub000/app"
	"github.com/slavayosome/seriously-ai-sub000/domain/credit"
	"github.com/slavayosome/seriously-ai-sub000/domain/plan"
	"github.com/slavayosome/seriously-ai-sub000/domain/protection"
	"github.com/slavayosome/seriously-ai-sub000/domain/redirect"
)

func newRedirector(t *testing.T) *app.Redirector {
	t.Helper()
	clk := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return app.NewRedirector(app.DefaultDestinations(), clk, zerolog.Nop())
}

func locationQuery(t *testing.T, res app.Response) (string, url.Values) {
	t.Helper()
	u, err := url.Parse(res.Location)
	if err != nil {
		t.Fatalf("parse location %q: %v", res.Location, err)
	}
	return u.Path, u.Query()
}

func TestRedirector_UnauthenticatedOnAuthenticatedRoute(t *testing.T) {
	r := newRedirector(t)

	res := r.Unauthenticated("/dashboard/settings", "tab=profile", protection.LevelAuthenticated)

	if res.Status != 307 {
		t.Errorf("status = %d, want 307", res.Status)
	}
	path, q := locationQuery(t, res)
	if path != "/auth/login" {
		t.Errorf("path = %q, want /auth/login", path)
	}
	if q.Get("reason") != "unauthenticated" {
		t.Errorf("reason = %q, want unauthenticated", q.Get("reason"))
	}
	if q.Get("redirectTo") != "/dashboard/settings" {
		t.Errorf("redirectTo = %q", q.Get("redirectTo"))
	}
	if q.Get("tab") != "profile" {
		t.Errorf("original query not preserved: tab = %q", q.Get("tab"))
	}
	if q.Get("ts") == "" {
		t.Error("ts parameter missing")
	}
}

func TestRedirector_UnauthenticatedOnPaidRouteLandsOnSignup(t *testing.T) {
	r := newRedirector(t)

	res := r.Unauthenticated("/research/report", "", protection.LevelPaid)

	path, _ := locationQuery(t, res)
	if path != "/auth/signup" {
		t.Errorf("path = %q, want /auth/signup for paid route", path)
	}
}

func TestRedirector_InsufficientCredits(t *testing.T) {
	r := newRedirector(t)

	res := r.InsufficientCredits("/research/report", "research_pipeline", credit.CheckResult{
		RequiredCredits: 5,
		CurrentBalance:  2,
	})

	path, q := locationQuery(t, res)
	if path != "/settings/billing" {
		t.Errorf("path = %q, want /settings/billing", path)
	}
	if res.Reason != redirect.ReasonInsufficientCredits {
		t.Errorf("reason = %q, want insufficient_credits", res.Reason)
	}
	if q.Get("creditsRequired") != "5" || q.Get("creditsAvailable") != "2" {
		t.Errorf("credit params = %q/%q, want 5/2", q.Get("creditsRequired"), q.Get("creditsAvailable"))
	}
	if q.Get("feature") != "research" {
		t.Errorf("feature = %q, want research", q.Get("feature"))
	}
}

func TestRedirector_InsufficientCreditsZeroBalance(t *testing.T) {
	r := newRedirector(t)

	res := r.InsufficientCredits("/internal/jobs", "batch", credit.CheckResult{
		RequiredCredits: 1,
		CurrentBalance:  0,
	})

	if res.Reason != redirect.ReasonNoCredits {
		t.Errorf("reason = %q, want no_credits for empty wallet", res.Reason)
	}
	_, q := locationQuery(t, res)
	if q.Has("feature") {
		t.Errorf("feature = %q, want absent for non-gated path", q.Get("feature"))
	}
}

func TestRedirector_PlanUpgrade(t *testing.T) {
	r := newRedirector(t)

	res := r.PlanUpgrade("/research/bulk", plan.AccessResult{
		HasAccess:    false,
		UserPlan:     plan.TierStarter,
		RequiredPlan: plan.TierPro,
	}, plan.FeatureResearchBulk)

	path, q := locationQuery(t, res)
	if path != "/pricing" {
		t.Errorf("path = %q, want /pricing", path)
	}
	if q.Get("currentPlan") != "starter" || q.Get("requiredPlan") != "pro" {
		t.Errorf("plan params = %q/%q, want starter/pro", q.Get("currentPlan"), q.Get("requiredPlan"))
	}
	if q.Get("upgrade") != "true" {
		t.Errorf("upgrade = %q, want true", q.Get("upgrade"))
	}
}

func TestRedirector_EmailUnverified(t *testing.T) {
	r := newRedirector(t)

	res := r.EmailUnverified("/dashboard")

	path, q := locationQuery(t, res)
	if path != "/auth/verify-email" {
		t.Errorf("path = %q, want /auth/verify-email", path)
	}
	if q.Get("reason") != "email_unverified" {
		t.Errorf("reason = %q, want email_unverified", q.Get("reason"))
	}
}

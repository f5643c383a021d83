package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/slavayosome/seriously-ai-sub000/adapters/clock"
	guardhttp "github.com/slavayosome/seriously-ai-sub000/adapters/http"
	"github.com/slavayosome/seriously-ai-sub000/adapters/idgen"
	"github.com/slavayosome/seriously-ai-sub000/adapters/memory"
	"github.com/slavayosome/seriously-ai-sub000/app"
	"github.com/slavayosome/seriously-ai-sub000/domain/credit"
	"github.com/slavayosome/seriously-ai-sub000/domain/plan"
	"github.com/slavayosome/seriously-ai-sub000/domain/protection"
	"github.com/slavayosome/seriously-ai-sub000/ports"
)

func newTestRouter(t *testing.T) (http.Handler, *memory.SessionStore, *memory.WalletStore, *app.Monitor) {
	t.Helper()

	logger := zerolog.Nop()
	clk := clock.Real{}
	monitor := app.NewMonitor(app.DefaultThresholds(), clk, logger)

	sessions := memory.NewSessionStore()
	wallets := memory.NewWalletStore()

	costs := app.NewCreditConfig(nil, logger)
	classifier := app.NewClassifier(protection.DefaultPatterns(), 100, monitor, logger)
	credits := app.NewLedgerChecker(app.LedgerDeps{
		Wallets:  wallets,
		Costs:    costs,
		Recorder: monitor,
		Logger:   logger,
	})
	plans := app.NewAccessChecker(app.AccessDeps{
		Wallets:  wallets,
		Recorder: monitor,
		Logger:   logger,
	})
	redirector := app.NewRedirector(app.DefaultDestinations(), clk, logger)
	errors := app.NewErrorHandler(app.ErrorHandlerDeps{
		Redirector: redirector,
		IDGen:      idgen.NewSequential("err"),
		Clock:      clk,
		Logger:     logger,
		Critical:   logger,
	})
	guard := app.NewGuard(app.GuardDeps{
		Classifier: classifier,
		Credits:    credits,
		Plans:      plans,
		Costs:      costs,
		Redirector: redirector,
		Errors:     errors,
		Monitor:    monitor,
		Sessions:   sessions,
		Clock:      clk,
		IDGen:      idgen.NewSequential("req"),
		Logger:     logger,
	})

	handler := guardhttp.NewGuardHandler(guard, "session", logger)
	health := guardhttp.NewHealthHandler(nil)
	router := guardhttp.NewRouter(handler, health, logger, guardhttp.RouterConfig{
		Monitoring: guardhttp.NewMonitoringHandler(monitor),
	})
	return router, sessions, wallets, monitor
}

func seedUser(sessions *memory.SessionStore, wallets *memory.WalletStore, token, userID string, balance int, tier plan.Tier) {
	sessions.Put(token, ports.Session{
		Valid:         true,
		UserID:        userID,
		Email:         userID + "@example.com",
		EmailVerified: true,
		ExpiresAt:     time.Now().Add(time.Hour),
	})
	wallets.Put(credit.Wallet{UserID: userID, Balance: balance, PlanTier: tier})
}

func TestRouter_PublicPathAllowed(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/pricing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body["status"] != "allowed" {
		t.Errorf("status = %s, want allowed", body["status"])
	}
}

func TestRouter_UnauthenticatedRedirectsToLogin(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/settings", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", rec.Code)
	}
	loc, err := rec.Result().Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc.Path != "/auth/login" {
		t.Errorf("Location path = %s, want /auth/login", loc.Path)
	}
	q := loc.Query()
	if q.Get("reason") != "unauthenticated" {
		t.Errorf("reason = %s, want unauthenticated", q.Get("reason"))
	}
	if q.Get("redirectTo") != "/dashboard/settings" {
		t.Errorf("redirectTo = %s, want /dashboard/settings", q.Get("redirectTo"))
	}
}

func TestRouter_UnauthenticatedPaidRedirectsToSignup(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/research/report", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", rec.Code)
	}
	loc, _ := rec.Result().Location()
	if loc.Path != "/auth/signup" {
		t.Errorf("Location path = %s, want /auth/signup", loc.Path)
	}
}

func TestRouter_AuthenticatedRequestPassesThrough(t *testing.T) {
	router, sessions, wallets, _ := newTestRouter(t)
	seedUser(sessions, wallets, "tok-1", "u1", 10, plan.TierPro)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "tok-1"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body["userId"] != "u1" {
		t.Errorf("userId = %s, want u1", body["userId"])
	}
}

func TestRouter_BearerTokenAccepted(t *testing.T) {
	router, sessions, wallets, _ := newTestRouter(t)
	seedUser(sessions, wallets, "tok-api", "u2", 10, plan.TierPro)

	req := httptest.NewRequest(http.MethodGet, "/api/research/report", nil)
	req.Header.Set("Authorization", "Bearer tok-api")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRouter_NoCreditsRedirectsToBilling(t *testing.T) {
	router, sessions, wallets, _ := newTestRouter(t)
	seedUser(sessions, wallets, "tok-broke", "u3", 0, plan.TierPro)

	req := httptest.NewRequest(http.MethodGet, "/research/report", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "tok-broke"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", rec.Code)
	}
	loc, _ := rec.Result().Location()
	if loc.Path != "/settings/billing" {
		t.Errorf("Location path = %s, want /settings/billing", loc.Path)
	}
	if loc.Query().Get("reason") != "no_credits" {
		t.Errorf("reason = %s, want no_credits", loc.Query().Get("reason"))
	}
}

func TestRouter_PlanUpgradeRedirectsToPricing(t *testing.T) {
	router, sessions, wallets, _ := newTestRouter(t)
	seedUser(sessions, wallets, "tok-starter", "u4", 100, plan.TierStarter)

	req := httptest.NewRequest(http.MethodGet, "/research/bulk", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "tok-starter"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", rec.Code)
	}
	loc, _ := rec.Result().Location()
	if loc.Path != "/pricing" {
		t.Errorf("Location path = %s, want /pricing", loc.Path)
	}
	q := loc.Query()
	if q.Get("requiredPlan") != "pro" {
		t.Errorf("requiredPlan = %s, want pro", q.Get("requiredPlan"))
	}
	if q.Get("upgrade") != "true" {
		t.Errorf("upgrade = %s, want true", q.Get("upgrade"))
	}
}

func TestRouter_Healthz(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body guardhttp.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %s, want ok", body.Status)
	}
}

func TestRouter_Version(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body guardhttp.VersionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Service != "guard" {
		t.Errorf("service = %s, want guard", body.Service)
	}
}

func TestRouter_MonitoringSnapshot(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	// Drive one request through the guard first
	req := httptest.NewRequest(http.MethodGet, "/pricing", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/internal/monitoring", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var snap app.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if snap.Stats.TotalRequests != 1 {
		t.Errorf("TotalRequests = %d, want 1", snap.Stats.TotalRequests)
	}
	if snap.SystemInfo.GoVersion == "" {
		t.Error("SystemInfo.GoVersion must be set")
	}
}

func TestRouter_MonitoringReset(t *testing.T) {
	router, _, _, monitor := newTestRouter(t)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pricing", nil))
	if monitor.Stats().TotalRequests != 1 {
		t.Fatal("expected one recorded request")
	}

	req := httptest.NewRequest(http.MethodPost, "/internal/monitoring/reset", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if monitor.Stats().TotalRequests != 0 {
		t.Errorf("TotalRequests after reset = %d, want 0", monitor.Stats().TotalRequests)
	}
}

func TestRouter_CheckEndpoint(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/internal/check?path=/research/report", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body guardhttp.CheckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Allow {
		t.Error("unauthenticated paid check must not allow")
	}
	if body.Level != "paid" {
		t.Errorf("level = %s, want paid", body.Level)
	}
	if body.Reason != "unauthenticated" {
		t.Errorf("reason = %s, want unauthenticated", body.Reason)
	}
}

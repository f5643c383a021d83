package fault_test

import (
	"errors"
	"testing"

	"github.com/slavayosome/seriously-ai-sub000/domain/fault"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want fault.Category
	}{
		{"session expired", errors.New("session expired for user"), fault.CategorySessionExpired},
		{"jwt expired", errors.New("JWT expired at 2026-01-01"), fault.CategorySessionExpired},
		{"invalid session", errors.New("invalid session cookie"), fault.CategorySessionInvalid},
		{"malformed token", errors.New("token is malformed"), fault.CategoryTokenMalformed},
		{"rate limit", errors.New("rate limit exceeded for key"), fault.CategoryRateLimited},
		{"too many requests", errors.New("too many requests"), fault.CategoryTooManyRequests},
		{"plan upgrade", errors.New("plan upgrade required"), fault.CategoryPlanUpgrade},
		{"credits", errors.New("insufficient credits: need 5"), fault.CategoryCreditShortfall},
		{"permission", errors.New("permission denied"), fault.CategoryPermissionDenied},
		{"timeout", errors.New("query timed out"), fault.CategoryStoreTimeout},
		{"session expired beats timeout", errors.New("session expired: request timed out"), fault.CategorySessionExpired},
		{"connection timeout is a timeout", errors.New("connection timed out"), fault.CategoryStoreTimeout},
		{"connection refused", errors.New("dial tcp: connection refused"), fault.CategoryStoreConnection},
		{"sql failure", errors.New("sql: no rows in result set"), fault.CategoryStoreQueryFailed},
		{"backend", errors.New("supabase returned 500"), fault.CategoryBackendService},
		{"network", errors.New("network unreachable"), fault.CategoryNetwork},
		{"validation", errors.New("validation failed on field email"), fault.CategoryValidation},
		{"unmatched", errors.New("wat"), fault.CategoryUnknown},
		{"nil error", nil, fault.CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fault.Categorize(tt.err); got != tt.want {
				t.Errorf("Categorize(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestConfigFor_Table(t *testing.T) {
	tests := []struct {
		category fault.Category
		severity fault.Severity
		status   int
		redirect bool
	}{
		{fault.CategorySessionInvalid, fault.SeverityLow, 401, true},
		{fault.CategorySessionExpired, fault.SeverityLow, 401, true},
		{fault.CategoryTokenMalformed, fault.SeverityMedium, 401, true},
		{fault.CategoryPermissionDenied, fault.SeverityLow, 403, true},
		{fault.CategoryFeatureGated, fault.SeverityLow, 403, true},
		{fault.CategoryPlanUpgrade, fault.SeverityLow, 402, true},
		{fault.CategoryCreditShortfall, fault.SeverityLow, 402, true},
		{fault.CategoryStoreConnection, fault.SeverityHigh, 503, false},
		{fault.CategoryStoreQueryFailed, fault.SeverityMedium, 500, false},
		{fault.CategoryStoreTimeout, fault.SeverityMedium, 504, false},
		{fault.CategoryBackendService, fault.SeverityHigh, 502, false},
		{fault.CategoryNetwork, fault.SeverityMedium, 503, false},
		{fault.CategoryValidation, fault.SeverityLow, 400, false},
		{fault.CategoryRateLimited, fault.SeverityMedium, 429, false},
		{fault.CategoryTooManyRequests, fault.SeverityMedium, 429, false},
		{fault.CategoryUnknown, fault.SeverityHigh, 500, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			cfg := fault.ConfigFor(tt.category)
			if cfg.Severity != tt.severity {
				t.Errorf("Severity = %s, want %s", cfg.Severity, tt.severity)
			}
			if cfg.HTTPStatus != tt.status {
				t.Errorf("HTTPStatus = %d, want %d", cfg.HTTPStatus, tt.status)
			}
			if cfg.Redirect != tt.redirect {
				t.Errorf("Redirect = %v, want %v", cfg.Redirect, tt.redirect)
			}
			if cfg.UserMessage == "" {
				t.Error("UserMessage must not be empty")
			}
		})
	}
}

func TestConfigFor_UnknownCategoryFallsBack(t *testing.T) {
	cfg := fault.ConfigFor("never_heard_of_it")
	if cfg.HTTPStatus != 500 || cfg.Severity != fault.SeverityHigh {
		t.Errorf("unlisted category config = %+v, want unknown-error config", cfg)
	}
}

func TestShouldTriggerCircuitBreaker(t *testing.T) {
	if !fault.ShouldTriggerCircuitBreaker(fault.CategoryStoreConnection) {
		t.Error("store connection failures must trip the breaker")
	}
	if !fault.ShouldTriggerCircuitBreaker(fault.CategoryBackendService) {
		t.Error("backend service failures must trip the breaker")
	}
	if fault.ShouldTriggerCircuitBreaker(fault.CategoryValidation) {
		t.Error("validation errors must not trip the breaker")
	}
	if fault.ShouldTriggerCircuitBreaker(fault.CategorySessionExpired) {
		t.Error("expired sessions must not trip the breaker")
	}
}

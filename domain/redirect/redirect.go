// Package redirect provides redirect value types and pure URL construction.
// Every protective redirect carries a machine-readable reason code and a
// timestamp as query parameters; the client UI depends on this contract.
package redirect

import (
	"net/url"
	"strconv"
	"time"

	"github.com/slavayosome/seriously-ai-sub000/domain/protection"
)

// Reason is a machine-readable cause code attached to a redirect.
type Reason string

const (
	ReasonUnauthenticated     Reason = "unauthenticated"
	ReasonSessionExpired      Reason = "session_expired"
	ReasonSessionError        Reason = "session_error"
	ReasonEmailUnverified     Reason = "email_unverified"
	ReasonNoCredits           Reason = "no_credits"
	ReasonInsufficientCredits Reason = "insufficient_credits"
	ReasonPlanUpgradeRequired Reason = "plan_upgrade_required"
	ReasonPermissionDenied    Reason = "permission_denied"
)

// Default destinations for protective redirects. Overridable via config.
const (
	DestLogin       = "/auth/login"
	DestSignup      = "/auth/signup"
	DestVerifyEmail = "/auth/verify-email"
	DestBilling     = "/settings/billing"
	DestPricing     = "/pricing"
)

// Config describes one redirect to build (value type).
type Config struct {
	Destination   string
	Reason        Reason
	Message       string
	RequestPath   string            // Original path, carried as redirectTo
	RequestQuery  string            // Original raw query string
	PreserveQuery bool              // Merge original query keys not already set
	Params        map[string]string // Context-specific extra parameters
}

// Response is a built redirect (value type).
type Response struct {
	Status   int
	Location string
	Reason   Reason
}

// Build constructs the redirect location URL. The reason and a millisecond
// timestamp are always appended; the original path rides along as redirectTo
// so the client can bounce back after resolving the failure.
// This is a PURE function.
func Build(cfg Config, now time.Time) Response {
	dest, err := url.Parse(cfg.Destination)
	if err != nil {
		dest = &url.URL{Path: DestLogin}
	}

	q := dest.Query()
	q.Set("reason", string(cfg.Reason))
	q.Set("ts", strconv.FormatInt(now.UnixMilli(), 10))
	if cfg.RequestPath != "" {
		q.Set("redirectTo", cfg.RequestPath)
	}
	if cfg.Message != "" {
		q.Set("message", cfg.Message)
	}
	for k, v := range cfg.Params {
		q.Set(k, v)
	}

	if cfg.PreserveQuery && cfg.RequestQuery != "" {
		if orig, err := url.ParseQuery(cfg.RequestQuery); err == nil {
			for k, vs := range orig {
				if q.Has(k) {
					continue
				}
				for _, v := range vs {
					q.Add(k, v)
				}
			}
		}
	}

	dest.RawQuery = q.Encode()
	return Response{
		Status:   307,
		Location: dest.String(),
		Reason:   cfg.Reason,
	}
}

// Decision is the outcome of the pure gate predicate.
type Decision struct {
	ShouldRedirect bool
	Reason         Reason
}

// Decide encodes the redirect precedence for a classified route:
// public routes never redirect; a missing session always wins over an
// unverified email, which wins over insufficient credits; credits only
// matter on paid routes.
// This is a PURE function.
func Decide(level protection.Level, hasSession, hasCredits, isVerified bool) Decision {
	if level == protection.LevelPublic {
		return Decision{}
	}
	if !hasSession {
		return Decision{ShouldRedirect: true, Reason: ReasonUnauthenticated}
	}
	if !isVerified {
		return Decision{ShouldRedirect: true, Reason: ReasonEmailUnverified}
	}
	if level == protection.LevelPaid && !hasCredits {
		return Decision{ShouldRedirect: true, Reason: ReasonInsufficientCredits}
	}
	return Decision{}
}

// CreditReason picks the reason code for a failed credit check:
// a zero balance reads as no_credits, a short balance as insufficient_credits.
// This is a PURE function.
func CreditReason(balance int) Reason {
	if balance <= 0 {
		return ReasonNoCredits
	}
	return ReasonInsufficientCredits
}

package app

import (
	"strconv"

	"github.com/rs/zerolog"

	"github.com/slavayosome/seriously-ai-sub000/domain/credit"
	"github.com/slavayosome/seriously-ai-sub000/domain/plan"
	"github.com/slavayosome/seriously-ai-sub000/domain/protection"
	"github.com/slavayosome/seriously-ai-sub000/domain/redirect"
	"github.com/slavayosome/seriously-ai-sub000/ports"
)

// Response is a protective response produced by the guard (value type).
// A non-empty Location means redirect; otherwise Body is a JSON error.
type Response struct {
	Status   int
	Location string
	Reason   redirect.Reason
	Headers  map[string]string
	Body     []byte
}

// IsRedirect reports whether the response is a redirect.
func (r Response) IsRedirect() bool {
	return r.Location != ""
}

// Destinations holds the navigation surfaces protective redirects land on.
type Destinations struct {
	Login       string
	Signup      string
	VerifyEmail string
	Billing     string
	Pricing     string
}

// DefaultDestinations returns the built-in destination set.
func DefaultDestinations() Destinations {
	return Destinations{
		Login:       redirect.DestLogin,
		Signup:      redirect.DestSignup,
		VerifyEmail: redirect.DestVerifyEmail,
		Billing:     redirect.DestBilling,
		Pricing:     redirect.DestPricing,
	}
}

// Redirector builds context-sensitive protective redirects.
type Redirector struct {
	dests  Destinations
	clock  ports.Clock
	logger zerolog.Logger
}

// NewRedirector creates a redirect builder.
func NewRedirector(dests Destinations, clock ports.Clock, logger zerolog.Logger) *Redirector {
	return &Redirector{
		dests:  dests,
		clock:  clock,
		logger: logger.With().Str("component", "redirector").Logger(),
	}
}

// Build constructs a redirect from an explicit config.
func (r *Redirector) Build(cfg redirect.Config) Response {
	res := redirect.Build(cfg, r.clock.Now())
	r.logger.Debug().
		Str("reason", string(cfg.Reason)).
		Str("destination", cfg.Destination).
		Str("path", cfg.RequestPath).
		Msg("built redirect")
	return Response{Status: res.Status, Location: res.Location, Reason: res.Reason}
}

// Unauthenticated redirects a sessionless request. Paid routes land on
// sign-up rather than login; a new visitor hitting a paid surface is a
// conversion opportunity, not a returning user.
func (r *Redirector) Unauthenticated(path, query string, level protection.Level) Response {
	dest := r.dests.Login
	message := "Please sign in to continue."
	if level == protection.LevelPaid {
		dest = r.dests.Signup
		message = "Create an account to use this feature."
	}
	return r.Build(redirect.Config{
		Destination:   dest,
		Reason:        redirect.ReasonUnauthenticated,
		Message:       message,
		RequestPath:   path,
		RequestQuery:  query,
		PreserveQuery: true,
	})
}

// EmailUnverified redirects a session whose email is not yet verified.
func (r *Redirector) EmailUnverified(path string) Response {
	return r.Build(redirect.Config{
		Destination: r.dests.VerifyEmail,
		Reason:      redirect.ReasonEmailUnverified,
		Message:     "Please verify your email address to continue.",
		RequestPath: path,
	})
}

// SessionError redirects a request whose session could not be evaluated.
func (r *Redirector) SessionError(path string) Response {
	return r.Build(redirect.Config{
		Destination: r.dests.Login,
		Reason:      redirect.ReasonSessionError,
		Message:     "There was a problem with your session. Please sign in again.",
		RequestPath: path,
	})
}

// InsufficientCredits redirects a paid request the wallet cannot cover,
// carrying the operation and balance context for the billing surface.
func (r *Redirector) InsufficientCredits(path, operation string, res credit.CheckResult) Response {
	params := map[string]string{
		"operation":        operation,
		"creditsRequired":  strconv.Itoa(res.RequiredCredits),
		"creditsAvailable": strconv.Itoa(res.CurrentBalance),
	}
	if feature, ok := plan.DetectFeature(path); ok {
		params["feature"] = plan.Surface(feature)
	}
	return r.Build(redirect.Config{
		Destination: r.dests.Billing,
		Reason:      redirect.CreditReason(res.CurrentBalance),
		Message:     "You need more credits to run this operation.",
		RequestPath: path,
		Params:      params,
	})
}

// PlanUpgrade redirects a request whose plan tier does not grant the
// feature, carrying the current and required tiers for the pricing surface.
func (r *Redirector) PlanUpgrade(path string, res plan.AccessResult, feature plan.Feature) Response {
	params := map[string]string{
		"currentPlan": string(res.UserPlan),
		"feature":     plan.Surface(feature),
		"upgrade":     "true",
	}
	if res.RequiredPlan != "" {
		params["requiredPlan"] = string(res.RequiredPlan)
	}
	return r.Build(redirect.Config{
		Destination: r.dests.Pricing,
		Reason:      redirect.ReasonPlanUpgradeRequired,
		Message:     "Your plan does not include this feature.",
		RequestPath: path,
		Params:      params,
	})
}

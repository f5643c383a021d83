package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/slavayosome/seriously-ai-sub000/domain/plan"
	"github.com/slavayosome/seriously-ai-sub000/domain/protection"
	"github.com/slavayosome/seriously-ai-sub000/domain/redirect"
	"github.com/slavayosome/seriously-ai-sub000/ports"
)

// GuardRequest is the request-intercepting entry point's view of one
// request (value type).
type GuardRequest struct {
	Method       string
	Path         string
	Query        string
	SessionToken string
}

// Verdict is the guard's decision for one request (value type).
// When Allow is false, Response carries the protective redirect or error.
type Verdict struct {
	Allow     bool
	Level     protection.Level
	UserID    string
	RequestID string
	Response  Response
}

// Guard runs the full request-protection pipeline: route classification,
// session gating, credit and plan checks, and protective responses.
type Guard struct {
	classifier *Classifier
	credits    *LedgerChecker
	plans      *AccessChecker
	costs      *CreditConfig
	redirector *Redirector
	errors     *ErrorHandler
	monitor    *Monitor
	sessions   ports.SessionStore
	clock      ports.Clock
	idGen      ports.IDGenerator
	logger     zerolog.Logger
}

// GuardDeps contains dependencies for Guard.
type GuardDeps struct {
	Classifier *Classifier
	Credits    *LedgerChecker
	Plans      *AccessChecker
	Costs      *CreditConfig
	Redirector *Redirector
	Errors     *ErrorHandler
	Monitor    *Monitor
	Sessions   ports.SessionStore
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     zerolog.Logger
}

// NewGuard creates the guard service.
func NewGuard(deps GuardDeps) *Guard {
	return &Guard{
		classifier: deps.Classifier,
		credits:    deps.Credits,
		plans:      deps.Plans,
		costs:      deps.Costs,
		redirector: deps.Redirector,
		errors:     deps.Errors,
		monitor:    deps.Monitor,
		sessions:   deps.Sessions,
		clock:      deps.Clock,
		idGen:      deps.IDGen,
		logger:     deps.Logger.With().Str("component", "guard").Logger(),
	}
}

// Evaluate decides whether a request may proceed. It never returns an
// error: failures become protective responses.
func (g *Guard) Evaluate(ctx context.Context, req GuardRequest) Verdict {
	requestID := g.idGen.New()
	g.monitor.StartRequest(requestID, req.Path)

	level := g.classifier.Classify(req.Path)
	g.monitor.Checkpoint(requestID, "route_match")

	verdict := g.evaluate(ctx, requestID, level, req)
	verdict.Level = level
	verdict.RequestID = requestID

	success := verdict.Allow || verdict.Response.IsRedirect()
	errorCategory := ""
	if !success {
		errorCategory = verdict.Response.Headers["X-Error-Category"]
	}
	g.monitor.CompleteRequest(requestID, string(level), success, errorCategory)

	return verdict
}

func (g *Guard) evaluate(ctx context.Context, requestID string, level protection.Level, req GuardRequest) Verdict {
	if level == protection.LevelPublic {
		return Verdict{Allow: true}
	}

	// Session gate. Absent tokens skip the store call entirely.
	if req.SessionToken == "" {
		return Verdict{Response: g.redirector.Unauthenticated(req.Path, req.Query, level)}
	}

	session, err := g.sessions.Get(ctx, req.SessionToken)
	g.monitor.Checkpoint(requestID, "auth_check")
	if err != nil {
		return Verdict{Response: g.errors.Handle(req.Path, level, err)}
	}
	if !session.Valid {
		return Verdict{Response: g.redirector.Unauthenticated(req.Path, req.Query, level)}
	}
	if !session.ExpiresAt.IsZero() && g.clock.Now().After(session.ExpiresAt) {
		return Verdict{Response: g.redirector.Build(redirect.Config{
			Destination: g.redirector.dests.Login,
			Reason:      redirect.ReasonSessionExpired,
			Message:     "Your session has expired. Please sign in again.",
			RequestPath: req.Path,
		})}
	}
	if !session.EmailVerified {
		return Verdict{Response: g.redirector.EmailUnverified(req.Path)}
	}

	if level != protection.LevelPaid {
		return Verdict{Allow: true, UserID: session.UserID}
	}

	// Paid gate: credits first, then plan entitlement.
	operation := g.costs.OperationFromPath(req.Path)
	creditRes := g.credits.Check(ctx, session.UserID, operation)
	g.monitor.Checkpoint(requestID, "credit_check")
	if !creditRes.HasCredits {
		return Verdict{
			UserID:   session.UserID,
			Response: g.redirector.InsufficientCredits(req.Path, operation, creditRes),
		}
	}

	access := g.plans.CheckPathAccess(ctx, session.UserID, req.Path)
	g.monitor.Checkpoint(requestID, "plan_check")
	if !access.HasAccess {
		feature, _ := plan.DetectFeature(req.Path)
		return Verdict{
			UserID:   session.UserID,
			Response: g.redirector.PlanUpgrade(req.Path, access, feature),
		}
	}

	return Verdict{Allow: true, UserID: session.UserID}
}

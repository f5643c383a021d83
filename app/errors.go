package app

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/slavayosome/seriously-ai-sub000/domain/fault"
	"github.com/slavayosome/seriously-ai-sub000/domain/protection"
	"github.com/slavayosome/seriously-ai-sub000/domain/redirect"
	"github.com/slavayosome/seriously-ai-sub000/ports"
)

// ErrorBody is the structured JSON error response (stable contract).
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the categorized failure, without internals.
type ErrorDetail struct {
	Category  string `json:"category"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
	Timestamp string `json:"timestamp"`
}

// ErrorHandler classifies arbitrary failures and turns them into either a
// protective redirect (recoverable categories) or a structured JSON error.
// Raw error detail only ever reaches the log, never the response.
type ErrorHandler struct {
	redirector *Redirector
	idGen      ports.IDGenerator
	clock      ports.Clock
	outcomes   ports.OutcomeRecorder
	logger     zerolog.Logger
	critical   zerolog.Logger // Dedicated sink for critical-severity failures
}

// ErrorHandlerDeps contains dependencies for ErrorHandler.
type ErrorHandlerDeps struct {
	Redirector *Redirector
	IDGen      ports.IDGenerator
	Clock      ports.Clock
	Outcomes   ports.OutcomeRecorder
	Logger     zerolog.Logger
	Critical   zerolog.Logger
}

// NewErrorHandler creates an error handler.
func NewErrorHandler(deps ErrorHandlerDeps) *ErrorHandler {
	return &ErrorHandler{
		redirector: deps.Redirector,
		idGen:      deps.IDGen,
		clock:      deps.Clock,
		outcomes:   deps.Outcomes,
		logger:     deps.Logger.With().Str("component", "error_handler").Logger(),
		critical:   deps.Critical.With().Str("component", "error_handler").Bool("critical", true).Logger(),
	}
}

// Categorize maps an error onto the closed taxonomy.
func (h *ErrorHandler) Categorize(err error) fault.Category {
	return fault.Categorize(err)
}

// ShouldTriggerCircuitBreaker flags failures the external circuit breaker
// should count.
func (h *ErrorHandler) ShouldTriggerCircuitBreaker(err error) bool {
	return fault.ShouldTriggerCircuitBreaker(fault.Categorize(err))
}

// Handle categorizes err and produces the response for it. Recoverable
// categories become navigation redirects; the rest become structured JSON
// with a request id for correlation.
func (h *ErrorHandler) Handle(path string, level protection.Level, err error) Response {
	category := fault.Categorize(err)
	cfg := fault.ConfigFor(category)
	requestID := h.idGen.New()

	h.log(cfg, category, requestID, path, err)
	if h.outcomes != nil {
		h.outcomes.RecordFault(string(category), string(cfg.Severity))
	}

	if cfg.Redirect {
		return h.redirectFor(category, path, level)
	}

	body, _ := json.Marshal(ErrorBody{Error: ErrorDetail{
		Category:  string(category),
		Severity:  string(cfg.Severity),
		Message:   cfg.UserMessage,
		RequestID: requestID,
		Timestamp: h.clock.Now().UTC().Format(time.RFC3339),
	}})

	return Response{
		Status: cfg.HTTPStatus,
		Headers: map[string]string{
			"Content-Type":     "application/json",
			"X-Request-ID":     requestID,
			"X-Error-Category": string(category),
			"X-Error-Severity": string(cfg.Severity),
		},
		Body: body,
	}
}

// redirectFor routes recoverable categories through the redirector with
// category-specific enrichment.
func (h *ErrorHandler) redirectFor(category fault.Category, path string, level protection.Level) Response {
	params := map[string]string{"category": string(category)}

	switch category {
	case fault.CategorySessionExpired:
		return h.redirector.Build(redirect.Config{
			Destination: h.redirector.dests.Login,
			Reason:      redirect.ReasonSessionExpired,
			Message:     fault.ConfigFor(category).UserMessage,
			RequestPath: path,
			Params:      params,
		})
	case fault.CategorySessionInvalid, fault.CategoryTokenMalformed:
		return h.redirector.Build(redirect.Config{
			Destination: h.redirector.dests.Login,
			Reason:      redirect.ReasonSessionError,
			Message:     fault.ConfigFor(category).UserMessage,
			RequestPath: path,
			Params:      params,
		})
	case fault.CategoryCreditShortfall:
		return h.redirector.Build(redirect.Config{
			Destination: h.redirector.dests.Billing,
			Reason:      redirect.ReasonInsufficientCredits,
			Message:     fault.ConfigFor(category).UserMessage,
			RequestPath: path,
			Params:      params,
		})
	case fault.CategoryPlanUpgrade, fault.CategoryFeatureGated:
		params["upgrade"] = "true"
		return h.redirector.Build(redirect.Config{
			Destination: h.redirector.dests.Pricing,
			Reason:      redirect.ReasonPlanUpgradeRequired,
			Message:     fault.ConfigFor(category).UserMessage,
			RequestPath: path,
			Params:      params,
		})
	case fault.CategoryPermissionDenied:
		dest := h.redirector.dests.Login
		if level == protection.LevelPaid {
			dest = h.redirector.dests.Pricing
		}
		return h.redirector.Build(redirect.Config{
			Destination: dest,
			Reason:      redirect.ReasonPermissionDenied,
			Message:     fault.ConfigFor(category).UserMessage,
			RequestPath: path,
			Params:      params,
		})
	default:
		return h.redirector.SessionError(path)
	}
}

// log writes the categorized failure at the category's configured level.
// Critical severity additionally goes to the dedicated critical sink.
func (h *ErrorHandler) log(cfg fault.Config, category fault.Category, requestID, path string, err error) {
	var ev *zerolog.Event
	switch cfg.LogLevel {
	case fault.LogInfo:
		ev = h.logger.Info()
	case fault.LogWarn:
		ev = h.logger.Warn()
	default:
		ev = h.logger.Error()
	}
	ev.Err(err).
		Str("category", string(category)).
		Str("severity", string(cfg.Severity)).
		Str("request_id", requestID).
		Str("path", path).
		Msg("request failed")

	if cfg.Severity == fault.SeverityCritical {
		h.critical.Error().Err(err).
			Str("category", string(category)).
			Str("request_id", requestID).
			Str("path", path).
			Msg("critical failure")
	}
}

// Package fault provides a closed error taxonomy for the request guard.
// Arbitrary upstream failures are categorized by an ordered rule list, and
// each category carries a fixed response configuration.
package fault

// Category identifies one kind of failure. The set is closed: every
// category has an exhaustive entry in ConfigFor.
type Category string

const (
	CategorySessionInvalid    Category = "auth_session_invalid"
	CategorySessionExpired    Category = "auth_session_expired"
	CategoryTokenMalformed    Category = "auth_token_malformed"
	CategoryPermissionDenied  Category = "insufficient_permissions"
	CategoryFeatureGated      Category = "feature_not_available"
	CategoryPlanUpgrade       Category = "plan_upgrade_required"
	CategoryCreditShortfall   Category = "credit_insufficient"
	CategoryStoreConnection   Category = "database_connection"
	CategoryStoreQueryFailed  Category = "database_query_failed"
	CategoryStoreTimeout      Category = "database_timeout"
	CategoryBackendService    Category = "backend_service_error"
	CategoryNetwork           Category = "network_error"
	CategoryValidation        Category = "validation_error"
	CategoryRateLimited       Category = "rate_limit_exceeded"
	CategoryTooManyRequests   Category = "too_many_requests"
	CategoryUnknown           Category = "unknown_error"
)

// Severity grades how serious a categorized failure is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// LogLevel selects the log call used for a category.
type LogLevel string

const (
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// Config is the fixed response configuration for one category.
type Config struct {
	Severity    Severity
	HTTPStatus  int
	UserMessage string
	Redirect    bool // Recover into a navigation flow instead of an error body
	LogLevel    LogLevel
}

// ConfigFor returns the response configuration for a category.
// The switch is exhaustive over the closed taxonomy; anything else is
// treated as unknown.
func ConfigFor(c Category) Config {
	switch c {
	case CategorySessionInvalid:
		return Config{SeverityLow, 401, "Your session is invalid. Please sign in again.", true, LogInfo}
	case CategorySessionExpired:
		return Config{SeverityLow, 401, "Your session has expired. Please sign in again.", true, LogInfo}
	case CategoryTokenMalformed:
		return Config{SeverityMedium, 401, "Your session could not be read. Please sign in again.", true, LogWarn}
	case CategoryPermissionDenied:
		return Config{SeverityLow, 403, "You do not have permission to access this resource.", true, LogInfo}
	case CategoryFeatureGated:
		return Config{SeverityLow, 403, "This feature is not available on your plan.", true, LogInfo}
	case CategoryPlanUpgrade:
		return Config{SeverityLow, 402, "A plan upgrade is required for this feature.", true, LogInfo}
	case CategoryCreditShortfall:
		return Config{SeverityLow, 402, "You do not have enough credits for this operation.", true, LogInfo}
	case CategoryStoreConnection:
		return Config{SeverityHigh, 503, "The service is temporarily unavailable. Please try again shortly.", false, LogError}
	case CategoryStoreQueryFailed:
		return Config{SeverityMedium, 500, "Something went wrong. Please try again.", false, LogError}
	case CategoryStoreTimeout:
		return Config{SeverityMedium, 504, "The request took too long. Please try again.", false, LogWarn}
	case CategoryBackendService:
		return Config{SeverityHigh, 502, "A backing service failed. Please try again shortly.", false, LogError}
	case CategoryNetwork:
		return Config{SeverityMedium, 503, "A network error occurred. Please try again.", false, LogWarn}
	case CategoryValidation:
		return Config{SeverityLow, 400, "The request was invalid.", false, LogInfo}
	case CategoryRateLimited:
		return Config{SeverityMedium, 429, "Too many requests. Please slow down.", false, LogWarn}
	case CategoryTooManyRequests:
		return Config{SeverityMedium, 429, "Too many requests. Please slow down.", false, LogWarn}
	case CategoryUnknown:
		return Config{SeverityHigh, 500, "An unexpected error occurred.", false, LogError}
	default:
		return Config{SeverityHigh, 500, "An unexpected error occurred.", false, LogError}
	}
}

// ShouldTriggerCircuitBreaker reports whether a categorized failure should
// be signalled to the external circuit breaker: critical severity or any
// store/backend connectivity category.
func ShouldTriggerCircuitBreaker(c Category) bool {
	if ConfigFor(c).Severity == SeverityCritical {
		return true
	}
	switch c {
	case CategoryStoreConnection, CategoryBackendService:
		return true
	default:
		return false
	}
}

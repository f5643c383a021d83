package fault

import "strings"

// rule is one (predicate, category) pair. Rules run in declaration order
// against the lowercased error text, so precedence between overlapping
// phrasings is explicit and testable rule by rule.
type rule struct {
	category Category
	match    func(msg string) bool
}

func anyOf(subs ...string) func(string) bool {
	return func(msg string) bool {
		for _, s := range subs {
			if strings.Contains(msg, s) {
				return true
			}
		}
		return false
	}
}

var rules = []rule{
	// Session phrasing first: "session expired" must not fall through to
	// the generic timeout rules below.
	{CategorySessionExpired, anyOf("session expired", "session has expired", "jwt expired", "token expired", "token is expired")},
	{CategorySessionInvalid, anyOf("session invalid", "invalid session", "session not found", "no session", "not authenticated", "unauthenticated")},
	{CategoryTokenMalformed, anyOf("malformed", "token contains an invalid", "invalid token", "could not parse token", "segment")},

	{CategoryRateLimited, anyOf("rate limit", "rate-limit", "ratelimit")},
	{CategoryTooManyRequests, anyOf("too many requests", "429")},

	{CategoryPlanUpgrade, anyOf("plan upgrade", "upgrade required", "requires plan")},
	{CategoryCreditShortfall, anyOf("insufficient credits", "no credits", "credit balance")},
	{CategoryFeatureGated, anyOf("feature not available", "feature disabled")},
	{CategoryPermissionDenied, anyOf("permission", "forbidden", "not allowed")},

	// Timeout before connection: "connection timed out" reads as a timeout.
	{CategoryStoreTimeout, anyOf("timeout", "timed out", "deadline exceeded", "context deadline")},
	{CategoryStoreConnection, anyOf("connection refused", "connection reset", "connect:", "cannot connect", "database is locked", "no such host")},
	{CategoryStoreQueryFailed, anyOf("sql", "query", "constraint", "no rows")},
	{CategoryBackendService, anyOf("supabase", "backend error", "upstream", "bad gateway", "502")},
	{CategoryNetwork, anyOf("network", "broken pipe", "eof")},
	{CategoryValidation, anyOf("validation", "invalid input", "bad request", "missing required")},
}

// Categorize maps an arbitrary error to a taxonomy category via the ordered
// rule list. A nil or unmatched error categorizes as unknown.
func Categorize(err error) Category {
	if err == nil {
		return CategoryUnknown
	}
	msg := strings.ToLower(err.Error())
	for _, r := range rules {
		if r.match(msg) {
			return r.category
		}
	}
	return CategoryUnknown
}

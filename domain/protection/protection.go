// Package protection provides route protection levels and pure matching functions.
package protection

import "strings"

// Level classifies how strongly a route is protected.
type Level string

const (
	LevelPublic        Level = "public"        // No session required
	LevelAuthenticated Level = "authenticated" // Valid session required
	LevelPaid          Level = "paid"          // Valid session + credits + plan entitlement
)

// Rank returns the restrictiveness rank of a level (higher = more restrictive).
func Rank(l Level) int {
	switch l {
	case LevelPaid:
		return 2
	case LevelAuthenticated:
		return 1
	case LevelPublic:
		return 0
	default:
		return 0
	}
}

// PatternTable groups route patterns by protection level.
// A pattern is either an exact path or a path ending in "/*", which matches
// the base path itself and anything nested under it.
type PatternTable struct {
	Paid          []string
	Authenticated []string
	Public        []string
}

// DefaultPatterns returns the built-in pattern table.
func DefaultPatterns() PatternTable {
	return PatternTable{
		Paid: []string{
			"/research/*",
			"/pipelines/*",
			"/insights/generate",
			"/drafts/generate",
			"/api/research/*",
			"/api/pipelines/*",
		},
		Authenticated: []string{
			"/dashboard/*",
			"/settings/*",
			"/drafts/*",
			"/insights/*",
			"/api/user/*",
		},
		Public: []string{
			"/",
			"/auth/*",
			"/pricing",
			"/about",
			"/api/health",
			"/api/webhooks/*",
		},
	}
}

// MatchPattern reports whether a single pattern matches a path.
// Matching is case-sensitive and does not normalize trailing slashes:
// "/Research" and "/research/" are distinct from "/research".
// This is a PURE function.
func MatchPattern(pattern, path string) bool {
	if base, ok := strings.CutSuffix(pattern, "/*"); ok {
		return path == base || strings.HasPrefix(path, base+"/")
	}
	return path == pattern
}

// matchAny reports whether any pattern in the group matches.
func matchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if MatchPattern(p, path) {
			return true
		}
	}
	return false
}

// Classify maps a path to its protection level using the most-restrictive-wins
// rule: paid patterns are consulted first, then authenticated, then public.
// Unmatched paths default to LevelAuthenticated, never to public or paid.
// This is a PURE function.
func Classify(t PatternTable, path string) Level {
	if matchAny(t.Paid, path) {
		return LevelPaid
	}
	if matchAny(t.Authenticated, path) {
		return LevelAuthenticated
	}
	if matchAny(t.Public, path) {
		return LevelPublic
	}
	return LevelAuthenticated
}

package protection_test

import (
	"testing"

	"github.com/slavayosome/seriously-ai-sub000/domain/protection"
)

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		{"exact match", "/pricing", "/pricing", true},
		{"exact no match", "/pricing", "/pricing/pro", false},
		{"wildcard matches base", "/research/*", "/research", true},
		{"wildcard matches nested", "/research/*", "/research/anything", true},
		{"wildcard matches deep", "/research/*", "/research/a/b/c", true},
		{"wildcard no sibling match", "/research/*", "/researcher", false},
		{"case sensitive", "/research/*", "/Research", false},
		{"trailing slash not normalized", "/pricing", "/pricing/", false},
		{"root wildcard", "/*", "/anything", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := protection.MatchPattern(tt.pattern, tt.path); got != tt.want {
				t.Errorf("MatchPattern(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
			}
		})
	}
}

func TestClassify_Precedence(t *testing.T) {
	// A path matching both paid and authenticated groups must classify as paid.
	table := protection.PatternTable{
		Paid:          []string{"/research/*"},
		Authenticated: []string{"/research/*", "/dashboard/*"},
		Public:        []string{"/"},
	}

	if got := protection.Classify(table, "/research/bulk"); got != protection.LevelPaid {
		t.Errorf("Classify(/research/bulk) = %v, want paid", got)
	}
}

func TestClassify(t *testing.T) {
	table := protection.DefaultPatterns()

	tests := []struct {
		path string
		want protection.Level
	}{
		{"/research", protection.LevelPaid},
		{"/research/anything", protection.LevelPaid},
		{"/dashboard", protection.LevelAuthenticated},
		{"/dashboard/reports", protection.LevelAuthenticated},
		{"/", protection.LevelPublic},
		{"/auth/login", protection.LevelPublic},
		{"/pricing", protection.LevelPublic},
		// Unknown routes never default to public or paid.
		{"/totally/unknown", protection.LevelAuthenticated},
		{"/RESEARCH", protection.LevelAuthenticated},
		{"/pricing/", protection.LevelAuthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := protection.Classify(table, tt.path); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestRank(t *testing.T) {
	if protection.Rank(protection.LevelPaid) <= protection.Rank(protection.LevelAuthenticated) {
		t.Error("paid must rank above authenticated")
	}
	if protection.Rank(protection.LevelAuthenticated) <= protection.Rank(protection.LevelPublic) {
		t.Error("authenticated must rank above public")
	}
}

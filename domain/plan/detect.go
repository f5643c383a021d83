package plan

import (
	"regexp"
	"strings"
)

// featureRule maps a compiled path pattern to the feature it gates.
// Rules are evaluated in order; more specific patterns come first.
type featureRule struct {
	pattern *regexp.Regexp
	feature Feature
}

var featureRules = []featureRule{
	{regexp.MustCompile(`^(/api)?/research/bulk(/|$)`), FeatureResearchBulk},
	{regexp.MustCompile(`^(/api)?/research/advanced(/|$)`), FeatureResearchAdvanced},
	{regexp.MustCompile(`^(/api)?/research(/|$)`), FeatureResearchBasic},
	{regexp.MustCompile(`^(/api)?/insights/realtime(/|$)`), FeatureInsightsRealtime},
	{regexp.MustCompile(`^(/api)?/insights(/|$)`), FeatureInsightsDaily},
	{regexp.MustCompile(`^(/api)?/drafts/unlimited(/|$)`), FeatureDraftsUnlimited},
	{regexp.MustCompile(`^(/api)?/drafts(/|$)`), FeatureDraftsBasic},
	{regexp.MustCompile(`^(/api)?/analytics(/|$)`), FeatureAnalytics},
	{regexp.MustCompile(`^(/api)?/team(/|$)`), FeatureTeamSeats},
	{regexp.MustCompile(`^/api/v[0-9]+(/|$)`), FeatureAPIAccess},
}

// DetectFeature maps a request path to the feature it exercises.
// Paths matching no rule are not feature-gated.
// This is a PURE function.
func DetectFeature(path string) (Feature, bool) {
	for _, rule := range featureRules {
		if rule.pattern.MatchString(path) {
			return rule.feature, true
		}
	}
	return "", false
}

// Surface returns the product surface a feature belongs to, used in
// redirect query parameters ("research_bulk" -> "research").
// This is a PURE function.
func Surface(f Feature) string {
	name := string(f)
	if i := strings.IndexByte(name, '_'); i > 0 {
		return name[:i]
	}
	return name
}

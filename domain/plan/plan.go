// Package plan provides plan tier value types and pure entitlement functions.
// Feature entitlement is cumulative: each tier grants everything the tier
// below it grants, plus its own additions.
package plan

// Tier represents a subscription tier, ordered by entitlement.
type Tier string

const (
	TierStarter Tier = "starter"
	TierPlus    Tier = "plus"
	TierPro     Tier = "pro"
)

// Order returns all tiers in ascending entitlement order.
func Order() []Tier {
	return []Tier{TierStarter, TierPlus, TierPro}
}

// Rank returns the position of a tier in the entitlement order.
// Unknown tiers rank as starter.
func Rank(t Tier) int {
	switch t {
	case TierPro:
		return 2
	case TierPlus:
		return 1
	default:
		return 0
	}
}

// Parse normalizes a stored tier string. Unknown values map to starter,
// which keeps every downstream decision fail-closed.
func Parse(s string) Tier {
	switch Tier(s) {
	case TierStarter, TierPlus, TierPro:
		return Tier(s)
	default:
		return TierStarter
	}
}

// Feature is a gated capability detected from a request path.
type Feature string

const (
	FeatureResearchBasic    Feature = "research_basic"
	FeatureResearchAdvanced Feature = "research_advanced"
	FeatureResearchBulk     Feature = "research_bulk"
	FeatureInsightsDaily    Feature = "insights_daily"
	FeatureInsightsRealtime Feature = "insights_realtime"
	FeatureDraftsBasic      Feature = "drafts_basic"
	FeatureDraftsUnlimited  Feature = "drafts_unlimited"
	FeatureAnalytics        Feature = "analytics"
	FeatureTeamSeats        Feature = "team_seats"
	FeatureAPIAccess        Feature = "api_access"
)

// additions lists the features each tier adds on top of the tier below it.
// The cumulative set for a tier is the union of its additions and every
// lower tier's additions.
func additions(t Tier) []Feature {
	switch t {
	case TierStarter:
		return []Feature{
			FeatureResearchBasic,
			FeatureInsightsDaily,
			FeatureDraftsBasic,
		}
	case TierPlus:
		return []Feature{
			FeatureResearchAdvanced,
			FeatureAnalytics,
			FeatureDraftsUnlimited,
		}
	case TierPro:
		return []Feature{
			FeatureResearchBulk,
			FeatureInsightsRealtime,
			FeatureTeamSeats,
			FeatureAPIAccess,
		}
	default:
		return nil
	}
}

// CumulativeSet returns every feature granted at the given tier.
// This is a PURE function.
func CumulativeSet(t Tier) []Feature {
	var set []Feature
	for _, tier := range Order() {
		set = append(set, additions(tier)...)
		if tier == t {
			break
		}
	}
	return set
}

// Grants reports whether a tier's cumulative set contains a feature.
// This is a PURE function.
func Grants(t Tier, f Feature) bool {
	for _, granted := range CumulativeSet(t) {
		if granted == f {
			return true
		}
	}
	return false
}

// MinimumTier returns the lowest tier whose cumulative set contains the
// feature. Walking tiers in ascending order enforces monotonic inheritance
// structurally: a feature granted at a tier is granted at every tier above.
// This is a PURE function.
func MinimumTier(f Feature) (Tier, bool) {
	for _, tier := range Order() {
		if Grants(tier, f) {
			return tier, true
		}
	}
	return "", false
}

// UpgradeOptions returns all tiers strictly above the given tier, ascending.
// Pro has no upgrade options.
// This is a PURE function.
func UpgradeOptions(t Tier) []Tier {
	var opts []Tier
	for _, tier := range Order() {
		if Rank(tier) > Rank(t) {
			opts = append(opts, tier)
		}
	}
	return opts
}

// AccessResult is the outcome of a feature access check (value type).
type AccessResult struct {
	HasAccess      bool
	UserPlan       Tier
	RequiredPlan   Tier // Set when access is denied and a minimum tier exists
	UpgradeOptions []Tier
}

// CheckAccess evaluates whether a tier may use a feature.
// This is a PURE function.
func CheckAccess(userTier Tier, f Feature) AccessResult {
	if Grants(userTier, f) {
		return AccessResult{HasAccess: true, UserPlan: userTier}
	}

	result := AccessResult{
		HasAccess:      false,
		UserPlan:       userTier,
		UpgradeOptions: UpgradeOptions(userTier),
	}
	if required, ok := MinimumTier(f); ok {
		result.RequiredPlan = required
	}
	return result
}

// Package credit provides credit wallet value types and pure check functions.
// Wallets are owned by the billing backend; this package only evaluates them.
package credit

import (
	"strings"
	"time"

	"github.com/slavayosome/seriously-ai-sub000/domain/plan"
)

// Wallet is a user's pre-paid credit record (read-only value type).
type Wallet struct {
	UserID     string
	Balance    int
	PlanTier   plan.Tier
	NextRefill time.Time
}

// Operation names for paid units of work. Dynamic pipelines use the
// "pipeline:<id>" namespace and resolve through a registered cost table.
const (
	OpResearchPipeline  = "research-pipeline"
	OpInsightGeneration = "insight-generation"
	OpDraftGeneration   = "draft-generation"
	OpBulkResearch      = "bulk-research"
	OpPipelineExecution = "pipeline-execution" // Base cost for unregistered pipelines
	OpDefault           = "default"
)

// PipelinePrefix namespaces dynamically priced pipeline operations.
const PipelinePrefix = "pipeline:"

// DefaultCost applies to wholly unknown operations.
const DefaultCost = 1

// DefaultCosts returns the built-in static cost table.
func DefaultCosts() map[string]int {
	return map[string]int{
		OpResearchPipeline:  5,
		OpInsightGeneration: 2,
		OpDraftGeneration:   3,
		OpBulkResearch:      10,
		OpPipelineExecution: 5,
		OpDefault:           DefaultCost,
	}
}

// PipelineCost is a dynamically priced pipeline entry (value type).
type PipelineCost struct {
	ID         string
	CreditCost int
}

// CheckResult is the outcome of a credit check (value type).
type CheckResult struct {
	HasCredits      bool
	CurrentBalance  int
	RequiredCredits int
	RemainingAfter  int // Meaningful only when HasCredits is true
	PlanTier        plan.Tier
	CanUpgrade      bool
	UpgradeOptions  []plan.Tier
}

// Evaluate checks a wallet against a required cost.
// This is a PURE function.
func Evaluate(w Wallet, required int) CheckResult {
	upgrades := plan.UpgradeOptions(w.PlanTier)
	result := CheckResult{
		CurrentBalance:  w.Balance,
		RequiredCredits: required,
		PlanTier:        w.PlanTier,
		CanUpgrade:      len(upgrades) > 0,
		UpgradeOptions:  upgrades,
	}
	if w.Balance >= required {
		result.HasCredits = true
		result.RemainingAfter = w.Balance - required
	}
	return result
}

// FailClosed is the result returned when the wallet store is unavailable.
// Access is denied and the tier is assumed to be the lowest.
// This is a PURE function.
func FailClosed(required int) CheckResult {
	return CheckResult{
		HasCredits:      false,
		CurrentBalance:  0,
		RequiredCredits: required,
		PlanTier:        plan.TierStarter,
		CanUpgrade:      true,
		UpgradeOptions:  plan.UpgradeOptions(plan.TierStarter),
	}
}

// OperationFromPath maps a URL path to an operation name, best effort.
// Used when the caller does not know the operation explicitly.
// This is a PURE function.
func OperationFromPath(path string) string {
	trimmed := strings.TrimPrefix(path, "/api")

	// Pipeline execution paths carry the pipeline id: /pipelines/<id>/run
	if rest, ok := strings.CutPrefix(trimmed, "/pipelines/"); ok {
		if id, _, found := strings.Cut(rest, "/"); found && id != "" {
			return PipelinePrefix + id
		}
		return OpPipelineExecution
	}

	switch {
	case strings.HasPrefix(trimmed, "/research/bulk"):
		return OpBulkResearch
	case strings.HasPrefix(trimmed, "/research"):
		return OpResearchPipeline
	case strings.HasPrefix(trimmed, "/insights"):
		return OpInsightGeneration
	case strings.HasPrefix(trimmed, "/drafts"):
		return OpDraftGeneration
	default:
		return OpDefault
	}
}

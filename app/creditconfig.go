package app

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/slavayosome/seriously-ai-sub000/domain/credit"
	"github.com/slavayosome/seriously-ai-sub000/ports"
)

// CreditConfig resolves operation names to credit costs. The static table
// is fixed at construction; pipeline costs arrive late, typically after
// configuration load or from the pipeline registry. Safe for concurrent use.
type CreditConfig struct {
	static map[string]int

	mu          sync.RWMutex
	pipelines   map[string]int
	defaultCost int

	logger zerolog.Logger
}

// NewCreditConfig creates a cost resolver. Overrides replace or extend the
// built-in static table; a nil map keeps the defaults as-is. The default
// cost for unknown operations lives outside the static table so it can be
// changed at runtime.
func NewCreditConfig(overrides map[string]int, logger zerolog.Logger) *CreditConfig {
	static := credit.DefaultCosts()
	for op, cost := range overrides {
		static[op] = cost
	}
	defaultCost := static[credit.OpDefault]
	delete(static, credit.OpDefault)
	return &CreditConfig{
		static:      static,
		pipelines:   make(map[string]int),
		defaultCost: defaultCost,
		logger:      logger.With().Str("component", "credit_config").Logger(),
	}
}

// CostOf resolves an operation name to its credit cost.
// Resolution order: static table, then the dynamic pipeline registry for
// "pipeline:<id>" names (falling back to the pipeline-execution base cost),
// then the configurable default.
func (c *CreditConfig) CostOf(operation string) int {
	if cost, ok := c.static[operation]; ok {
		return cost
	}

	if id, ok := strings.CutPrefix(operation, credit.PipelinePrefix); ok {
		c.mu.RLock()
		cost, registered := c.pipelines[id]
		c.mu.RUnlock()
		if registered {
			return cost
		}
		return c.static[credit.OpPipelineExecution]
	}

	c.mu.RLock()
	cost := c.defaultCost
	c.mu.RUnlock()
	return cost
}

// SetDefaultCost updates the cost charged for operations outside the
// static and pipeline tables. Non-positive values are ignored.
func (c *CreditConfig) SetDefaultCost(cost int) {
	if cost <= 0 {
		return
	}
	c.mu.Lock()
	c.defaultCost = cost
	c.mu.Unlock()
	c.logger.Debug().Int("cost", cost).Msg("set default operation cost")
}

// RegisterPipelineCost registers or updates one dynamic pipeline cost.
func (c *CreditConfig) RegisterPipelineCost(id string, cost int) {
	if id == "" || cost < 0 {
		return
	}
	c.mu.Lock()
	c.pipelines[id] = cost
	c.mu.Unlock()
	c.logger.Debug().Str("pipeline", id).Int("cost", cost).Msg("registered pipeline cost")
}

// LoadRegistry pulls all pipeline costs from the registry.
func (c *CreditConfig) LoadRegistry(ctx context.Context, registry ports.PipelineRegistry) error {
	entries, err := registry.List(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		c.RegisterPipelineCost(e.ID, e.CreditCost)
	}
	c.logger.Info().Int("pipelines", len(entries)).Msg("loaded pipeline registry")
	return nil
}

// PipelineCount returns the number of registered dynamic pipelines.
func (c *CreditConfig) PipelineCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pipelines)
}

// OperationFromPath maps a URL path to an operation name, best effort.
func (c *CreditConfig) OperationFromPath(path string) string {
	return credit.OperationFromPath(path)
}

package app

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/slavayosome/seriously-ai-sub000/domain/protection"
	"github.com/slavayosome/seriously-ai-sub000/ports"
)

// RouteCacheName identifies the classifier cache in recorder events.
const RouteCacheName = "route_classification"

// DefaultRouteCacheSize bounds the classification memo.
const DefaultRouteCacheSize = 500

// Classifier maps request paths to protection levels, memoizing results.
// The pattern table is swappable at runtime (config hot reload); swapping
// clears the memo so stale classifications never outlive a table change.
type Classifier struct {
	patterns atomic.Pointer[protection.PatternTable]
	cache    *FIFOCache[protection.Level]
	logger   zerolog.Logger
}

// NewClassifier creates a classifier over the given pattern table.
func NewClassifier(table protection.PatternTable, cacheSize int, recorder ports.CacheRecorder, logger zerolog.Logger) *Classifier {
	c := &Classifier{
		cache:  NewFIFOCache[protection.Level](RouteCacheName, cacheSize, recorder),
		logger: logger.With().Str("component", "classifier").Logger(),
	}
	c.patterns.Store(&table)
	return c
}

// Classify returns the protection level for a path.
func (c *Classifier) Classify(path string) protection.Level {
	if level, ok := c.cache.Get(path); ok {
		return level
	}

	level := protection.Classify(*c.patterns.Load(), path)
	c.cache.Set(path, level)

	c.logger.Debug().Str("path", path).Str("level", string(level)).Msg("classified route")
	return level
}

// SetPatterns swaps the pattern table and clears the memo.
func (c *Classifier) SetPatterns(table protection.PatternTable) {
	c.patterns.Store(&table)
	c.cache.Clear()
	c.logger.Info().
		Int("paid", len(table.Paid)).
		Int("authenticated", len(table.Authenticated)).
		Int("public", len(table.Public)).
		Msg("route patterns updated")
}

// CacheSize returns the number of memoized paths.
func (c *Classifier) CacheSize() int {
	return c.cache.Size()
}

// ClearCache drops all memoized classifications (test determinism).
func (c *Classifier) ClearCache() {
	c.cache.Clear()
}

// CacheStats exposes classifier cache statistics.
func (c *Classifier) CacheStats() CacheStats {
	return c.cache.Stats()
}

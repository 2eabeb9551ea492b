package adjacency

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/strikemesh/internal/logger"
	"github.com/Faultbox/strikemesh/internal/mesh"
	"github.com/Faultbox/strikemesh/internal/metrics"
)

// Cache memoizes one Graph per mesh identity. The owner of a mesh calls
// Invalidate when its topology changes.
type Cache struct {
	mu      sync.RWMutex
	entries map[mesh.ID]*cacheEntry
	metrics *metrics.Collectors
}

type cacheEntry struct {
	once  sync.Once
	graph *Graph
}

// NewCache creates an empty cache reporting to metrics.Default.
func NewCache() *Cache {
	return NewCacheWithMetrics(metrics.Default)
}

// NewCacheWithMetrics creates an empty cache reporting to m.
func NewCacheWithMetrics(m *metrics.Collectors) *Cache {
	return &Cache{
		entries: make(map[mesh.ID]*cacheEntry),
		metrics: m,
	}
}

// GetOrBuild returns the cached graph for id, calling build at most once per
// id. Concurrent first requests for the same id wait for a single build;
// other ids are not blocked.
func (c *Cache) GetOrBuild(id mesh.ID, build func() *Graph) *Graph {
	// Fast path: read lock
	c.mu.RLock()
	e, ok := c.entries[id]
	c.mu.RUnlock()

	if !ok {
		c.mu.Lock()
		if e, ok = c.entries[id]; !ok {
			e = &cacheEntry{}
			c.entries[id] = e
		}
		c.mu.Unlock()
	}

	built := false
	e.once.Do(func() {
		built = true
		start := time.Now()
		e.graph = build()
		elapsed := time.Since(start)

		c.metrics.AdjacencyMisses.Inc()
		c.metrics.AdjacencyBuildSeconds.Observe(elapsed.Seconds())
		logger.Named("adjacency").Debug("graph built",
			zap.Stringer("mesh", id),
			zap.Int("vertices", e.graph.VertexCount()),
			zap.Int("edges", e.graph.EdgeCount()),
			zap.Duration("took", elapsed))
	})
	if !built {
		c.metrics.AdjacencyHits.Inc()
	}
	return e.graph
}

// ForSnapshot returns the graph of s, building it from s's index buffer on first use.
func (c *Cache) ForSnapshot(s *mesh.Snapshot) *Graph {
	return c.GetOrBuild(s.ID, func() *Graph {
		return Build(len(s.Vertices), s.Triangles)
	})
}

// Invalidate drops the graph cached for id. A build already in flight
// completes for its waiters but is not reused.
func (c *Cache) Invalidate(id mesh.ID) {
	c.mu.Lock()
	_, ok := c.entries[id]
	delete(c.entries, id)
	c.mu.Unlock()

	if ok {
		c.metrics.AdjacencyInvalidations.Inc()
		logger.Named("adjacency").Debug("graph invalidated", zap.Stringer("mesh", id))
	}
}

// Len returns the number of cached meshes.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

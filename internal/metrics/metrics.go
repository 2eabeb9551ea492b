// Package metrics exposes Prometheus collectors for the analysis engine.
//
// Collectors live in a private registry so embedding hosts can mount them
// next to their own metrics without name clashes:
//
//	http.Handle("/metrics", metrics.Handler())
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "strikemesh"

// Collectors groups the engine's metrics.
type Collectors struct {
	AdjacencyHits          prometheus.Counter
	AdjacencyMisses        prometheus.Counter
	AdjacencyInvalidations prometheus.Counter
	AdjacencyBuildSeconds  prometheus.Histogram

	ClassifySeconds    prometheus.Histogram
	ClassifiedVertices *prometheus.CounterVec

	MassComputations prometheus.Counter
	NearestQueries   *prometheus.CounterVec
	VelocityUpdates  prometheus.Counter
	ImpactsAnalyzed  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(namespace string, reg prometheus.Registerer) *Collectors {
	buckets := []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

	c := &Collectors{
		AdjacencyHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "adjacency",
			Name:      "cache_hits_total",
			Help:      "Adjacency graph lookups served from the cache.",
		}),
		AdjacencyMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "adjacency",
			Name:      "cache_misses_total",
			Help:      "Adjacency graph lookups that triggered a build.",
		}),
		AdjacencyInvalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "adjacency",
			Name:      "cache_invalidations_total",
			Help:      "Cached adjacency graphs dropped after topology changes.",
		}),
		AdjacencyBuildSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "adjacency",
			Name:      "build_duration_seconds",
			Help:      "Time spent building adjacency graphs.",
			Buckets:   buckets,
		}),
		ClassifySeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "classifier",
			Name:      "duration_seconds",
			Help:      "Time spent classifying all vertices of a mesh.",
			Buckets:   buckets,
		}),
		ClassifiedVertices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classifier",
			Name:      "vertices_total",
			Help:      "Classified vertices by edge type.",
		}, []string{"type"}),
		MassComputations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mass",
			Name:      "computations_total",
			Help:      "Mass distributions computed.",
		}),
		NearestQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "picking",
			Name:      "nearest_queries_total",
			Help:      "Nearest-triangle queries by outcome.",
		}, []string{"result"}),
		VelocityUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "velocity",
			Name:      "updates_total",
			Help:      "Velocity update ticks processed.",
		}),
		ImpactsAnalyzed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "impact",
			Name:      "analyzed_total",
			Help:      "Impacts analyzed by resolved edge type.",
		}, []string{"type"}),
	}

	if reg != nil {
		reg.MustRegister(
			c.AdjacencyHits, c.AdjacencyMisses, c.AdjacencyInvalidations, c.AdjacencyBuildSeconds,
			c.ClassifySeconds, c.ClassifiedVertices,
			c.MassComputations, c.NearestQueries, c.VelocityUpdates, c.ImpactsAnalyzed,
		)
	}
	return c
}

var registry = prometheus.NewRegistry()

// Default is the process-wide collector set used by the analysis packages.
var Default = New(Namespace, registry)

// Registry returns the registry holding Default.
func Registry() *prometheus.Registry {
	return registry
}

// Handler serves the Default collectors in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

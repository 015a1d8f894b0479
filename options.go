package kmtree

import (
	"log/slog"

	"github.com/hupe1980/kmtree/distance"
	"github.com/hupe1980/kmtree/kmeans"
	"github.com/hupe1980/kmtree/persistence"
	"github.com/hupe1980/kmtree/resource"
)

type options struct {
	logger      *Logger
	metrics     MetricsCollector
	resources   *resource.Controller
	compression persistence.Compression
	kmeansOpts  []func(o *kmeans.Options)
}

// Option configures the tree facade.
type Option func(*options)

// WithBranching sets the number of children per internal node.
func WithBranching(branching int) Option {
	return func(o *options) {
		o.kmeansOpts = append(o.kmeansOpts, func(ko *kmeans.Options) {
			ko.Branching = branching
		})
	}
}

// WithIterations caps the Lloyd iterations per clustering run.
// A negative value means iterate until convergence.
func WithIterations(iterations int) Option {
	return func(o *options) {
		o.kmeansOpts = append(o.kmeansOpts, func(ko *kmeans.Options) {
			ko.Iterations = iterations
		})
	}
}

// WithCentersInit selects the center seeding strategy.
func WithCentersInit(ci kmeans.CentersInit) Option {
	return func(o *options) {
		o.kmeansOpts = append(o.kmeansOpts, func(ko *kmeans.Options) {
			ko.CentersInit = ci
		})
	}
}

// WithCBIndex sets the cluster boundary index used by bounded searches.
func WithCBIndex(cbIndex float32) Option {
	return func(o *options) {
		o.kmeansOpts = append(o.kmeansOpts, func(ko *kmeans.Options) {
			ko.CBIndex = cbIndex
		})
	}
}

// WithMetric selects the distance metric.
func WithMetric(m distance.Metric) Option {
	return func(o *options) {
		o.kmeansOpts = append(o.kmeansOpts, func(ko *kmeans.Options) {
			ko.Metric = m
		})
	}
}

// WithSeed seeds the random generator used by center seeding.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.kmeansOpts = append(o.kmeansOpts, func(ko *kmeans.Options) {
			ko.Seed = seed
		})
	}
}

// WithCompression selects the compression applied when saving the index.
func WithCompression(c persistence.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithLogger configures structured logging for operations.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metrics = mc
		}
	}
}

// WithResourceController configures memory budgeting for builds and IO
// throttling for blob transfers.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:      NoopLogger(),
		metrics:     NoopMetricsCollector{},
		compression: persistence.CompressionNone,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

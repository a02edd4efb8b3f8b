package leapjoin

import (
	"log/slog"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures join construction behavior.
//
// Options exist to avoid exploding the API surface; the zero configuration
// (no logging, no metrics) is the fast path and costs nothing per element.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring
// join construction and exhaustion.
//
// Example with BasicMetricsCollector:
//
//	metrics := &leapjoin.BasicMetricsCollector{}
//	j, _ := leapjoin.New(cursors, leapjoin.WithMetricsCollector(metrics))
//	// ... drain j ...
//	stats := metrics.GetStats()
//	fmt.Printf("joins: %d, keys: %d\n", stats.ExhaustCount, stats.AlignedTotal)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for join lifecycle events.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := leapjoin.NewJSONLogger(slog.LevelDebug)
//	j, _ := leapjoin.New(cursors, leapjoin.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

package codebook

import (
	"log/slog"

	"github.com/vecquant/codebook/blobstore"
)

// Defaults for the pipeline configuration.
const (
	DefaultEntryCount = Capacity
	DefaultBatchSize  = 4096
	DefaultMaxIter    = 300
	DefaultSeed       = 42
)

type options struct {
	entryCount    int
	targetDim     int
	batchSize     int
	maxIter       int
	maxVocab      int
	skipReduction bool
	seed          int64

	checkEvery int
	minEpochs  int
	tol        float64

	logger  *Logger
	metrics MetricsCollector

	store     blobstore.BlobStore
	storeName string
}

// Option configures a Pipeline.
type Option func(*options)

// WithEntryCount sets the number of codebook entries to produce.
// Must not exceed Capacity (65536).
func WithEntryCount(k int) Option {
	return func(o *options) {
		o.entryCount = k
	}
}

// WithTargetDim sets the codebook dimension. Inputs of a different
// dimension are PCA-reduced to this width unless reduction is skipped.
func WithTargetDim(dim int) Option {
	return func(o *options) {
		o.targetDim = dim
	}
}

// WithBatchSize sets the mini-batch size used during clustering.
func WithBatchSize(b int) Option {
	return func(o *options) {
		o.batchSize = b
	}
}

// WithMaxIter caps the number of clustering epochs.
func WithMaxIter(n int) Option {
	return func(o *options) {
		o.maxIter = n
	}
}

// WithMaxVocab caps the number of corpus lines consumed.
// Useful for sampling and tests. Zero means no cap.
func WithMaxVocab(n int) Option {
	return func(o *options) {
		o.maxVocab = n
	}
}

// WithSkipReduction disables PCA. The corpus dimension must then already
// equal the target dimension; Run fails eagerly otherwise.
func WithSkipReduction() Option {
	return func(o *options) {
		o.skipReduction = true
	}
}

// WithSeed sets the seed for centroid initialization and epoch shuffling.
// Runs with identical inputs, configuration and seed are reproducible.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithConvergence overrides the convergence policy: inertia is measured
// every checkEvery epochs, and the run stops early once the relative
// improvement falls strictly between zero and tolPct percent after epoch
// minEpochs. The defaults (10, 50, 0.01) are load-bearing; change them only
// when behavioral parity with previous runs does not matter.
//
// Zero or negative values fall back to the defaults, so the epoch floor
// cannot be disabled; to stop as early as possible pass minEpochs=1 with
// checkEvery=1.
func WithConvergence(checkEvery, minEpochs int, tolPct float64) Option {
	return func(o *options) {
		o.checkEvery = checkEvery
		o.minEpochs = minEpochs
		o.tol = tolPct
	}
}

// WithLogger configures structured logging for pipeline stages.
// Pass nil to disable logging.
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

// WithMetrics configures a metrics collector for pipeline stages.
func WithMetrics(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithPublish publishes the finished codebook to the given blob store under
// name, after the local write succeeds.
func WithPublish(store blobstore.BlobStore, name string) Option {
	return func(o *options) {
		o.store = store
		o.storeName = name
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		entryCount: DefaultEntryCount,
		targetDim:  DefaultDim,
		batchSize:  DefaultBatchSize,
		maxIter:    DefaultMaxIter,
		seed:       DefaultSeed,
		logger:     NoopLogger(),
		metrics:    NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

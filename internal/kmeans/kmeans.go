package kmeans

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/vecquant/codebook/distance"
)

// Defaults applied by Config.withDefaults for zero-valued fields.
const (
	DefaultBatchSize = 4096
	DefaultMaxIter   = 300

	// Convergence policy. The cadence and the minimum-epoch floor are
	// load-bearing: changing them changes which run lengths can stop early.
	DefaultCheckEvery = 10
	DefaultMinEpochs  = 50
	DefaultTol        = 0.01 // percent
)

// ErrInsufficientData is returned when fewer samples are available than the
// requested number of clusters.
type ErrInsufficientData struct {
	Need int
	Got  int
}

func (e *ErrInsufficientData) Error() string {
	return fmt.Sprintf("insufficient data: need at least %d vectors, got %d", e.Need, e.Got)
}

// Config controls a mini-batch k-means run.
type Config struct {
	K         int
	BatchSize int
	MaxIter   int // epoch cap
	Seed      int64

	// Metric selects the distance used for assignment and inertia.
	// The zero value is distance.MetricL2.
	Metric distance.Metric

	// CheckEvery is the inertia-check cadence in epochs.
	CheckEvery int
	// MinEpochs is the epoch index that must be exceeded before an early
	// stop is permitted.
	MinEpochs int
	// Tol is the relative inertia improvement, in percent, below which
	// (but above zero) the run stops early.
	Tol float64
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.MaxIter <= 0 {
		c.MaxIter = DefaultMaxIter
	}
	if c.CheckEvery <= 0 {
		c.CheckEvery = DefaultCheckEvery
	}
	if c.MinEpochs <= 0 {
		c.MinEpochs = DefaultMinEpochs
	}
	if c.Tol <= 0 {
		c.Tol = DefaultTol
	}
	return c
}

// Progress is called after each inertia check with the zero-based epoch
// index and the inertia measured at that point.
type Progress func(epoch int, inertia float64)

// Result holds the learned centroids and run accounting.
type Result struct {
	Centroids []float32 // K * dim, row-major; row index is the entry id
	Epochs    int       // epochs actually run
	Converged bool      // true when the run stopped on the inertia test
	Inertia   float64   // inertia over the full set after the last epoch
}

// MiniBatch partitions n vectors into cfg.K clusters using mini-batch
// k-means with random initialization.
//
// Initialization draws max(K, BatchSize) distinct samples (clamped to n)
// with the seeded generator, seeds the K centroids from them, and performs
// one incremental update pass over the sample. Each epoch then shuffles all
// indices, walks contiguous batches, and folds every batch into the
// centroids as a running weighted mean, so peak memory stays at
// O(BatchSize*dim + K*dim) regardless of n.
//
// A centroid that never receives an assignment keeps its initial position.
// Results are reproducible for a fixed seed, input order and configuration;
// changing BatchSize or MaxIter is expected to change the result.
//
// Cancelling ctx aborts the run between epochs.
func MiniBatch(ctx context.Context, data []float32, dim int, cfg Config, progress Progress) (*Result, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid dimension: %d", dim)
	}
	cfg = cfg.withDefaults()
	n := len(data) / dim
	if cfg.K < 1 {
		return nil, fmt.Errorf("invalid cluster count: %d", cfg.K)
	}
	if n < cfg.K {
		return nil, &ErrInsufficientData{Need: cfg.K, Got: n}
	}

	distFunc, err := distance.Provider(cfg.Metric)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed)) // nolint gosec
	k := cfg.K

	st := &state{
		data:      data,
		dim:       dim,
		dist:      distFunc,
		centroids: make([]float32, k*dim),
		counts:    make([]float64, k),
		batchSum:  make([]float64, k*dim),
		batchCnt:  make([]int, k),
	}

	// Seeding: sample max(K, BatchSize) distinct indices, take the first K
	// as initial centroid positions, then fold the whole sample in as one
	// batch update.
	initSize := cfg.BatchSize
	if k > initSize {
		initSize = k
	}
	if initSize > n {
		initSize = n
	}
	sample := rng.Perm(n)[:initSize]
	for j := 0; j < k; j++ {
		src := sample[j] * dim
		copy(st.centroids[j*dim:(j+1)*dim], data[src:src+dim])
	}
	st.update(sample)

	res := &Result{}
	prevInertia := math.Inf(1)

	for epoch := 0; epoch < cfg.MaxIter; epoch++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		perm := rng.Perm(n)
		batchesPerEpoch := n / cfg.BatchSize
		if batchesPerEpoch < 1 {
			batchesPerEpoch = 1
		}
		for b := 0; b < batchesPerEpoch; b++ {
			start := b * cfg.BatchSize
			end := start + cfg.BatchSize
			if end > n {
				end = n
			}
			st.update(perm[start:end])
		}
		res.Epochs = epoch + 1

		if (epoch+1)%cfg.CheckEvery != 0 {
			continue
		}
		inertia := st.inertia()
		if progress != nil {
			progress(epoch, inertia)
		}
		// Relative improvement since the last check, in percent. An
		// improvement of exactly zero does not stop the run.
		delta := 0.0
		if !math.IsInf(prevInertia, 1) {
			delta = (prevInertia - inertia) / prevInertia * 100
		}
		if delta > 0 && delta < cfg.Tol && epoch > cfg.MinEpochs {
			res.Converged = true
			prevInertia = inertia
			break
		}
		prevInertia = inertia
	}

	res.Centroids = st.centroids
	res.Inertia = st.inertia()
	return res, nil
}

// state is the mutable working set of a run: current centroids plus the
// per-centroid running sample counts that drive the incremental mean.
type state struct {
	data      []float32
	dim       int
	dist      distance.Func
	centroids []float32
	counts    []float64

	// per-batch scratch, reset on every update
	batchSum []float64
	batchCnt []int
}

// update performs one incremental update over the given sample indices:
// nearest-centroid assignment followed by a running weighted-mean move of
// every centroid that received at least one sample.
func (st *state) update(indices []int) {
	dim := st.dim
	for i := range st.batchSum {
		st.batchSum[i] = 0
	}
	for i := range st.batchCnt {
		st.batchCnt[i] = 0
	}

	for _, idx := range indices {
		vec := st.data[idx*dim : (idx+1)*dim]
		j := assign(vec, st.centroids, dim, st.dist)
		st.batchCnt[j]++
		for d := 0; d < dim; d++ {
			st.batchSum[j*dim+d] += float64(vec[d])
		}
	}

	for j, cnt := range st.batchCnt {
		if cnt == 0 {
			continue
		}
		frac := float64(cnt) / (st.counts[j] + float64(cnt))
		for d := 0; d < dim; d++ {
			old := float64(st.centroids[j*dim+d])
			mean := st.batchSum[j*dim+d] / float64(cnt)
			st.centroids[j*dim+d] = float32(old + (mean-old)*frac)
		}
		st.counts[j] += float64(cnt)
	}
}

// inertia is the sum over all vectors of the distance to their nearest
// centroid, measured with the configured metric.
func (st *state) inertia() float64 {
	dim := st.dim
	var total float64
	for off := 0; off+dim <= len(st.data); off += dim {
		vec := st.data[off : off+dim]
		best := math.Inf(1)
		for c := 0; c+dim <= len(st.centroids); c += dim {
			if d := float64(st.dist(vec, st.centroids[c:c+dim])); d < best {
				best = d
			}
		}
		total += best
	}
	return total
}

// Assign returns the index of the centroid nearest to vec by squared L2
// distance.
func Assign(vec []float32, centroids []float32, dim int) int {
	return assign(vec, centroids, dim, distance.SquaredL2)
}

func assign(vec []float32, centroids []float32, dim int, dist distance.Func) int {
	best := -1
	minDist := float32(math.MaxFloat32)
	for j := 0; j*dim < len(centroids); j++ {
		d := dist(vec, centroids[j*dim:(j+1)*dim])
		if d < minDist {
			minDist = d
			best = j
		}
	}
	return best
}

package kmeans

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vecquant/codebook/distance"
)

// twoBlobs returns n points per blob around (0,...) and (10,...).
func twoBlobs(t *testing.T, n, dim int, seed int64) []float32 {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	data := make([]float32, 0, 2*n*dim)
	for _, center := range []float32{0, 10} {
		for i := 0; i < n; i++ {
			for d := 0; d < dim; d++ {
				data = append(data, center+rng.Float32()*0.5)
			}
		}
	}
	return data
}

func TestMiniBatch_ShapeAndQuality(t *testing.T) {
	const dim = 4
	data := twoBlobs(t, 100, dim, 1)

	res, err := MiniBatch(context.Background(), data, dim, Config{
		K:         2,
		BatchSize: 32,
		MaxIter:   30,
		Seed:      42,
	}, nil)
	require.NoError(t, err)

	require.Len(t, res.Centroids, 2*dim)
	assert.Equal(t, 30, res.Epochs)
	assert.Positive(t, res.Inertia)

	// Centroids are running means of assigned samples, so every point must
	// sit close to one of them.
	for off := 0; off < len(data); off += dim {
		vec := data[off : off+dim]
		j := Assign(vec, res.Centroids, dim)
		d := distance.SquaredL2(vec, res.Centroids[j*dim:(j+1)*dim])
		assert.Less(t, d, float32(dim*36))
	}

	// The two centroids must not collapse onto each other.
	assert.Greater(t, distance.SquaredL2(res.Centroids[:dim], res.Centroids[dim:]), float32(1))
}

func TestMiniBatch_Deterministic(t *testing.T) {
	const dim = 8
	data := twoBlobs(t, 50, dim, 2)
	cfg := Config{K: 4, BatchSize: 16, MaxIter: 20, Seed: 7}

	a, err := MiniBatch(context.Background(), data, dim, cfg, nil)
	require.NoError(t, err)
	b, err := MiniBatch(context.Background(), data, dim, cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, a.Centroids, b.Centroids)
	assert.Equal(t, a.Epochs, b.Epochs)
	assert.Equal(t, a.Inertia, b.Inertia)
}

func TestMiniBatch_DifferentSeedsDiffer(t *testing.T) {
	const dim = 4
	data := twoBlobs(t, 50, dim, 3)

	a, err := MiniBatch(context.Background(), data, dim, Config{K: 8, BatchSize: 16, MaxIter: 10, Seed: 1}, nil)
	require.NoError(t, err)
	b, err := MiniBatch(context.Background(), data, dim, Config{K: 8, BatchSize: 16, MaxIter: 10, Seed: 2}, nil)
	require.NoError(t, err)

	assert.NotEqual(t, a.Centroids, b.Centroids)
}

func TestMiniBatch_InsufficientData(t *testing.T) {
	data := make([]float32, 5*4) // 5 vectors of dim 4

	_, err := MiniBatch(context.Background(), data, 4, Config{K: 10}, nil)

	var insufficient *ErrInsufficientData
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 10, insufficient.Need)
	assert.Equal(t, 5, insufficient.Got)
}

func TestMiniBatch_InvalidArgs(t *testing.T) {
	data := make([]float32, 16)

	_, err := MiniBatch(context.Background(), data, 0, Config{K: 2}, nil)
	assert.Error(t, err)

	_, err = MiniBatch(context.Background(), data, 4, Config{K: 0}, nil)
	assert.Error(t, err)
}

func TestMiniBatch_ProgressCadence(t *testing.T) {
	const dim = 4
	data := twoBlobs(t, 40, dim, 4)

	var epochs []int
	_, err := MiniBatch(context.Background(), data, dim, Config{
		K:         2,
		BatchSize: 16,
		MaxIter:   25,
		Seed:      42,
	}, func(epoch int, inertia float64) {
		epochs = append(epochs, epoch)
		assert.GreaterOrEqual(t, inertia, 0.0)
	})
	require.NoError(t, err)

	// Checks fire every 10 epochs; the default 50-epoch floor rules out an
	// early stop within 25 epochs.
	assert.Equal(t, []int{9, 19}, epochs)
}

func TestMiniBatch_EarlyStopRespectsFloor(t *testing.T) {
	const dim = 4
	data := twoBlobs(t, 60, dim, 5)

	res, err := MiniBatch(context.Background(), data, dim, Config{
		K:         2,
		BatchSize: 16,
		MaxIter:   100,
		Seed:      42,
	}, nil)
	require.NoError(t, err)

	if res.Converged {
		// Stops are only legal after the 50-epoch floor, on a check epoch.
		assert.Greater(t, res.Epochs, 51)
		assert.Zero(t, res.Epochs%10)
	} else {
		assert.Equal(t, 100, res.Epochs)
	}
}

func TestMiniBatch_DotMetric(t *testing.T) {
	const dim = 4

	// Two antipodal direction clusters on the unit sphere.
	rng := rand.New(rand.NewSource(8))
	data := make([]float32, 0, 100*dim)
	for _, sign := range []float32{1, -1} {
		for i := 0; i < 50; i++ {
			row := make([]float32, dim)
			row[0] = sign
			for d := 1; d < dim; d++ {
				row[d] = rng.Float32() * 0.1
			}
			data = append(data, row...)
		}
	}
	distance.NormalizeRowsInPlace(data, dim)

	res, err := MiniBatch(context.Background(), data, dim, Config{
		K:         2,
		BatchSize: 16,
		MaxIter:   20,
		Seed:      42,
		Metric:    distance.MetricDot,
	}, nil)
	require.NoError(t, err)
	require.Len(t, res.Centroids, 2*dim)

	// Negated-dot distances make inertia negative for unit-norm inputs.
	assert.Negative(t, res.Inertia)

	// The two centroids must end up on opposite sides of the first axis.
	assert.Negative(t, res.Centroids[0]*res.Centroids[dim])
}

func TestMiniBatch_UnsupportedMetric(t *testing.T) {
	data := twoBlobs(t, 10, 4, 9)

	_, err := MiniBatch(context.Background(), data, 4, Config{
		K:      2,
		Metric: distance.Metric(99),
	}, nil)
	assert.Error(t, err)
}

func TestMiniBatch_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data := twoBlobs(t, 50, 4, 6)
	_, err := MiniBatch(ctx, data, 4, Config{K: 2, BatchSize: 16, MaxIter: 1000, Seed: 1}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAssign(t *testing.T) {
	centroids := []float32{
		0, 0,
		10, 10,
	}
	assert.Equal(t, 0, Assign([]float32{1, 1}, centroids, 2))
	assert.Equal(t, 1, Assign([]float32{9, 9}, centroids, 2))
}

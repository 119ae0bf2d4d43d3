package pca

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce_NoOpWhenSameDim(t *testing.T) {
	data := []float32{1, 2, 3, 4, 5, 6}

	res, err := Reduce(data, 2, 3, 3)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Dim)
	assert.Equal(t, data, res.Data)
	assert.Equal(t, 1.0, res.ExplainedVariance)
}

func TestReduce_TargetTooLarge(t *testing.T) {
	_, err := Reduce([]float32{1, 2, 3, 4}, 2, 2, 3)
	assert.ErrorIs(t, err, ErrTargetTooLarge)
}

func TestReduce_PlanarData(t *testing.T) {
	// Points on a plane embedded in 3D: the third component is constant,
	// so 2 components must capture all the variance.
	rng := rand.New(rand.NewSource(1))
	const rows = 50
	data := make([]float32, rows*3)
	for i := 0; i < rows; i++ {
		data[i*3+0] = rng.Float32() * 10
		data[i*3+1] = rng.Float32() * 10
		data[i*3+2] = 7
	}

	res, err := Reduce(data, rows, 3, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Dim)
	assert.Len(t, res.Data, rows*2)
	assert.InDelta(t, 1.0, res.ExplainedVariance, 1e-6)
}

func TestReduce_PreservesPairwiseDistances(t *testing.T) {
	// PCA is an isometry on data that already lies in the target subspace.
	rng := rand.New(rand.NewSource(2))
	const rows, dimIn, dimOut = 40, 5, 2
	data := make([]float32, rows*dimIn)
	for i := 0; i < rows; i++ {
		data[i*dimIn+0] = rng.Float32()
		data[i*dimIn+1] = rng.Float32()
		// remaining dims stay zero
	}

	res, err := Reduce(data, rows, dimIn, dimOut)
	require.NoError(t, err)

	distIn := func(a, b int) float64 {
		var s float64
		for j := 0; j < dimIn; j++ {
			d := float64(data[a*dimIn+j] - data[b*dimIn+j])
			s += d * d
		}
		return math.Sqrt(s)
	}
	distOut := func(a, b int) float64 {
		var s float64
		for j := 0; j < dimOut; j++ {
			d := float64(res.Data[a*dimOut+j] - res.Data[b*dimOut+j])
			s += d * d
		}
		return math.Sqrt(s)
	}

	for i := 0; i < 10; i++ {
		a, b := rng.Intn(rows), rng.Intn(rows)
		assert.InDelta(t, distIn(a, b), distOut(a, b), 1e-4)
	}
}

func TestReduce_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const rows, dimIn, dimOut = 30, 6, 3
	data := make([]float32, rows*dimIn)
	for i := range data {
		data[i] = rng.Float32()
	}

	a, err := Reduce(data, rows, dimIn, dimOut)
	require.NoError(t, err)
	b, err := Reduce(data, rows, dimIn, dimOut)
	require.NoError(t, err)

	assert.Equal(t, a.Data, b.Data)
	assert.Equal(t, a.ExplainedVariance, b.ExplainedVariance)
}

func TestReduce_TooFewSamples(t *testing.T) {
	_, err := Reduce([]float32{1, 2, 3, 4}, 1, 4, 2)
	assert.Error(t, err)
}

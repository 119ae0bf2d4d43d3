package distance

import (
	"fmt"
	"math"
)

// NormEpsilon is the floor applied to vector norms during normalization.
// Vectors with a smaller norm are treated as having this norm, so near-zero
// inputs map to a bounded unit vector instead of producing Inf/NaN.
const NormEpsilon = 1e-10

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	var ret float32
	for i := range a {
		ret += a[i] * b[i]
	}
	return ret
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	var dist float32
	for i := range a {
		d := a[i] - b[i]
		dist += d * d
	}
	return dist
}

// Norm returns the L2 norm of v.
func Norm(v []float32) float32 {
	return float32(math.Sqrt(float64(Dot(v, v))))
}

// ScaleInPlace multiplies all elements of a by scalar.
func ScaleInPlace(a []float32, scalar float32) {
	for i := range a {
		a[i] *= scalar
	}
}

// NormalizeL2InPlace L2-normalizes v in place.
// The norm is clamped to NormEpsilon, so the call never divides by zero.
func NormalizeL2InPlace(v []float32) {
	norm := Norm(v)
	if norm < NormEpsilon {
		norm = NormEpsilon
	}
	ScaleInPlace(v, 1/norm)
}

// NormalizeRowsInPlace L2-normalizes each dim-wide row of a row-major matrix
// in place. It is idempotent up to floating-point rounding: normalizing an
// already unit-norm matrix leaves it unchanged.
func NormalizeRowsInPlace(data []float32, dim int) {
	if dim <= 0 {
		return
	}
	for off := 0; off+dim <= len(data); off += dim {
		NormalizeL2InPlace(data[off : off+dim])
	}
}

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	MetricL2 Metric = iota
	MetricDot
)

func (m Metric) String() string {
	switch m {
	case MetricL2:
		return "L2"
	case MetricDot:
		return "Dot"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Func is a function type for distance calculation.
type Func func(a, b []float32) float32

// Provider returns the distance function for the given metric.
func Provider(metric Metric) (Func, error) {
	switch metric {
	case MetricL2:
		return SquaredL2, nil
	case MetricDot:
		// Negated so that smaller means closer, matching the other metrics.
		return func(a, b []float32) float32 { return -Dot(a, b) }, nil
	default:
		return nil, fmt.Errorf("unsupported distance metric: %s", metric)
	}
}

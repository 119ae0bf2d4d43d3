package pca

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrTargetTooLarge is returned when the requested output dimension exceeds
// the input dimension.
var ErrTargetTooLarge = errors.New("pca: target dimension exceeds source dimension")

// Result holds the projected matrix and the fraction of the original
// variance retained by the kept components.
type Result struct {
	Data []float32 // rows * dimOut, row-major
	Dim  int

	// ExplainedVariance is observability only, not a correctness contract.
	ExplainedVariance float64
}

// Reduce fits a variance-maximizing linear projection on the full input set
// and applies it, producing a matrix of width dimOut.
//
// When dimIn == dimOut the input is returned unchanged (no-op fast path).
// The thin-SVD solver is exact and deterministic, so no random seed is
// involved.
func Reduce(data []float32, rows, dimIn, dimOut int) (*Result, error) {
	if dimOut > dimIn {
		return nil, ErrTargetTooLarge
	}
	if dimIn == dimOut {
		return &Result{Data: data, Dim: dimIn, ExplainedVariance: 1}, nil
	}
	if rows < dimOut {
		return nil, fmt.Errorf("pca: %d samples cannot support %d components", rows, dimOut)
	}

	// Mean-center into a float64 working matrix.
	mean := make([]float64, dimIn)
	for i := 0; i < rows; i++ {
		for j := 0; j < dimIn; j++ {
			mean[j] += float64(data[i*dimIn+j])
		}
	}
	for j := range mean {
		mean[j] /= float64(rows)
	}

	centered := mat.NewDense(rows, dimIn, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < dimIn; j++ {
			centered.Set(i, j, float64(data[i*dimIn+j])-mean[j])
		}
	}

	var svd mat.SVD
	if !svd.Factorize(centered, mat.SVDThin) {
		return nil, errors.New("pca: SVD factorization failed")
	}

	var v mat.Dense
	svd.VTo(&v)

	// Leading dimOut right-singular vectors span the retained subspace.
	components := v.Slice(0, dimIn, 0, dimOut)

	var projected mat.Dense
	projected.Mul(centered, components)

	sigma := svd.Values(nil)
	var kept, total float64
	for i, s := range sigma {
		total += s * s
		if i < dimOut {
			kept += s * s
		}
	}
	explained := 1.0
	if total > 0 {
		explained = kept / total
	}

	out := make([]float32, rows*dimOut)
	for i := 0; i < rows; i++ {
		for j := 0; j < dimOut; j++ {
			out[i*dimOut+j] = float32(projected.At(i, j))
		}
	}

	return &Result{Data: out, Dim: dimOut, ExplainedVariance: explained}, nil
}

package codebook

import (
	"errors"
	"fmt"
)

// ErrCorpusEmpty is returned when the corpus yields zero parseable vectors.
var ErrCorpusEmpty = errors.New("corpus is empty: no vectors parsed")

// ErrCapacityExceeded indicates a requested entry count above Capacity.
type ErrCapacityExceeded struct {
	Requested int
}

func (e *ErrCapacityExceeded) Error() string {
	return fmt.Sprintf("requested %d entries exceeds codebook capacity of %d", e.Requested, Capacity)
}

// ErrInvalidReduction indicates a reduction target larger than the source
// dimension.
type ErrInvalidReduction struct {
	From int
	To   int
}

func (e *ErrInvalidReduction) Error() string {
	return fmt.Sprintf("cannot reduce dimension %d to %d: target exceeds source", e.From, e.To)
}

// ErrInsufficientData indicates fewer loaded vectors than requested clusters.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInsufficientData struct {
	Need  int
	Got   int
	cause error
}

func (e *ErrInsufficientData) Error() string {
	return fmt.Sprintf("insufficient data: need at least %d vectors, got %d", e.Need, e.Got)
}

func (e *ErrInsufficientData) Unwrap() error { return e.cause }

// ErrDimensionMismatch indicates a vector width that differs from the
// configured codebook dimension, on either the write or the read path.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrBadMagic indicates a file that does not start with the codebook magic.
type ErrBadMagic struct {
	Got [4]byte
}

func (e *ErrBadMagic) Error() string {
	return fmt.Sprintf("bad magic %q: not a codebook file", e.Got[:])
}

// ErrTruncated indicates a codebook file shorter than required: either the
// header itself is incomplete, or the payload is shorter than the header
// declares.
type ErrTruncated struct {
	Expected int64
	Actual   int64
}

func (e *ErrTruncated) Error() string {
	return fmt.Sprintf("truncated codebook file: expected %d bytes, got %d", e.Expected, e.Actual)
}

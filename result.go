package modwt

import (
	"fmt"

	"github.com/tphakala/simd/f64"
)

// MODWTResult holds one level of MODWT output. Both sequences have the
// same length as the transformed signal. Immutable once constructed;
// accessors return defensive copies.
type MODWTResult struct {
	approx []float64
	detail []float64
}

// newResult wraps freshly computed coefficient slices. The result takes
// ownership; callers must not retain the slices.
func newResult(approx, detail []float64) *MODWTResult {
	return &MODWTResult{approx: approx, detail: detail}
}

// Length returns the signal length of the result.
func (r *MODWTResult) Length() int { return len(r.approx) }

// Approximation returns a copy of the approximation (low-pass) sequence.
func (r *MODWTResult) Approximation() []float64 {
	out := make([]float64, len(r.approx))
	copy(out, r.approx)
	return out
}

// Detail returns a copy of the detail (high-pass) sequence.
func (r *MODWTResult) Detail() []float64 {
	out := make([]float64, len(r.detail))
	copy(out, r.detail)
	return out
}

// ApproximationEnergy returns the sum of squared approximation
// coefficients.
func (r *MODWTResult) ApproximationEnergy() float64 {
	return f64.DotProduct(r.approx, r.approx)
}

// DetailEnergy returns the sum of squared detail coefficients.
func (r *MODWTResult) DetailEnergy() float64 {
	return f64.DotProduct(r.detail, r.detail)
}

// check verifies the structural validity required before inversion.
func (r *MODWTResult) check() error {
	if r == nil {
		return fmt.Errorf("%w: result is nil", ErrInvalidSignal)
	}
	if len(r.approx) != len(r.detail) {
		return fmt.Errorf("%w: approximation length %d != detail length %d",
			ErrInvalidSignal, len(r.approx), len(r.detail))
	}
	if err := checkSignal(r.approx); err != nil {
		return fmt.Errorf("approximation: %w", err)
	}
	if err := checkSignal(r.detail); err != nil {
		return fmt.Errorf("detail: %w", err)
	}
	return nil
}

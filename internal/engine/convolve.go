// Package engine implements the numeric kernels behind the MODWT: scalar
// and SIMD-assisted convolution for the three boundary modes, a
// cache-blocked periodic path, FFT-based circular convolution for long
// filters, and Structure-of-Arrays batch kernels.
//
// All kernels operate on pre-allocated output slices and never allocate in
// the per-sample loops. Upsampled wavelet filters are mostly zeros, so the
// scalar paths skip zero taps; dense filters route through
// github.com/tphakala/simd for the interior where no boundary handling is
// needed.
package engine

import (
	"github.com/tphakala/simd/f64"
)

// Boundary selects how convolution indices outside [0, n) are resolved.
type Boundary int

const (
	// BoundaryPeriodic wraps indices modulo the signal length.
	BoundaryPeriodic Boundary = iota

	// BoundaryZeroPad treats samples outside the signal as zero.
	BoundaryZeroPad

	// BoundarySymmetric reflects indices at the edges without repeating
	// the edge sample (whole-sample symmetry).
	BoundarySymmetric
)

// String returns the boundary mode name.
func (b Boundary) String() string {
	switch b {
	case BoundaryPeriodic:
		return "periodic"
	case BoundaryZeroPad:
		return "zero-padding"
	case BoundarySymmetric:
		return "symmetric"
	default:
		return "unknown"
	}
}

// sparsityThreshold is the nonzero-tap fraction below which the zero-skip
// scalar path beats dense SIMD convolution. Upsampled filters at level j
// have a nonzero fraction of about 2^-(j-1), so anything past level 1
// lands on the sparse path.
const sparsityThreshold = 0.5

// isSparse reports whether a filter has few enough nonzero taps that
// skipping zeros beats a dense kernel.
func isSparse(taps []float64) bool {
	nonzero := 0
	for _, v := range taps {
		if v != 0 {
			nonzero++
		}
	}
	return float64(nonzero) < sparsityThreshold*float64(len(taps))
}

// reverseInto writes taps reversed into dst (dst[i] = taps[L-1-i]).
func reverseInto(dst, taps []float64) {
	l := len(taps)
	for i, v := range taps {
		dst[l-1-i] = v
	}
}

// mirror reflects an out-of-range index at the signal edges without
// repeating the edge sample: -1 maps to 1, n maps to n-2.
// Valid for indices in (-n, 2n-1), which holds once filters are truncated
// to the signal length.
func mirror(idx, n int) int {
	if idx < 0 {
		return -idx
	}
	if idx >= n {
		return 2*n - 2 - idx
	}
	return idx
}

// Analyze computes one MODWT analysis level:
//
//	approx[t] = sum_l lo[l] * signal[idx(t-l)]
//	detail[t] = sum_l hi[l] * signal[idx(t-l)]
//
// with idx resolved per the boundary mode. approx, detail and signal must
// all have equal length, and the filters must not be longer than the
// signal.
func Analyze(approx, detail, signal, lo, hi []float64, mode Boundary) {
	switch mode {
	case BoundaryPeriodic:
		analyzePeriodic(approx, detail, signal, lo, hi)
	case BoundaryZeroPad:
		analyzeZeroPad(approx, detail, signal, lo, hi)
	case BoundarySymmetric:
		analyzeSymmetric(approx, detail, signal, lo, hi)
	}
}

func analyzePeriodic(approx, detail, signal, lo, hi []float64) {
	n := len(signal)
	for t := range n {
		var a, d float64
		for l, hl := range lo {
			gl := hi[l]
			if hl == 0 && gl == 0 {
				continue
			}
			idx := t - l
			if idx < 0 {
				idx += n
			}
			v := signal[idx]
			a += hl * v
			d += gl * v
		}
		approx[t] = a
		detail[t] = d
	}
}

func analyzeZeroPad(approx, detail, signal, lo, hi []float64) {
	n := len(signal)
	fl := len(lo)

	// Head samples reference indices before the signal start; out-of-range
	// contributions are zero.
	head := fl - 1
	if head > n {
		head = n
	}
	for t := range head {
		var a, d float64
		for l := 0; l <= t; l++ {
			hl, gl := lo[l], hi[l]
			if hl == 0 && gl == 0 {
				continue
			}
			v := signal[t-l]
			a += hl * v
			d += gl * v
		}
		approx[t] = a
		detail[t] = d
	}
	if head >= n {
		return
	}

	if isSparse(lo) {
		for t := head; t < n; t++ {
			var a, d float64
			for l, hl := range lo {
				gl := hi[l]
				if hl == 0 && gl == 0 {
					continue
				}
				v := signal[t-l]
				a += hl * v
				d += gl * v
			}
			approx[t] = a
			detail[t] = d
		}
		return
	}

	// Dense interior: a valid convolution against the reversed taps.
	// ConvolveValid(dst, x, k) computes dst[i] = sum_k x[i+k]*k[k], so with
	// k = reverse(lo) we get dst[i] = sum_l lo[l]*x[i+fl-1-l] = out[i+fl-1].
	rev := make([]float64, fl)
	reverseInto(rev, lo)
	f64.ConvolveValid(approx[head:], signal, rev)
	reverseInto(rev, hi)
	f64.ConvolveValid(detail[head:], signal, rev)
}

func analyzeSymmetric(approx, detail, signal, lo, hi []float64) {
	n := len(signal)
	for t := range n {
		var a, d float64
		for l, hl := range lo {
			gl := hi[l]
			if hl == 0 && gl == 0 {
				continue
			}
			v := signal[mirror(t-l, n)]
			a += hl * v
			d += gl * v
		}
		approx[t] = a
		detail[t] = d
	}
}

// ConvolveDown computes a single-filter analysis convolution
//
//	dst[t] = sum_l taps[l] * signal[idx(t-l)]
//
// used by the parallel engine, which runs the low-pass and high-pass
// convolutions of one level as two concurrent tasks over the same input.
func ConvolveDown(dst, signal, taps []float64, mode Boundary) {
	n := len(signal)
	for t := range n {
		var v float64
		for l, tap := range taps {
			if tap == 0 {
				continue
			}
			idx := t - l
			switch mode {
			case BoundaryPeriodic:
				if idx < 0 {
					idx += n
				}
			case BoundaryZeroPad:
				if idx < 0 {
					continue
				}
			case BoundarySymmetric:
				idx = mirror(idx, n)
			}
			v += tap * signal[idx]
		}
		dst[t] = v
	}
}

// Synthesize computes one MODWT synthesis level:
//
//	dst[t] = sum_l lo[l]*approx[idx(t+l)] + sum_l hi[l]*detail[idx(t+l)]
//
// The (t+l) offset is the algebraic inverse of the analysis indexing, so
// Synthesize(Analyze(x)) reproduces x for orthogonal filters in periodic
// mode.
func Synthesize(dst, approx, detail, lo, hi []float64, mode Boundary) {
	n := len(dst)
	switch mode {
	case BoundaryPeriodic:
		for t := range n {
			var v float64
			for l, hl := range lo {
				gl := hi[l]
				if hl == 0 && gl == 0 {
					continue
				}
				idx := t + l
				if idx >= n {
					idx -= n
				}
				v += hl*approx[idx] + gl*detail[idx]
			}
			dst[t] = v
		}
	case BoundaryZeroPad:
		for t := range n {
			var v float64
			for l, hl := range lo {
				gl := hi[l]
				if hl == 0 && gl == 0 {
					continue
				}
				idx := t + l
				if idx >= n {
					break
				}
				v += hl*approx[idx] + gl*detail[idx]
			}
			dst[t] = v
		}
	case BoundarySymmetric:
		for t := range n {
			var v float64
			for l, hl := range lo {
				gl := hi[l]
				if hl == 0 && gl == 0 {
					continue
				}
				idx := mirror(t+l, n)
				v += hl*approx[idx] + gl*detail[idx]
			}
			dst[t] = v
		}
	}
}

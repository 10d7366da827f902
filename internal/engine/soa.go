package engine

import (
	"gonum.org/v1/gonum/floats"
)

// Structure-of-Arrays batch kernels.
//
// An SoA buffer stores batch same-length signals with element
// [t*batch + b] holding signal b's sample at time t. One row (all signals
// at one time step) is contiguous, so a vector load covers every signal at
// once and the per-lane work is identical regardless of signal content.
// Rows are exact batch-length subslices, so a batch that is not a multiple
// of the hardware lane width is handled by the slice kernels' own tail
// logic and never reads or writes past the batch.

// KernelKind tags the batch kernel strategy, decided once at construction
// from the filter's tap count rather than re-tested in hot loops.
type KernelKind int

const (
	// KernelGeneral loops over taps; works for any filter and boundary.
	KernelGeneral KernelKind = iota

	// Kernel2Tap is the fully unrolled kernel for 2-tap (Haar-shaped)
	// filters in periodic mode.
	Kernel2Tap

	// Kernel4Tap is the fully unrolled kernel for 4-tap (DB4-shaped)
	// filters in periodic mode.
	Kernel4Tap
)

// SelectKernel picks the batch kernel for a filter length and boundary
// mode. The unrolled kernels only exist for the periodic wrap.
func SelectKernel(tapLen int, mode Boundary) KernelKind {
	if mode != BoundaryPeriodic {
		return KernelGeneral
	}
	switch tapLen {
	case 2:
		return Kernel2Tap
	case 4:
		return Kernel4Tap
	default:
		return KernelGeneral
	}
}

// row returns the contiguous lane row for time step t.
func row(buf []float64, t, batch int) []float64 {
	return buf[t*batch : (t+1)*batch]
}

// ToSoA transposes per-signal slices into an SoA buffer.
// dst must have length len(signals) * len(signals[0]).
func ToSoA(dst []float64, signals [][]float64) {
	batch := len(signals)
	for b, s := range signals {
		for t, v := range s {
			dst[t*batch+b] = v
		}
	}
}

// FromSoA transposes an SoA buffer back into per-signal slices.
func FromSoA(signals [][]float64, soa []float64) {
	batch := len(signals)
	for b, s := range signals {
		for t := range s {
			s[t] = soa[t*batch+b]
		}
	}
}

// BatchAnalyze computes one analysis level for every signal in an SoA
// buffer. approx and detail must have the same length as soa
// (batch*n). The kind argument comes from SelectKernel.
func BatchAnalyze(approx, detail, soa, lo, hi []float64, batch, n int, mode Boundary, kind KernelKind) {
	switch kind {
	case Kernel2Tap:
		batchAnalyze2Tap(approx, detail, soa, lo, hi, batch, n)
	case Kernel4Tap:
		batchAnalyze4Tap(approx, detail, soa, lo, hi, batch, n)
	default:
		batchAnalyzeGeneral(approx, detail, soa, lo, hi, batch, n, mode)
	}
}

// batchAnalyze2Tap: out[t] = c0*x[t] + c1*x[t-1], periodic.
func batchAnalyze2Tap(approx, detail, soa, lo, hi []float64, batch, n int) {
	h0, h1 := lo[0], lo[1]
	g0, g1 := hi[0], hi[1]
	for t := range n {
		prev := t - 1
		if prev < 0 {
			prev += n
		}
		xt := row(soa, t, batch)
		xp := row(soa, prev, batch)

		a := row(approx, t, batch)
		floats.ScaleTo(a, h0, xt)
		floats.AddScaled(a, h1, xp)

		d := row(detail, t, batch)
		floats.ScaleTo(d, g0, xt)
		floats.AddScaled(d, g1, xp)
	}
}

// batchAnalyze4Tap: out[t] = sum of four taps, periodic.
func batchAnalyze4Tap(approx, detail, soa, lo, hi []float64, batch, n int) {
	for t := range n {
		i1 := t - 1
		if i1 < 0 {
			i1 += n
		}
		i2 := t - 2
		if i2 < 0 {
			i2 += n
		}
		i3 := t - 3
		if i3 < 0 {
			i3 += n
		}
		x0 := row(soa, t, batch)
		x1 := row(soa, i1, batch)
		x2 := row(soa, i2, batch)
		x3 := row(soa, i3, batch)

		a := row(approx, t, batch)
		floats.ScaleTo(a, lo[0], x0)
		floats.AddScaled(a, lo[1], x1)
		floats.AddScaled(a, lo[2], x2)
		floats.AddScaled(a, lo[3], x3)

		d := row(detail, t, batch)
		floats.ScaleTo(d, hi[0], x0)
		floats.AddScaled(d, hi[1], x1)
		floats.AddScaled(d, hi[2], x2)
		floats.AddScaled(d, hi[3], x3)
	}
}

func batchAnalyzeGeneral(approx, detail, soa, lo, hi []float64, batch, n int, mode Boundary) {
	for t := range n {
		a := row(approx, t, batch)
		d := row(detail, t, batch)
		clear(a)
		clear(d)
		for l, hl := range lo {
			gl := hi[l]
			if hl == 0 && gl == 0 {
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
			x := row(soa, idx, batch)
			if hl != 0 {
				floats.AddScaled(a, hl, x)
			}
			if gl != 0 {
				floats.AddScaled(d, gl, x)
			}
		}
	}
}

// BatchSynthesize reconstructs every signal of an SoA batch from its
// analysis rows using the (t+l) synthesis indexing. dst must have length
// batch*n.
func BatchSynthesize(dst, approx, detail, lo, hi []float64, batch, n int, mode Boundary) {
	for t := range n {
		out := row(dst, t, batch)
		clear(out)
		for l, hl := range lo {
			gl := hi[l]
			if hl == 0 && gl == 0 {
				continue
			}
			idx := t + l
			switch mode {
			case BoundaryPeriodic:
				if idx >= n {
					idx -= n
				}
			case BoundaryZeroPad:
				if idx >= n {
					continue
				}
			case BoundarySymmetric:
				idx = mirror(idx, n)
			}
			if hl != 0 {
				floats.AddScaled(out, hl, row(approx, idx, batch))
			}
			if gl != 0 {
				floats.AddScaled(out, gl, row(detail, idx, batch))
			}
		}
	}
}

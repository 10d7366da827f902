package engine

import (
	"github.com/tphakala/simd/f64"
)

// DefaultBlockSize is the output block length for cache-blocked
// convolution: 4096 float64s keep the output block, the matching signal
// window and the filter inside L2 on common cores.
const DefaultBlockSize = 4096

// AnalyzePeriodicBlocked is the cache-blocked variant of periodic analysis
// for large signals. The wrap-around head is handled with scalar modular
// indexing; the interior is processed in fixed-size output blocks so each
// block's signal window stays cache-resident across the low-pass and
// high-pass passes.
//
// Output is identical to Analyze with BoundaryPeriodic. scr supplies the
// reversed-tap buffers; pass nil to allocate locally.
func AnalyzePeriodicBlocked(approx, detail, signal, lo, hi []float64, block int, scr *Scratch) {
	n := len(signal)
	fl := len(lo)
	if block <= 0 {
		block = DefaultBlockSize
	}

	// Sparse (upsampled) filters gain nothing from dense blocked kernels.
	if isSparse(lo) {
		analyzePeriodic(approx, detail, signal, lo, hi)
		return
	}

	// Head: indices wrap, handled scalar.
	head := fl - 1
	if head > n {
		head = n
	}
	for t := range head {
		var a, d float64
		for l, hl := range lo {
			gl := hi[l]
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
	if head >= n {
		return
	}

	var revLo, revHi []float64
	if scr != nil {
		revLo = scr.Grab(fl)
		revHi = scr.Grab(fl)
		defer scr.Release(revLo)
		defer scr.Release(revHi)
	} else {
		revLo = make([]float64, fl)
		revHi = make([]float64, fl)
	}
	reverseInto(revLo, lo)
	reverseInto(revHi, hi)

	// Interior: out[t] for t >= fl-1 never wraps, so each output block is a
	// valid convolution of the signal window [start-fl+1, end) against the
	// reversed taps.
	for start := head; start < n; start += block {
		end := start + block
		if end > n {
			end = n
		}
		window := signal[start-fl+1 : end]
		f64.ConvolveValid(approx[start:end], window, revLo)
		f64.ConvolveValid(detail[start:end], window, revHi)
	}
}

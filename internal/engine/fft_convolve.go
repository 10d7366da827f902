package engine

import (
	"github.com/tphakala/simd/c128"
	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"
)

// FFT convolution constants.
const (
	// MinTapsForFFT is the filter length above which periodic analysis
	// dispatches to frequency-domain convolution. Empirical crossover for
	// dense filters against the blocked SIMD path.
	MinTapsForFFT = 128

	// fftHermitianDivisor derives the unique bin count of a real FFT:
	// a real transform of size N has N/2+1 unique complex coefficients.
	fftHermitianDivisor = 2
)

// UseFFT reports whether a filter should take the frequency-domain path:
// long and dense. Upsampled (sparse) filters stay on the zero-skip scalar
// path, whose cost scales with the nonzero tap count only.
func UseFFT(taps []float64) bool {
	return len(taps) >= MinTapsForFFT && !isSparse(taps)
}

// FFTConvolver performs circular convolution of a fixed filter pair with
// length-n signals via a real FFT. The MODWT periodic analysis
//
//	out[t] = sum_l h[l] * x[(t-l) mod n]
//
// is exactly circular convolution, so Y = X.*H with H the transform of the
// zero-padded taps, at O(n log n) instead of O(n*L).
//
// A convolver is bound to one signal length and one filter pair; the
// filter spectra are computed once. Not safe for concurrent use: the
// working buffers are reused across calls.
type FFTConvolver struct {
	fft *fourier.FFT
	n   int

	loFFT []complex128
	hiFFT []complex128

	// Working buffers, reused across calls for zero steady-state allocation.
	signalFFT  []complex128
	productFFT []complex128
	ifftBuf    []float64
	scale      float64 // 1/n; gonum's inverse transform is unnormalized
}

// NewFFTConvolver builds a convolver for the given analysis filter pair
// and signal length. Returns nil when the filters do not fit the signal;
// callers truncate first.
func NewFFTConvolver(lo, hi []float64, n int) *FFTConvolver {
	if n < 1 || len(lo) == 0 || len(lo) > n || len(hi) != len(lo) {
		return nil
	}

	fft := fourier.NewFFT(n)
	bins := n/fftHermitianDivisor + 1

	padded := make([]float64, n)
	copy(padded, lo)
	loFFT := fft.Coefficients(nil, padded)

	for i := range padded {
		padded[i] = 0
	}
	copy(padded, hi)
	hiFFT := fft.Coefficients(nil, padded)

	return &FFTConvolver{
		fft:        fft,
		n:          n,
		loFFT:      loFFT,
		hiFFT:      hiFFT,
		signalFFT:  make([]complex128, bins),
		productFFT: make([]complex128, bins),
		ifftBuf:    make([]float64, n),
		scale:      1.0 / float64(n),
	}
}

// N returns the signal length the convolver is bound to.
func (c *FFTConvolver) N() int { return c.n }

// Analyze computes the periodic analysis outputs for one signal of length
// n. The signal is transformed once and multiplied against both filter
// spectra.
func (c *FFTConvolver) Analyze(approx, detail, signal []float64) {
	c.signalFFT = c.fft.Coefficients(c.signalFFT, signal)

	c128.Mul(c.productFFT, c.signalFFT, c.loFFT)
	c.ifftBuf = c.fft.Sequence(c.ifftBuf, c.productFFT)
	f64.Scale(approx, c.ifftBuf, c.scale)

	c128.Mul(c.productFFT, c.signalFFT, c.hiFFT)
	c.ifftBuf = c.fft.Sequence(c.ifftBuf, c.productFFT)
	f64.Scale(detail, c.ifftBuf, c.scale)
}

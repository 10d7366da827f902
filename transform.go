package modwt

import (
	"fmt"
	"sync"

	"github.com/tphakala/go-modwt/internal/engine"
	"github.com/tphakala/go-modwt/internal/filter"
)

// Transform computes the single-level MODWT for one wavelet and boundary
// mode. Instances are safe for concurrent Forward and Inverse calls: the
// filter caches are concurrent and the FFT convolver cache hands each
// caller exclusive use of a convolver.
type Transform struct {
	pair filter.Pair
	mode BoundaryMode

	levels *filter.Cache
	trunc  *filter.TruncCache

	// FFT convolvers keyed by (level, signal length); each entry carries
	// its own working buffers, so entries are checked out under the lock.
	fftMu    sync.Mutex
	fftConvs map[fftKey]*engine.FFTConvolver
}

type fftKey struct {
	level int
	n     int
}

// NewTransform builds a single-level transform for the wavelet and
// boundary mode.
func NewTransform(w Wavelet, mode BoundaryMode) (*Transform, error) {
	pair, err := pairFromWavelet(w)
	if err != nil {
		return nil, err
	}
	if !mode.valid() {
		return nil, fmt.Errorf("%w: unsupported boundary mode %v", ErrInvalidConfig, mode)
	}
	return &Transform{
		pair:     pair,
		mode:     mode,
		levels:   filter.NewCache(),
		trunc:    filter.NewTruncCache(),
		fftConvs: make(map[fftKey]*engine.FFTConvolver),
	}, nil
}

// Wavelet returns the name of the wavelet the transform is bound to.
func (t *Transform) Wavelet() string { return t.pair.Name }

// Boundary returns the boundary mode the transform is bound to.
func (t *Transform) Boundary() BoundaryMode { return t.mode }

// FilterLength returns the base filter tap count.
func (t *Transform) FilterLength() int { return len(t.pair.LoD) }

// levelFilters returns the level-scaled filter bank truncated to the
// signal length.
func (t *Transform) levelFilters(level, n int) (*filter.LevelFilters, error) {
	lf, err := t.levels.ForLevel(t.pair, level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return t.trunc.Fit(t.pair.Name, lf, n), nil
}

// Forward computes one MODWT level of the signal. The outputs have the
// same length as the input; the input is never modified.
func (t *Transform) Forward(signal []float64) (*MODWTResult, error) {
	if err := checkSignal(signal); err != nil {
		return nil, err
	}
	n := len(signal)

	lf, err := t.levelFilters(1, n)
	if err != nil {
		return nil, err
	}

	approx := make([]float64, n)
	detail := make([]float64, n)
	t.analyze(approx, detail, signal, lf)
	return newResult(approx, detail), nil
}

// analyze runs one analysis convolution pair, dispatching long dense
// filters in periodic mode to the FFT convolver.
func (t *Transform) analyze(approx, detail, signal []float64, lf *filter.LevelFilters) {
	if t.mode == Periodic && engine.UseFFT(lf.LoD) {
		conv := t.checkoutFFT(lf, len(signal))
		conv.Analyze(approx, detail, signal)
		t.checkinFFT(lf.Level, conv)
		return
	}
	engine.Analyze(approx, detail, signal, lf.LoD, lf.HiD, t.mode.engine())
}

// checkoutFFT takes the cached convolver for (level, n), building one on
// first use. The convolver's working buffers are not shareable, so the
// entry is removed from the map while in use; a concurrent caller for the
// same key builds a second convolver, and checkinFFT keeps one.
func (t *Transform) checkoutFFT(lf *filter.LevelFilters, n int) *engine.FFTConvolver {
	key := fftKey{level: lf.Level, n: n}
	t.fftMu.Lock()
	conv := t.fftConvs[key]
	delete(t.fftConvs, key)
	t.fftMu.Unlock()
	if conv == nil {
		conv = engine.NewFFTConvolver(lf.LoD, lf.HiD, n)
	}
	return conv
}

func (t *Transform) checkinFFT(level int, conv *engine.FFTConvolver) {
	key := fftKey{level: level, n: conv.N()}
	t.fftMu.Lock()
	if _, ok := t.fftConvs[key]; !ok {
		t.fftConvs[key] = conv
	}
	t.fftMu.Unlock()
}

// Inverse reconstructs the signal from a single-level result using the
// reconstruction taps with the (t+l) synthesis indexing. For orthogonal
// wavelets in periodic mode, Inverse(Forward(x)) == x to within
// floating-point tolerance.
func (t *Transform) Inverse(res *MODWTResult) ([]float64, error) {
	if err := res.check(); err != nil {
		return nil, err
	}
	n := res.Length()

	lf, err := t.levelFilters(1, n)
	if err != nil {
		return nil, err
	}

	dst := make([]float64, n)
	engine.Synthesize(dst, res.approx, res.detail, lf.LoR, lf.HiR, t.mode.engine())
	return dst, nil
}

// synthesize runs one synthesis convolution pair with the given level
// filters; used by the multi-level cascade.
func (t *Transform) synthesize(dst, approx, detail []float64, lf *filter.LevelFilters) {
	engine.Synthesize(dst, approx, detail, lf.LoR, lf.HiR, t.mode.engine())
}

package modwt

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-modwt/internal/engine"
	"github.com/tphakala/go-modwt/internal/filter"
	"github.com/tphakala/go-modwt/internal/validate"
)

// Wavelet is the filter-definition contract consumed by every transform.
// All four sequences must have the same length and contain only finite
// values; decomposition and reconstruction pairs must match in length.
// The github.com/tphakala/go-modwt/wavelet package provides standard
// orthogonal families satisfying this interface.
type Wavelet interface {
	// Name identifies the wavelet; transforms use it as a cache key, so
	// distinct filter banks must have distinct names.
	Name() string

	// LowPassDecomposition returns the low-pass analysis taps.
	LowPassDecomposition() []float64

	// HighPassDecomposition returns the high-pass analysis taps.
	HighPassDecomposition() []float64

	// LowPassReconstruction returns the low-pass synthesis taps.
	LowPassReconstruction() []float64

	// HighPassReconstruction returns the high-pass synthesis taps.
	HighPassReconstruction() []float64
}

// BoundaryMode selects how convolution indices beyond the signal edges are
// resolved.
type BoundaryMode int

const (
	// Periodic wraps indices modulo the signal length. The only mode with
	// exact perfect-reconstruction and shift-invariance guarantees.
	Periodic BoundaryMode = iota

	// ZeroPadding treats samples outside the signal as zero.
	ZeroPadding

	// Symmetric reflects indices at the edges without repeating the edge
	// sample.
	Symmetric
)

// String returns the boundary mode name.
func (m BoundaryMode) String() string {
	switch m {
	case Periodic:
		return "periodic"
	case ZeroPadding:
		return "zero-padding"
	case Symmetric:
		return "symmetric"
	default:
		return fmt.Sprintf("boundary(%d)", int(m))
	}
}

func (m BoundaryMode) valid() bool {
	return m == Periodic || m == ZeroPadding || m == Symmetric
}

func (m BoundaryMode) engine() engine.Boundary {
	switch m {
	case ZeroPadding:
		return engine.BoundaryZeroPad
	case Symmetric:
		return engine.BoundarySymmetric
	default:
		return engine.BoundaryPeriodic
	}
}

// Sentinel errors. Use errors.Is to distinguish failure classes: an invalid
// signal means the input data must be fixed, an invalid configuration means
// the request (levels, boundary mode) is impossible for this signal.
var (
	// ErrInvalidSignal indicates a nil, empty or non-finite input signal.
	ErrInvalidSignal = errors.New("invalid signal")

	// ErrInvalidFilter indicates a nil wavelet or a malformed filter bank.
	ErrInvalidFilter = errors.New("invalid wavelet filter")

	// ErrInvalidConfig indicates an impossible transform configuration,
	// such as a level count beyond the maximum for the signal length or an
	// unsupported boundary mode.
	ErrInvalidConfig = errors.New("invalid transform configuration")

	// ErrShutdown indicates the transformer no longer accepts work, or
	// that its shutdown could not drain in-flight tasks in time.
	ErrShutdown = errors.New("transformer shut down")
)

// pairFromWavelet validates a wavelet's filter bank and captures it as an
// internal filter pair. Slices returned by the wavelet are defensive copies
// already (the interface contract), so they are stored as-is.
func pairFromWavelet(w Wavelet) (filter.Pair, error) {
	if w == nil {
		return filter.Pair{}, fmt.Errorf("%w: wavelet is nil", ErrInvalidFilter)
	}
	loD := w.LowPassDecomposition()
	hiD := w.HighPassDecomposition()
	loR := w.LowPassReconstruction()
	hiR := w.HighPassReconstruction()
	if err := validate.FilterBank(loD, hiD, loR, hiR); err != nil {
		return filter.Pair{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	return filter.Pair{Name: w.Name(), LoD: loD, HiD: hiD, LoR: loR, HiR: hiR}, nil
}

// checkSignal wraps the validation collaborator's signal check in the
// public error taxonomy.
func checkSignal(signal []float64) error {
	if err := validate.Signal(signal); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignal, err)
	}
	return nil
}

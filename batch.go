package modwt

import (
	"fmt"

	"github.com/tphakala/go-modwt/internal/engine"
	"github.com/tphakala/go-modwt/internal/validate"
)

// BatchTransform computes the single-level MODWT of many same-length
// signals at once using a Structure-of-Arrays layout: element
// [t*batch + b] of an SoA buffer is signal b's sample at time t, so one
// contiguous row holds the whole batch at one time step and a single
// vector operation advances every signal together.
//
// The kernel strategy is decided once at construction from the filter's
// tap count (2-tap and 4-tap filters get fully unrolled periodic kernels;
// everything else uses the general kernel), not re-tested per call.
type BatchTransform struct {
	t    *Transform
	kind engine.KernelKind
}

// NewBatchTransform builds a batch transform for the wavelet and boundary
// mode.
func NewBatchTransform(w Wavelet, mode BoundaryMode) (*BatchTransform, error) {
	t, err := NewTransform(w, mode)
	if err != nil {
		return nil, err
	}
	return &BatchTransform{
		t:    t,
		kind: engine.SelectKernel(t.FilterLength(), mode.engine()),
	}, nil
}

// ConvertToSoA transposes per-signal slices into a freshly allocated SoA
// buffer. All signals must have equal, nonzero length. Pure data
// movement, O(batch x length).
func ConvertToSoA(signals [][]float64) ([]float64, error) {
	if err := validate.Signals(signals); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignal, err)
	}
	soa := make([]float64, len(signals)*len(signals[0]))
	engine.ToSoA(soa, signals)
	return soa, nil
}

// ConvertFromSoA transposes an SoA buffer back into per-signal slices.
func ConvertFromSoA(soa []float64, batch, signalLen int) ([][]float64, error) {
	if batch < 1 || signalLen < 1 || len(soa) != batch*signalLen {
		return nil, fmt.Errorf("%w: SoA buffer length %d != batch %d x signal length %d",
			ErrInvalidSignal, len(soa), batch, signalLen)
	}
	signals := make([][]float64, batch)
	for b := range signals {
		signals[b] = make([]float64, signalLen)
	}
	engine.FromSoA(signals, soa)
	return signals, nil
}

// ForwardSoA transforms an SoA batch in place of layout: the returned
// approximation and detail buffers use the same [t*batch + b] layout as
// the input. The input buffer is not modified.
func (bt *BatchTransform) ForwardSoA(soa []float64, batch, signalLen int) (approx, detail []float64, err error) {
	if batch < 1 || signalLen < 1 || len(soa) != batch*signalLen {
		return nil, nil, fmt.Errorf("%w: SoA buffer length %d != batch %d x signal length %d",
			ErrInvalidSignal, len(soa), batch, signalLen)
	}

	lf, err := bt.t.levelFilters(1, signalLen)
	if err != nil {
		return nil, nil, err
	}
	kind := bt.kind
	if len(lf.LoD) != bt.t.FilterLength() {
		// Filter was truncated to the signal; re-select the kernel.
		kind = engine.SelectKernel(len(lf.LoD), bt.t.mode.engine())
	}

	approx = make([]float64, batch*signalLen)
	detail = make([]float64, batch*signalLen)
	engine.BatchAnalyze(approx, detail, soa, lf.LoD, lf.HiD, batch, signalLen, bt.t.mode.engine(), kind)
	return approx, detail, nil
}

// Forward transforms a batch of same-length signals, converting through
// the SoA layout internally. Scratch buffers live only for this call.
func (bt *BatchTransform) Forward(signals [][]float64) ([]*MODWTResult, error) {
	if err := validate.Signals(signals); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignal, err)
	}
	batch, n := len(signals), len(signals[0])

	scr := engine.NewScratch()
	soa := scr.Grab(batch * n)
	engine.ToSoA(soa, signals)

	approxSoA, detailSoA, err := bt.ForwardSoA(soa, batch, n)
	if err != nil {
		return nil, err
	}
	scr.Release(soa)

	results := make([]*MODWTResult, batch)
	approxs := make([][]float64, batch)
	details := make([][]float64, batch)
	for b := range batch {
		approxs[b] = make([]float64, n)
		details[b] = make([]float64, n)
	}
	engine.FromSoA(approxs, approxSoA)
	engine.FromSoA(details, detailSoA)
	for b := range batch {
		results[b] = newResult(approxs[b], details[b])
	}
	return results, nil
}

// Inverse reconstructs a batch of signals from their single-level
// results. All results must share one signal length.
func (bt *BatchTransform) Inverse(results []*MODWTResult) ([][]float64, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: batch is empty", ErrInvalidSignal)
	}
	n := results[0].Length()
	for i, r := range results {
		if err := r.check(); err != nil {
			return nil, fmt.Errorf("batch result %d: %w", i, err)
		}
		if r.Length() != n {
			return nil, fmt.Errorf("%w: batch result %d has length %d, want %d",
				ErrInvalidSignal, i, r.Length(), n)
		}
	}
	batch := len(results)

	lf, err := bt.t.levelFilters(1, n)
	if err != nil {
		return nil, err
	}

	scr := engine.NewScratch()
	approxSoA := scr.Grab(batch * n)
	detailSoA := scr.Grab(batch * n)
	for b, r := range results {
		for t := 0; t < n; t++ {
			approxSoA[t*batch+b] = r.approx[t]
			detailSoA[t*batch+b] = r.detail[t]
		}
	}

	dstSoA := scr.Grab(batch * n)
	engine.BatchSynthesize(dstSoA, approxSoA, detailSoA, lf.LoR, lf.HiR, batch, n, bt.t.mode.engine())

	out := make([][]float64, batch)
	for b := range out {
		out[b] = make([]float64, n)
	}
	engine.FromSoA(out, dstSoA)
	return out, nil
}

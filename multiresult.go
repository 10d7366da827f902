package modwt

import (
	"fmt"
	"sync"

	"github.com/tphakala/simd/f64"
)

// MultiLevelMODWTResult holds a full MODWT decomposition: one detail
// sequence per level (level 1 = finest) plus the coarsest approximation,
// all of signal length. Immutable; accessors return defensive copies and
// energy metrics are memoized on first use. For coefficient editing
// (thresholding), derive a mutable view with Mutable.
type MultiLevelMODWTResult struct {
	n       int
	levels  int
	details [][]float64
	approx  []float64

	// Memoized energy metrics. The Once makes first use safe across
	// goroutines sharing the immutable result; mutable views invalidate
	// by replacing it (they require external synchronization anyway).
	energyOnce     sync.Once
	detailEnergies []float64
	approxEnergy   float64
	totalEnergy    float64
}

// newMultiResult takes ownership of the coefficient slices.
func newMultiResult(details [][]float64, approx []float64) *MultiLevelMODWTResult {
	return &MultiLevelMODWTResult{
		n:       len(approx),
		levels:  len(details),
		details: details,
		approx:  approx,
	}
}

// Levels returns the number of decomposition levels.
func (r *MultiLevelMODWTResult) Levels() int { return r.levels }

// SignalLength returns the length of the transformed signal; every
// coefficient sequence has this length.
func (r *MultiLevelMODWTResult) SignalLength() int { return r.n }

// checkLevel validates a 1-based level index.
func (r *MultiLevelMODWTResult) checkLevel(level int) error {
	if level < 1 || level > r.levels {
		return fmt.Errorf("%w: level %d outside [1, %d]", ErrInvalidConfig, level, r.levels)
	}
	return nil
}

// Detail returns a copy of the detail coefficients at the given level
// (1 = finest).
func (r *MultiLevelMODWTResult) Detail(level int) ([]float64, error) {
	if err := r.checkLevel(level); err != nil {
		return nil, err
	}
	out := make([]float64, r.n)
	copy(out, r.details[level-1])
	return out, nil
}

// Approximation returns a copy of the coarsest approximation.
func (r *MultiLevelMODWTResult) Approximation() []float64 {
	out := make([]float64, r.n)
	copy(out, r.approx)
	return out
}

// ensureEnergy computes the memoized energy metrics on first use.
func (r *MultiLevelMODWTResult) ensureEnergy() {
	r.energyOnce.Do(r.computeEnergy)
}

func (r *MultiLevelMODWTResult) computeEnergy() {
	r.detailEnergies = make([]float64, r.levels)
	total := 0.0
	for j, d := range r.details {
		e := f64.DotProduct(d, d)
		r.detailEnergies[j] = e
		total += e
	}
	r.approxEnergy = f64.DotProduct(r.approx, r.approx)
	r.totalEnergy = total + r.approxEnergy
}

// DetailEnergy returns the sum of squared detail coefficients at a level.
func (r *MultiLevelMODWTResult) DetailEnergy(level int) (float64, error) {
	if err := r.checkLevel(level); err != nil {
		return 0, err
	}
	r.ensureEnergy()
	return r.detailEnergies[level-1], nil
}

// ApproximationEnergy returns the sum of squared approximation
// coefficients.
func (r *MultiLevelMODWTResult) ApproximationEnergy() float64 {
	r.ensureEnergy()
	return r.approxEnergy
}

// TotalEnergy returns the energy summed over every level and the
// approximation. For orthogonal wavelets in periodic mode this equals the
// energy of the original signal.
func (r *MultiLevelMODWTResult) TotalEnergy() float64 {
	r.ensureEnergy()
	return r.totalEnergy
}

// EnergyDistribution returns the relative energy per band: element j (for
// j < Levels) is the fraction held by detail level j+1, and the final
// element is the approximation's fraction.
func (r *MultiLevelMODWTResult) EnergyDistribution() []float64 {
	r.ensureEnergy()
	out := make([]float64, r.levels+1)
	if r.totalEnergy == 0 {
		return out
	}
	for j, e := range r.detailEnergies {
		out[j] = e / r.totalEnergy
	}
	out[r.levels] = r.approxEnergy / r.totalEnergy
	return out
}

// clone deep-copies the result.
func (r *MultiLevelMODWTResult) clone() *MultiLevelMODWTResult {
	details := make([][]float64, r.levels)
	for j, d := range r.details {
		details[j] = make([]float64, r.n)
		copy(details[j], d)
	}
	approx := make([]float64, r.n)
	copy(approx, r.approx)
	return newMultiResult(details, approx)
}

// Mutable returns an editable deep copy of the result. The original is
// unaffected by edits. Mutable results require external synchronization
// when shared across goroutines.
func (r *MultiLevelMODWTResult) Mutable() *MutableMultiLevelMODWTResult {
	return &MutableMultiLevelMODWTResult{MultiLevelMODWTResult: r.clone()}
}

// MutableMultiLevelMODWTResult permits direct coefficient editing, the
// building block for thresholding-based denoising. Every mutation
// invalidates the memoized energy metrics; mutating through the exposed
// slices directly requires an explicit Invalidate call afterwards.
type MutableMultiLevelMODWTResult struct {
	*MultiLevelMODWTResult
}

// Invalidate discards memoized energy metrics. Called automatically by
// the Set methods; call it manually after editing an exposed slice.
func (m *MutableMultiLevelMODWTResult) Invalidate() {
	m.energyOnce = sync.Once{}
	m.detailEnergies = nil
}

// DetailSlice returns the backing detail slice for in-place editing.
// Call Invalidate after editing.
func (m *MutableMultiLevelMODWTResult) DetailSlice(level int) ([]float64, error) {
	if err := m.checkLevel(level); err != nil {
		return nil, err
	}
	return m.details[level-1], nil
}

// ApproximationSlice returns the backing approximation slice for in-place
// editing. Call Invalidate after editing.
func (m *MutableMultiLevelMODWTResult) ApproximationSlice() []float64 {
	return m.approx
}

// SetDetail replaces the detail coefficients at a level.
func (m *MutableMultiLevelMODWTResult) SetDetail(level int, values []float64) error {
	if err := m.checkLevel(level); err != nil {
		return err
	}
	if len(values) != m.n {
		return fmt.Errorf("%w: detail length %d != signal length %d",
			ErrInvalidSignal, len(values), m.n)
	}
	copy(m.details[level-1], values)
	m.Invalidate()
	return nil
}

// SetApproximation replaces the coarsest approximation coefficients.
func (m *MutableMultiLevelMODWTResult) SetApproximation(values []float64) error {
	if len(values) != m.n {
		return fmt.Errorf("%w: approximation length %d != signal length %d",
			ErrInvalidSignal, len(values), m.n)
	}
	copy(m.approx, values)
	m.Invalidate()
	return nil
}

// Snapshot returns an immutable deep copy of the current coefficients.
func (m *MutableMultiLevelMODWTResult) Snapshot() *MultiLevelMODWTResult {
	return m.clone()
}

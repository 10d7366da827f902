package modwt

import (
	"fmt"

	"github.com/tphakala/go-modwt/internal/filter"
)

// MultiLevelTransform computes multi-level MODWT decompositions by
// cascading the single-level transform: each level convolves the previous
// level's approximation with the level-scaled filters. Per-level filters
// are precomputed and cached, so repeated decompositions at the same
// levels reuse the upsampled taps.
type MultiLevelTransform struct {
	t *Transform
}

// NewMultiLevelTransform builds a multi-level transform for the wavelet
// and boundary mode.
func NewMultiLevelTransform(w Wavelet, mode BoundaryMode) (*MultiLevelTransform, error) {
	t, err := NewTransform(w, mode)
	if err != nil {
		return nil, err
	}
	return &MultiLevelTransform{t: t}, nil
}

// MaxLevels returns the deepest valid decomposition level for a signal of
// length n: the largest j such that the upsampled filter still fits,
// (L-1)*2^(j-1)+1 <= n.
func (m *MultiLevelTransform) MaxLevels(n int) int {
	return filter.MaxLevel(n, m.t.FilterLength())
}

// checkLevels validates a requested level count against the signal length.
// Requests beyond the maximum are an error, never silently clamped.
func (m *MultiLevelTransform) checkLevels(levels, n int) error {
	maxL := m.MaxLevels(n)
	if levels < 1 || levels > maxL {
		return fmt.Errorf("%w: %d levels requested, valid range [1, %d] for signal length %d and %d-tap filter",
			ErrInvalidConfig, levels, maxL, n, m.t.FilterLength())
	}
	return nil
}

// prepareFilters resolves every level's scaled filter bank before the
// decomposition loop starts, so the loop itself does no zero-insertion
// work and level-count errors surface before any computation.
func (m *MultiLevelTransform) prepareFilters(levels, n int) ([]*filter.LevelFilters, error) {
	lfs := make([]*filter.LevelFilters, levels)
	for j := 1; j <= levels; j++ {
		lf, err := m.t.levelFilters(j, n)
		if err != nil {
			return nil, err
		}
		lfs[j-1] = lf
	}
	return lfs, nil
}

// Decompose computes a multi-level MODWT of the signal. Details are
// indexed 1 = finest; the final approximation is the coarsest smooth.
func (m *MultiLevelTransform) Decompose(signal []float64, levels int) (*MultiLevelMODWTResult, error) {
	if err := checkSignal(signal); err != nil {
		return nil, err
	}
	n := len(signal)
	if err := m.checkLevels(levels, n); err != nil {
		return nil, err
	}
	lfs, err := m.prepareFilters(levels, n)
	if err != nil {
		return nil, err
	}

	// Ping-pong between two approximation buffers down the cascade; the
	// input is copied once and never written.
	current := make([]float64, n)
	copy(current, signal)
	next := make([]float64, n)

	details := make([][]float64, levels)
	for j := 1; j <= levels; j++ {
		detail := make([]float64, n)
		m.t.analyze(next, detail, current, lfs[j-1])
		details[j-1] = detail
		current, next = next, current
	}

	return newMultiResult(details, current), nil
}

// Reconstruct inverts a full decomposition back to the original signal.
func (m *MultiLevelTransform) Reconstruct(res *MultiLevelMODWTResult) ([]float64, error) {
	if res == nil {
		return nil, fmt.Errorf("%w: result is nil", ErrInvalidSignal)
	}
	return m.reconstructRange(res, 1, res.levels, true)
}

// ReconstructFromLevel reconstructs using the approximation and only the
// details at startLevel and coarser, zeroing the finer scales. This is the
// smoothing primitive: fine-scale noise is discarded while the coarse
// shape is reproduced exactly.
func (m *MultiLevelTransform) ReconstructFromLevel(res *MultiLevelMODWTResult, startLevel int) ([]float64, error) {
	if res == nil {
		return nil, fmt.Errorf("%w: result is nil", ErrInvalidSignal)
	}
	if startLevel < 1 || startLevel > res.levels {
		return nil, fmt.Errorf("%w: start level %d outside [1, %d]",
			ErrInvalidConfig, startLevel, res.levels)
	}
	return m.reconstructRange(res, startLevel, res.levels, true)
}

// ReconstructLevels performs bandpass reconstruction: only the details in
// [minLevel, maxLevel] contribute; all other levels and the coarse
// approximation are zero. The synthesis runs through the same convolution
// cascade as full reconstruction, so the bandpass outputs of
// complementary ranges plus the approximation-only reconstruction sum to
// the full signal.
func (m *MultiLevelTransform) ReconstructLevels(res *MultiLevelMODWTResult, minLevel, maxLevel int) ([]float64, error) {
	if res == nil {
		return nil, fmt.Errorf("%w: result is nil", ErrInvalidSignal)
	}
	if minLevel < 1 || maxLevel > res.levels || minLevel > maxLevel {
		return nil, fmt.Errorf("%w: level range [%d, %d] outside [1, %d]",
			ErrInvalidConfig, minLevel, maxLevel, res.levels)
	}
	return m.reconstructRange(res, minLevel, maxLevel, false)
}

// reconstructRange runs the synthesis cascade from the coarsest level down
// to level 1, substituting zeros for details outside [minLevel, maxLevel]
// and for the approximation when withApprox is false.
func (m *MultiLevelTransform) reconstructRange(res *MultiLevelMODWTResult, minLevel, maxLevel int, withApprox bool) ([]float64, error) {
	n := res.n
	lfs, err := m.prepareFilters(res.levels, n)
	if err != nil {
		return nil, err
	}

	current := make([]float64, n)
	if withApprox {
		copy(current, res.approx)
	}
	next := make([]float64, n)
	zeros := make([]float64, n)

	for j := res.levels; j >= 1; j-- {
		detail := res.details[j-1]
		if j < minLevel || j > maxLevel {
			detail = zeros
		}
		m.t.synthesize(next, current, detail, lfs[j-1])
		current, next = next, current
	}
	return current, nil
}

package filter

import "sync"

// Truncate limits a filter to at most n taps. Upsampled filters at deep
// levels can exceed the signal length; taps beyond the signal cannot be
// applied meaningfully, so they are dropped before convolution.
// Returns the input slice unchanged when it already fits.
func Truncate(taps []float64, n int) []float64 {
	if len(taps) <= n {
		return taps
	}
	return taps[:n]
}

type truncKey struct {
	name   string
	level  int
	target int
}

// TruncCache memoizes truncated level-filter banks keyed by
// (wavelet name, level, target length). Deep decompositions truncate the
// same filters to the same signal length over and over.
type TruncCache struct {
	mu sync.RWMutex
	m  map[truncKey]*LevelFilters
}

// NewTruncCache returns an empty truncation cache.
func NewTruncCache() *TruncCache {
	return &TruncCache{m: make(map[truncKey]*LevelFilters)}
}

// Fit returns lf with every filter truncated to at most n taps,
// memoizing the result. When the filters already fit, lf is returned as is
// and nothing is cached.
func (c *TruncCache) Fit(name string, lf *LevelFilters, n int) *LevelFilters {
	if len(lf.LoD) <= n {
		return lf
	}

	key := truncKey{name: name, level: lf.Level, target: n}

	c.mu.RLock()
	cached, ok := c.m[key]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	fitted := &LevelFilters{
		Level: lf.Level,
		LoD:   Truncate(lf.LoD, n),
		HiD:   Truncate(lf.HiD, n),
		LoR:   Truncate(lf.LoR, n),
		HiR:   Truncate(lf.HiR, n),
	}

	c.mu.Lock()
	if existing, ok := c.m[key]; ok {
		fitted = existing
	} else {
		c.m[key] = fitted
	}
	c.mu.Unlock()

	return fitted
}

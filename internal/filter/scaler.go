// Package filter implements per-level wavelet filter preparation for the
// MODWT: upsampling by zero insertion, the 1/sqrt(2) MODWT rescaling, and
// truncation of filters that outgrow the signal.
//
// The MODWT pyramid convolves each level's running approximation with the
// base filter upsampled by 2^(j-1) and rescaled by 1/sqrt(2). Because the
// scaling is applied once per cascade stage, the effective scale of the
// equivalent level-j filter is 2^(-j/2), which is what preserves energy
// and perfect reconstruction across levels.
package filter

import (
	"fmt"
	"math"
	"sync"
)

const (
	// modwtScale rescales DWT filter taps for the non-decimating transform.
	modwtScale = 1.0 / math.Sqrt2

	// maxShiftLevel bounds the upsampling stride exponent. Levels at or
	// beyond this would shift past the width of int on 32-bit platforms;
	// practical decompositions never get close (level 30 needs a signal of
	// at least 2^29+1 samples even for a 2-tap filter).
	maxShiftLevel = 30
)

// Pair holds the four filter coefficient sequences of a wavelet, already
// validated for shape. The Name identifies the wavelet for cache keying.
type Pair struct {
	Name string
	LoD  []float64
	HiD  []float64
	LoR  []float64
	HiR  []float64
}

// LevelFilters holds the upsampled, rescaled filters for one decomposition
// level. Filters are shared, read-only slices; callers must not mutate them.
type LevelFilters struct {
	Level int
	LoD   []float64
	HiD   []float64
	LoR   []float64
	HiR   []float64
}

// UpsampledLength returns the tap count of a filter of length l upsampled
// for the given level, or an error when the stride computation would
// overflow. Level 1 leaves the filter untouched.
func UpsampledLength(l, level int) (int, error) {
	if level < 1 {
		return 0, fmt.Errorf("level must be >= 1, got %d", level)
	}
	if level-1 >= maxShiftLevel {
		return 0, fmt.Errorf("level %d: upsampling stride 2^%d overflows", level, level-1)
	}
	stride := 1 << (level - 1)
	if l > 1 && (l-1) > (math.MaxInt32-1)/stride {
		return 0, fmt.Errorf("level %d: upsampled filter length overflows for %d taps", level, l)
	}
	return (l-1)*stride + 1, nil
}

// upsample inserts 2^(level-1)-1 zeros between consecutive taps and applies
// the MODWT rescaling. The caller has already validated the level.
func upsample(taps []float64, level int) []float64 {
	stride := 1 << (level - 1)
	out := make([]float64, (len(taps)-1)*stride+1)
	for i, tap := range taps {
		out[i*stride] = tap * modwtScale
	}
	return out
}

// ForLevel builds the level-scaled filter bank for one decomposition level.
// Pure function of (pair, level); use a Cache for repeated lookups.
func ForLevel(p Pair, level int) (*LevelFilters, error) {
	if _, err := UpsampledLength(len(p.LoD), level); err != nil {
		return nil, err
	}
	return &LevelFilters{
		Level: level,
		LoD:   upsample(p.LoD, level),
		HiD:   upsample(p.HiD, level),
		LoR:   upsample(p.LoR, level),
		HiR:   upsample(p.HiR, level),
	}, nil
}

// MaxLevel returns the deepest valid decomposition level for a signal of
// length n and a base filter of filterLen taps: the largest j such that
// (filterLen-1)*2^(j-1)+1 <= n. Returns 0 when even level 1 does not fit.
func MaxLevel(n, filterLen int) int {
	if n < 1 || filterLen < 2 {
		return 0
	}
	level := 0
	for {
		upLen, err := UpsampledLength(filterLen, level+1)
		if err != nil || upLen > n {
			return level
		}
		level++
	}
}

type cacheKey struct {
	name  string
	level int
}

// Cache memoizes level-scaled filter banks keyed by (wavelet name, level).
// Safe for concurrent use; lookups are read-mostly.
type Cache struct {
	mu sync.RWMutex
	m  map[cacheKey]*LevelFilters
}

// NewCache returns an empty level-filter cache.
func NewCache() *Cache {
	return &Cache{m: make(map[cacheKey]*LevelFilters)}
}

// ForLevel returns the cached level filters for (pair, level), computing
// and storing them on first use.
func (c *Cache) ForLevel(p Pair, level int) (*LevelFilters, error) {
	key := cacheKey{name: p.Name, level: level}

	c.mu.RLock()
	lf, ok := c.m[key]
	c.mu.RUnlock()
	if ok {
		return lf, nil
	}

	lf, err := ForLevel(p, level)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	// Another goroutine may have raced us here; keep the first entry so
	// all callers share one slice set.
	if existing, ok := c.m[key]; ok {
		lf = existing
	} else {
		c.m[key] = lf
	}
	c.mu.Unlock()

	return lf, nil
}

// Len reports the number of cached level-filter banks.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

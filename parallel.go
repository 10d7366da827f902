package modwt

import (
	"fmt"
	"sync"

	"github.com/tphakala/go-modwt/internal/engine"
	"github.com/tphakala/go-modwt/internal/exec"
)

// Executor runs the convolution tasks of the parallel engine. Submit must
// either schedule the task for execution and return nil, or reject it
// with an error; it must never drop a task silently. The internal worker
// pool and the default goroutine-per-task executor both satisfy this.
type Executor interface {
	Submit(task func()) error
}

// ParallelTransform computes multi-level decompositions with the level
// dependency chain expressed as a sequence of two-task barriers: within a
// level, the low-pass convolution (next approximation) and the high-pass
// convolution (this level's detail) read the same input and write
// disjoint outputs, so they run concurrently; the cascade advances only
// after both complete. Every output buffer is allocated before the first
// task starts, so tasks never allocate.
type ParallelTransform struct {
	mt   *MultiLevelTransform
	exec Executor
}

// NewParallelTransform builds a parallel multi-level transform. A nil
// executor defaults to goroutine-per-task scheduling on the runtime's
// work-stealing scheduler.
func NewParallelTransform(w Wavelet, mode BoundaryMode, executor Executor) (*ParallelTransform, error) {
	mt, err := NewMultiLevelTransform(w, mode)
	if err != nil {
		return nil, err
	}
	if executor == nil {
		executor = exec.Goroutines{}
	}
	return &ParallelTransform{mt: mt, exec: executor}, nil
}

// MaxLevels returns the deepest valid decomposition level for a signal of
// length n.
func (p *ParallelTransform) MaxLevels(n int) int { return p.mt.MaxLevels(n) }

// Decompose computes the same result as MultiLevelTransform.Decompose,
// executing each level's two convolutions as concurrent tasks.
func (p *ParallelTransform) Decompose(signal []float64, levels int) (*MultiLevelMODWTResult, error) {
	if err := checkSignal(signal); err != nil {
		return nil, err
	}
	n := len(signal)
	if err := p.mt.checkLevels(levels, n); err != nil {
		return nil, err
	}
	lfs, err := p.mt.prepareFilters(levels, n)
	if err != nil {
		return nil, err
	}

	// Pre-allocate the full coefficient hierarchy and the ping-pong
	// approximation buffers up front.
	details := make([][]float64, levels)
	for j := range details {
		details[j] = make([]float64, n)
	}
	current := make([]float64, n)
	copy(current, signal)
	next := make([]float64, n)

	mode := p.mt.t.mode.engine()
	for j := 1; j <= levels; j++ {
		lf := lfs[j-1]
		in, lowOut, highOut := current, next, details[j-1]

		var wg sync.WaitGroup
		wg.Add(2)
		if err := p.exec.Submit(func() {
			defer wg.Done()
			engine.ConvolveDown(lowOut, in, lf.LoD, mode)
		}); err != nil {
			wg.Done()
			wg.Done()
			return nil, fmt.Errorf("%w: level %d low-pass task rejected: %v", ErrShutdown, j, err)
		}
		if err := p.exec.Submit(func() {
			defer wg.Done()
			engine.ConvolveDown(highOut, in, lf.HiD, mode)
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("%w: level %d high-pass task rejected: %v", ErrShutdown, j, err)
		}
		// Barrier: level j+1 must not observe a partially written
		// approximation.
		wg.Wait()

		current, next = next, current
	}

	return newMultiResult(details, current), nil
}

// Reconstruct inverts a decomposition produced by this (or any) transform
// with the same wavelet and boundary mode. Synthesis reads two coefficient
// arrays per level into one output, so it stays sequential.
func (p *ParallelTransform) Reconstruct(res *MultiLevelMODWTResult) ([]float64, error) {
	return p.mt.Reconstruct(res)
}

package modwt

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/tphakala/go-modwt/internal/engine"
	"github.com/tphakala/go-modwt/internal/exec"
)

// TransformerConfig tunes the routing and concurrency of an
// OptimizedTransformer. The zero value selects sensible defaults.
type TransformerConfig struct {
	// LargeSignalThreshold routes single signals at or above this length
	// to cache-blocked convolution (periodic mode only). Default 4096.
	LargeSignalThreshold int

	// ParallelBatchThreshold routes batches at or above this size to the
	// task-parallel batch path. Default 32.
	ParallelBatchThreshold int

	// Parallelism is the worker count of the owned executor. Values above
	// 1 create a dedicated pool used by the parallel batch path and the
	// async API; 0 defaults to GOMAXPROCS, 1 disables the pool.
	Parallelism int

	// ShutdownTimeout bounds the drain phase of Close; the forced-cancel
	// wait is half of it. Default 5s.
	ShutdownTimeout time.Duration
}

func (c TransformerConfig) withDefaults() TransformerConfig {
	if c.LargeSignalThreshold <= 0 {
		c.LargeSignalThreshold = defaultLargeSignalThreshold
	}
	if c.ParallelBatchThreshold <= 0 {
		c.ParallelBatchThreshold = defaultParallelBatchThreshold
	}
	if c.Parallelism == 0 {
		c.Parallelism = runtime.GOMAXPROCS(0)
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
	return c
}

// transformKey identifies a cached transform instance.
type transformKey struct {
	wavelet string
	mode    BoundaryMode
}

// OptimizedTransformer is the dispatching front end of the library. It
// selects a convolution strategy from the signal length and batch size,
// and caches constructed transform instances per (wavelet, boundary mode)
// so repeated transforms pay no construction cost.
//
// Routing:
//   - single signal, periodic, length >= LargeSignalThreshold:
//     cache-blocked convolution with pooled scratch
//   - single signal otherwise: cached single-level transform (which itself
//     dispatches long dense filters to FFT convolution)
//   - batch >= ParallelBatchThreshold with a pool: batch split across
//     workers, each chunk through the SoA engine
//   - batch >= 2: SoA engine
//   - batch of 1: single-signal path
//
// Safe for concurrent use. Close shuts the owned executor down.
type OptimizedTransformer struct {
	cfg TransformerConfig

	mu         sync.RWMutex
	closed     bool
	transforms map[transformKey]*Transform
	batches    map[transformKey]*BatchTransform

	pool    *exec.Pool // nil when Parallelism <= 1
	scratch sync.Pool  // *engine.Scratch
}

// NewOptimizedTransformer builds a dispatcher with the given
// configuration; pass the zero value for defaults.
func NewOptimizedTransformer(cfg TransformerConfig) *OptimizedTransformer {
	cfg = cfg.withDefaults()
	o := &OptimizedTransformer{
		cfg:        cfg,
		transforms: make(map[transformKey]*Transform),
		batches:    make(map[transformKey]*BatchTransform),
	}
	if cfg.Parallelism > 1 {
		o.pool = exec.NewPool(cfg.Parallelism, cfg.Parallelism*queueDepthPerWorker)
	}
	o.scratch.New = func() any { return engine.NewScratch() }
	return o
}

// transform returns the cached single-level transform for (wavelet,
// mode), constructing it on first use. Concurrent get-or-create: readers
// take the read lock; a miss upgrades and re-checks.
func (o *OptimizedTransformer) transform(w Wavelet, mode BoundaryMode) (*Transform, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: wavelet is nil", ErrInvalidFilter)
	}
	key := transformKey{wavelet: w.Name(), mode: mode}

	o.mu.RLock()
	t, ok := o.transforms[key]
	o.mu.RUnlock()
	if ok {
		return t, nil
	}

	t, err := NewTransform(w, mode)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	if existing, ok := o.transforms[key]; ok {
		t = existing
	} else {
		o.transforms[key] = t
	}
	o.mu.Unlock()
	return t, nil
}

// batchTransform is the batch analogue of transform.
func (o *OptimizedTransformer) batchTransform(w Wavelet, mode BoundaryMode) (*BatchTransform, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: wavelet is nil", ErrInvalidFilter)
	}
	key := transformKey{wavelet: w.Name(), mode: mode}

	o.mu.RLock()
	bt, ok := o.batches[key]
	o.mu.RUnlock()
	if ok {
		return bt, nil
	}

	bt, err := NewBatchTransform(w, mode)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	if existing, ok := o.batches[key]; ok {
		bt = existing
	} else {
		o.batches[key] = bt
	}
	o.mu.Unlock()
	return bt, nil
}

func (o *OptimizedTransformer) isClosed() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.closed
}

// Transform computes a single-level MODWT, routing by signal length.
func (o *OptimizedTransformer) Transform(signal []float64, w Wavelet, mode BoundaryMode) (*MODWTResult, error) {
	if o.isClosed() {
		return nil, ErrShutdown
	}
	t, err := o.transform(w, mode)
	if err != nil {
		return nil, err
	}

	// Cache-blocking needs the no-wrap interior of periodic convolution;
	// other boundary modes fall back to the plain transform, which is the
	// slower but equally correct path.
	if mode == Periodic && len(signal) >= o.cfg.LargeSignalThreshold {
		return o.transformBlocked(t, signal)
	}
	return t.Forward(signal)
}

// transformBlocked runs the cache-blocked periodic path with a pooled
// scratch arena.
func (o *OptimizedTransformer) transformBlocked(t *Transform, signal []float64) (*MODWTResult, error) {
	if err := checkSignal(signal); err != nil {
		return nil, err
	}
	n := len(signal)
	lf, err := t.levelFilters(1, n)
	if err != nil {
		return nil, err
	}

	scr, _ := o.scratch.Get().(*engine.Scratch)
	defer o.scratch.Put(scr)

	approx := make([]float64, n)
	detail := make([]float64, n)
	engine.AnalyzePeriodicBlocked(approx, detail, signal, lf.LoD, lf.HiD, engine.DefaultBlockSize, scr)
	return newResult(approx, detail), nil
}

// Inverse reconstructs a signal from a single-level result through the
// cached transform instance.
func (o *OptimizedTransformer) Inverse(res *MODWTResult, w Wavelet, mode BoundaryMode) ([]float64, error) {
	if o.isClosed() {
		return nil, ErrShutdown
	}
	t, err := o.transform(w, mode)
	if err != nil {
		return nil, err
	}
	return t.Inverse(res)
}

// TransformBatch computes single-level MODWTs for a batch of same-length
// signals, routing by batch size.
func (o *OptimizedTransformer) TransformBatch(signals [][]float64, w Wavelet, mode BoundaryMode) ([]*MODWTResult, error) {
	if o.isClosed() {
		return nil, ErrShutdown
	}
	if len(signals) == 0 {
		return nil, fmt.Errorf("%w: batch is empty", ErrInvalidSignal)
	}

	switch {
	case len(signals) >= o.cfg.ParallelBatchThreshold && o.pool != nil:
		return o.transformBatchParallel(signals, w, mode)
	case len(signals) >= minBatchForSoA:
		bt, err := o.batchTransform(w, mode)
		if err != nil {
			return nil, err
		}
		return bt.Forward(signals)
	default:
		t, err := o.transform(w, mode)
		if err != nil {
			return nil, err
		}
		results := make([]*MODWTResult, len(signals))
		for i, s := range signals {
			res, err := t.Forward(s)
			if err != nil {
				return nil, fmt.Errorf("batch signal %d: %w", i, err)
			}
			results[i] = res
		}
		return results, nil
	}
}

// transformBatchParallel splits the batch into per-worker chunks, each
// processed through the SoA engine, with a barrier before results are
// observed.
func (o *OptimizedTransformer) transformBatchParallel(signals [][]float64, w Wavelet, mode BoundaryMode) ([]*MODWTResult, error) {
	bt, err := o.batchTransform(w, mode)
	if err != nil {
		return nil, err
	}

	workers := o.cfg.Parallelism
	chunk := (len(signals) + workers - 1) / workers
	if chunk < minBatchForSoA {
		chunk = minBatchForSoA
	}

	type span struct{ lo, hi int }
	var spans []span
	for lo := 0; lo < len(signals); lo += chunk {
		hi := lo + chunk
		if hi > len(signals) {
			hi = len(signals)
		}
		spans = append(spans, span{lo, hi})
	}

	results := make([]*MODWTResult, len(signals))
	errs := make([]error, len(spans))
	var wg sync.WaitGroup
	for i, sp := range spans {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			chunkResults, err := bt.Forward(signals[sp.lo:sp.hi])
			if err != nil {
				errs[i] = err
				return
			}
			copy(results[sp.lo:sp.hi], chunkResults)
		}
		if err := o.pool.Submit(task); err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("%w: batch task rejected: %v", ErrShutdown, err)
		}
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("batch chunk %d: %w", i, err)
		}
	}
	return results, nil
}

// TransformResult carries an async single-signal outcome.
type TransformResult struct {
	Result *MODWTResult
	Err    error
}

// BatchResult carries an async batch outcome.
type BatchResult struct {
	Results []*MODWTResult
	Err     error
}

// TransformAsync runs Transform on the owned executor (or a goroutine
// when no pool is configured) and delivers the outcome on the returned
// channel. The channel is buffered; the result is never dropped.
func (o *OptimizedTransformer) TransformAsync(signal []float64, w Wavelet, mode BoundaryMode) <-chan TransformResult {
	out := make(chan TransformResult, 1)
	task := func() {
		res, err := o.Transform(signal, w, mode)
		out <- TransformResult{Result: res, Err: err}
	}
	if err := o.submit(task); err != nil {
		out <- TransformResult{Err: err}
	}
	return out
}

// TransformBatchAsync runs TransformBatch asynchronously.
func (o *OptimizedTransformer) TransformBatchAsync(signals [][]float64, w Wavelet, mode BoundaryMode) <-chan BatchResult {
	out := make(chan BatchResult, 1)
	task := func() {
		results, err := o.TransformBatch(signals, w, mode)
		out <- BatchResult{Results: results, Err: err}
	}
	if err := o.submit(task); err != nil {
		out <- BatchResult{Err: err}
	}
	return out
}

func (o *OptimizedTransformer) submit(task func()) error {
	if o.isClosed() {
		return ErrShutdown
	}
	if o.pool != nil {
		if err := o.pool.Submit(task); err != nil {
			return fmt.Errorf("%w: %v", ErrShutdown, err)
		}
		return nil
	}
	go task()
	return nil
}

// Close stops accepting work and shuts the owned executor down in two
// bounded phases: wait for in-flight tasks up to ShutdownTimeout, then
// force-close and wait half as long again for the workers to exit. A
// non-nil error reports a cleanup failure; computations already returned
// are unaffected.
func (o *OptimizedTransformer) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	o.mu.Unlock()

	if o.pool == nil {
		return nil
	}
	drain := o.cfg.ShutdownTimeout
	kill := drain / shutdownKillDivisor
	if err := o.pool.Shutdown(drain, kill); err != nil {
		return fmt.Errorf("%w: %v", ErrShutdown, err)
	}
	return nil
}

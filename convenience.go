package modwt

// One-shot helpers for callers that do not need to reuse transform
// instances. Each constructs the transform, runs it, and discards it;
// for repeated transforms construct a Transform, MultiLevelTransform or
// OptimizedTransformer once instead.

// Forward computes a single-level MODWT of the signal.
func Forward(signal []float64, w Wavelet, mode BoundaryMode) (*MODWTResult, error) {
	t, err := NewTransform(w, mode)
	if err != nil {
		return nil, err
	}
	return t.Forward(signal)
}

// Inverse reconstructs a signal from a single-level result.
func Inverse(res *MODWTResult, w Wavelet, mode BoundaryMode) ([]float64, error) {
	t, err := NewTransform(w, mode)
	if err != nil {
		return nil, err
	}
	return t.Inverse(res)
}

// Decompose computes a multi-level MODWT of the signal.
func Decompose(signal []float64, w Wavelet, mode BoundaryMode, levels int) (*MultiLevelMODWTResult, error) {
	mt, err := NewMultiLevelTransform(w, mode)
	if err != nil {
		return nil, err
	}
	return mt.Decompose(signal, levels)
}

// Reconstruct inverts a multi-level decomposition back to the signal.
func Reconstruct(res *MultiLevelMODWTResult, w Wavelet, mode BoundaryMode) ([]float64, error) {
	mt, err := NewMultiLevelTransform(w, mode)
	if err != nil {
		return nil, err
	}
	return mt.Reconstruct(res)
}

// Denoise decomposes the signal, thresholds every detail level with the
// caller-supplied lambda, and reconstructs. The threshold choice is the
// caller's; this function only wires the primitive steps together.
func Denoise(signal []float64, w Wavelet, mode BoundaryMode, levels int, lambda float64, soft bool) ([]float64, error) {
	mt, err := NewMultiLevelTransform(w, mode)
	if err != nil {
		return nil, err
	}
	dec, err := mt.Decompose(signal, levels)
	if err != nil {
		return nil, err
	}
	mut := dec.Mutable()
	if err := mut.Threshold(lambda, soft); err != nil {
		return nil, err
	}
	return mt.Reconstruct(mut.Snapshot())
}

// CircularShift returns a copy of the signal rotated by k positions:
// output[t] = signal[(t-k) mod n]. Negative k rotates the other way.
// MODWT in periodic mode commutes with this operation.
func CircularShift(signal []float64, k int) []float64 {
	n := len(signal)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	k %= n
	if k < 0 {
		k += n
	}
	for t := range n {
		src := t - k
		if src < 0 {
			src += n
		}
		out[t] = signal[src]
	}
	return out
}

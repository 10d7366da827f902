package engine

// Scratch is a caller-owned arena of reusable float64 buffers. A Scratch
// is created per batch call (or taken from a pool by the dispatcher) and
// its lifetime ends with that call, so there is no global thread-local
// registry to leak across invocations in a shared pool.
//
// Not safe for concurrent use; each concurrent task gets its own Scratch.
type Scratch struct {
	free [][]float64
}

// NewScratch returns an empty arena.
func NewScratch() *Scratch {
	return &Scratch{}
}

// Grab returns a length-n buffer, reusing a released one when its capacity
// suffices. Contents are not cleared; kernels that accumulate must clear
// first.
func (s *Scratch) Grab(n int) []float64 {
	for i := len(s.free) - 1; i >= 0; i-- {
		if cap(s.free[i]) >= n {
			buf := s.free[i][:n]
			s.free[i] = s.free[len(s.free)-1]
			s.free = s.free[:len(s.free)-1]
			return buf
		}
	}
	return make([]float64, n)
}

// Release returns a buffer to the arena for reuse.
func (s *Scratch) Release(buf []float64) {
	if cap(buf) == 0 {
		return
	}
	s.free = append(s.free, buf)
}

// Reset drops all retained buffers.
func (s *Scratch) Reset() {
	s.free = s.free[:0]
}

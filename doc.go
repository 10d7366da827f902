// Package modwt implements the Maximal Overlap Discrete Wavelet Transform
// (MODWT) in pure Go: a shift-invariant, non-decimating wavelet
// decomposition for signals of arbitrary length.
//
// Unlike the decimating DWT, every decomposition level produces
// approximation and detail sequences of the same length as the input, the
// transform is defined for any signal length (not just powers of two), and
// circularly shifting the input circularly shifts every output by the same
// amount.
//
// # Features
//
//   - Single-level and multi-level forward/inverse transforms with
//     periodic, zero-padding and symmetric boundary handling
//   - Partial and bandpass reconstruction for denoising workflows
//   - Structure-of-Arrays batch engine for transforming many same-length
//     signals at once, with SIMD-friendly row kernels
//   - Task-parallel multi-level decomposition with a pluggable executor
//   - An optimizing dispatcher that routes by signal length and batch size
//     (cache-blocked, FFT, SoA, parallel) and caches transform instances
//   - SIMD acceleration via github.com/tphakala/simd and
//     gonum.org/v1/gonum for FFT and vector arithmetic
//
// # Quick Start
//
// One-shot single-level transform with the Haar wavelet:
//
//	res, err := modwt.Forward(signal, wavelet.Haar(), modwt.Periodic)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	approx, detail := res.Approximation(), res.Detail()
//
// Multi-level decomposition and reconstruction:
//
//	mt, err := modwt.NewMultiLevelTransform(wavelet.Daubechies8(), modwt.Periodic)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	dec, err := mt.Decompose(signal, 4)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	restored, _ := mt.Reconstruct(dec)       // full round trip
//	smooth, _ := mt.ReconstructFromLevel(dec, 3) // discard fine scales
//
// # Scaling Convention
//
// Filters are rescaled by 1/sqrt(2) at every cascade stage, so the
// effective scale of the equivalent level-j filter is 2^(-j/2). This is
// the convention of Percival & Walden and is what makes perfect
// reconstruction and energy conservation hold across levels for
// orthogonal wavelets:
//
//	sum(x^2) == sum over levels of detail energy + approximation energy
//
// # Batch Processing
//
// [BatchTransform] transforms many same-length signals through a
// Structure-of-Arrays layout where one contiguous row holds every signal's
// sample at one time step, so a single vector operation advances the whole
// batch. [OptimizedTransformer] selects between sequential, SoA and
// task-parallel batch strategies automatically and caches per-(wavelet,
// boundary) transform instances for repeated use.
//
// # Thread Safety
//
// Transform instances are safe for concurrent Forward/Inverse calls except
// where noted; their internal filter caches are read-mostly maps designed
// for concurrent get-or-create. Result containers are immutable unless
// explicitly converted with [MultiLevelMODWTResult.Mutable], in which case
// the caller is responsible for synchronization.
package modwt

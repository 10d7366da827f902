package modwt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-modwt/internal/testutil"
	"github.com/tphakala/go-modwt/wavelet"
)

func TestForwardHaarPeriodicKnownValues(t *testing.T) {
	signal := []float64{1, 4, 2, 8, 5, 3, 7, 6}

	res, err := Forward(signal, wavelet.Haar(), Periodic)
	require.NoError(t, err)

	// Scaled Haar taps are [1/2, 1/2] and [1/2, -1/2], so
	// approx[t] = (x[t]+x[t-1])/2 and detail[t] = (x[t]-x[t-1])/2
	// with periodic wrap at t=0.
	wantApprox := []float64{3.5, 2.5, 3, 5, 6.5, 4, 5, 6.5}
	wantDetail := []float64{-2.5, 1.5, -1, 3, -1.5, -1, 2, -0.5}
	testutil.AssertSlicesInDelta(t, wantApprox, res.Approximation(), testutil.ExactTolerance)
	testutil.AssertSlicesInDelta(t, wantDetail, res.Detail(), testutil.ExactTolerance)
}

func TestForwardOutputLengthsMatchInput(t *testing.T) {
	for _, n := range []int{1, 2, 7, 64, 100} {
		signal := testutil.RandomSignal(n, int64(n))
		res, err := Forward(signal, wavelet.Daubechies4(), Periodic)
		require.NoError(t, err)
		assert.Equal(t, n, res.Length())
		assert.Len(t, res.Approximation(), n)
		assert.Len(t, res.Detail(), n)
	}
}

func TestForwardInversePerfectReconstruction(t *testing.T) {
	signal := testutil.RandomSignal(128, 42)
	for _, name := range wavelet.Names() {
		t.Run(name, func(t *testing.T) {
			w, err := wavelet.ByName(name)
			require.NoError(t, err)

			tr, err := NewTransform(w, Periodic)
			require.NoError(t, err)

			res, err := tr.Forward(signal)
			require.NoError(t, err)
			restored, err := tr.Inverse(res)
			require.NoError(t, err)
			testutil.AssertSlicesInDelta(t, signal, restored, testutil.ReconstructTolerance)
		})
	}
}

func TestForwardEnergyConservationPeriodic(t *testing.T) {
	signal := testutil.RandomSignal(256, 7)
	res, err := Forward(signal, wavelet.Symlet8(), Periodic)
	require.NoError(t, err)

	total := res.ApproximationEnergy() + res.DetailEnergy()
	testutil.AssertRelativeError(t, testutil.Energy(signal), total, testutil.EnergyRelTolerance)
}

func TestForwardShiftInvariancePeriodic(t *testing.T) {
	signal := testutil.RandomSignal(96, 11)
	tr, err := NewTransform(wavelet.Daubechies8(), Periodic)
	require.NoError(t, err)

	base, err := tr.Forward(signal)
	require.NoError(t, err)

	for _, shift := range []int{1, 5, -3, 48} {
		shifted, err := tr.Forward(CircularShift(signal, shift))
		require.NoError(t, err)
		testutil.AssertSlicesInDelta(t,
			CircularShift(base.Approximation(), shift), shifted.Approximation(),
			testutil.ReconstructTolerance, "approx, shift %d", shift)
		testutil.AssertSlicesInDelta(t,
			CircularShift(base.Detail(), shift), shifted.Detail(),
			testutil.ReconstructTolerance, "detail, shift %d", shift)
	}
}

func TestForwardBoundaryModes(t *testing.T) {
	signal := testutil.RandomSignal(50, 3)
	for _, mode := range []BoundaryMode{Periodic, ZeroPadding, Symmetric} {
		t.Run(mode.String(), func(t *testing.T) {
			res, err := Forward(signal, wavelet.Daubechies4(), mode)
			require.NoError(t, err)
			testutil.AssertNoNaNOrInf(t, res.Approximation())
			testutil.AssertNoNaNOrInf(t, res.Detail())
		})
	}
}

func TestForwardRejectsInvalidSignals(t *testing.T) {
	tr, err := NewTransform(wavelet.Haar(), Periodic)
	require.NoError(t, err)

	tests := []struct {
		name   string
		signal []float64
	}{
		{name: "nil", signal: nil},
		{name: "empty", signal: []float64{}},
		{name: "NaN", signal: []float64{1, math.NaN(), 3}},
		{name: "Inf", signal: []float64{1, math.Inf(1), 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.Forward(tt.signal)
			assert.ErrorIs(t, err, ErrInvalidSignal)
		})
	}
}

func TestNewTransformRejectsBadConfig(t *testing.T) {
	_, err := NewTransform(nil, Periodic)
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = NewTransform(wavelet.Haar(), BoundaryMode(99))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestTransformAccessors(t *testing.T) {
	tr, err := NewTransform(wavelet.Daubechies4(), Symmetric)
	require.NoError(t, err)
	assert.Equal(t, "db4", tr.Wavelet())
	assert.Equal(t, Symmetric, tr.Boundary())
	assert.Equal(t, 4, tr.FilterLength())
}

func TestResultAccessorsReturnCopies(t *testing.T) {
	res, err := Forward([]float64{1, 2, 3, 4}, wavelet.Haar(), Periodic)
	require.NoError(t, err)

	a := res.Approximation()
	a[0] = 1e9
	assert.NotEqual(t, 1e9, res.Approximation()[0])
}

func TestInverseRejectsMalformedResult(t *testing.T) {
	tr, err := NewTransform(wavelet.Haar(), Periodic)
	require.NoError(t, err)

	_, err = tr.Inverse(nil)
	assert.ErrorIs(t, err, ErrInvalidSignal)

	_, err = tr.Inverse(newResult([]float64{1, 2}, []float64{1, 2, 3}))
	assert.ErrorIs(t, err, ErrInvalidSignal)

	_, err = tr.Inverse(newResult([]float64{math.NaN()}, []float64{1}))
	assert.ErrorIs(t, err, ErrInvalidSignal)
}

// longWavelet is a dense synthetic filter bank long enough to route the
// periodic analysis through the frequency-domain convolver.
type longWavelet struct {
	lo, hi []float64
}

func newLongWavelet(taps int) *longWavelet {
	lo := make([]float64, taps)
	hi := make([]float64, taps)
	for l := range lo {
		lo[l] = math.Sin(float64(l+1)) / float64(taps)
		hi[l] = math.Cos(float64(l+1)) / float64(taps)
	}
	return &longWavelet{lo: lo, hi: hi}
}

func (w *longWavelet) Name() string { return "synthetic-long" }
func (w *longWavelet) LowPassDecomposition() []float64 {
	return append([]float64(nil), w.lo...)
}
func (w *longWavelet) HighPassDecomposition() []float64 {
	return append([]float64(nil), w.hi...)
}
func (w *longWavelet) LowPassReconstruction() []float64 {
	return append([]float64(nil), w.lo...)
}
func (w *longWavelet) HighPassReconstruction() []float64 {
	return append([]float64(nil), w.hi...)
}

func TestForwardFFTPathMatchesDirectConvolution(t *testing.T) {
	w := newLongWavelet(160)
	signal := testutil.RandomSignal(1024, 99)
	n := len(signal)

	tr, err := NewTransform(w, Periodic)
	require.NoError(t, err)
	res, err := tr.Forward(signal)
	require.NoError(t, err)

	// Brute-force periodic reference against the level-1 scaled taps.
	scale := 1.0 / math.Sqrt2
	wantApprox := make([]float64, n)
	wantDetail := make([]float64, n)
	for i := range signal {
		var a, d float64
		for l := range w.lo {
			idx := ((i-l)%n + n) % n
			a += scale * w.lo[l] * signal[idx]
			d += scale * w.hi[l] * signal[idx]
		}
		wantApprox[i] = a
		wantDetail[i] = d
	}
	testutil.AssertSlicesInDelta(t, wantApprox, res.Approximation(), 1e-9)
	testutil.AssertSlicesInDelta(t, wantDetail, res.Detail(), 1e-9)
}

func TestForwardConcurrentCallsSameTransform(t *testing.T) {
	tr, err := NewTransform(wavelet.Daubechies4(), Periodic)
	require.NoError(t, err)
	signal := testutil.RandomSignal(128, 21)
	want, err := tr.Forward(signal)
	require.NoError(t, err)

	done := make(chan *MODWTResult, 8)
	for range 8 {
		go func() {
			res, err := tr.Forward(signal)
			if err != nil {
				done <- nil
				return
			}
			done <- res
		}()
	}
	for range 8 {
		res := <-done
		require.NotNil(t, res)
		testutil.AssertSlicesInDelta(t, want.Approximation(), res.Approximation(), testutil.ExactTolerance)
	}
}

func TestCircularShift(t *testing.T) {
	s := []float64{1, 2, 3, 4}
	assert.Equal(t, []float64{4, 1, 2, 3}, CircularShift(s, 1))
	assert.Equal(t, []float64{2, 3, 4, 1}, CircularShift(s, -1))
	assert.Equal(t, s, CircularShift(s, 4))
	assert.Equal(t, []float64{3, 4, 1, 2}, CircularShift(s, 6))
	assert.Empty(t, CircularShift(nil, 3))
}

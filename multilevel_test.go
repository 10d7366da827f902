package modwt

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-modwt/internal/testutil"
	"github.com/tphakala/go-modwt/wavelet"
)

func TestMaxLevels(t *testing.T) {
	mtHaar, err := NewMultiLevelTransform(wavelet.Haar(), Periodic)
	require.NoError(t, err)
	mtDB8, err := NewMultiLevelTransform(wavelet.Daubechies8(), Periodic)
	require.NoError(t, err)

	assert.Equal(t, 3, mtHaar.MaxLevels(8))
	assert.Equal(t, 4, mtHaar.MaxLevels(9))
	assert.Equal(t, 8, mtDB8.MaxLevels(1024))
	assert.Equal(t, 0, mtDB8.MaxLevels(3), "filter longer than signal")
}

func TestDecomposeRejectsExcessiveLevels(t *testing.T) {
	mt, err := NewMultiLevelTransform(wavelet.Haar(), Periodic)
	require.NoError(t, err)
	signal := testutil.RandomSignal(8, 1)

	_, err = mt.Decompose(signal, 4)
	assert.ErrorIs(t, err, ErrInvalidConfig, "levels beyond the maximum must error, not clamp")

	_, err = mt.Decompose(signal, 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = mt.Decompose(signal, -1)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDecomposeReconstructRoundTrip(t *testing.T) {
	signal := testutil.RandomSignal(256, 17)
	for _, name := range wavelet.Names() {
		t.Run(name, func(t *testing.T) {
			w, err := wavelet.ByName(name)
			require.NoError(t, err)
			mt, err := NewMultiLevelTransform(w, Periodic)
			require.NoError(t, err)

			for levels := 1; levels <= mt.MaxLevels(len(signal)); levels++ {
				res, err := mt.Decompose(signal, levels)
				require.NoError(t, err)
				assert.Equal(t, levels, res.Levels())
				assert.Equal(t, len(signal), res.SignalLength())

				restored, err := mt.Reconstruct(res)
				require.NoError(t, err)
				testutil.AssertSlicesInDelta(t, signal, restored,
					testutil.ReconstructTolerance, "levels=%d", levels)
			}
		})
	}
}

func TestDecomposeMatchesManualCascade(t *testing.T) {
	// A multi-level decomposition is the single-level transform applied
	// repeatedly to the running approximation with level-scaled filters;
	// the finest detail must equal the single-level detail.
	signal := testutil.RandomSignal(64, 5)
	w := wavelet.Daubechies4()

	single, err := Forward(signal, w, Periodic)
	require.NoError(t, err)

	mt, err := NewMultiLevelTransform(w, Periodic)
	require.NoError(t, err)
	multi, err := mt.Decompose(signal, 3)
	require.NoError(t, err)

	d1, err := multi.Detail(1)
	require.NoError(t, err)
	testutil.AssertSlicesInDelta(t, single.Detail(), d1, testutil.ExactTolerance)
}

func TestDecomposeDoesNotModifyInput(t *testing.T) {
	signal := testutil.RandomSignal(64, 23)
	original := append([]float64(nil), signal...)

	mt, err := NewMultiLevelTransform(wavelet.Symlet8(), Periodic)
	require.NoError(t, err)
	_, err = mt.Decompose(signal, 2)
	require.NoError(t, err)
	assert.Equal(t, original, signal)
}

func TestEnergyConservationMultiLevel(t *testing.T) {
	signal := testutil.RandomSignal(512, 29)
	mt, err := NewMultiLevelTransform(wavelet.Daubechies8(), Periodic)
	require.NoError(t, err)

	res, err := mt.Decompose(signal, 5)
	require.NoError(t, err)

	testutil.AssertRelativeError(t, testutil.Energy(signal), res.TotalEnergy(),
		testutil.EnergyRelTolerance)

	dist := res.EnergyDistribution()
	require.Len(t, dist, 6)
	var sum float64
	for _, f := range dist {
		assert.GreaterOrEqual(t, f, 0.0)
		sum += f
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestEnergyConcurrentFirstUse(t *testing.T) {
	// An immutable result is shared across goroutines; the lazy energy
	// metrics must be computed exactly once and be visible to every reader.
	signal := testutil.RandomSignal(256, 47)
	mt, err := NewMultiLevelTransform(wavelet.Daubechies4(), Periodic)
	require.NoError(t, err)
	res, err := mt.Decompose(signal, 4)
	require.NoError(t, err)

	const goroutines = 16
	var wg sync.WaitGroup
	totals := make([]float64, goroutines)
	details := make([]float64, goroutines)
	for g := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, err := res.DetailEnergy(1)
			if err != nil {
				t.Error(err)
				return
			}
			details[g] = e
			totals[g] = res.TotalEnergy()
		}()
	}
	wg.Wait()

	want := testutil.Energy(signal)
	for g := range goroutines {
		testutil.AssertRelativeError(t, want, totals[g], testutil.EnergyRelTolerance, "goroutine %d", g)
		assert.Equal(t, details[0], details[g])
	}
}

func TestReconstructFromLevelDropsFineScales(t *testing.T) {
	// Smooth trend plus fast oscillation: reconstructing from a coarse
	// level keeps the trend and strips most of the oscillation energy.
	n := 256
	trend := testutil.SineSignal(n, 2, 0)
	noise := testutil.SineSignal(n, 60, 0.7)
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = trend[i] + 0.3*noise[i]
	}

	mt, err := NewMultiLevelTransform(wavelet.Symlet8(), Periodic)
	require.NoError(t, err)
	res, err := mt.Decompose(signal, 4)
	require.NoError(t, err)

	full, err := mt.ReconstructFromLevel(res, 1)
	require.NoError(t, err)
	testutil.AssertSlicesInDelta(t, signal, full, testutil.ReconstructTolerance,
		"start level 1 must equal full reconstruction")

	smooth, err := mt.ReconstructFromLevel(res, 3)
	require.NoError(t, err)
	var residual, dropped float64
	for i := range signal {
		diffSmooth := smooth[i] - trend[i]
		diffFull := signal[i] - trend[i]
		residual += diffSmooth * diffSmooth
		dropped += diffFull * diffFull
	}
	assert.Less(t, residual, dropped, "coarse reconstruction must shed fine-scale energy")

	_, err = mt.ReconstructFromLevel(res, 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = mt.ReconstructFromLevel(res, 5)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestReconstructLevelsBandpassComplementarity(t *testing.T) {
	signal := testutil.RandomSignal(128, 31)
	mt, err := NewMultiLevelTransform(wavelet.Daubechies4(), Periodic)
	require.NoError(t, err)
	res, err := mt.Decompose(signal, 4)
	require.NoError(t, err)

	// Band [1,2] + band [3,4] + approximation-only must sum to the signal.
	low, err := mt.ReconstructLevels(res, 1, 2)
	require.NoError(t, err)
	high, err := mt.ReconstructLevels(res, 3, 4)
	require.NoError(t, err)

	zeroed := res.Mutable()
	for j := 1; j <= 4; j++ {
		d, err := zeroed.DetailSlice(j)
		require.NoError(t, err)
		clear(d)
	}
	zeroed.Invalidate()
	approxOnly, err := mt.Reconstruct(zeroed.Snapshot())
	require.NoError(t, err)

	sum := make([]float64, len(signal))
	for i := range sum {
		sum[i] = low[i] + high[i] + approxOnly[i]
	}
	testutil.AssertSlicesInDelta(t, signal, sum, testutil.ReconstructTolerance)

	_, err = mt.ReconstructLevels(res, 3, 2)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = mt.ReconstructLevels(res, 0, 2)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = mt.ReconstructLevels(res, 1, 5)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestResultDetailValidation(t *testing.T) {
	mt, err := NewMultiLevelTransform(wavelet.Haar(), Periodic)
	require.NoError(t, err)
	res, err := mt.Decompose(testutil.RandomSignal(32, 2), 3)
	require.NoError(t, err)

	_, err = res.Detail(0)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = res.Detail(4)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	d, err := res.Detail(2)
	require.NoError(t, err)
	d[0] = 1e9
	fresh, err := res.Detail(2)
	require.NoError(t, err)
	assert.NotEqual(t, 1e9, fresh[0], "Detail must return a copy")
}

func TestMutableEditingInvalidatesEnergy(t *testing.T) {
	mt, err := NewMultiLevelTransform(wavelet.Haar(), Periodic)
	require.NoError(t, err)
	res, err := mt.Decompose(testutil.RandomSignal(64, 3), 2)
	require.NoError(t, err)

	before := res.TotalEnergy()

	mut := res.Mutable()
	assert.Equal(t, before, mut.TotalEnergy())

	zeros := make([]float64, 64)
	require.NoError(t, mut.SetDetail(1, zeros))
	e, err := mut.DetailEnergy(1)
	require.NoError(t, err)
	assert.Zero(t, e)
	assert.Less(t, mut.TotalEnergy(), before)

	// The immutable original is unaffected by edits to the mutable copy.
	assert.Equal(t, before, res.TotalEnergy())

	err = mut.SetDetail(1, make([]float64, 10))
	assert.ErrorIs(t, err, ErrInvalidSignal)
	err = mut.SetApproximation(make([]float64, 10))
	assert.ErrorIs(t, err, ErrInvalidSignal)
}

func TestThresholdDenoising(t *testing.T) {
	n := 256
	clean := testutil.SineSignal(n, 3, 0)
	noisy := make([]float64, n)
	noise := testutil.RandomSignal(n, 41)
	for i := range noisy {
		noisy[i] = clean[i] + 0.1*noise[i]
	}

	denoised, err := Denoise(noisy, wavelet.Symlet8(), Periodic, 4, 0.05, true)
	require.NoError(t, err)
	require.Len(t, denoised, n)

	var errNoisy, errDenoised float64
	for i := range clean {
		dn := noisy[i] - clean[i]
		dd := denoised[i] - clean[i]
		errNoisy += dn * dn
		errDenoised += dd * dd
	}
	assert.Less(t, errDenoised, errNoisy, "soft thresholding must reduce noise energy")
}

func TestThresholdValidation(t *testing.T) {
	mt, err := NewMultiLevelTransform(wavelet.Haar(), Periodic)
	require.NoError(t, err)
	res, err := mt.Decompose(testutil.RandomSignal(32, 9), 2)
	require.NoError(t, err)
	mut := res.Mutable()

	assert.ErrorIs(t, mut.Threshold(-1, true), ErrInvalidConfig)
	assert.ErrorIs(t, mut.ThresholdLevels(0.1, true, 3), ErrInvalidConfig)
	assert.NoError(t, mut.ThresholdLevels(0.1, false, 1))
}

func TestHardVsSoftThreshold(t *testing.T) {
	mt, err := NewMultiLevelTransform(wavelet.Haar(), Periodic)
	require.NoError(t, err)
	res, err := mt.Decompose([]float64{5, -5, 5, -5, 0.01, -0.01, 0.01, -0.01}, 1)
	require.NoError(t, err)

	hard := res.Mutable()
	require.NoError(t, hard.Threshold(1.0, false))
	soft := res.Mutable()
	require.NoError(t, soft.Threshold(1.0, true))

	hd, err := hard.DetailSlice(1)
	require.NoError(t, err)
	sd, err := soft.DetailSlice(1)
	require.NoError(t, err)
	for i := range hd {
		if hd[i] != 0 {
			assert.InDelta(t, 1.0, abs(hd[i])-abs(sd[i]), 1e-12,
				"surviving soft coefficients shrink by lambda")
		} else {
			assert.Zero(t, sd[i])
		}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

package modwt

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-modwt/internal/exec"
	"github.com/tphakala/go-modwt/internal/testutil"
	"github.com/tphakala/go-modwt/wavelet"
)

func TestParallelDecomposeMatchesSequential(t *testing.T) {
	signal := testutil.RandomSignal(512, 19)
	for _, name := range []string{"haar", "db4", "sym8"} {
		t.Run(name, func(t *testing.T) {
			w, err := wavelet.ByName(name)
			require.NoError(t, err)

			mt, err := NewMultiLevelTransform(w, Periodic)
			require.NoError(t, err)
			pt, err := NewParallelTransform(w, Periodic, nil)
			require.NoError(t, err)

			levels := 5
			want, err := mt.Decompose(signal, levels)
			require.NoError(t, err)
			got, err := pt.Decompose(signal, levels)
			require.NoError(t, err)

			for j := 1; j <= levels; j++ {
				wd, err := want.Detail(j)
				require.NoError(t, err)
				gd, err := got.Detail(j)
				require.NoError(t, err)
				testutil.AssertSlicesInDelta(t, wd, gd, 1e-12, "detail level %d", j)
			}
			testutil.AssertSlicesInDelta(t, want.Approximation(), got.Approximation(), 1e-12)
		})
	}
}

func TestParallelDecomposeWithWorkerPool(t *testing.T) {
	pool := exec.NewPool(4, 16)
	defer pool.Shutdown(time.Second, time.Second)

	pt, err := NewParallelTransform(wavelet.Daubechies4(), Periodic, pool)
	require.NoError(t, err)
	mt, err := NewMultiLevelTransform(wavelet.Daubechies4(), Periodic)
	require.NoError(t, err)

	signal := testutil.RandomSignal(256, 37)
	want, err := mt.Decompose(signal, 4)
	require.NoError(t, err)
	got, err := pt.Decompose(signal, 4)
	require.NoError(t, err)

	testutil.AssertSlicesInDelta(t, want.Approximation(), got.Approximation(), 1e-12)
}

func TestParallelReconstructRoundTrip(t *testing.T) {
	pt, err := NewParallelTransform(wavelet.Symlet8(), Periodic, nil)
	require.NoError(t, err)

	signal := testutil.RandomSignal(300, 23)
	res, err := pt.Decompose(signal, 3)
	require.NoError(t, err)
	restored, err := pt.Reconstruct(res)
	require.NoError(t, err)
	testutil.AssertSlicesInDelta(t, signal, restored, testutil.ReconstructTolerance)
}

func TestParallelDecomposeValidation(t *testing.T) {
	pt, err := NewParallelTransform(wavelet.Haar(), Periodic, nil)
	require.NoError(t, err)

	_, err = pt.Decompose(nil, 1)
	assert.ErrorIs(t, err, ErrInvalidSignal)

	_, err = pt.Decompose(testutil.RandomSignal(8, 1), 9)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	assert.Equal(t, 3, pt.MaxLevels(8))
}

// rejectAfter accepts a fixed number of submissions, then rejects.
type rejectAfter struct {
	remaining atomic.Int64
}

func (r *rejectAfter) Submit(task func()) error {
	if r.remaining.Add(-1) < 0 {
		return errors.New("executor full")
	}
	go task()
	return nil
}

func TestParallelDecomposeExecutorRejection(t *testing.T) {
	signal := testutil.RandomSignal(64, 29)

	// Rejection on the first task of a level.
	first := &rejectAfter{}
	first.remaining.Store(2)
	pt, err := NewParallelTransform(wavelet.Haar(), Periodic, first)
	require.NoError(t, err)
	_, err = pt.Decompose(signal, 3)
	assert.ErrorIs(t, err, ErrShutdown)

	// Rejection on the second task of a level: the in-flight first task
	// must be awaited, not abandoned.
	second := &rejectAfter{}
	second.remaining.Store(3)
	pt, err = NewParallelTransform(wavelet.Haar(), Periodic, second)
	require.NoError(t, err)
	_, err = pt.Decompose(signal, 3)
	assert.ErrorIs(t, err, ErrShutdown)
}

func TestParallelDecomposeAfterPoolShutdown(t *testing.T) {
	pool := exec.NewPool(2, 8)
	pt, err := NewParallelTransform(wavelet.Haar(), Periodic, pool)
	require.NoError(t, err)

	require.NoError(t, pool.Shutdown(time.Second, time.Second))

	_, err = pt.Decompose(testutil.RandomSignal(64, 31), 2)
	assert.ErrorIs(t, err, ErrShutdown)
}

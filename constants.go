package modwt

import "time"

// Dispatcher routing thresholds.
const (
	// defaultLargeSignalThreshold routes single signals at or above this
	// length to the cache-blocked convolution path (periodic mode only).
	defaultLargeSignalThreshold = 4096

	// defaultParallelBatchThreshold routes batches at or above this size
	// to the task-parallel batch path.
	defaultParallelBatchThreshold = 32

	// minBatchForSoA is the smallest batch worth transposing into the
	// Structure-of-Arrays layout.
	minBatchForSoA = 2
)

// Executor defaults.
const (
	// defaultShutdownTimeout bounds the drain phase of Close.
	defaultShutdownTimeout = 5 * time.Second

	// shutdownKillDivisor derives the forced-cancel wait from the drain
	// timeout.
	shutdownKillDivisor = 2

	// queueDepthPerWorker sizes the worker pool's task queue so paired
	// fork/join submissions never block each other.
	queueDepthPerWorker = 4
)

package modwt

import (
	"fmt"
	"math"
)

// Threshold applies soft or hard thresholding with parameter lambda to
// every detail level. Soft thresholding shrinks surviving coefficients
// toward zero by lambda; hard thresholding zeroes small coefficients and
// leaves the rest untouched. The approximation is never thresholded.
//
// This is the denoising primitive: selecting lambda (universal, SURE,
// cross-validation, ...) is the caller's policy.
func (m *MutableMultiLevelMODWTResult) Threshold(lambda float64, soft bool) error {
	levels := make([]int, m.levels)
	for j := range levels {
		levels[j] = j + 1
	}
	return m.ThresholdLevels(lambda, soft, levels...)
}

// ThresholdLevels applies thresholding to the listed detail levels only.
func (m *MutableMultiLevelMODWTResult) ThresholdLevels(lambda float64, soft bool, levels ...int) error {
	if math.IsNaN(lambda) || lambda < 0 {
		return fmt.Errorf("%w: threshold lambda must be >= 0, got %v", ErrInvalidConfig, lambda)
	}
	for _, level := range levels {
		if err := m.checkLevel(level); err != nil {
			return err
		}
	}
	for _, level := range levels {
		applyThreshold(m.details[level-1], lambda, soft)
	}
	m.Invalidate()
	return nil
}

func applyThreshold(coeffs []float64, lambda float64, soft bool) {
	for i, v := range coeffs {
		mag := math.Abs(v)
		switch {
		case mag <= lambda:
			coeffs[i] = 0
		case soft:
			coeffs[i] = math.Copysign(mag-lambda, v)
		}
	}
}

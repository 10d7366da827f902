// Package validate implements the input checks shared by every transform
// entry point. All checks run before any computation starts so that a
// transform either fails fast or runs to completion.
package validate

import (
	"fmt"
	"math"
)

// Signal verifies that a signal is non-nil, non-empty and contains only
// finite values.
func Signal(signal []float64) error {
	if signal == nil {
		return fmt.Errorf("signal is nil")
	}
	if len(signal) == 0 {
		return fmt.Errorf("signal is empty")
	}
	for i, v := range signal {
		if math.IsNaN(v) {
			return fmt.Errorf("signal[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return fmt.Errorf("signal[%d] is infinite", i)
		}
	}
	return nil
}

// Signals verifies a batch of signals: non-empty, equal lengths, all finite.
func Signals(signals [][]float64) error {
	if len(signals) == 0 {
		return fmt.Errorf("batch is empty")
	}
	n := len(signals[0])
	for i, s := range signals {
		if err := Signal(s); err != nil {
			return fmt.Errorf("batch signal %d: %w", i, err)
		}
		if len(s) != n {
			return fmt.Errorf("batch signal %d has length %d, want %d", i, len(s), n)
		}
	}
	return nil
}

// Taps verifies that a filter coefficient sequence is usable: non-empty
// with only finite values.
func Taps(name string, taps []float64) error {
	if len(taps) == 0 {
		return fmt.Errorf("%s filter is empty", name)
	}
	for i, v := range taps {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s filter tap %d is not finite", name, i)
		}
	}
	return nil
}

// FilterBank verifies the shape constraints of a four-filter bank:
// decomposition and reconstruction filters have equal length, and the
// low-pass and high-pass filters within each pair match.
func FilterBank(loD, hiD, loR, hiR []float64) error {
	if err := Taps("low-pass decomposition", loD); err != nil {
		return err
	}
	if err := Taps("high-pass decomposition", hiD); err != nil {
		return err
	}
	if err := Taps("low-pass reconstruction", loR); err != nil {
		return err
	}
	if err := Taps("high-pass reconstruction", hiR); err != nil {
		return err
	}
	if len(loD) != len(hiD) {
		return fmt.Errorf("decomposition pair length mismatch: low-pass %d, high-pass %d", len(loD), len(hiD))
	}
	if len(loR) != len(hiR) {
		return fmt.Errorf("reconstruction pair length mismatch: low-pass %d, high-pass %d", len(loR), len(hiR))
	}
	if len(loD) != len(loR) {
		return fmt.Errorf("decomposition/reconstruction length mismatch: %d vs %d", len(loD), len(loR))
	}
	return nil
}

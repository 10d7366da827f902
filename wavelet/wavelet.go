// Package wavelet provides orthogonal wavelet filter definitions for use
// with the MODWT transforms in the parent module.
//
// Each wavelet exposes four coefficient sequences: low-pass and high-pass
// decomposition filters, and low-pass and high-pass reconstruction filters.
// For the orthogonal families defined here the reconstruction filters equal
// the decomposition filters; the high-pass filter is derived from the
// low-pass filter by the quadrature mirror relation
//
//	g[l] = (-1)^l * h[L-1-l]
//
// Coefficients are the standard published values with sum(h) = sqrt(2) and
// sum(h^2) = 1.
package wavelet

import (
	"fmt"
	"sort"
)

// Filter is an immutable wavelet filter bank.
// All accessors return defensive copies so callers cannot corrupt the
// shared coefficient tables.
type Filter struct {
	name string
	loD  []float64
	hiD  []float64
	loR  []float64
	hiR  []float64
}

// Name returns the registry name of the wavelet (e.g. "haar", "db4").
func (f *Filter) Name() string { return f.name }

// LowPassDecomposition returns a copy of the low-pass analysis taps.
func (f *Filter) LowPassDecomposition() []float64 { return cloneSlice(f.loD) }

// HighPassDecomposition returns a copy of the high-pass analysis taps.
func (f *Filter) HighPassDecomposition() []float64 { return cloneSlice(f.hiD) }

// LowPassReconstruction returns a copy of the low-pass synthesis taps.
func (f *Filter) LowPassReconstruction() []float64 { return cloneSlice(f.loR) }

// HighPassReconstruction returns a copy of the high-pass synthesis taps.
func (f *Filter) HighPassReconstruction() []float64 { return cloneSlice(f.hiR) }

// Length returns the number of taps in each filter.
func (f *Filter) Length() int { return len(f.loD) }

func cloneSlice(s []float64) []float64 {
	out := make([]float64, len(s))
	copy(out, s)
	return out
}

// newOrthogonal builds a filter bank from a low-pass decomposition filter.
// The high-pass filter is the quadrature mirror of the low-pass filter and
// the synthesis bank equals the analysis bank, which is exact for the
// orthogonal families shipped here.
func newOrthogonal(name string, loD []float64) *Filter {
	n := len(loD)
	hiD := make([]float64, n)
	for l := range hiD {
		sign := 1.0
		if l%2 == 1 {
			sign = -1.0
		}
		hiD[l] = sign * loD[n-1-l]
	}

	return &Filter{
		name: name,
		loD:  cloneSlice(loD),
		hiD:  hiD,
		loR:  cloneSlice(loD),
		hiR:  cloneSlice(hiD),
	}
}

// Haar returns the 2-tap Haar wavelet.
func Haar() *Filter { return registry["haar"] }

// Daubechies4 returns the 4-tap Daubechies wavelet (two vanishing moments).
func Daubechies4() *Filter { return registry["db4"] }

// Daubechies6 returns the 6-tap Daubechies wavelet (three vanishing moments).
func Daubechies6() *Filter { return registry["db6"] }

// Daubechies8 returns the 8-tap Daubechies wavelet (four vanishing moments).
func Daubechies8() *Filter { return registry["db8"] }

// Symlet8 returns the 8-tap least-asymmetric Daubechies (symlet) wavelet.
func Symlet8() *Filter { return registry["sym8"] }

// Coiflet6 returns the 6-tap Coiflet wavelet.
func Coiflet6() *Filter { return registry["coif6"] }

// registry maps wavelet names to their filter banks.
// Populated once at init; read-only afterwards, safe for concurrent use.
var registry = map[string]*Filter{
	"haar": newOrthogonal("haar", []float64{
		0.7071067811865476,
		0.7071067811865476,
	}),
	"db4": newOrthogonal("db4", []float64{
		0.48296291314469025,
		0.8365163037378079,
		0.22414386804185735,
		-0.12940952255092145,
	}),
	"db6": newOrthogonal("db6", []float64{
		0.3326705529509569,
		0.8068915093133388,
		0.4598775021193313,
		-0.13501102001039084,
		-0.08544127388224149,
		0.035226291882100656,
	}),
	"db8": newOrthogonal("db8", []float64{
		0.23037781330885523,
		0.7148465705525415,
		0.6308807679295904,
		-0.02798376941698385,
		-0.18703481171888114,
		0.030841381835986965,
		0.032883011666982945,
		-0.010597401784997278,
	}),
	"sym8": newOrthogonal("sym8", []float64{
		-0.07576571478927333,
		-0.02963552764599851,
		0.49761866763201545,
		0.8037387518059161,
		0.29785779560527736,
		-0.09921954357684722,
		-0.012603967262037833,
		0.0322231006040427,
	}),
	"coif6": newOrthogonal("coif6", []float64{
		-0.01565572813546454,
		-0.0727326195128539,
		0.38486484686420286,
		0.8525720202122554,
		0.3378976624578092,
		-0.0727326195128539,
	}),
}

// ByName looks up a wavelet by its registry name.
func ByName(name string) (*Filter, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown wavelet %q (known: %v)", name, Names())
	}
	return f, nil
}

// Names returns the sorted list of registered wavelet names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Package numeric holds the floating-point comparison policy shared by the
// cross-section and scattering records.
package numeric

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// Tolerance is an absolute-or-relative comparison window
type Tolerance struct {
	Abs float64
	Rel float64
}

// Default is the window used by equivalence checks. Combination and ingestion
// accumulate rounding error, so exact equality is never required.
var Default = Tolerance{Abs: 1e-10, Rel: 1e-8}

// Equal reports whether a and b agree within t
func (t Tolerance) Equal(a, b float64) bool {
	return scalar.EqualWithinAbsOrRel(a, b, t.Abs, t.Rel)
}

// EqualSlices reports whether a and b have the same length and agree
// element-wise within t
func (t Tolerance) EqualSlices(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !t.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Equal2 compares two ragged 2-D arrays
func (t Tolerance) Equal2(a, b [][]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !t.EqualSlices(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Equal3 compares two ragged 3-D arrays
func (t Tolerance) Equal3(a, b [][][]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !t.Equal2(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Finite reports whether every value is neither NaN nor infinite
func Finite(s []float64) bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Normalize scales s in place so it sums to one. A slice summing to zero
// is zeroed and reported as not normalized.
func Normalize(s []float64) bool {
	total := floats.Sum(s)
	if total == 0 || math.IsNaN(total) {
		for i := range s {
			s[i] = 0
		}
		return false
	}
	floats.Scale(1/total, s)
	return true
}

// Zeros allocates a zero-filled rows×cols array
func Zeros(rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	return out
}

// Zeros3 allocates a zero-filled a×b×c array
func Zeros3(a, b, c int) [][][]float64 {
	out := make([][][]float64, a)
	for i := range out {
		out[i] = Zeros(b, c)
	}
	return out
}

// Clone2 deep-copies a 2-D array
func Clone2(s [][]float64) [][]float64 {
	if s == nil {
		return nil
	}
	out := make([][]float64, len(s))
	for i := range s {
		out[i] = append([]float64(nil), s[i]...)
	}
	return out
}

// Clone3 deep-copies a 3-D array
func Clone3(s [][][]float64) [][][]float64 {
	if s == nil {
		return nil
	}
	out := make([][][]float64, len(s))
	for i := range s {
		out[i] = Clone2(s[i])
	}
	return out
}

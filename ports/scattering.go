package ports

import (
	"fmt"
	"strings"

	"transportcore/domain/numeric"
)

// ScatterFormat identifies the angular representation of a scattering matrix
type ScatterFormat int

const (
	ScatterLegendre ScatterFormat = iota
	ScatterTabular
)

// String returns the format name used in data files
func (f ScatterFormat) String() string {
	switch f {
	case ScatterLegendre:
		return "legendre"
	case ScatterTabular:
		return "tabular"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ParseScatterFormat parses a format name
func ParseScatterFormat(s string) (ScatterFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "legendre", "":
		return ScatterLegendre, true
	case "tabular":
		return ScatterTabular, true
	}
	return ScatterLegendre, false
}

// ScatteringRecord is the per-angle-bin scattering matrix of a cross-section
// record. The cross-section engine combines and compares records only through
// this interface.
type ScatteringRecord interface {
	Format() ScatterFormat
	// Order is the Legendre order, or the number of tabular points minus one
	Order() int
	Groups() int
	// ScatterXS is the total scattering cross section out of group gin
	ScatterXS(gin int) float64

	// Combine returns a new record holding the weighted sum of parts. The
	// receiver supplies the representation and is not modified.
	Combine(parts []ScatteringRecord, weights []float64) (ScatteringRecord, error)

	// Equiv reports whether other represents the same data within the
	// default tolerance
	Equiv(other ScatteringRecord) bool
	EquivWithin(other ScatteringRecord, tol numeric.Tolerance) bool
}

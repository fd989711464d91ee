// Package mgxs holds multigroup cross-section records and the weighted
// combination engine used to homogenize them.
//
// Every array is indexed by angle bin first. A record has
// NumPolar×NumAzimuthal angle bins; isotropic data uses one bin per angle
// anyway, replicated, so per-angle lookups never need a special case.
package mgxs

import (
	"fmt"

	"transportcore/domain/core"
	"transportcore/domain/numeric"
	"transportcore/domain/scatter"
	"transportcore/ports"
)

// Dims fixes the shape of a record
type Dims struct {
	Groups        int
	DelayedGroups int
	Fissionable   bool
	ScatterFormat ports.ScatterFormat
	ScatterOrder  int
	NumPolar      int
	NumAzimuthal  int
}

// Angles returns the number of angle bins
func (d Dims) Angles() int {
	return d.NumPolar * d.NumAzimuthal
}

func (d Dims) validate() error {
	if d.Groups <= 0 || d.DelayedGroups < 0 || d.NumPolar <= 0 || d.NumAzimuthal <= 0 || d.ScatterOrder < 0 {
		return fmt.Errorf("%w: groups=%d delayed=%d polar=%d azimuthal=%d order=%d", core.ErrInvalidDimensions,
			d.Groups, d.DelayedGroups, d.NumPolar, d.NumAzimuthal, d.ScatterOrder)
	}
	return nil
}

// XsData is the cross-section data of one temperature or region
type XsData struct {
	Groups        int
	DelayedGroups int
	NumPolar      int
	NumAzimuthal  int
	Fissionable   bool

	// [angle][incoming group]
	Total           [][]float64
	Absorption      [][]float64
	NuFission       [][]float64
	PromptNuFission [][]float64
	KappaFission    [][]float64
	Fission         [][]float64
	InverseVelocity [][]float64

	// [angle][delayed group]
	DecayRate [][]float64
	// [angle][incoming group][delayed group]
	DelayedNuFission [][][]float64
	// [angle][incoming group][outgoing group]
	ChiPrompt [][][]float64
	// [angle][incoming group][outgoing group][delayed group]
	ChiDelayed [][][][]float64

	// [angle]; each bin owns its record
	Scatter []ports.ScatteringRecord
}

// New allocates a zero-filled record. Fission arrays exist only for
// fissionable records.
func New(d Dims) (*XsData, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	x := allocate(d)
	for a := range x.Scatter {
		rec, err := scatter.NewEmpty(d.ScatterFormat, d.Groups, d.ScatterOrder)
		if err != nil {
			return nil, err
		}
		x.Scatter[a] = rec
	}
	return x, nil
}

// allocate builds every array except the scattering records
func allocate(d Dims) *XsData {
	nA, g, dg := d.Angles(), d.Groups, d.DelayedGroups
	x := &XsData{
		Groups:          g,
		DelayedGroups:   dg,
		NumPolar:        d.NumPolar,
		NumAzimuthal:    d.NumAzimuthal,
		Fissionable:     d.Fissionable,
		Total:           numeric.Zeros(nA, g),
		Absorption:      numeric.Zeros(nA, g),
		InverseVelocity: numeric.Zeros(nA, g),
		Scatter:         make([]ports.ScatteringRecord, nA),
	}
	if d.Fissionable {
		x.NuFission = numeric.Zeros(nA, g)
		x.PromptNuFission = numeric.Zeros(nA, g)
		x.KappaFission = numeric.Zeros(nA, g)
		x.Fission = numeric.Zeros(nA, g)
		x.DecayRate = numeric.Zeros(nA, dg)
		x.DelayedNuFission = numeric.Zeros3(nA, g, dg)
		x.ChiPrompt = numeric.Zeros3(nA, g, g)
		x.ChiDelayed = make([][][][]float64, nA)
		for a := range x.ChiDelayed {
			x.ChiDelayed[a] = numeric.Zeros3(g, g, dg)
		}
	}
	return x
}

// Dims returns the record's shape. The scattering format and order come
// from the first angle bin.
func (x *XsData) Dims() Dims {
	d := Dims{
		Groups:        x.Groups,
		DelayedGroups: x.DelayedGroups,
		Fissionable:   x.Fissionable,
		NumPolar:      x.NumPolar,
		NumAzimuthal:  x.NumAzimuthal,
	}
	if len(x.Scatter) > 0 && x.Scatter[0] != nil {
		d.ScatterFormat = x.Scatter[0].Format()
		d.ScatterOrder = x.Scatter[0].Order()
	}
	return d
}

// Angles returns the number of angle bins
func (x *XsData) Angles() int {
	return x.NumPolar * x.NumAzimuthal
}

// AngleIndex maps a polar and azimuthal bin to the flat angle index
func (x *XsData) AngleIndex(polar, azimuthal int) int {
	return polar*x.NumAzimuthal + azimuthal
}

// Clone returns a deep copy. Scattering records are immutable after
// construction and are shared.
func (x *XsData) Clone() *XsData {
	c := *x
	c.Total = numeric.Clone2(x.Total)
	c.Absorption = numeric.Clone2(x.Absorption)
	c.NuFission = numeric.Clone2(x.NuFission)
	c.PromptNuFission = numeric.Clone2(x.PromptNuFission)
	c.KappaFission = numeric.Clone2(x.KappaFission)
	c.Fission = numeric.Clone2(x.Fission)
	c.InverseVelocity = numeric.Clone2(x.InverseVelocity)
	c.DecayRate = numeric.Clone2(x.DecayRate)
	c.DelayedNuFission = numeric.Clone3(x.DelayedNuFission)
	c.ChiPrompt = numeric.Clone3(x.ChiPrompt)
	if x.ChiDelayed != nil {
		c.ChiDelayed = make([][][][]float64, len(x.ChiDelayed))
		for a := range x.ChiDelayed {
			c.ChiDelayed[a] = numeric.Clone3(x.ChiDelayed[a])
		}
	}
	c.Scatter = append([]ports.ScatteringRecord(nil), x.Scatter...)
	return &c
}

// hasFission reports whether the fission arrays are populated
func (x *XsData) hasFission() bool {
	return x.Fissionable && x.NuFission != nil
}

// checkShape verifies every array matches the declared dimensions. Fission
// arrays may be absent on any record and must be present on fissionable ones.
func (x *XsData) checkShape() error {
	if x == nil {
		return core.NewConfigurationError("nil cross-section record")
	}
	nA, g, dg := x.Angles(), x.Groups, x.DelayedGroups
	if nA <= 0 || g <= 0 || dg < 0 {
		return fmt.Errorf("%w: groups=%d delayed=%d angles=%d", core.ErrInvalidDimensions, g, dg, nA)
	}

	check2 := func(name string, s [][]float64, inner int) error {
		if len(s) != nA {
			return core.NewDimensionError(name+" angle bins", nA, len(s))
		}
		for _, row := range s {
			if len(row) != inner {
				return core.NewDimensionError(name+" length", inner, len(row))
			}
		}
		return nil
	}
	check3 := func(name string, s [][][]float64, mid, inner int) error {
		if len(s) != nA {
			return core.NewDimensionError(name+" angle bins", nA, len(s))
		}
		for _, m := range s {
			if len(m) != mid {
				return core.NewDimensionError(name+" incoming groups", mid, len(m))
			}
			for _, row := range m {
				if len(row) != inner {
					return core.NewDimensionError(name+" length", inner, len(row))
				}
			}
		}
		return nil
	}

	for _, f := range []struct {
		name string
		s    [][]float64
	}{{"total", x.Total}, {"absorption", x.Absorption}, {"inverse-velocity", x.InverseVelocity}} {
		if err := check2(f.name, f.s, g); err != nil {
			return err
		}
	}
	if len(x.Scatter) != nA {
		return core.NewDimensionError("scatter angle bins", nA, len(x.Scatter))
	}
	for a, s := range x.Scatter {
		if s == nil {
			return core.NewConfigurationError("scatter record missing for angle bin %d", a)
		}
		if s.Groups() != g {
			return core.NewDimensionError("scatter groups", g, s.Groups())
		}
	}

	if x.NuFission == nil && !x.Fissionable {
		return nil
	}
	for _, f := range []struct {
		name string
		s    [][]float64
	}{{"nu-fission", x.NuFission}, {"prompt-nu-fission", x.PromptNuFission},
		{"kappa-fission", x.KappaFission}, {"fission", x.Fission}} {
		if err := check2(f.name, f.s, g); err != nil {
			return err
		}
	}
	if err := check2("decay-rate", x.DecayRate, dg); err != nil {
		return err
	}
	if err := check3("delayed-nu-fission", x.DelayedNuFission, g, dg); err != nil {
		return err
	}
	if err := check3("chi-prompt", x.ChiPrompt, g, g); err != nil {
		return err
	}
	if len(x.ChiDelayed) != nA {
		return core.NewDimensionError("chi-delayed angle bins", nA, len(x.ChiDelayed))
	}
	for _, m := range x.ChiDelayed {
		if err := check3Groups("chi-delayed", m, g, dg); err != nil {
			return err
		}
	}
	return nil
}

func check3Groups(name string, m [][][]float64, g, dg int) error {
	if len(m) != g {
		return core.NewDimensionError(name+" incoming groups", g, len(m))
	}
	for _, gout := range m {
		if len(gout) != g {
			return core.NewDimensionError(name+" outgoing groups", g, len(gout))
		}
		for _, row := range gout {
			if len(row) != dg {
				return core.NewDimensionError(name+" delayed groups", dg, len(row))
			}
		}
	}
	return nil
}

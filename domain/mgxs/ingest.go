package mgxs

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"transportcore/domain/core"
	"transportcore/domain/numeric"
	"transportcore/domain/scatter"
	"transportcore/ports"
)

// Dataset and group names read from a structured store
const (
	fieldTotal            = "total"
	fieldAbsorption       = "absorption"
	fieldInverseVelocity  = "inverse-velocity"
	fieldFission          = "fission"
	fieldKappaFission     = "kappa-fission"
	fieldNuFission        = "nu-fission"
	fieldPromptNuFission  = "prompt-nu-fission"
	fieldDelayedNuFission = "delayed-nu-fission"
	fieldChi              = "chi"
	fieldChiPrompt        = "chi-prompt"
	fieldChiDelayed       = "chi-delayed"
	fieldBeta             = "beta"
	fieldDecayRate        = "decay-rate"
	groupScatter          = "scatter_data"
	fieldScatterMatrix    = "scatter_matrix"
	fieldMultiplicity     = "multiplicity_matrix"
)

// IngestOptions describe how stored data maps onto a record
type IngestOptions struct {
	// ScatterFormat is the representation stored in the data
	ScatterFormat ports.ScatterFormat
	// FinalScatterFormat is the representation the record will hold
	FinalScatterFormat ports.ScatterFormat
	// MaxOrder truncates Legendre scattering; negative keeps every moment
	MaxOrder int
	// TabularPoints sizes the μ grid for Legendre to tabular conversion
	TabularPoints int
	// IsIsotropic data has no leading [polar][azimuthal] axes and is
	// replicated into every angle bin
	IsIsotropic bool
}

// DefaultIngestOptions reads isotropic Legendre data and keeps it as is
func DefaultIngestOptions() IngestOptions {
	return IngestOptions{
		ScatterFormat:      ports.ScatterLegendre,
		FinalScatterFormat: ports.ScatterLegendre,
		MaxOrder:           -1,
		TabularPoints:      scatter.DefaultTabularPoints,
		IsIsotropic:        true,
	}
}

// FromGroup builds a record from one group of a structured data store.
// d supplies groups, delayed groups, fissionability and the angle bins; the
// scattering order is taken from the data.
func FromGroup(grp ports.XSGroup, d Dims, opts IngestOptions) (*XsData, error) {
	if grp == nil {
		return nil, core.NewConfigurationError("nil data group")
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	x := allocate(d)
	r := reader{grp: grp, angles: d.Angles(), isotropic: opts.IsIsotropic}
	g := d.Groups

	if err := r.required(fieldAbsorption, x.Absorption, g); err != nil {
		return nil, err
	}
	if err := r.optional(fieldInverseVelocity, x.InverseVelocity, g); err != nil {
		return nil, err
	}
	if err := r.scatter(x, opts); err != nil {
		return nil, err
	}

	if grp.Has(fieldTotal) {
		if err := r.required(fieldTotal, x.Total, g); err != nil {
			return nil, err
		}
	} else {
		for a := range x.Total {
			for gin := range x.Total[a] {
				x.Total[a][gin] = x.Absorption[a][gin] + x.Scatter[a].ScatterXS(gin)
			}
		}
	}

	if d.Fissionable {
		if err := r.fission(x); err != nil {
			return nil, err
		}
	}
	return x, nil
}

// reader slices stored datasets into per-angle rows
type reader struct {
	grp       ports.XSGroup
	angles    int
	isotropic bool
}

// angular reads name and splits it into one flat row per angle bin. sizes
// lists the accepted per-angle element counts in order of preference; the
// matched one is returned.
func (r reader) angular(name string, sizes ...int) ([][]float64, int, error) {
	if !r.grp.Has(name) {
		return nil, 0, core.NewMissingDatasetError(r.grp.Path(), name)
	}
	values, _, err := r.grp.Read(name)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s/%s: %w", r.grp.Path(), name, err)
	}
	for _, n := range sizes {
		out := make([][]float64, r.angles)
		switch {
		case r.isotropic && len(values) == n:
			for a := range out {
				out[a] = append([]float64(nil), values...)
			}
		case !r.isotropic && len(values) == r.angles*n:
			for a := range out {
				out[a] = append([]float64(nil), values[a*n:(a+1)*n]...)
			}
		default:
			continue
		}
		return out, n, nil
	}
	return nil, 0, fmt.Errorf("%w: %s/%s has %d values, want one of %v per angle bin (%d bins, isotropic=%t)",
		core.ErrDimensionMismatch, r.grp.Path(), name, len(values), sizes, r.angles, r.isotropic)
}

func (r reader) required(name string, dst [][]float64, n int) error {
	rows, _, err := r.angular(name, n)
	if err != nil {
		return err
	}
	for a := range dst {
		copy(dst[a], rows[a])
	}
	return nil
}

func (r reader) optional(name string, dst [][]float64, n int) error {
	if !r.grp.Has(name) {
		return nil
	}
	return r.required(name, dst, n)
}

func (r reader) scatter(x *XsData, opts IngestOptions) error {
	sub, err := r.grp.Group(groupScatter)
	if err != nil {
		return fmt.Errorf("%w: %s/%s: %v", core.ErrMissingDataset, r.grp.Path(), groupScatter, err)
	}
	sr := reader{grp: sub, angles: r.angles, isotropic: r.isotropic}
	g := x.Groups

	if !sub.Has(fieldScatterMatrix) {
		return core.NewMissingDatasetError(sub.Path(), fieldScatterMatrix)
	}
	values, _, err := sub.Read(fieldScatterMatrix)
	if err != nil {
		return fmt.Errorf("read %s/%s: %w", sub.Path(), fieldScatterMatrix, err)
	}
	bins := r.angles
	if r.isotropic {
		bins = 1
	}
	if len(values) == 0 || len(values)%(bins*g*g) != 0 {
		return fmt.Errorf("%w: %s/%s has %d values, not a multiple of %d", core.ErrDimensionMismatch,
			sub.Path(), fieldScatterMatrix, len(values), bins*g*g)
	}
	points := len(values) / (bins * g * g)
	rows, _, err := sr.angular(fieldScatterMatrix, g*g*points)
	if err != nil {
		return err
	}

	var mult [][]float64
	if sub.Has(fieldMultiplicity) {
		if mult, _, err = sr.angular(fieldMultiplicity, g*g); err != nil {
			return err
		}
	}

	build := scatter.Options{FinalFormat: opts.FinalScatterFormat, MaxOrder: opts.MaxOrder, TabularPoints: opts.TabularPoints}
	for a := 0; a < r.angles; a++ {
		data := scatter.Data{Format: opts.ScatterFormat, Matrix: reshape3(rows[a], g, g, points)}
		if mult != nil {
			data.Multiplicity = reshape2(mult[a], g, g)
		}
		rec, err := scatter.Build(data, build)
		if err != nil {
			return fmt.Errorf("scatter angle bin %d: %w", a, err)
		}
		x.Scatter[a] = rec
	}
	return nil
}

func (r reader) fission(x *XsData) error {
	g, dg := x.Groups, x.DelayedGroups
	if err := r.optional(fieldFission, x.Fission, g); err != nil {
		return err
	}
	if err := r.optional(fieldKappaFission, x.KappaFission, g); err != nil {
		return err
	}
	if dg > 0 {
		if err := r.optional(fieldDecayRate, x.DecayRate, dg); err != nil {
			return err
		}
	}

	var err error
	switch {
	case r.grp.Has(fieldPromptNuFission):
		err = r.production(fieldPromptNuFission, fieldChiPrompt, x.PromptNuFission, x.ChiPrompt, g)
		if err == nil && dg > 0 && r.grp.Has(fieldDelayedNuFission) {
			err = r.delayed(x)
		}
	case r.grp.Has(fieldBeta) && dg > 0:
		err = r.fromBeta(x)
	default:
		err = r.production(fieldNuFission, fieldChi, x.PromptNuFission, x.ChiPrompt, g)
	}
	if err != nil {
		return err
	}

	for a := range x.NuFission {
		for gin := range x.NuFission[a] {
			x.NuFission[a][gin] = x.PromptNuFission[a][gin] + floats.Sum(x.DelayedNuFission[a][gin])
		}
	}
	return nil
}

// production reads a production vector with its spectrum, or a production
// matrix [gin][gout] whose row sums are the production and whose normalized
// rows are the spectrum
func (r reader) production(nuName, chiName string, nu [][]float64, chi [][][]float64, g int) error {
	rows, n, err := r.angular(nuName, g, g*g)
	if err != nil {
		return err
	}
	if n == g*g && g > 1 {
		for a := range rows {
			for gin := 0; gin < g; gin++ {
				row := rows[a][gin*g : (gin+1)*g]
				nu[a][gin] = floats.Sum(row)
				copy(chi[a][gin], row)
				numeric.Normalize(chi[a][gin])
			}
		}
		return nil
	}
	for a := range rows {
		copy(nu[a], rows[a])
	}
	return r.spectrum(chiName, chi, g)
}

// spectrum reads a [gout] spectrum shared by all incoming groups or a full
// [gin][gout] matrix, normalizing every row
func (r reader) spectrum(name string, chi [][][]float64, g int) error {
	rows, n, err := r.angular(name, g, g*g)
	if err != nil {
		return err
	}
	for a := range rows {
		for gin := 0; gin < g; gin++ {
			src := rows[a]
			if n == g*g {
				src = rows[a][gin*g : (gin+1)*g]
			}
			copy(chi[a][gin], src)
			numeric.Normalize(chi[a][gin])
		}
	}
	return nil
}

// delayed reads explicit delayed production [gin][d] and its spectra
func (r reader) delayed(x *XsData) error {
	g, dg := x.Groups, x.DelayedGroups
	rows, _, err := r.angular(fieldDelayedNuFission, g*dg)
	if err != nil {
		return err
	}
	for a := range rows {
		for gin := 0; gin < g; gin++ {
			copy(x.DelayedNuFission[a][gin], rows[a][gin*dg:(gin+1)*dg])
		}
	}
	return r.delayedSpectrum(x)
}

// delayedSpectrum reads chi-delayed as [gout], [gin][gout] or
// [gin][gout][d]. Without it the prompt spectrum is reused.
func (r reader) delayedSpectrum(x *XsData) error {
	g, dg := x.Groups, x.DelayedGroups
	if !r.grp.Has(fieldChiDelayed) {
		for a := range x.ChiDelayed {
			for gin := 0; gin < g; gin++ {
				for gout := 0; gout < g; gout++ {
					for d := 0; d < dg; d++ {
						x.ChiDelayed[a][gin][gout][d] = x.ChiPrompt[a][gin][gout]
					}
				}
			}
		}
		return nil
	}

	rows, n, err := r.angular(fieldChiDelayed, g, g*g, g*g*dg)
	if err != nil {
		return err
	}
	col := make([]float64, g)
	for a := range rows {
		for gin := 0; gin < g; gin++ {
			for d := 0; d < dg; d++ {
				for gout := 0; gout < g; gout++ {
					switch n {
					case g:
						col[gout] = rows[a][gout]
					case g * g:
						col[gout] = rows[a][gin*g+gout]
					default:
						col[gout] = rows[a][(gin*g+gout)*dg+d]
					}
				}
				numeric.Normalize(col)
				for gout := 0; gout < g; gout++ {
					x.ChiDelayed[a][gin][gout][d] = col[gout]
				}
			}
		}
	}
	return nil
}

// fromBeta splits total production into prompt and delayed parts using the
// delayed neutron fractions β[d] (or β[gin][d])
func (r reader) fromBeta(x *XsData) error {
	g, dg := x.Groups, x.DelayedGroups
	beta, n, err := r.angular(fieldBeta, dg, g*dg)
	if err != nil {
		return err
	}
	total := numeric.Zeros(r.angles, g)
	if err := r.production(fieldNuFission, fieldChi, total, x.ChiPrompt, g); err != nil {
		return err
	}

	for a := range total {
		for gin := 0; gin < g; gin++ {
			b := beta[a]
			if n == g*dg {
				b = beta[a][gin*dg : (gin+1)*dg]
			}
			x.PromptNuFission[a][gin] = (1 - floats.Sum(b)) * total[a][gin]
			for d := 0; d < dg; d++ {
				x.DelayedNuFission[a][gin][d] = b[d] * total[a][gin]
			}
		}
	}
	return r.delayedSpectrum(x)
}

func reshape2(flat []float64, rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = append([]float64(nil), flat[i*cols:(i+1)*cols]...)
	}
	return out
}

func reshape3(flat []float64, a, b, c int) [][][]float64 {
	out := make([][][]float64, a)
	for i := range out {
		out[i] = reshape2(flat[i*b*c:(i+1)*b*c], b, c)
	}
	return out
}

package testkit

import (
	"fmt"

	"transportcore/adapters/rng"
	"transportcore/adapters/xsstore"
)

// MaterialGeneratorConfig configures synthetic library entries
type MaterialGeneratorConfig struct {
	Groups        int
	DelayedGroups int
	Fissionable   bool
	ScatterOrder  int
	Temperatures  []float64 // kT
	Seed          uint64
}

// DefaultMaterialConfig is a two-group fissionable entry at two temperatures
func DefaultMaterialConfig() MaterialGeneratorConfig {
	return MaterialGeneratorConfig{
		Groups:        2,
		DelayedGroups: 1,
		Fissionable:   true,
		ScatterOrder:  1,
		Temperatures:  []float64{0.0253, 0.0517},
		Seed:          42,
	}
}

// MaterialGenerator writes physically consistent synthetic entries:
// downscatter-only P0 matrices, total equal to absorption plus outscatter,
// and normalized fission spectra
type MaterialGenerator struct {
	config MaterialGeneratorConfig
	stream *rng.Stream
}

// NewMaterialGenerator creates a generator seeded from the config
func NewMaterialGenerator(config MaterialGeneratorConfig) *MaterialGenerator {
	return &MaterialGenerator{config: config, stream: rng.NewStream(config.Seed)}
}

// Generate adds entry name below root, one child group per temperature
func (g *MaterialGenerator) Generate(root *xsstore.MemoryGroup, name string) error {
	c := g.config
	entry := root.Child(name)
	entry.SetAttr("energy_groups", float64(c.Groups))
	entry.SetAttr("delayed_groups", float64(c.DelayedGroups))
	if c.Fissionable {
		entry.SetAttr("fissionable", 1)
	}

	for k, kT := range c.Temperatures {
		grp := entry.Child(fmt.Sprintf("t%d", k))
		grp.SetAttr("kT", kT)
		scale := 1 + 0.1*float64(k)
		if err := g.fill(grp, scale); err != nil {
			return fmt.Errorf("%s: %w", grp.Path(), err)
		}
	}
	return nil
}

func (g *MaterialGenerator) fill(grp *xsstore.MemoryGroup, scale float64) error {
	c := g.config
	n, points := c.Groups, c.ScatterOrder+1

	absorption := make([]float64, n)
	total := make([]float64, n)
	invVel := make([]float64, n)
	matrix := make([]float64, n*n*points)
	for gin := 0; gin < n; gin++ {
		absorption[gin] = (0.05 + 0.1*g.stream.Float64()) * scale
		total[gin] = absorption[gin]
		invVel[gin] = 1e-7 * float64(gin+1)
		for gout := gin; gout < n; gout++ {
			p0 := (0.1 + 0.2*g.stream.Float64()) * scale
			base := (gin*n + gout) * points
			matrix[base] = p0
			if points > 1 {
				matrix[base+1] = 0.3 * p0
			}
			total[gin] += p0
		}
	}

	for _, put := range []struct {
		name   string
		values []float64
		shape  []int
	}{
		{"absorption", absorption, nil},
		{"total", total, nil},
		{"inverse-velocity", invVel, nil},
	} {
		if err := grp.Put(put.name, put.values, put.shape...); err != nil {
			return err
		}
	}
	if err := grp.Child("scatter_data").Put("scatter_matrix", matrix, n, n, points); err != nil {
		return err
	}
	if !c.Fissionable {
		return nil
	}

	fission := make([]float64, n)
	nuFission := make([]float64, n)
	kappa := make([]float64, n)
	chi := make([]float64, n)
	for i := range fission {
		fission[i] = 0.02 * g.stream.Float64() * scale
		nuFission[i] = 2.43 * fission[i]
		kappa[i] = 193.7e6 * fission[i]
		chi[i] = float64(n - i)
	}
	if err := grp.Put("fission", fission); err != nil {
		return err
	}
	if err := grp.Put("nu-fission", nuFission); err != nil {
		return err
	}
	if err := grp.Put("kappa-fission", kappa); err != nil {
		return err
	}
	if err := grp.Put("chi", chi); err != nil {
		return err
	}
	if c.DelayedGroups == 0 {
		return nil
	}
	beta := make([]float64, c.DelayedGroups)
	decay := make([]float64, c.DelayedGroups)
	for d := range beta {
		beta[d] = 0.0065 / float64(c.DelayedGroups)
		decay[d] = 0.0124 * float64(d+1)
	}
	if err := grp.Put("beta", beta); err != nil {
		return err
	}
	return grp.Put("decay-rate", decay)
}

package app

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"transportcore/adapters/shapes"
	"transportcore/adapters/xsstore"
	"transportcore/domain/core"
	"transportcore/domain/mgxs"
	"transportcore/domain/particle"
	"transportcore/domain/source"
	"transportcore/internal"
	"transportcore/internal/testkit"
)

func quietLogger() *internal.Logger {
	return internal.NewLoggerTo(&bytes.Buffer{}, internal.LogLevelError)
}

func testLibrary(t *testing.T) *Library {
	t.Helper()
	root := xsstore.NewMemoryGroup("/")
	require.NoError(t, testkit.NewMaterialGenerator(testkit.DefaultMaterialConfig()).Generate(root, "uo2"))

	water := testkit.DefaultMaterialConfig()
	water.Fissionable = false
	water.Temperatures = []float64{0.0253}
	water.Seed = 7
	require.NoError(t, testkit.NewMaterialGenerator(water).Generate(root, "h2o"))

	kit := testkit.NewTestKit()
	require.NoError(t, kit.LibraryStore().SaveGroup(context.Background(), "endf", root))
	lib, err := LoadLibrary(context.Background(), kit.LibraryStore(), "endf", mgxs.DefaultIngestOptions())
	require.NoError(t, err)
	return lib
}

func TestLoadLibrary(t *testing.T) {
	lib := testLibrary(t)
	assert.Equal(t, []string{"h2o", "uo2"}, lib.Names())

	uo2, err := lib.Entry("uo2")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.0253, 0.0517}, uo2.Temperatures)
	assert.True(t, uo2.Dims.Fissionable)
	for _, x := range uo2.Data {
		assert.NoError(t, mgxs.Validate(x))
	}

	_, err = lib.Entry("pu239")
	assert.ErrorIs(t, err, core.ErrMissingDataset)
}

func TestBuildLibraryRejectsFractionalCounts(t *testing.T) {
	tests := []struct {
		attr  string
		value float64
	}{
		{AttrGroups, 2.5},
		{AttrNumPolar, 1.9},
		{AttrDelayedGroups, -1},
		{AttrNumAzimuthal, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.attr, func(t *testing.T) {
			root := xsstore.NewMemoryGroup("/")
			require.NoError(t, testkit.NewMaterialGenerator(testkit.DefaultMaterialConfig()).Generate(root, "uo2"))
			root.Child("uo2").SetAttr(tt.attr, tt.value)

			lib, err := BuildLibrary("endf", root, mgxs.DefaultIngestOptions())
			assert.ErrorIs(t, err, core.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.attr)
			assert.Nil(t, lib)
		})
	}
}

func TestLibraryAddKeepsOrderAndRejectsMismatch(t *testing.T) {
	lib := NewLibrary("test")
	mk := func(groups int) *mgxs.XsData {
		x, err := mgxs.New(mgxs.Dims{Groups: groups, NumPolar: 1, NumAzimuthal: 1})
		require.NoError(t, err)
		return x
	}
	require.NoError(t, lib.Add("c", 0.05, mk(2)))
	require.NoError(t, lib.Add("c", 0.02, mk(2)))
	require.NoError(t, lib.Add("c", 0.03, mk(2)))

	e, err := lib.Entry("c")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.02, 0.03, 0.05}, e.Temperatures)

	assert.True(t, core.IsDimensionError(lib.Add("c", 0.04, mk(3))))
	assert.True(t, core.IsConfigurationError(lib.Add("c", 0.03, mk(2))))
	assert.True(t, core.IsConfigurationError(lib.Add("c", -1, mk(2))))
	assert.True(t, core.IsConfigurationError(lib.Add(" ", 0.01, mk(2))))
}

func TestAtTemperatureNearest(t *testing.T) {
	lib := testLibrary(t)
	h := NewHomogenizer(lib, Nearest, 0.01, quietLogger())

	e, _ := lib.Entry("uo2")
	x, err := h.AtTemperature("uo2", 0.03)
	require.NoError(t, err)
	assert.True(t, x.Equiv(e.Data[0]))

	_, err = h.AtTemperature("uo2", 0.04)
	assert.True(t, core.IsConfigurationError(err))

	_, err = h.AtTemperature("uo2", 0.2)
	assert.True(t, core.IsConfigurationError(err))
}

func TestAtTemperatureInterpolation(t *testing.T) {
	lib := testLibrary(t)
	h := NewHomogenizer(lib, Interpolation, 0.001, quietLogger())
	e, _ := lib.Entry("uo2")

	mid := (e.Temperatures[0] + e.Temperatures[1]) / 2
	x, err := h.AtTemperature("uo2", mid)
	require.NoError(t, err)
	for g := 0; g < 2; g++ {
		want := (e.Data[0].Total[0][g] + e.Data[1].Total[0][g]) / 2
		assert.InDelta(t, want, x.Total[0][g], 1e-12)
	}
	assert.NoError(t, mgxs.Validate(x))

	end, err := h.AtTemperature("uo2", e.Temperatures[1])
	require.NoError(t, err)
	assert.True(t, end.Equiv(e.Data[1]))

	// single temperature entries fall back to nearest
	_, err = h.AtTemperature("h2o", 0.0253)
	assert.NoError(t, err)
}

func TestMacroscopic(t *testing.T) {
	lib := testLibrary(t)
	h := NewHomogenizer(lib, Nearest, 0.001, quietLogger())
	uo2, _ := lib.Entry("uo2")
	h2o, _ := lib.Entry("h2o")

	x, err := h.Macroscopic(context.Background(), []Constituent{{"uo2", 0.02}, {"h2o", 0.05}}, 0.0253)
	require.NoError(t, err)
	assert.True(t, x.Fissionable)
	for g := 0; g < 2; g++ {
		want := 0.02*uo2.Data[0].Absorption[0][g] + 0.05*h2o.Data[0].Absorption[0][g]
		assert.InDelta(t, want, x.Absorption[0][g], 1e-12)
	}
	assert.NoError(t, mgxs.Validate(x))

	_, err = h.Macroscopic(context.Background(), nil, 0.0253)
	assert.ErrorIs(t, err, core.ErrNoSources)

	_, err = h.Macroscopic(context.Background(), []Constituent{{"uo2", -1}}, 0.0253)
	assert.ErrorIs(t, err, core.ErrInvalidWeight)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = h.Macroscopic(ctx, []Constituent{{"uo2", 1}}, 0.0253)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseTemperatureMethod(t *testing.T) {
	m, err := ParseTemperatureMethod("Interpolation")
	require.NoError(t, err)
	assert.Equal(t, Interpolation, m)
	assert.Equal(t, "interpolation", m.String())

	_, err = ParseTemperatureMethod("spline")
	assert.True(t, core.IsConfigurationError(err))
}

func testMixture(t *testing.T) *source.Mixture {
	t.Helper()
	box, err := shapes.NewBox(r3.Vec{X: -1, Y: -1, Z: -1}, r3.Vec{X: 1, Y: 1, Z: 1})
	require.NoError(t, err)
	watt, err := shapes.NewWatt(0.988e6, 2.249e-6)
	require.NoError(t, err)
	fast, err := source.NewDistribution(particle.Neutron, 3, box, shapes.Isotropic{}, watt)
	require.NoError(t, err)
	line, err := shapes.NewDiscrete([]float64{1.17e6, 1.33e6}, []float64{1, 1})
	require.NoError(t, err)
	gamma, err := source.NewDistribution(particle.Photon, 1, shapes.Point{}, shapes.Isotropic{}, line)
	require.NoError(t, err)
	m, err := source.NewMixture(fast, gamma)
	require.NoError(t, err)
	return m
}

func TestSourceRunner(t *testing.T) {
	kit := testkit.NewTestKit()
	runner := NewSourceRunner(testMixture(t), kit.RNGAdapter(), quietLogger())
	req := SamplingRequest{Seed: 11, Particles: 8000, Workers: 4, Chunk: 100}

	report, err := runner.Run(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, report.Bank, 8000)
	assert.False(t, core.ID(report.RunID).IsEmpty())

	// selection counts agree with the particle types in the bank
	assert.Equal(t, report.Summary.Counts[particle.Neutron], report.Counts[0])
	assert.Equal(t, report.Summary.Counts[particle.Photon], report.Counts[1])
	assert.True(t, report.Fit.Consistent(0.001))
	assert.Less(t, report.Summary.Anisotropy, 0.05)

	require.NoError(t, runner.Verify(context.Background(), report, 1))

	again, err := runner.Run(context.Background(), SamplingRequest{Seed: 11, Particles: 8000, Workers: 1})
	require.NoError(t, err)
	assert.Equal(t, report.Fingerprint, again.Fingerprint)
	assert.NotEqual(t, report.RunID, again.RunID)

	report.Bank[0].Energy *= 2
	report.Fingerprint = source.Fingerprint(report.Bank)
	err = runner.Verify(context.Background(), report, 2)
	assert.ErrorIs(t, err, core.ErrHashMismatch)
	assert.True(t, core.IsDeterminismError(err))
}

func TestSourceRunnerEmptyBank(t *testing.T) {
	runner := NewSourceRunner(testMixture(t), testkit.NewTestKit().RNGAdapter(), quietLogger())
	report, err := runner.Run(context.Background(), SamplingRequest{Seed: 1, Workers: 1})
	require.NoError(t, err)
	assert.Empty(t, report.Bank)
}

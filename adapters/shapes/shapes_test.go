package shapes

import (
	"math"
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"transportcore/adapters/rng"
	"transportcore/domain/core"
)

const draws = 20000

func sampleEnergies(t *testing.T, sample func() float64) []float64 {
	t.Helper()
	out := make([]float64, draws)
	for i := range out {
		out[i] = sample()
		require.False(t, math.IsNaN(out[i]))
	}
	return out
}

func TestBoxStaysInside(t *testing.T) {
	box, err := NewBox(r3.Vec{X: -1, Y: 0, Z: 2}, r3.Vec{X: 1, Y: 3, Z: 2.5})
	require.NoError(t, err)

	stream := rng.NewStream(1)
	for i := 0; i < 1000; i++ {
		p := box.Sample(stream)
		assert.True(t, p.X >= -1 && p.X < 1)
		assert.True(t, p.Y >= 0 && p.Y < 3)
		assert.True(t, p.Z >= 2 && p.Z < 2.5)
	}
	assert.Equal(t, uint64(3000), stream.Draws())

	_, err = NewBox(r3.Vec{X: 1}, r3.Vec{})
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestPointAndMonodirectionalConsumeNothing(t *testing.T) {
	stream := rng.NewStream(1)
	at := r3.Vec{X: 1, Y: 2, Z: 3}
	assert.Equal(t, at, Point{At: at}.Sample(stream))

	mono, err := NewMonodirectional(r3.Vec{Z: 5})
	require.NoError(t, err)
	assert.Equal(t, r3.Vec{Z: 1}, mono.Sample(stream))
	assert.Equal(t, uint64(0), stream.Draws())

	_, err = NewMonodirectional(r3.Vec{})
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestIsotropicUnitAndUnbiased(t *testing.T) {
	stream := rng.NewStream(99)
	var sum r3.Vec
	for i := 0; i < draws; i++ {
		u := Isotropic{}.Sample(stream)
		require.InDelta(t, 1.0, r3.Norm(u), 1e-12)
		sum = r3.Add(sum, u)
	}
	mean := r3.Scale(1.0/draws, sum)
	assert.InDelta(t, 0, mean.X, 0.02)
	assert.InDelta(t, 0, mean.Y, 0.02)
	assert.InDelta(t, 0, mean.Z, 0.02)
}

func TestSphericalShellRadii(t *testing.T) {
	shell, err := NewSphericalShell(r3.Vec{X: 10}, 1, 2)
	require.NoError(t, err)
	stream := rng.NewStream(5)
	for i := 0; i < 1000; i++ {
		r := r3.Norm(r3.Sub(shell.Sample(stream), shell.Center))
		assert.True(t, r >= 1-1e-12 && r <= 2+1e-12, "radius %g outside shell", r)
	}

	_, err = NewSphericalShell(r3.Vec{}, 2, 1)
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestDiscreteFrequencies(t *testing.T) {
	d, err := NewDiscrete([]float64{1e6, 2e6}, []float64{1, 3})
	require.NoError(t, err)

	stream := rng.NewStream(3)
	high := 0
	for i := 0; i < draws; i++ {
		if d.Sample(stream) == 2e6 {
			high++
		}
	}
	assert.InDelta(t, 0.75, float64(high)/draws, 0.015)

	_, err = NewDiscrete([]float64{1}, []float64{0})
	assert.ErrorIs(t, err, core.ErrConfiguration)
	_, err = NewDiscrete([]float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestContinuousSpectraMeans(t *testing.T) {
	stream := rng.NewStream(2024)

	uniform, err := NewUniform(1, 3)
	require.NoError(t, err)
	normal, err := NewNormal(14.1e6, 0.1e6)
	require.NoError(t, err)
	maxwell, err := NewMaxwell(1.2895e6)
	require.NoError(t, err)
	watt, err := NewWatt(0.988e6, 2.249e-6)
	require.NoError(t, err)

	tests := []struct {
		name   string
		sample func() float64
		mean   float64
		relTol float64
	}{
		{"uniform", func() float64 { return uniform.Sample(stream) }, 2, 0.01},
		{"normal", func() float64 { return normal.Sample(stream) }, 14.1e6, 0.001},
		{"maxwell", func() float64 { return maxwell.Sample(stream) }, 1.5 * 1.2895e6, 0.02},
		{"watt", func() float64 { return watt.Sample(stream) }, 1.5*0.988e6 + 0.988e6*0.988e6*2.249e-6/4, 0.02},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := sampleEnergies(t, tt.sample)
			mean, err := stats.Mean(values)
			require.NoError(t, err)
			assert.InEpsilon(t, tt.mean, mean, tt.relTol)

			min, err := stats.Min(values)
			require.NoError(t, err)
			assert.Greater(t, min, 0.0)
		})
	}
}

func TestSpectrumValidation(t *testing.T) {
	_, err := NewUniform(3, 1)
	assert.ErrorIs(t, err, core.ErrConfiguration)
	_, err = NewNormal(-1, 1)
	assert.ErrorIs(t, err, core.ErrConfiguration)
	_, err = NewMaxwell(0)
	assert.ErrorIs(t, err, core.ErrConfiguration)
	_, err = NewWatt(1, -1)
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

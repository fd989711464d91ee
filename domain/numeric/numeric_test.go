package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToleranceEqual(t *testing.T) {
	tol := Default
	assert.True(t, tol.Equal(1, 1+1e-9))
	assert.False(t, tol.Equal(1, 1+1e-6))
	assert.True(t, tol.Equal(0, 1e-11), "absolute window covers values near zero")
	assert.True(t, tol.Equal(1e6, 1e6*(1+1e-9)), "relative window covers large values")

	assert.True(t, tol.EqualSlices([]float64{1, 2}, []float64{1, 2}))
	assert.False(t, tol.EqualSlices([]float64{1, 2}, []float64{1}))
	assert.False(t, tol.Equal2([][]float64{{1}}, [][]float64{{1}, {2}}))
	assert.True(t, tol.Equal3(Zeros3(2, 3, 4), Zeros3(2, 3, 4)))
}

func TestNormalize(t *testing.T) {
	s := []float64{1, 3}
	assert.True(t, Normalize(s))
	assert.Equal(t, []float64{0.25, 0.75}, s)

	z := []float64{0, 0, 0}
	assert.False(t, Normalize(z))
	assert.Equal(t, []float64{0, 0, 0}, z)
}

func TestFiniteAndClone(t *testing.T) {
	assert.True(t, Finite([]float64{1, 2}))
	assert.False(t, Finite([]float64{1, math.NaN()}))
	assert.False(t, Finite([]float64{math.Inf(-1)}))

	src := [][]float64{{1, 2}, {3}}
	dst := Clone2(src)
	dst[0][0] = 9
	assert.Equal(t, 1.0, src[0][0])
	assert.Nil(t, Clone3(nil))
}

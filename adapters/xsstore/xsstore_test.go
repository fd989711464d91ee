package xsstore

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transportcore/domain/core"
	apperrors "transportcore/internal/errors"
	"transportcore/ports"
)

const uo2JSON = `{
	"uo2": {
		"294K": {
			"kT": 0.0253,
			"absorption": [0.1, 0.2],
			"scatter_data": {"scatter_matrix": [[[0.3], [0.1]], [[0], [0.5]]]}
		},
		"600K": {"kT": 0.0517, "absorption": [0.12, 0.22],
			"scatter_data": {"scatter_matrix": {"shape": [2, 2, 1], "data": [0.31, 0.1, 0, 0.52]}}}
	}
}`

func TestMemoryGroup(t *testing.T) {
	root := NewMemoryGroup("")
	assert.Equal(t, "/", root.Path())

	g := root.Child("uo2").Child("294K")
	assert.Equal(t, "/uo2/294K", g.Path())
	assert.Same(t, g, root.Child("uo2").Child("294K"))

	require.NoError(t, g.Put("absorption", []float64{0.1, 0.2}))
	require.NoError(t, g.Put("scatter_matrix", make([]float64, 4), 2, 2, 1))
	err := g.Put("bad", []float64{1, 2, 3}, 2, 2)
	assert.True(t, core.IsDimensionError(err))

	values, shape, err := g.Read("scatter_matrix")
	require.NoError(t, err)
	assert.Len(t, values, 4)
	assert.Equal(t, []int{2, 2, 1}, shape)

	// reads hand out copies
	values, _, _ = g.Read("absorption")
	values[0] = 9
	again, _, _ := g.Read("absorption")
	assert.Equal(t, 0.1, again[0])

	_, _, err = g.Read("missing")
	assert.ErrorIs(t, err, core.ErrMissingDataset)

	assert.Equal(t, []string{"absorption", "scatter_matrix"}, g.Datasets())
	_, err = root.Group("nope")
	assert.Error(t, err)
}

func TestWalkOrder(t *testing.T) {
	root := NewMemoryGroup("/")
	root.Child("b")
	root.Child("a").Child("z")

	var seen []string
	require.NoError(t, Walk(root, func(g ports.XSGroup) error {
		seen = append(seen, g.Path())
		return nil
	}))
	assert.Equal(t, []string{"/", "/a", "/a/z", "/b"}, seen)
}

func TestDecodeJSON(t *testing.T) {
	root, err := DecodeJSON([]byte(uo2JSON))
	require.NoError(t, err)

	assert.Equal(t, []string{"uo2"}, root.Children())
	hot, err := root.Child("uo2").Group("294K")
	require.NoError(t, err)
	kT, ok := hot.Attr("kT")
	assert.True(t, ok)
	assert.Equal(t, 0.0253, kT)

	sd, err := hot.Group("scatter_data")
	require.NoError(t, err)
	values, shape, err := sd.Read("scatter_matrix")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, shape)
	assert.Equal(t, []float64{0.3, 0.1, 0, 0.5}, values)

	cold, err := root.Child("uo2").Group("600K")
	require.NoError(t, err)
	assert.Equal(t, []string{"scatter_data"}, cold.Children())
	_, shape, err = root.Child("uo2").Child("600K").Child("scatter_data").Read("scatter_matrix")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, shape)
}

func TestDecodeJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		dim  bool
	}{
		{"invalid", `{"a": [1, 2`, false},
		{"not an object", `[1, 2]`, false},
		{"string value", `{"a": "x"}`, false},
		{"mixed array", `{"a": [1, [2]]}`, false},
		{"ragged", `{"a": [[1, 2], [3]]}`, true},
		{"shape mismatch", `{"a": {"shape": [2, 2], "data": [1, 2, 3]}}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJSON([]byte(tt.doc))
			require.Error(t, err)
			if tt.dim {
				assert.True(t, core.IsDimensionError(err))
			} else {
				assert.True(t, core.IsConfigurationError(err))
			}
		})
	}
}

func openMemory(t *testing.T) *SQLStore {
	t.Helper()
	s, err := Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	root, err := DecodeJSON([]byte(uo2JSON))
	require.NoError(t, err)
	// values that do not survive a decimal round trip
	require.NoError(t, root.Child("uo2").Child("600K").Put("inverse-velocity", []float64{1.0 / 3, math.Pi * 1e-9}))
	require.NoError(t, s.SaveGroup(ctx, "lib", root))

	paths, err := s.ListGroups(ctx, "lib")
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "/uo2", "/uo2/294K", "/uo2/294K/scatter_data", "/uo2/600K", "/uo2/600K/scatter_data"}, paths)

	grp, err := s.LoadGroup(ctx, "lib", "/uo2/600K")
	require.NoError(t, err)
	assert.Equal(t, "/uo2/600K", grp.Path())
	values, _, err := grp.Read("inverse-velocity")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0 / 3, math.Pi * 1e-9}, values)
	kT, _ := grp.Attr("kT")
	assert.Equal(t, 0.0517, kT)

	full, err := s.LoadGroup(ctx, "lib", "/uo2")
	require.NoError(t, err)
	assert.Equal(t, []string{"294K", "600K"}, full.Children())
	hot, err := full.Group("294K")
	require.NoError(t, err)
	sd, err := hot.Group("scatter_data")
	require.NoError(t, err)
	_, shape, err := sd.Read("scatter_matrix")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, shape)

	libs, err := s.ListLibraries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"lib"}, libs)
}

func TestSQLStoreReplacesSubtree(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	first := NewMemoryGroup("/fuel")
	require.NoError(t, first.Child("old").Put("absorption", []float64{1}))
	require.NoError(t, s.SaveGroup(ctx, "lib", first))

	sibling := NewMemoryGroup("/fuel_b")
	require.NoError(t, sibling.Put("absorption", []float64{2}))
	require.NoError(t, s.SaveGroup(ctx, "lib", sibling))

	second := NewMemoryGroup("/fuel")
	require.NoError(t, second.Child("new").Put("absorption", []float64{3}))
	require.NoError(t, s.SaveGroup(ctx, "lib", second))

	paths, err := s.ListGroups(ctx, "lib")
	require.NoError(t, err)
	assert.Equal(t, []string{"/fuel", "/fuel/new", "/fuel_b"}, paths)
}

func TestSQLStoreSubtreeIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	lower := NewMemoryGroup("/uo2")
	require.NoError(t, lower.Child("294K").Put("absorption", []float64{1}))
	require.NoError(t, s.SaveGroup(ctx, "lib", lower))

	upper := NewMemoryGroup("/UO2")
	require.NoError(t, upper.Child("600K").Put("absorption", []float64{2}))
	require.NoError(t, s.SaveGroup(ctx, "lib", upper))

	paths, err := s.ListGroups(ctx, "lib")
	require.NoError(t, err)
	assert.Equal(t, []string{"/UO2", "/UO2/600K", "/uo2", "/uo2/294K"}, paths)

	grp, err := s.LoadGroup(ctx, "lib", "/UO2")
	require.NoError(t, err)
	assert.Equal(t, []string{"600K"}, grp.Children())

	// wildcard characters in a path are plain text
	odd := NewMemoryGroup("/u_2")
	require.NoError(t, odd.Put("absorption", []float64{3}))
	require.NoError(t, s.SaveGroup(ctx, "lib", odd))
	grp, err = s.LoadGroup(ctx, "lib", "/uo2")
	require.NoError(t, err)
	assert.Equal(t, []string{"294K"}, grp.Children())
}

func TestSQLStoreMissingGroup(t *testing.T) {
	s := openMemory(t)
	_, err := s.LoadGroup(context.Background(), "lib", "/nothing")
	assert.ErrorIs(t, err, core.ErrMissingDataset)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
	assert.Equal(t, 4, apperrors.ExitCode(err))
}

func TestValueCodec(t *testing.T) {
	in := []float64{0, -1.5, math.Inf(1), math.SmallestNonzeroFloat64}
	out, err := decodeValues(encodeValues(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = decodeValues([]byte{1, 2, 3})
	assert.Error(t, err)

	shape, err := decodeShape(encodeShape([]int{3, 2, 1}))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 1}, shape)
}

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transportcore/internal/errors"
)

const libraryJSON = `{
	"uo2": {
		"energy_groups": 2, "delayed_groups": 1, "fissionable": 1,
		"t0": {
			"kT": 0.0253,
			"absorption": [0.1, 0.3],
			"nu-fission": [0.05, 0.6],
			"chi": [1, 0],
			"beta": [0.0065],
			"decay-rate": [0.08],
			"scatter_data": {"scatter_matrix": [[[0.4, 0.05], [0.02, 0]], [[0, 0], [0.9, 0.1]]]}
		}
	},
	"h2o": {
		"energy_groups": 2, "delayed_groups": 1,
		"t0": {
			"kT": 0.0253,
			"absorption": [0.01, 0.02],
			"scatter_data": {"scatter_matrix": [[[1.2, 0.3], [0.1, 0]], [[0, 0], [2.5, 0.5]]]}
		}
	}
}`

const sourcesJSON = `{"sources": [
	{"strength": 3, "space": {"type": "box", "lower": [-1, -1, -1], "upper": [1, 1, 1]}},
	{"particle": "photon", "energy": {"type": "discrete", "energies": [1.17e6, 1.33e6], "probabilities": [1, 1]}}
]}`

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("STORE_DSN", filepath.Join(dir, "xs.db"))
	t.Setenv("LOG_LEVEL", "ERROR")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.json"), []byte(libraryJSON), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sources.json"), []byte(sourcesJSON), 0o600))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestImportListCombine(t *testing.T) {
	dir := setup(t)

	out, err := run(t, "import", "--library", filepath.Join(dir, "lib.json"), "--name", "endf")
	require.NoError(t, err)
	assert.Contains(t, out, "uo2: 2 groups")

	out, err = run(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "endf\n", out)

	out, err = run(t, "list", "endf")
	require.NoError(t, err)
	assert.Contains(t, out, "/uo2/t0/scatter_data")

	out, err = run(t, "combine", "--library", "endf", "--entry", "uo2:0.5", "--entry", "h2o:0.5")
	require.NoError(t, err)
	assert.Contains(t, out, "nu-fission")
	assert.Contains(t, out, "0.055")
}

func TestCombineErrors(t *testing.T) {
	dir := setup(t)
	_, err := run(t, "import", "--library", filepath.Join(dir, "lib.json"), "--name", "endf")
	require.NoError(t, err)

	_, err = run(t, "combine", "--library", "endf", "--entry", "uo2")
	assert.Equal(t, 2, errors.ExitCode(err))

	_, err = run(t, "combine", "--library", "endf", "--entry", "pu239:1")
	assert.Equal(t, 4, errors.ExitCode(err))

	_, err = run(t, "combine", "--library", "endf", "--entry", "uo2:1", "--kT", "0.1")
	assert.Equal(t, 2, errors.ExitCode(err))
}

func TestSample(t *testing.T) {
	dir := setup(t)
	src := filepath.Join(dir, "sources.json")

	out, err := run(t, "sample", "--sources", src, "--particles", "2000", "--seed", "5", "--workers", "3", "--verify")
	require.NoError(t, err)
	assert.Contains(t, out, "sites:       2000")
	assert.Contains(t, out, "neutron")
	assert.Contains(t, out, "photon")

	again, err := run(t, "sample", "--sources", src, "--particles", "2000", "--seed", "5", "--workers", "1")
	require.NoError(t, err)
	assert.Equal(t, fingerprintLine(out), fingerprintLine(again))
}

func TestSampleBadSources(t *testing.T) {
	dir := setup(t)
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"sources": [{"energy": {"type": "mystery"}}]}`), 0o600))

	_, err := run(t, "sample", "--sources", bad)
	assert.Equal(t, 2, errors.ExitCode(err))
	assert.Contains(t, err.Error(), "failed to decode")

	_, err = run(t, "sample", "--sources", filepath.Join(dir, "absent.json"))
	assert.Equal(t, 2, errors.ExitCode(err))
}

func fingerprintLine(out string) string {
	for _, line := range bytes.Split([]byte(out), []byte("\n")) {
		if bytes.HasPrefix(line, []byte("fingerprint:")) {
			return string(line)
		}
	}
	return ""
}

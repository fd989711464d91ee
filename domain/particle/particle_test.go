package particle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transportcore/domain/core"
)

func TestParseType(t *testing.T) {
	for _, typ := range []Type{Neutron, Photon, Electron, Positron} {
		got, err := ParseType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}

	got, err := ParseType("  PHOTON ")
	require.NoError(t, err)
	assert.Equal(t, Photon, got)

	got, err = ParseType("")
	require.NoError(t, err)
	assert.Equal(t, Neutron, got)

	_, err = ParseType("muon")
	assert.ErrorIs(t, err, core.ErrUnknownParticle)
	assert.True(t, core.IsConfigurationError(err))
}

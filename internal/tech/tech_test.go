package tech

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSDPitch(t *testing.T) {
	tbl := CDSFFMPT()

	sd, err := tbl.SDPitch(18)
	require.NoError(t, err)
	assert.Equal(t, 90, sd)

	_, err = tbl.SDPitch(20)
	assert.ErrorIs(t, err, ErrUnsupportedChannelLength)
}

func TestEdgeConstants(t *testing.T) {
	tbl := CDSFFMPT()

	ec, err := tbl.Edge(18)
	require.NoError(t, err)
	// enclosure 65 minus the (90-18)/2 = 36 half-pitch margin needs one
	// extra finger at 90 pitch
	assert.Equal(t, 1, ec.GRSubFgMargin)
	assert.Equal(t, 2, ec.GRSepFg)
	assert.Equal(t, 2, ec.GRNfMin)
	assert.Equal(t, 3, ec.OuterFg)
	assert.Equal(t, 34, ec.CPOExtX)

	_, err = tbl.Edge(16)
	assert.ErrorIs(t, err, ErrUnsupportedChannelLength)
}

func TestFromTOMLOverride(t *testing.T) {
	data := []byte(`
name = "cds_ff_mpt_test"
fin_pitch = 50
fin_h = 16
`)
	tbl, err := FromTOML(data)
	require.NoError(t, err)
	assert.Equal(t, "cds_ff_mpt_test", tbl.Name)
	assert.Equal(t, 50, tbl.FinPitch)
	assert.Equal(t, 16, tbl.FinH)
	// unmentioned keys keep their defaults
	assert.Equal(t, 60, tbl.CPOH)
	assert.Equal(t, 6176, tbl.MXAreaMin)
}

func TestFromTOMLInvalid(t *testing.T) {
	_, err := FromTOML([]byte(`fin_pitch = -1`))
	assert.Error(t, err)

	_, err = FromTOML([]byte(`fin_h = 48`))
	assert.Error(t, err)

	_, err = FromTOML([]byte(`od_nfin_min = 30`))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tech.toml")
	require.NoError(t, os.WriteFile(path, []byte(`version = "2"`), 0o644))

	tbl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "2", tbl.Version)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

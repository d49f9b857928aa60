// Package tech publishes the read-only process constant tables that every
// geometry solver consumes.  All lengths are integers in resolution units;
// a single resolution/layout-unit pair converts them to physical lengths.
package tech

import (
	"errors"
	"fmt"

	"fingrid/pkg/geometry"
)

// ErrUnsupportedChannelLength reports a channel length outside the table's
// supported process points.
var ErrUnsupportedChannelLength = errors.New("unsupported channel length")

// Tech is an immutable process constant table.  Construct one with
// CDSFFMPT or Load and pass it by pointer into the solvers; never mutate it
// after construction.
type Tech struct {
	// Name identifies the process, Version the table revision.
	Name    string `toml:"name"`
	Version string `toml:"version"`

	// LayoutUnit is the physical length of one layout unit in meters and
	// Resolution the grid resolution in layout units.
	LayoutUnit float64 `toml:"layout_unit"`
	Resolution float64 `toml:"resolution"`

	FinH     int `toml:"fin_h"`     // fin height
	FinPitch int `toml:"fin_pitch"` // fin pitch

	MPCPOSp int `toml:"mp_cpo_sp"` // space between gate contact and boundary cut
	MPH     int `toml:"mp_h"`      // gate contact height
	MPPOOvl int `toml:"mp_po_ovl"` // gate contact overlap over poly
	MPMDSp  int `toml:"mp_md_sp"`  // space between gate contact and S/D contact
	MPSpY   int `toml:"mp_spy"`    // vertical space between adjacent gate contacts

	MDW      int `toml:"md_w"`       // S/D contact width
	MDSp     int `toml:"md_sp"`      // S/D contact space
	MDODSpY  int `toml:"md_od_spy"`  // space between contact and active region
	MDODExtY int `toml:"md_od_exty"` // extension of contact over active region
	MDHMin   int `toml:"md_h_min"`   // minimum contact height

	V0Sp int `toml:"v0_sp"` // space between stacked first-level vias
	VXSp int `toml:"vx_sp"` // space between upper-level vias

	CPOH      int `toml:"cpo_h"`       // boundary cut height
	CPOHEnd   int `toml:"cpo_h_end"`   // boundary cut height at an array end
	CPOODSp   int `toml:"cpo_od_sp"`   // space between boundary cut and active region
	CPOSpY    int `toml:"cpo_spy"`     // minimum vertical boundary cut space
	CPOPOEncY int `toml:"cpo_po_ency"` // enclosure of boundary cut over poly

	ODSpNfinMax  int `toml:"od_sp_nfin_max"` // max active-region space in fin pitches
	ODNfinMin    int `toml:"od_nfin_min"`    // minimum fins in an active region
	ODNfinMax    int `toml:"od_nfin_max"`    // maximum fins in an active region
	DumODFgMin   int `toml:"dum_od_fg_min"`  // minimum fingers for a dummy active region
	DumODFgSpace int `toml:"dum_od_fg_space"`

	ImpODEncY int `toml:"imp_od_ency"` // vertical implant enclosure over active region
	ImpODEncX int `toml:"imp_od_encx"` // horizontal implant enclosure over active region
	ImpMinW   int `toml:"imp_wmin"`    // minimum implant width

	MXAreaMin  int `toml:"mx_area_min"`  // minimum routing metal area
	M1SpMax    int `toml:"m1_sp_max"`    // maximum first-metal space
	M1SpBnd    int `toml:"m1_sp_bnd"`    // first-metal space to boundary
	M1FillLMin int `toml:"m1_fill_lmin"` // first-metal fill minimum length
	M1FillLMax int `toml:"m1_fill_lmax"` // first-metal fill maximum length
	MXSpYMin   int `toml:"mx_spy_min"`   // minimum routing metal line-end space
}

// CDSFFMPT returns the constant table for the cds_ff_mpt FinFET process
// point.  The returned value is fresh on every call.
func CDSFFMPT() *Tech {
	return &Tech{
		Name:       "cds_ff_mpt",
		Version:    "1",
		LayoutUnit: 1e-6,
		Resolution: 0.001,

		FinH:     14,
		FinPitch: 48,

		MPCPOSp: 19,
		MPH:     40,
		MPPOOvl: 16,
		MPMDSp:  13,
		MPSpY:   34,

		MDW:      40,
		MDSp:     46,
		MDODSpY:  40,
		MDODExtY: 20,
		MDHMin:   68,

		V0Sp: 32,
		VXSp: 42,

		CPOH:      60,
		CPOHEnd:   60,
		CPOODSp:   20,
		CPOSpY:    90,
		CPOPOEncY: 34,

		ODSpNfinMax:  16,
		ODNfinMin:    2,
		ODNfinMax:    20,
		DumODFgMin:   2,
		DumODFgSpace: 2,

		ImpODEncY: 45,
		ImpODEncX: 65,
		ImpMinW:   52,

		MXAreaMin:  6176,
		M1SpMax:    1600,
		M1SpBnd:    800,
		M1FillLMin: 200,
		M1FillLMax: 400,
		MXSpYMin:   64,
	}
}

// SDPitch returns the source-drain pitch for the given channel length.
func (t *Tech) SDPitch(lch int) (int, error) {
	if lch == 18 {
		return 90, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnsupportedChannelLength, lch)
}

// MOSConnW returns the width of device connection wires, which matches the
// S/D contact width on every supported layer.
func (t *Tech) MOSConnW() int {
	return t.MDW
}

// MOSPitch returns the vertical quantization pitch for rows.
func (t *Tech) MOSPitch() int {
	return t.FinPitch
}

// Fixed per-process answers consumed by higher-level floorplanning.
const (
	// AnalogUnitFg is the finger quantum for analog devices.
	AnalogUnitFg = 2
	// MOSConnLayer is the top metal level of a device connection stack.
	MOSConnLayer = 3
	// DumConnLayer is the metal level dummy connections terminate on.
	DumConnLayer = 1
	// DigConnLayer is the metal level digital connections terminate on.
	DigConnLayer = 1
	// DumConnPitch is the dummy connection pitch in fingers.
	DumConnPitch = 1
	// MinFgDecap is the minimum decap finger count.
	MinFgDecap = 2
	// NumSDPerTrack is the number of source-drain pitches per routing track.
	NumSDPerTrack = 1
)

// EdgeConstants are the derived constants governing edge and guard-ring
// blocks for one channel length.
type EdgeConstants struct {
	GRNfMin       int // minimum guard-ring finger count
	OuterFg       int // outer edge finger count without a guard ring
	GROuterFg     int // outer edge finger count with a guard ring
	GRSubFgMargin int // tap finger margin from implant enclosure
	GRSepFg       int // separator finger count between guard ring and array
	CPOExtX       int // boundary cut X extension past the block edge
}

// Edge returns the edge constants for the given channel length.
func (t *Tech) Edge(lch int) (EdgeConstants, error) {
	sdPitch, err := t.SDPitch(lch)
	if err != nil {
		return EdgeConstants{}, err
	}
	// fingers needed around an active region to satisfy the horizontal
	// implant enclosure rule
	odFgMargin := geometry.CeilDiv(t.ImpODEncX-(sdPitch-lch)/2, sdPitch)
	if odFgMargin < 0 {
		odFgMargin = 0
	}
	return EdgeConstants{
		GRNfMin:       2,
		OuterFg:       3,
		GROuterFg:     0,
		GRSubFgMargin: odFgMargin,
		GRSepFg:       odFgMargin + 1,
		CPOExtX:       34,
	}, nil
}

// Package mos computes design-rule-correct primitive geometry for FinFET
// transistor rows, extension blocks, substrate rows, and array edge blocks.
// Every solver is a pure function over a tech.Tech table and its inputs; all
// records are immutable values and updates derive fresh copies.
package mos

import (
	"errors"

	"fingrid/pkg/geometry"
)

// Sentinel errors for caller contract violations.  All are fatal and
// synchronous; the engine never retries or degrades.
var (
	// ErrIllegalExtensionHeight reports an extension height outside the
	// legal set published by LegalExtensionWidths.
	ErrIllegalExtensionHeight = errors.New("illegal extension height")
	// ErrInvalidGuardRingWidth reports a guard ring narrower than the
	// process minimum.
	ErrInvalidGuardRingWidth = errors.New("invalid guard ring width")
	// ErrUnknownThreshold reports an unrecognized threshold flavor.
	ErrUnknownThreshold = errors.New("unknown threshold flavor")
)

// MOSType identifies the electrical flavor of a row: a transistor type or a
// substrate tap type.
type MOSType uint8

const (
	NCh MOSType = iota // n-channel transistor
	PCh                // p-channel transistor
	PTap               // p-substrate tap
	NTap               // n-well tap
)

// String returns the conventional lowercase name.
func (m MOSType) String() string {
	switch m {
	case NCh:
		return "nch"
	case PCh:
		return "pch"
	case PTap:
		return "ptap"
	case NTap:
		return "ntap"
	}
	return "unknown"
}

// ParseMOSType converts a conventional name to a MOSType.
func ParseMOSType(s string) (MOSType, error) {
	switch s {
	case "nch":
		return NCh, nil
	case "pch":
		return PCh, nil
	case "ptap":
		return PTap, nil
	case "ntap":
		return NTap, nil
	}
	return NCh, errors.New("unknown MOS type " + s)
}

// IsTransistor returns true for the device flavors, false for taps.
func (m MOSType) IsTransistor() bool {
	return m == NCh || m == PCh
}

// SubType returns the tap flavor sharing this type's substrate region.
func (m MOSType) SubType() MOSType {
	if m == NCh || m == PTap {
		return PTap
	}
	return NTap
}

// DeviceType returns the transistor flavor whose implant covers this type's
// region.
func (m MOSType) DeviceType() MOSType {
	if m == NCh || m == PTap {
		return NCh
	}
	return PCh
}

// Threshold is a threshold-voltage flavor.  Comparisons between thresholds
// are plain string comparisons; the extension solver relies on that for its
// deterministic tie-break.
type Threshold string

// ODClass tags what kind of active region occupies a row or edge finger.
type ODClass uint8

const (
	ODNone ODClass = iota // no active region
	ODDevice              // transistor active region
	ODDummy               // dummy fill active region
	ODSub                 // substrate tap active region
)

// String returns a short tag name.
func (c ODClass) String() string {
	switch c {
	case ODDevice:
		return "mos"
	case ODDummy:
		return "dum"
	case ODSub:
		return "sub"
	}
	return "none"
}

// BlockKind tags the block category of a LayoutInfo.
type BlockKind uint8

const (
	BlockMOS BlockKind = iota
	BlockExt
	BlockSub
	BlockEnd
	BlockEdge
	BlockGREdge
	BlockGRSub
	BlockGRSep
)

// EdgeInfo describes the active-region category at one boundary finger of a
// block.  Neighboring blocks use it to pick live versus dummy poly and to
// decide whether a boundary contact is drawn.
type EdgeInfo struct {
	Class ODClass `json:"class"`
}

// DrawsPoly returns true if a poly finger abutting this edge is live.
func (e EdgeInfo) DrawsPoly() bool {
	return e.Class == ODDevice || e.Class == ODSub
}

// DrawsContact returns true if a contact on the shared boundary is drawn.
func (e EdgeInfo) DrawsContact() bool {
	return e.Class != ODNone
}

// OptionalEdge is an explicit EdgeInfo or the default-behavior marker.
type OptionalEdge struct {
	Valid bool     `json:"valid"`
	Edge  EdgeInfo `json:"edge"`
}

// Explicit wraps an EdgeInfo as an explicit OptionalEdge.
func Explicit(e EdgeInfo) OptionalEdge {
	return OptionalEdge{Valid: true, Edge: e}
}

// ExtInfo is the margin descriptor a row solver publishes for one of its
// vertical boundaries.  Margins are non-negative distances from the block
// boundary to the nearest feature of each kind inside the block.
type ExtInfo struct {
	MXMargin int `json:"mx_margin"` // to the nearest routing-level metal
	ODMargin int `json:"od_margin"` // to the nearest active region
	MDMargin int `json:"md_margin"` // to the nearest contact
	M1Margin int `json:"m1_margin"` // to the nearest first metal
	ImpMinW  int `json:"imp_min_w"` // implant width still owed to this block

	MType   MOSType   `json:"mtype"`    // electrical type at this boundary
	RowType MOSType   `json:"row_type"` // row category the margins came from
	Thres   Threshold `json:"thres"`

	POTypes []bool   `json:"po_types"` // per finger: true for live poly
	EdgeL   EdgeInfo `json:"edge_l"`
	EdgeR   EdgeInfo `json:"edge_r"`
}

// RowInfo is one drawable row of active region, poly and contact.
type RowInfo struct {
	ODX     []geometry.Interval `json:"od_x"`     // active intervals in finger index
	ODY     geometry.Interval   `json:"od_y"`
	POY     geometry.Interval   `json:"po_y"`
	MDY     geometry.Interval   `json:"md_y"`
	Class   ODClass             `json:"class"`
	SubType MOSType             `json:"sub_type"` // tap flavor of this row's region
}

// WithODX returns a copy with the active intervals replaced.
func (r RowInfo) WithODX(odx []geometry.Interval) RowInfo {
	r.ODX = odx
	return r
}

// AdjRowInfo is gate geometry logically owned by a neighboring block but
// drawn by this one so poly strips stay continuous across the boundary.
type AdjRowInfo struct {
	POY     geometry.Interval `json:"po_y"`
	POTypes []bool            `json:"po_types"`
}

// WithPOTypes returns a copy with the finger mask replaced.
func (a AdjRowInfo) WithPOTypes(types []bool) AdjRowInfo {
	a.POTypes = types
	return a
}

// LayerSpec names a drawing layer and purpose.
type LayerSpec struct {
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
}

// LayerEntry is one non-row rectangle: a layer spanning the block width from
// XL, over the Y interval.
type LayerEntry struct {
	Layer LayerSpec         `json:"layer"`
	XL    int               `json:"xl"`
	Y     geometry.Interval `json:"y"`
}

// FillInfo is a declarative fill-metal request; the cross product of the X
// and Y intervals defines the fill rectangles.
type FillInfo struct {
	Layer  LayerSpec           `json:"layer"`
	Exc    LayerSpec           `json:"exc"` // zero value means no exclusion layer
	XIntvs []geometry.Interval `json:"x_intvs"`
	YIntvs []geometry.Interval `json:"y_intvs"`
}

// WithXIntvs returns a copy with the X intervals replaced.
func (f FillInfo) WithXIntvs(x []geometry.Interval) FillInfo {
	f.XIntvs = x
	return f
}

// ImplantSpec records the raw tuple that produced a block's implant layers,
// kept so edge blocks can reinterpret them as tap implants.
type ImplantSpec struct {
	MType  MOSType           `json:"mtype"`
	Thres  Threshold         `json:"thres"`
	ImpY   geometry.Interval `json:"imp_y"`
	ThresY geometry.Interval `json:"thres_y"`
}

// LayoutInfo is the aggregate geometry descriptor returned by every solver
// and consumed by DrawLayout.
type LayoutInfo struct {
	Kind    BlockKind         `json:"kind"`
	Lch     int               `json:"lch"`
	MDW     int               `json:"md_w"`
	Fg      int               `json:"fg"`
	SDPitch int               `json:"sd_pitch"`
	ArrayXL int               `json:"array_xl"`
	ArrayY  geometry.Interval `json:"array_y"`
	DrawOD  bool              `json:"draw_od"`

	Rows    []RowInfo    `json:"rows"`
	Layers  []LayerEntry `json:"layers"`
	AdjRows []AdjRowInfo `json:"adj_rows"`

	EdgeL OptionalEdge `json:"edge_l"`
	EdgeR OptionalEdge `json:"edge_r"`

	Fill []FillInfo `json:"fill"`

	// Implants is non-nil only for blocks whose implant layers may later be
	// reinterpreted by a guard-ring edge.
	Implants []ImplantSpec `json:"implants,omitempty"`
}

// ViaStackInfo describes a three-level via stack: per-level cut sizes and
// enclosures plus the derived metal heights.
type ViaStackInfo struct {
	H [3]int `json:"h"` // cut heights, V0..V2
	W [3]int `json:"w"` // cut widths, V0..V2

	BotEncX [3]int `json:"bot_encx"`
	BotEncY [3]int `json:"bot_ency"`
	TopEncX [3]int `json:"top_encx"`
	TopEncY [3]int `json:"top_ency"`

	M1H int `json:"m1_h"`
	M2H int `json:"m2_h"`
	M3H int `json:"m3_h"`

	// Drain/source stacks only.
	NumV0 int `json:"num_v0,omitempty"` // stacked first-level via count
	MDH   int `json:"md_h,omitempty"`   // contact height
}

// EdgeSideInfo pairs a block's own edge tag with the edge tags of its
// adjacent-row strips, as published to horizontal neighbors.
type EdgeSideInfo struct {
	Edge    EdgeInfo   `json:"edge"`
	AdjRows []EdgeInfo `json:"adj_rows"`
}

// AdjBlockInfo is the edge information a caller passes about the block that
// will abut an edge block being solved.
type AdjBlockInfo struct {
	Edge OptionalEdge   `json:"edge"`
	Rows []OptionalEdge `json:"rows"`
}

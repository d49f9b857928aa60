package mos

import (
	"fingrid/internal/tech"
	"fingrid/pkg/geometry"
)

// GateViaStack computes the via stack that brings a gate contact up to the
// routing metal level.  Each metal height is the larger of the via-enclosure
// requirement and the minimum-area rule at the fixed metal width.
func GateViaStack(t *tech.Tech, lch int) (ViaStackInfo, error) {
	if _, err := t.SDPitch(lch); err != nil {
		return ViaStackInfo{}, err
	}

	info := ViaStackInfo{
		H:       [3]int{32, 32, 32},
		W:       [3]int{32, 32, 32},
		BotEncX: [3]int{18, 4, 40},
		BotEncY: [3]int{4, 40, 0},
		TopEncX: [3]int{4, 40, 4},
		TopEncY: [3]int{40, 0, 40},
	}

	mxHMin := geometry.CeilDiv(t.MXAreaMin, t.MDW)
	info.M1H = max(info.H[0]+2*info.TopEncY[0], mxHMin)
	info.M2H = info.H[1] + 2*info.TopEncY[1]
	info.M3H = max(info.H[2]+2*info.TopEncY[2], mxHMin)
	return info, nil
}

// DSViaStack computes the drain/source via stack for an active region of w
// fins.  The stacked first-level via count is a packing count inside the
// contact height, not a continuous formula.  compact selects the guard-ring
// variant; it shares the same enclosure table.
func DSViaStack(t *tech.Tech, lch, w int, compact bool) (ViaStackInfo, error) {
	if _, err := t.SDPitch(lch); err != nil {
		return ViaStackInfo{}, err
	}
	info := ViaStackInfo{
		H:       [3]int{32, 64, 64},
		W:       [3]int{32, 32, 32},
		BotEncX: [3]int{3, 4, 10},
		BotEncY: [3]int{18, 20, 10},
		TopEncX: [3]int{4, 10, 4},
		TopEncY: [3]int{40, 10, 20},
	}

	odH := (w-1)*t.FinPitch + t.FinH
	info.MDH = max(odH+2*t.MDODExtY, t.MDHMin)
	info.NumV0 = (info.MDH - 2*info.BotEncY[0] - t.V0Sp) / (t.V0Sp + info.H[0])

	// M1 must enclose the V0 column...
	v0Arr := info.NumV0*(info.H[0]+t.V0Sp) - t.V0Sp
	m1H := v0Arr + 2*info.TopEncY[0]
	// ...fit two V1 cuts for the up and down connections...
	m1H = max(m1H, 2*info.BotEncY[1]+2*info.H[1]+t.VXSp)
	// ...and pass the minimum area rule.
	mxHMin := geometry.CeilDiv(t.MXAreaMin, t.MDW)
	info.M1H = max(m1H, mxHMin)

	info.M2H = info.H[1] + 2*info.TopEncY[1]
	info.M3H = max(info.H[2]+2*info.TopEncY[2], mxHMin)
	return info, nil
}

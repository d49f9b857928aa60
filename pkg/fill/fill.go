// Package fill provides generic one-dimensional packing helpers for layout
// fill synthesis, plus small integer arithmetic utilities.
package fill

import "fingrid/pkg/geometry"

// GCD returns the greatest common divisor of a and b.
func GCD(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// LCM returns the least common multiple of a and b.
func LCM(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return a / GCD(a, b) * b
}

// SymmetricFill packs zero or more intervals into the span [offset,
// offset+span] such that every gap, including the gap to each span boundary,
// is at most maxSpace and every interval length lies in [minLen, maxLen].
// The interval count is the smallest that admits a solution, and the
// placement is mirror symmetric about the span center up to one grid unit.
//
// If the empty packing already satisfies the spacing bound (span <= maxSpace)
// the result is nil.  If no interval count can satisfy the bounds the result
// is also nil; callers are expected to pre-validate the span against their
// own sizing rules.
func SymmetricFill(span, maxSpace, minLen, maxLen, offset int) []geometry.Interval {
	if span <= maxSpace {
		return nil
	}
	n := 0
	for {
		n++
		if n*minLen > span {
			return nil
		}
		if span <= n*maxLen+(n+1)*maxSpace {
			break
		}
	}

	// all intervals share one length, as small as the spacing bound allows
	length := geometry.CeilDiv(span-(n+1)*maxSpace, n)
	if length < minLen {
		length = minLen
	}
	if length > maxLen {
		length = maxLen
	}

	// remaining space is spread over the n+1 gaps; the cumulative-floor
	// split keeps opposing gaps equal up to one unit
	rem := span - n*length
	gapBelow := func(i int) int {
		return geometry.FloorDiv(rem*i, n+1)
	}

	out := make([]geometry.Interval, n)
	pos := offset
	for i := 0; i < n; i++ {
		pos = offset + gapBelow(i+1) + i*length
		out[i] = geometry.NewInterval(pos, pos+length)
	}
	return out
}

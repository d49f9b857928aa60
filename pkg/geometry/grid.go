package geometry

// FloorDiv divides a by b, rounding toward negative infinity.
func FloorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// CeilDiv divides a by b, rounding toward positive infinity.
func CeilDiv(a, b int) int {
	return -FloorDiv(-a, b)
}

// RoundDown rounds x down to a multiple of pitch.
func RoundDown(x, pitch int) int {
	return FloorDiv(x, pitch) * pitch
}

// RoundUp rounds x up to a multiple of pitch.
func RoundUp(x, pitch int) int {
	return CeilDiv(x, pitch) * pitch
}

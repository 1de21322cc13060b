package geom

// HilbertCode returns a 64-bit key for a point already in Mercator space
// such that lexicographic order on keys approximates spatial proximity.
// It treats each axis as an unsigned 32-bit coordinate on a 2^32 x 2^32
// Hilbert curve, following the standard iterative quadrant-rotation
// construction (see e.g. Wikipedia's "Hilbert curve" pseudocode).
func HilbertCode(p Point) uint64 {
	x := toUnsignedAxis(p.Lon)
	y := toUnsignedAxis(p.Lat)

	var d uint64
	for s := uint64(1) << 31; s > 0; s >>= 1 {
		var rx, ry uint64
		if x&uint32(s) > 0 {
			rx = 1
		}
		if y&uint32(s) > 0 {
			ry = 1
		}
		d += s * s * ((3 * rx) ^ ry)
		x, y = rotate(x, y, rx, ry)
	}
	return d
}

// toUnsignedAxis maps a signed fixed-point coordinate onto the unsigned
// 32-bit range so equal steps in the input map to equal steps on the curve.
func toUnsignedAxis(v int32) uint32 {
	return uint32(v) ^ 0x80000000
}

// axisMax is n-1 for the curve's fixed 2^32-wide grid: the quadrant flip
// mirrors coordinates against the full grid extent, not the current
// iteration's scale.
const axisMax = ^uint32(0)

func rotate(x, y uint32, rx, ry uint64) (uint32, uint32) {
	if ry == 0 {
		if rx == 1 {
			x = axisMax - x
			y = axisMax - y
		}
		x, y = y, x
	}
	return x, y
}

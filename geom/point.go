// Package geom holds the fixed-point geometry primitives shared by the
// packers and the query engine: points, rectangles, projection and the
// Hilbert space-filling curve used to give segments a locality-preserving
// sort key.
package geom

// Point is a fixed-point 2D coordinate. Depending on context it holds
// unprojected WGS84 degrees scaled by a fixed factor, or Mercator-projected
// units; callers must not mix the two without going through ToMercator.
type Point struct {
	Lon, Lat int32
}

// FixedPrecision is the scale factor used to turn WGS84 degrees into the
// fixed-point ints stored in a Point. 1e7 gives ~1.1cm resolution at the
// equator, matching common road-network fixed-point conventions.
const FixedPrecision = 1e7

// FromDegrees converts floating point WGS84 degrees to a fixed-point Point.
func FromDegrees(lon, lat float64) Point {
	return Point{
		Lon: int32(lon * FixedPrecision),
		Lat: int32(lat * FixedPrecision),
	}
}

// ToDegrees converts a fixed-point Point back to floating point WGS84 degrees.
func (p Point) ToDegrees() (lon, lat float64) {
	return float64(p.Lon) / FixedPrecision, float64(p.Lat) / FixedPrecision
}

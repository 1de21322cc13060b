package geom

import "math"

// ToMercator projects a fixed-point WGS84 point into fixed-point Web
// Mercator space, at the same FixedPrecision scale as its input. Longitude
// passes straight through; latitude is warped by the standard spherical
// Mercator transform. This is a pure function: it has no dependency on tree
// state and packers and the query engine must call it identically for any
// point that participates in a distance or bounding comparison.
func ToMercator(p Point) Point {
	return Point{
		Lon: p.Lon,
		Lat: mercatorLat(p.Lat),
	}
}

// ToMercatorLat projects only a latitude bound, used by box search which
// leaves longitudes as-is and only needs the latitude axis projected to
// compare against Mercator-space MBRs.
func ToMercatorLat(lat int32) int32 {
	return mercatorLat(lat)
}

// maxMercatorLatDeg is the Web-Mercator latitude limit; at this latitude the
// projected value is exactly 180. Inputs beyond it are clamped before
// projecting, keeping the fixed-point result within int32 range (unclamped,
// tan(pi/2) tends to +Inf and the float-to-int32 conversion of the result is
// out of range).
const maxMercatorLatDeg = 85.05112877980659

func mercatorLat(lat int32) int32 {
	latDeg := float64(lat) / FixedPrecision
	if latDeg > maxMercatorLatDeg {
		latDeg = maxMercatorLatDeg
	}
	if latDeg < -maxMercatorLatDeg {
		latDeg = -maxMercatorLatDeg
	}
	latRad := latDeg * math.Pi / 180
	y := 180 / math.Pi * math.Log(math.Tan(math.Pi/4+latRad/2))
	return int32(y * FixedPrecision)
}

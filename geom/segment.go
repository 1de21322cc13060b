package geom

// NearestPointOnSegment returns the point on segment [a,b] closest to q,
// and the squared Euclidean distance from q to that point. All four points
// are expected to already be in the same projection (typically Mercator);
// the degenerate a==b case returns a itself.
func NearestPointOnSegment(a, b, q Point) (nearest Point, sqDist int64) {
	ax, ay := float64(a.Lon), float64(a.Lat)
	bx, by := float64(b.Lon), float64(b.Lat)
	qx, qy := float64(q.Lon), float64(q.Lat)

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return a, squaredDist(a, q)
	}

	t := ((qx-ax)*dx + (qy-ay)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	nx := ax + t*dx
	ny := ay + t*dy
	nearest = Point{Lon: int32(nx), Lat: int32(ny)}
	return nearest, squaredDist(nearest, q)
}

func squaredDist(a, b Point) int64 {
	dx := int64(a.Lon) - int64(b.Lon)
	dy := int64(a.Lat) - int64(b.Lat)
	return dx*dx + dy*dy
}

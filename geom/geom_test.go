package geom_test

import (
	"testing"

	"github.com/waypointd/segrtree/geom"
)

func TestRectMinSquaredDistanceZeroInside(t *testing.T) {
	r := geom.Rect{MinLon: 0, MaxLon: 100, MinLat: 0, MaxLat: 100}
	if d := r.MinSquaredDistance(geom.Point{Lon: 50, Lat: 50}); d != 0 {
		t.Fatalf("want 0 for a point inside the rect, got %d", d)
	}
}

func TestRectMinSquaredDistanceOutside(t *testing.T) {
	r := geom.Rect{MinLon: 0, MaxLon: 10, MinLat: 0, MaxLat: 10}
	d := r.MinSquaredDistance(geom.Point{Lon: 13, Lat: 0})
	if d != 9 {
		t.Fatalf("want 9, got %d", d)
	}
}

func TestRectIntersects(t *testing.T) {
	a := geom.Rect{MinLon: 0, MaxLon: 10, MinLat: 0, MaxLat: 10}
	b := geom.Rect{MinLon: 5, MaxLon: 15, MinLat: 5, MaxLat: 15}
	c := geom.Rect{MinLon: 20, MaxLon: 30, MinLat: 20, MaxLat: 30}

	if !a.Intersects(b) {
		t.Fatalf("expected a and b to intersect")
	}
	if a.Intersects(c) {
		t.Fatalf("expected a and c not to intersect")
	}
}

func TestHilbertCodeOrdersNearbyPointsCloser(t *testing.T) {
	origin := geom.FromDegrees(0, 0)
	near := geom.FromDegrees(0.001, 0.001)
	far := geom.FromDegrees(90, 90)

	hOrigin := geom.HilbertCode(origin)
	hNear := geom.HilbertCode(near)
	hFar := geom.HilbertCode(far)

	dNear := absDiff(hOrigin, hNear)
	dFar := absDiff(hOrigin, hFar)
	if dNear >= dFar {
		t.Fatalf("expected the nearby point's Hilbert code to be closer to origin's than the far point's: near=%d far=%d", dNear, dFar)
	}
}

func TestMercatorRoundTripsLongitude(t *testing.T) {
	p := geom.FromDegrees(45, 30)
	proj := geom.ToMercator(p)
	if proj.Lon != p.Lon {
		t.Fatalf("longitude must pass through unprojected, got %d want %d", proj.Lon, p.Lon)
	}
}

func TestMercatorClampsPolarLatitudes(t *testing.T) {
	north := geom.ToMercatorLat(geom.FromDegrees(0, 90).Lat)
	south := geom.ToMercatorLat(geom.FromDegrees(0, -90).Lat)

	if north <= 0 || south >= 0 {
		t.Fatalf("polar latitudes must keep their sign after projection: north=%d south=%d", north, south)
	}

	// Any latitude beyond the Mercator limit clamps to the same value.
	if beyond := geom.ToMercatorLat(geom.FromDegrees(0, 89).Lat); beyond != north {
		t.Fatalf("latitudes beyond the Mercator limit must project identically: got %d and %d", beyond, north)
	}
	if beyond := geom.ToMercatorLat(geom.FromDegrees(0, -89).Lat); beyond != south {
		t.Fatalf("latitudes beyond the Mercator limit must project identically: got %d and %d", beyond, south)
	}

	mid := geom.ToMercatorLat(geom.FromDegrees(0, 45).Lat)
	if mid >= north || -mid <= south {
		t.Fatalf("projection must stay monotonic up to the clamp: mid=%d north=%d south=%d", mid, north, south)
	}
}

func TestNearestPointOnSegmentClampsToEndpoint(t *testing.T) {
	a := geom.FromDegrees(0, 0)
	b := geom.FromDegrees(10, 0)
	q := geom.FromDegrees(-5, 0)

	nearest, _ := geom.NearestPointOnSegment(a, b, q)
	if nearest != a {
		t.Fatalf("expected projection to clamp to endpoint a, got %+v", nearest)
	}
}

func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

package quadindex_test

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/waypointd/segrtree/regionindex/quadindex"
)

func polygonFromBounds(minX, minY, maxX, maxY float64) orb.MultiPolygon {
	return orb.MultiPolygon{orb.Polygon{orb.Ring{
		orb.Point{minX, minY},
		orb.Point{maxX, minY},
		orb.Point{maxX, maxY},
		orb.Point{minX, maxY},
		orb.Point{minX, minY},
	}}}
}

func TestLookupDisjointRegions(t *testing.T) {
	idx := quadindex.New(4)
	idx.InsertRegion("east", polygonFromBounds(10, 10, 20, 20))
	idx.InsertRegion("west", polygonFromBounds(-20, -20, -10, -10))

	name, ok := idx.Lookup(orb.Point{15, 15})
	if !ok || name != "east" {
		t.Fatalf("want (east, true), got (%s, %v)", name, ok)
	}

	name, ok = idx.Lookup(orb.Point{-15, -15})
	if !ok || name != "west" {
		t.Fatalf("want (west, true), got (%s, %v)", name, ok)
	}
}

func TestLookupPrefersExactContainmentOverNearbyBound(t *testing.T) {
	idx := quadindex.New(4)
	// Two disjoint regions: the first probe lies inside "outer", the second
	// lies between the two bounds and inside neither.
	idx.InsertRegion("outer", polygonFromBounds(0, 0, 30, 30))
	idx.InsertRegion("hole", polygonFromBounds(40, 40, 50, 50))

	name, ok := idx.Lookup(orb.Point{5, 5})
	if !ok || name != "outer" {
		t.Fatalf("want (outer, true), got (%s, %v)", name, ok)
	}

	if _, ok := idx.Lookup(orb.Point{35, 35}); ok {
		t.Fatalf("expected no region to contain a point outside all polygons")
	}
}

package qtreeindex_test

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/waypointd/segrtree/regionindex/qtreeindex"
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
	idx := qtreeindex.New()
	idx.InsertRegion("north", polygonFromBounds(0, 0, 1, 1))
	idx.InsertRegion("south", polygonFromBounds(-1, -1, 0, 0))

	name, ok := idx.Lookup(orb.Point{0.5, 0.5})
	if !ok || name != "north" {
		t.Fatalf("want (north, true), got (%s, %v)", name, ok)
	}

	name, ok = idx.Lookup(orb.Point{-0.5, -0.5})
	if !ok || name != "south" {
		t.Fatalf("want (south, true), got (%s, %v)", name, ok)
	}

	_, ok = idx.Lookup(orb.Point{100, 100})
	if ok {
		t.Fatalf("expected no region to contain a far-away point")
	}
}

func FuzzLookupAgreesWithPlanarContains(f *testing.F) {
	const name = "r"

	f.Add(0.0, 0.0, 1.0, 1.0, 0.5, 0.5)
	f.Add(0.0, 0.0, 1.0, 1.0, 1.5, 1.5)

	f.Fuzz(func(t *testing.T, minX, minY, maxX, maxY, pointX, pointY float64) {
		polygon := polygonFromBounds(minX, minY, maxX, maxY)
		point := orb.Point{pointX, pointY}
		want := planar.MultiPolygonContains(polygon, point)

		idx := qtreeindex.New()
		idx.InsertRegion(name, polygon)

		got, ok := idx.Lookup(point)
		if want != ok {
			t.Fatalf("expected %v, got %v", want, ok)
		}
		if want && got != name {
			t.Fatalf("expected %s, got %s", name, got)
		}
	})
}

// Package regionindex defines the contract shared by this module's two
// named-region lookup implementations: "which region contains this point".
// It deliberately does not build on the packed R-tree in segtree — that
// would defeat its purpose as an independent, simpler collaborator for the
// much smaller secondary-index problem of boundary polygons.
package regionindex

import "github.com/paulmach/orb"

// RegionIndex answers point-in-region membership against a set of named
// polygonal regions inserted ahead of time.
type RegionIndex interface {
	// InsertRegion registers a named region's boundary.
	InsertRegion(name string, polygon orb.MultiPolygon)
	// Lookup returns the name of the region containing point, if any.
	Lookup(point orb.Point) (name string, ok bool)
}

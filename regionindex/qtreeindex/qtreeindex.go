// Package qtreeindex implements regionindex.RegionIndex with an exact
// polygon-contains test behind a bounding-box quadtree prefilter.
package qtreeindex

import (
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/tidwall/qtree"
)

type region struct {
	name    string
	polygon orb.MultiPolygon
}

// Index is a RegionIndex backed by a tidwall/qtree bounding-box index: the
// quadtree narrows a point lookup down to the regions whose bound contains
// it, and an exact orb/planar polygon-contains test resolves ties among
// overlapping bounds.
type Index struct {
	mu      sync.RWMutex
	counter uint64
	regions []region
	qt      qtree.QTree
}

func New() *Index {
	return &Index{}
}

func (idx *Index) InsertRegion(name string, polygon orb.MultiPolygon) {
	bound := polygon.Bound()

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.regions = append(idx.regions, region{name: name, polygon: polygon})
	idx.qt.Insert(bound.Min, bound.Max, idx.counter)
	idx.counter++
}

func (idx *Index) Lookup(point orb.Point) (string, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var out string
	found := false

	idx.qt.Search(point, point, func(_, _ [2]float64, data interface{}) bool {
		id := data.(uint64)
		if planar.MultiPolygonContains(idx.regions[id].polygon, point) {
			out = idx.regions[id].name
			found = true
			return false
		}
		return true
	})

	return out, found
}

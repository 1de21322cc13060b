// Package quadindex implements regionindex.RegionIndex over
// github.com/s0rg/quadtree, a fixed-extent bounding-box quadtree. It trades
// the qtreeindex package's dynamic quadtree for one tuned to a known world
// extent (+/-180 longitude, +/-90 latitude), and resolves bound overlaps
// with the same exact polygon-contains test.
package quadindex

import (
	"math"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/s0rg/quadtree"
)

const offset = 180.0

type region struct {
	polygon orb.MultiPolygon
}

// Index is a RegionIndex backed by an s0rg/quadtree fixed-extent index.
type Index struct {
	mu      sync.RWMutex
	qt      *quadtree.Tree[int]
	regions []region
	names   []string
}

// New builds an Index covering the full WGS84 extent, split up to depth
// levels deep.
func New(depth int) *Index {
	return &Index{
		qt: quadtree.New[int](offset*2, offset*2, depth),
	}
}

func (idx *Index) InsertRegion(name string, polygon orb.MultiPolygon) {
	bound := polygon.Bound()
	tl, br := bound.LeftTop(), bound.RightBottom()
	x := offset + tl.X()
	y := offset + br.Y()
	w := math.Abs(br.X() - tl.X())
	h := math.Abs(br.Y() - tl.Y())

	idx.mu.Lock()
	defer idx.mu.Unlock()

	id := len(idx.regions)
	idx.regions = append(idx.regions, region{polygon: polygon})
	idx.names = append(idx.names, name)
	idx.qt.Add(x, y, w, h, id)
}

func (idx *Index) Lookup(point orb.Point) (string, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := ""
	found := false
	idx.qt.KNearest(offset+point[0], offset+point[1], 8, 8, func(_, _, _, _ float64, id int) {
		if found {
			return
		}
		if planar.MultiPolygonContains(idx.regions[id].polygon, point) {
			out = idx.names[id]
			found = true
		}
	})

	return out, found
}

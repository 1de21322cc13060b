package segtree

import "github.com/waypointd/segrtree/geom"

// SearchInBox returns every segment whose unprojected endpoint bounding box
// intersects rect. rect is given in unprojected WGS84 fixed-point; only its
// latitude bounds are projected into Mercator, to prune against the tree's
// Mercator-projected node MBRs, matching the engine's mixed-projection box
// search contract. Traversal order is unspecified.
func (t *Tree[P]) SearchInBox(rect geom.Rect) []P {
	projected := geom.Rect{
		MinLon: rect.MinLon,
		MaxLon: rect.MaxLon,
		MinLat: geom.ToMercatorLat(rect.MinLat),
		MaxLat: geom.ToMercatorLat(rect.MaxLat),
	}

	var results []P
	queue := []Handle{rootHandle}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]

		if h.IsLeaf() {
			for _, payload := range t.leaves.LeafObjects(h.Index()) {
				if t.payloadBox(payload).Intersects(rect) {
					results = append(results, payload)
				}
			}
			continue
		}

		b := t.branches[h.Index()]
		for c := uint32(0); c < b.ChildCount; c++ {
			child := b.Children[c]
			if t.childMBR(child).Intersects(projected) {
				queue = append(queue, child)
			}
		}
	}
	return results
}

// childMBR fetches a child handle's MBR from whichever backing store (branch
// array or leaf source) it addresses.
func (t *Tree[P]) childMBR(h Handle) geom.Rect {
	if h.IsLeaf() {
		return t.leaves.LeafMBR(h.Index())
	}
	return t.branches[h.Index()].MBR
}

// payloadBox recomputes a payload's unprojected endpoint bounding box from
// the coordinate store, for the box search's unprojected endpoint check.
func (t *Tree[P]) payloadBox(p P) geom.Rect {
	u, v := p.Endpoints()
	return geom.Empty.Extend(t.coords.At(u)).Extend(t.coords.At(v))
}

package segtree

import (
	"context"

	"github.com/waypointd/segrtree/geom"
)

// Filter is consulted once per candidate segment entry popped from the
// nearest-search queue. It may independently accept or reject each travel
// direction; the segment is discarded only if both come back false.
type Filter[P Payload] func(candidate P) (keepForward, keepReverse bool)

// Terminator is consulted before Filter, so a caller can stop exactly at N
// accepted results regardless of how many candidates Filter goes on to
// reject. resultCount is the number of payloads already appended.
type Terminator[P Payload] func(resultCount int, candidate P) bool

// Nearest runs the best-first nearest-segment search described by the
// query engine: a single min-priority queue mixing branch/leaf node
// entries (ordered by their MBR's lower-bound squared distance) and
// segment entries (ordered by actual squared distance to the point on the
// segment nearest q), popped strictly in ascending distance order.
//
// terminate is checked before filter on every popped segment entry: once it
// returns true the search stops without adding that segment, and the
// branch-and-bound invariant (every unpopped entry has distance >= the one
// just popped) guarantees no nearer segment was missed.
func (t *Tree[P]) Nearest(q geom.Point, filter Filter[P], terminate Terminator[P]) []P {
	return t.NearestContext(context.Background(), q, filter, terminate)
}

// NearestContext is Nearest with cooperative cancellation: ctx is checked
// between priority-queue pops, and on cancellation the results accepted so
// far are returned. A query has no suspension points of its own, so this is
// the only place a caller's deadline can be observed.
func (t *Tree[P]) NearestContext(ctx context.Context, q geom.Point, filter Filter[P], terminate Terminator[P]) []P {
	projected := geom.ToMercator(q)

	var queue pqueue[P]
	queue.push(pqEntry[P]{kind: kindNode, sqDist: 0, handle: rootHandle})

	var results []P
	for queue.Len() > 0 {
		if ctx.Err() != nil {
			return results
		}
		e := queue.popMin()

		switch {
		case e.kind == kindNode && e.handle.IsLeaf():
			for _, p := range t.leaves.LeafObjects(e.handle.Index()) {
				u, v := p.Endpoints()
				_, sqDist := geom.NearestPointOnSegment(geom.ToMercator(t.coords.At(u)), geom.ToMercator(t.coords.At(v)), projected)
				queue.push(pqEntry[P]{kind: kindSegment, sqDist: sqDist, payload: p})
			}

		case e.kind == kindNode:
			b := t.branches[e.handle.Index()]
			for c := uint32(0); c < b.ChildCount; c++ {
				child := b.Children[c]
				queue.push(pqEntry[P]{kind: kindNode, sqDist: t.childMBR(child).MinSquaredDistance(projected), handle: child})
			}

		default: // kindSegment
			candidate := e.payload
			if terminate != nil && terminate(len(results), candidate) {
				return results
			}
			keepForward, keepReverse := true, true
			if filter != nil {
				keepForward, keepReverse = filter(candidate)
			}
			if !keepForward && !keepReverse {
				continue
			}
			results = append(results, candidate.WithEnabled(keepForward, keepReverse).(P))
		}
	}
	return results
}

// NearestK is the max_results convenience form: filter accepts both
// directions unconditionally and the search terminates once len(results)
// reaches k.
func (t *Tree[P]) NearestK(q geom.Point, k int) []P {
	return t.Nearest(q, nil, func(resultCount int, _ P) bool {
		return resultCount >= k
	})
}

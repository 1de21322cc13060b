package segtree

import "container/heap"

// entryKind distinguishes the two kinds of priority-queue entries that
// share one min-heap during a nearest search.
type entryKind int

const (
	kindNode entryKind = iota
	kindSegment
)

// pqEntry is the tagged-sum union of "node" and "segment" entries. Node
// entries carry a handle and their MBR's lower-bound distance; segment
// entries carry the payload itself, decoded when its leaf's page was
// visited, so popping one touches no leaf page again. Representing both as
// one struct with a kind tag (rather than an interface with two
// implementations) keeps the heap's backing slice element type concrete.
type pqEntry[P Payload] struct {
	kind     entryKind
	sqDist   int64
	handle   Handle
	payload  P
	sequence int // push order, the last-resort tiebreak
}

type pqueue[P Payload] struct {
	items []pqEntry[P]
	seq   int
}

func (q *pqueue[P]) push(e pqEntry[P]) {
	e.sequence = q.seq
	q.seq++
	heap.Push(q, e)
}

func (q *pqueue[P]) popMin() pqEntry[P] {
	return heap.Pop(q).(pqEntry[P])
}

func (q *pqueue[P]) Len() int { return len(q.items) }

// Less orders by distance; exact ties put node entries before segment
// entries, so every segment at a given distance is queued before any of
// them is popped, then order segments by their (u, v) endpoint ids, so the
// result does not depend on how a packer laid out the tree. Push order
// breaks whatever ties remain.
func (q *pqueue[P]) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.sqDist != b.sqDist {
		return a.sqDist < b.sqDist
	}
	if a.kind != b.kind {
		return a.kind == kindNode
	}
	if a.kind == kindSegment {
		au, av := a.payload.Endpoints()
		bu, bv := b.payload.Endpoints()
		if au != bu {
			return au < bu
		}
		if av != bv {
			return av < bv
		}
	}
	return a.sequence < b.sequence
}

func (q *pqueue[P]) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *pqueue[P]) Push(x any) { q.items = append(q.items, x.(pqEntry[P])) }

func (q *pqueue[P]) Pop() any {
	n := len(q.items)
	item := q.items[n-1]
	q.items = q.items[:n-1]
	return item
}

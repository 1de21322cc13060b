package segtree

import "github.com/waypointd/segrtree/geom"

// leafSource abstracts where leaf pages live: an in-memory slice right
// after a build, or a memory-mapped file once the tree has been persisted
// and reopened. The query engine only ever goes through this interface, so
// it exercises identical code whether or not the tree has made a round trip
// through disk. LeafObjects hands back a whole leaf's payloads at once: a
// leaf visit touches its backing page exactly one time, whichever source
// backs it.
type leafSource[P Payload] interface {
	LeafCount() int
	LeafMBR(idx uint32) geom.Rect
	LeafObjects(idx uint32) []P
}

// memLeaves is the leafSource backing a freshly built, not-yet-persisted
// tree.
type memLeaves[P Payload] struct {
	leaves []leafBuild[P]
}

func (m *memLeaves[P]) LeafCount() int { return len(m.leaves) }

func (m *memLeaves[P]) LeafMBR(idx uint32) geom.Rect { return m.leaves[idx].mbr }

func (m *memLeaves[P]) LeafObjects(idx uint32) []P { return m.leaves[idx].payloads }

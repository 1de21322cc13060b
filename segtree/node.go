// Package segtree implements the static, packed, disk-resident R-tree: the
// on-disk branch/leaf layout, the three bulk-packing algorithms (Hilbert,
// STR, OMT) and the best-first box/nearest query engine. It is generic over
// the segment payload type via the Payload constraint and a Codec that
// knows how to serialize that payload to its fixed-size on-disk form.
package segtree

import "github.com/waypointd/segrtree/geom"

// BranchingFactor is the default maximum number of children per branch
// node.
const BranchingFactor = 128

// LeafPageSize is the default on-disk byte size of one leaf page.
const LeafPageSize = 4096

// leafHeaderSize is the object-count (u32) plus MBR (4 x i32) prefix every
// leaf page carries before its payload array.
const leafHeaderSize = 4 + 16

// LeafNodeSize returns the number of payloadSize-byte records that fit in
// one leaf page of pageSize bytes after the fixed header.
func LeafNodeSize(pageSize, payloadSize int) int {
	return (pageSize - leafHeaderSize) / payloadSize
}

// BranchNode is a fixed in-memory record: a child count, the node's MBR in
// Mercator fixed-point, and up to BranchingFactor child handles. Slots at
// index >= ChildCount have undefined content.
type BranchNode struct {
	ChildCount uint32
	MBR        geom.Rect
	Children   [BranchingFactor]Handle
}

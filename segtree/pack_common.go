package segtree

import "github.com/waypointd/segrtree/geom"

// leafBuild is one in-progress leaf page: its payloads in final order and
// their Mercator MBR.
type leafBuild[P Payload] struct {
	mbr      geom.Rect
	payloads []P
}

// nodeRef is a reference to a node (leaf or branch) produced during
// packing, before the final reverse-and-renumber pass that puts the root at
// index 0.
type nodeRef struct {
	mbr    geom.Rect
	handle Handle
}

func (n nodeRef) centroid() geom.Point { return n.mbr.Centroid() }

// packLeaves slices sorted segments into consecutive leaves of exactly
// leafSize payloads each (the last leaf may be partial, never empty unless
// segs itself is empty) and returns both the leaf records and a nodeRef per
// leaf for the next level up to consume.
func packLeaves[P Payload](segs []buildSegment[P], leafSize int) ([]leafBuild[P], []nodeRef) {
	var leaves []leafBuild[P]
	var refs []nodeRef

	for lo := 0; lo < len(segs); lo += leafSize {
		hi := lo + leafSize
		if hi > len(segs) {
			hi = len(segs)
		}
		leaf := leafBuild[P]{mbr: geom.Empty}
		for _, s := range segs[lo:hi] {
			leaf.payloads = append(leaf.payloads, s.payload)
			leaf.mbr = leaf.mbr.Merge(s.box)
		}
		idx := uint32(len(leaves))
		leaves = append(leaves, leaf)
		refs = append(refs, nodeRef{mbr: leaf.mbr, handle: NewLeafHandle(idx)})
	}
	return leaves, refs
}

// packBranchLevel groups consecutive refs into branch nodes of up to
// BranchingFactor children each, appending the new branch nodes to
// *branches (in forward build order, not yet reversed) and returning a
// nodeRef for each newly created branch.
func packBranchLevel(branches *[]BranchNode, refs []nodeRef) []nodeRef {
	var next []nodeRef
	for lo := 0; lo < len(refs); lo += BranchingFactor {
		hi := lo + BranchingFactor
		if hi > len(refs) {
			hi = len(refs)
		}
		group := refs[lo:hi]

		node := BranchNode{ChildCount: uint32(len(group)), MBR: geom.Empty}
		for i, r := range group {
			node.Children[i] = r.handle
			node.MBR = node.MBR.Merge(r.mbr)
		}

		idx := uint32(len(*branches))
		*branches = append(*branches, node)
		next = append(next, nodeRef{mbr: node.MBR, handle: NewBranchHandle(idx)})
	}
	return next
}

// packBranchesBottomUp repeatedly groups the current level's refs into
// parent branches until exactly one remains, implementing the
// "group every BRANCHING_FACTOR consecutive children under one parent,
// repeat until a single root remains" step shared by the Hilbert and STR
// packers.
func packBranchesBottomUp(branches *[]BranchNode, level []nodeRef) nodeRef {
	for len(level) > 1 {
		level = packBranchLevel(branches, level)
	}
	return level[0]
}

// reverseAndRenumber reverses the branch array so the root lands at index 0
// and rewrites every non-leaf child handle from its old forward-build index
// to its new reversed index. Leaf handles are untouched since the leaf
// stream is not reordered.
func reverseAndRenumber(branches []BranchNode) {
	total := uint32(len(branches))
	renumber := func(h Handle) Handle {
		if h.IsLeaf() {
			return h
		}
		return NewBranchHandle(total - h.Index() - 1)
	}

	for i := range branches {
		b := &branches[i]
		for c := uint32(0); c < b.ChildCount; c++ {
			b.Children[c] = renumber(b.Children[c])
		}
	}

	for i, j := 0, len(branches)-1; i < j; i, j = i+1, j-1 {
		branches[i], branches[j] = branches[j], branches[i]
	}
}

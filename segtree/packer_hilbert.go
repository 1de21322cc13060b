package segtree

import "github.com/waypointd/segrtree/coordstore"

// packHilbert implements the Hilbert-curve packer: sort all segments by the
// Hilbert code of their projected centroid, fill leaves in that order, then
// build branch levels bottom-up by grouping every BranchingFactor
// consecutive siblings.
func packHilbert[P Payload](payloads []P, coords coordstore.Store, codec Codec[P], opt packOptions) ([]BranchNode, []leafBuild[P]) {
	segs := prepareSegments(payloads, coords, opt.workers)
	sortByHilbert(segs)

	leafSize := LeafNodeSize(opt.leafPageSize, codec.Size())
	leaves, refs := packLeaves(segs, leafSize)

	var branches []BranchNode
	if len(refs) == 1 {
		// A single leaf is still a tree of height 1; give it a trivial
		// root branch so handle 0 is always a branch per the root-at-zero
		// invariant.
		branches = append(branches, BranchNode{ChildCount: 1, MBR: refs[0].mbr, Children: [BranchingFactor]Handle{refs[0].handle}})
	} else {
		packBranchesBottomUp(&branches, refs)
	}
	reverseAndRenumber(branches)
	return branches, leaves
}

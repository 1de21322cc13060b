package segtree

import (
	"math"

	"github.com/waypointd/segrtree/coordstore"
	"github.com/waypointd/segrtree/geom"
)

// packOMT implements the Overlap-Minimizing Tree packer: top-down
// partitioning, with the root's fan-out tailored to the actual
// population (M') so that skewed distributions such as road-network
// geometry don't leave leaves overlapping as badly as a fixed fan-out
// would. It is the default packer. Partitioning recurses depth-first:
// each branch tile's whole subtree is partitioned and linked before its
// next sibling tile, so the branch array is in depth-first preorder, not
// breadth-first level order.
//
// A tile is classified leaf-or-branch before any node is allocated for it:
// a tile small enough to fit one leaf is written straight to the leaf
// stream and linked into its parent's child slot, never passing through
// the branch queue. This avoids the empty branch shells that a
// classify-after-allocate ordering would otherwise leave behind.
func packOMT[P Payload](payloads []P, coords coordstore.Store, codec Codec[P], opt packOptions) ([]BranchNode, []leafBuild[P]) {
	segs := prepareSegments(payloads, coords, opt.workers)
	n := len(segs)

	// A frame of at most BranchingFactor segments becomes a single leaf,
	// clamped to the page's actual payload capacity when the configured
	// page size makes that the tighter bound.
	leafCap := LeafNodeSize(opt.leafPageSize, codec.Size())
	if leafCap > BranchingFactor {
		leafCap = BranchingFactor
	}

	if n <= leafCap {
		leaf := leafFromRange(segs, 0, n)
		root := BranchNode{ChildCount: 1, MBR: leaf.mbr}
		root.Children[0] = NewLeafHandle(0)
		return []BranchNode{root}, []leafBuild[P]{leaf}
	}

	branches := []BranchNode{{MBR: geom.Empty}} // root always lands at index 0: OMT
	// builds parents before their children, so unlike the bottom-up
	// packers no final reversal is needed.
	var leaves []leafBuild[P]

	// h = ceil(log_B n), M' = ceil(n / B^(h-1)): the root's effective
	// fan-out, computed once from the true population rather than always
	// using BranchingFactor, per the OMT sizing rule. Kept in integer
	// arithmetic throughout (no float round-trip for h or the power) so a
	// borderline n that floating-point log/pow would round the wrong way
	// can't undersize M' below the tile count it was meant to cover —
	// the rounding pitfall the source's unused grouped_partial_sort
	// helper warned about.
	h := ceilLogB(n, BranchingFactor)
	mPrime := ceilDiv(n, intPow(BranchingFactor, h-1))

	tiles := omtTiles(segs, 0, n, mPrime)
	linkTiles(segs, tiles, 0, leafCap, &branches, &leaves)

	reversePropagateOMTMBRs(branches)
	return branches, leaves
}

// leafFromRange builds a leafBuild from segs[lo:hi].
func leafFromRange[P Payload](segs []buildSegment[P], lo, hi int) leafBuild[P] {
	leaf := leafBuild[P]{mbr: geom.Empty}
	for _, s := range segs[lo:hi] {
		leaf.payloads = append(leaf.payloads, s.payload)
		leaf.mbr = leaf.mbr.Merge(s.box)
	}
	return leaf
}

// linkTiles classifies each of tiles as a leaf or a branch, links it into
// parentIdx's children array, and recurses into branch tiles using the
// standard (non-root) branching factor.
func linkTiles[P Payload](segs []buildSegment[P], tiles [][2]int, parentIdx uint32, leafCap int, branchesPtr *[]BranchNode, leavesPtr *[]leafBuild[P]) {
	slot := 0
	for _, t := range tiles {
		if slot >= BranchingFactor {
			break
		}
		lo, hi := t[0], t[1]
		size := hi - lo

		if size <= leafCap {
			leaf := leafFromRange(segs, lo, hi)
			leafIdx := uint32(len(*leavesPtr))
			*leavesPtr = append(*leavesPtr, leaf)

			parent := &(*branchesPtr)[parentIdx]
			parent.Children[slot] = NewLeafHandle(leafIdx)
			parent.MBR = parent.MBR.Merge(leaf.mbr)
			parent.ChildCount = uint32(slot + 1)
			slot++
			continue
		}

		childIdx := uint32(len(*branchesPtr))
		*branchesPtr = append(*branchesPtr, BranchNode{MBR: geom.Empty})

		parent := &(*branchesPtr)[parentIdx]
		parent.Children[slot] = NewBranchHandle(childIdx)
		parent.ChildCount = uint32(slot + 1)
		slot++

		childTiles := omtTiles(segs, lo, hi, BranchingFactor)
		linkTiles(segs, childTiles, childIdx, leafCap, branchesPtr, leavesPtr)
	}
}

// omtTiles sorts segs[lo:hi] by centroid longitude, splits it into strips
// of width N1, sorts each strip by centroid latitude, and returns the tile
// ranges of width N2 within each strip. N2 = ceil(size/fanout),
// N1 = N2 * ceil(sqrt(fanout)).
func omtTiles[P Payload](segs []buildSegment[P], lo, hi, fanout int) [][2]int {
	size := hi - lo
	n2 := ceilDiv(size, fanout)
	if n2 <= 0 {
		n2 = size
	}
	n1 := n2 * int(math.Ceil(math.Sqrt(float64(fanout))))
	if n1 <= 0 {
		n1 = size
	}

	sortByLon(segs[lo:hi])

	var tiles [][2]int
	for stripLo := lo; stripLo < hi; stripLo += n1 {
		stripHi := stripLo + n1
		if stripHi > hi {
			stripHi = hi
		}
		sortByLat(segs[stripLo:stripHi])

		for tileLo := stripLo; tileLo < stripHi; tileLo += n2 {
			tileHi := tileLo + n2
			if tileHi > stripHi {
				tileHi = stripHi
			}
			tiles = append(tiles, [2]int{tileLo, tileHi})
		}
	}
	return tiles
}

// reversePropagateOMTMBRs fills in every interior branch's MBR that wasn't
// already merged in directly at link time (a branch whose children are
// all leaves gets its MBR filled in as those leaves are linked; a branch
// with branch children needs this pass), processing indices from highest
// to lowest. Because OMT always allocates a branch before any of its
// children (depth-first preorder, parents first), every child has a strictly higher index
// than its parent, so a single high-to-low pass sees each child's MBR
// already finalized before it's needed by the parent's own merge.
func reversePropagateOMTMBRs(branches []BranchNode) {
	for i := len(branches) - 1; i >= 0; i-- {
		b := &branches[i]
		needsBranchMerge := false
		for c := uint32(0); c < b.ChildCount; c++ {
			if !b.Children[c].IsLeaf() {
				needsBranchMerge = true
				break
			}
		}
		if !needsBranchMerge {
			continue
		}
		for c := uint32(0); c < b.ChildCount; c++ {
			h := b.Children[c]
			if !h.IsLeaf() {
				b.MBR = b.MBR.Merge(branches[h.Index()].MBR)
			}
		}
	}
}

// ceilLogB returns ceil(log_b(n)) for n,b >= 2, computed in integer
// arithmetic by repeated multiplication rather than via float64 math.Log,
// which can round a borderline power of b the wrong way.
func ceilLogB(n, b int) int {
	h := 0
	for cap := 1; cap < n; cap *= b {
		h++
	}
	if h == 0 {
		h = 1
	}
	return h
}

// intPow returns b^e for e >= 0 using plain integer multiplication.
func intPow(b, e int) int {
	r := 1
	for i := 0; i < e; i++ {
		r *= b
	}
	return r
}

package segtree

import (
	"math"
	"sort"

	"github.com/waypointd/segrtree/coordstore"
)

// packSTR implements the Sort-Tile-Recursive packer: at each level, sort by
// centroid longitude, split into K = ceil(sqrt(count/groupSize)) slabs,
// sort each slab by centroid latitude, then pack consecutive items into
// groups of groupSize.
func packSTR[P Payload](payloads []P, coords coordstore.Store, codec Codec[P], opt packOptions) ([]BranchNode, []leafBuild[P]) {
	segs := prepareSegments(payloads, coords, opt.workers)

	leafSize := LeafNodeSize(opt.leafPageSize, codec.Size())
	sortSTR(segs, leafSize)
	leaves, refs := packLeaves(segs, leafSize)

	var branches []BranchNode
	if len(refs) == 1 {
		branches = append(branches, BranchNode{ChildCount: 1, MBR: refs[0].mbr, Children: [BranchingFactor]Handle{refs[0].handle}})
		reverseAndRenumber(branches)
		return branches, leaves
	}

	level := refs
	for len(level) > 1 {
		sortRefsSTR(level, BranchingFactor)
		level = packBranchLevel(&branches, level)
	}
	reverseAndRenumber(branches)
	return branches, leaves
}

// sortSTR performs the slab/tile sort described in 4.F directly over
// buildSegments: sort by longitude, slab-split by
// K = ceil(sqrt(n/groupSize)), sort each slab by latitude.
func sortSTR[P Payload](segs []buildSegment[P], groupSize int) {
	sortByLon(segs)
	k := slabCount(len(segs), groupSize)
	slabWidth := ceilDiv(len(segs), k)
	for lo := 0; lo < len(segs); lo += slabWidth {
		hi := lo + slabWidth
		if hi > len(segs) {
			hi = len(segs)
		}
		sortByLat(segs[lo:hi])
	}
}

// sortRefsSTR applies the same slab/tile sort to a level of nodeRefs by
// their MBR centroid, used when recursing up past the leaf level.
func sortRefsSTR(level []nodeRef, groupSize int) {
	sort.Slice(level, func(i, j int) bool {
		ci, cj := level[i].centroid(), level[j].centroid()
		return ci.Lon < cj.Lon
	})
	k := slabCount(len(level), groupSize)
	slabWidth := ceilDiv(len(level), k)
	for lo := 0; lo < len(level); lo += slabWidth {
		hi := lo + slabWidth
		if hi > len(level) {
			hi = len(level)
		}
		slab := level[lo:hi]
		sort.Slice(slab, func(i, j int) bool {
			ci, cj := slab[i].centroid(), slab[j].centroid()
			return ci.Lat < cj.Lat
		})
	}
}

func slabCount(n, groupSize int) int {
	if n == 0 {
		return 1
	}
	k := int(math.Ceil(math.Sqrt(float64(n) / float64(groupSize))))
	if k < 1 {
		k = 1
	}
	return k
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}

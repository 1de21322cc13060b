package segtree

// Handle packs a 31-bit child index and a 1-bit is-leaf flag into a single
// 32-bit value, per the on-disk child-handle format. is_leaf=0 selects the
// branch array, is_leaf=1 selects the leaf page stream.
type Handle uint32

const leafBit = uint32(1) << 31

// rootHandle is the handle of the tree's root branch node, always index 0.
const rootHandle = Handle(0)

// NewBranchHandle builds a handle pointing at branch array index idx.
func NewBranchHandle(idx uint32) Handle {
	if idx&leafBit != 0 {
		panic("segtree: branch index exceeds 31-bit handle capacity")
	}
	return Handle(idx)
}

// NewLeafHandle builds a handle pointing at leaf page index idx.
func NewLeafHandle(idx uint32) Handle {
	if idx&leafBit != 0 {
		panic("segtree: leaf index exceeds 31-bit handle capacity")
	}
	return Handle(idx | leafBit)
}

// IsLeaf reports whether the handle addresses the leaf page stream.
func (h Handle) IsLeaf() bool { return uint32(h)&leafBit != 0 }

// Index returns the 31-bit index the handle addresses, with the is-leaf bit
// masked off.
func (h Handle) Index() uint32 { return uint32(h) &^ leafBit }

package segtree

import (
	"fmt"
	"os"

	"github.com/waypointd/segrtree/coordstore"
)

// Tree is a static, packed R-tree over 2D road-network line segments. It is
// built once, bulk-loaded by one of the three packers, and thereafter
// queried read-only: there is no insert or delete path.
type Tree[P Payload] struct {
	branches     []BranchNode
	leaves       leafSource[P]
	coords       coordstore.Store
	codec        Codec[P]
	leafPageSize int
	packer       PackerKind

	mmap *mmapLeaves[P] // non-nil only when opened from disk, for Close
}

// Build bulk-loads a tree over payloads directly in memory, using coords to
// resolve endpoint ids to coordinates. The resulting tree's leaves live in
// memory; call WriteTo to persist it.
func Build[P Payload](payloads []P, coords coordstore.Store, codec Codec[P], opts ...BuildOption) (*Tree[P], error) {
	if len(payloads) == 0 {
		return nil, fmt.Errorf("segtree: build requires at least one segment")
	}

	cfg := defaultBuildConfig()
	for _, o := range opts {
		o.apply(&cfg)
	}

	popt := packOptions{leafPageSize: cfg.leafPageSize, workers: cfg.workers}

	var branches []BranchNode
	var leaves []leafBuild[P]
	switch cfg.packer {
	case PackerHilbert:
		branches, leaves = packHilbert(payloads, coords, codec, popt)
	case PackerSTR:
		branches, leaves = packSTR(payloads, coords, codec, popt)
	default:
		branches, leaves = packOMT(payloads, coords, codec, popt)
	}

	cfg.log.Info("segtree: build complete",
		"packer", cfg.packer.String(),
		"segments", len(payloads),
		"branches", len(branches),
		"leaves", len(leaves),
	)

	return &Tree[P]{
		branches:     branches,
		leaves:       &memLeaves[P]{leaves: leaves},
		coords:       coords,
		codec:        codec,
		leafPageSize: cfg.leafPageSize,
		packer:       cfg.packer,
	}, nil
}

// WriteTo persists a freshly built tree's branch and leaf arrays to two
// separate files. Only meaningful for a tree built by Build; calling it on
// a tree opened from disk returns an error without writing either file,
// since its leaves are no longer an in-memory []leafBuild.
func (t *Tree[P]) WriteTo(branchPath, leafPath string) error {
	mem, ok := t.leaves.(*memLeaves[P])
	if !ok {
		return fmt.Errorf("segtree: WriteTo requires an in-memory tree, not one opened from disk")
	}

	bf, err := os.Create(branchPath)
	if err != nil {
		return fmt.Errorf("segtree: creating branch file: %w", err)
	}
	defer bf.Close()
	if err := WriteBranches(bf, t.branches); err != nil {
		return err
	}
	if err := bf.Close(); err != nil {
		return fmt.Errorf("segtree: closing branch file: %w", err)
	}

	lf, err := os.Create(leafPath)
	if err != nil {
		return fmt.Errorf("segtree: creating leaf file: %w", err)
	}
	defer lf.Close()
	if err := WriteLeaves(lf, mem.leaves, t.codec, t.leafPageSize); err != nil {
		return err
	}
	if err := lf.Close(); err != nil {
		return fmt.Errorf("segtree: closing leaf file: %w", err)
	}
	return nil
}

// Open reopens a tree previously written by WriteTo: the branch array is
// read fully into memory and the leaf file is memory-mapped read-only.
// coords must resolve the same endpoint ids used at build time; it is not
// itself persisted by the tree (see the coordstore package for on-disk
// coordinate storage).
func Open[P Payload](branchPath, leafPath string, codec Codec[P], coords coordstore.Store, leafPageSize int) (*Tree[P], error) {
	bf, err := os.Open(branchPath)
	if err != nil {
		return nil, fmt.Errorf("segtree: opening branch file: %w", err)
	}
	defer bf.Close()
	branches, err := ReadBranches(bf)
	if err != nil {
		return nil, err
	}

	leaves, err := openMmapLeaves(leafPath, codec, leafPageSize)
	if err != nil {
		return nil, err
	}

	return &Tree[P]{
		branches:     branches,
		leaves:       leaves,
		coords:       coords,
		codec:        codec,
		leafPageSize: leafPageSize,
		mmap:         leaves,
	}, nil
}

// Close releases the memory mapping backing a tree opened by Open. It is a
// no-op on a tree built in memory.
func (t *Tree[P]) Close() error {
	if t.mmap != nil {
		return t.mmap.Close()
	}
	return nil
}

// BranchCount reports the number of branch nodes in the tree, mostly useful
// for tests and manifest population.
func (t *Tree[P]) BranchCount() int { return len(t.branches) }

// LeafCount reports the number of leaf pages in the tree.
func (t *Tree[P]) LeafCount() int { return t.leaves.LeafCount() }

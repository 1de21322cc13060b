package segtree

import (
	"encoding/binary"
	"fmt"
	"io"
)

// branchRecordSize is child_count (u32) + rect (4 x i32) + BranchingFactor
// child handles (u32 each).
const branchRecordSize = 4 + 16 + BranchingFactor*4

// WriteBranches serializes the branch array as a little-endian u64 count
// followed by that many fixed-size branch records, per the on-disk branch
// file format.
func WriteBranches(w io.Writer, branches []BranchNode) error {
	var countBuf [8]byte
	binary.LittleEndian.PutUint64(countBuf[:], uint64(len(branches)))
	if _, err := w.Write(countBuf[:]); err != nil {
		return fmt.Errorf("segtree: writing branch count: %w", err)
	}

	buf := make([]byte, branchRecordSize)
	for _, b := range branches {
		encodeBranch(buf, b)
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("segtree: writing branch record: %w", err)
		}
	}
	return nil
}

func encodeBranch(dst []byte, b BranchNode) {
	binary.LittleEndian.PutUint32(dst[0:4], b.ChildCount)
	binary.LittleEndian.PutUint32(dst[4:8], uint32(b.MBR.MinLon))
	binary.LittleEndian.PutUint32(dst[8:12], uint32(b.MBR.MaxLon))
	binary.LittleEndian.PutUint32(dst[12:16], uint32(b.MBR.MinLat))
	binary.LittleEndian.PutUint32(dst[16:20], uint32(b.MBR.MaxLat))
	for i, h := range b.Children {
		off := 20 + i*4
		binary.LittleEndian.PutUint32(dst[off:off+4], uint32(h))
	}
}

func decodeBranch(src []byte) BranchNode {
	var b BranchNode
	b.ChildCount = binary.LittleEndian.Uint32(src[0:4])
	b.MBR.MinLon = int32(binary.LittleEndian.Uint32(src[4:8]))
	b.MBR.MaxLon = int32(binary.LittleEndian.Uint32(src[8:12]))
	b.MBR.MinLat = int32(binary.LittleEndian.Uint32(src[12:16]))
	b.MBR.MaxLat = int32(binary.LittleEndian.Uint32(src[16:20]))
	for i := 0; i < BranchingFactor; i++ {
		off := 20 + i*4
		b.Children[i] = Handle(binary.LittleEndian.Uint32(src[off : off+4]))
	}
	return b
}

// ReadBranches reads a branch file written by WriteBranches fully into
// memory; the branch array is small relative to the leaf stream and is
// kept resident for the tree's lifetime.
func ReadBranches(r io.Reader) ([]BranchNode, error) {
	var countBuf [8]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return nil, fmt.Errorf("segtree: reading branch count: %w", err)
	}
	count := binary.LittleEndian.Uint64(countBuf[:])
	if count == 0 {
		return nil, fmt.Errorf("segtree: branch file declares zero branch nodes")
	}

	branches := make([]BranchNode, count)
	buf := make([]byte, branchRecordSize)
	for i := range branches {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("segtree: reading branch record %d: %w", i, err)
		}
		branches[i] = decodeBranch(buf)
	}
	return branches, nil
}

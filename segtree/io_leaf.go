package segtree

import (
	"fmt"
	"io"

	"github.com/waypointd/segrtree/geom"
	"golang.org/x/exp/mmap"
)

// WriteLeaves writes the leaf page stream: each leaf occupies exactly
// pageSize bytes (object_count u32, MBR, then up to LeafNodeSize payloads,
// zero-padded to the page boundary). Writes are strictly sequential and
// single-threaded, per the concurrency model.
func WriteLeaves[P Payload](w io.Writer, leaves []leafBuild[P], codec Codec[P], pageSize int) error {
	leafNodeSize := LeafNodeSize(pageSize, codec.Size())
	page := make([]byte, pageSize)

	for idx, leaf := range leaves {
		if len(leaf.payloads) == 0 {
			return fmt.Errorf("segtree: leaf %d has zero objects", idx)
		}
		if len(leaf.payloads) > leafNodeSize {
			return fmt.Errorf("segtree: leaf %d has %d objects, exceeds capacity %d", idx, len(leaf.payloads), leafNodeSize)
		}

		for i := range page {
			page[i] = 0
		}
		encodeUint32(page[0:4], uint32(len(leaf.payloads)))
		encodeUint32(page[4:8], uint32(leaf.mbr.MinLon))
		encodeUint32(page[8:12], uint32(leaf.mbr.MaxLon))
		encodeUint32(page[12:16], uint32(leaf.mbr.MinLat))
		encodeUint32(page[16:20], uint32(leaf.mbr.MaxLat))

		off := leafHeaderSize
		for _, p := range leaf.payloads {
			codec.Marshal(page[off:off+codec.Size()], p)
			off += codec.Size()
		}

		if _, err := w.Write(page); err != nil {
			return fmt.Errorf("segtree: writing leaf page %d: %w", idx, err)
		}
	}
	return nil
}

func encodeUint32(dst []byte, v uint32) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
	dst[3] = byte(v >> 24)
}

func decodeUint32(src []byte) uint32 {
	return uint32(src[0]) | uint32(src[1])<<8 | uint32(src[2])<<16 | uint32(src[3])<<24
}

// mmapLeaves is the leafSource backing a reopened, on-disk tree: the leaf
// file is mapped read-only and addressed as an array of fixed-size leaf
// pages. Each read copies the needed bytes out of the mapping with ReadAt
// and decodes them; payloads are not accessed in place in the mapped memory.
type mmapLeaves[P Payload] struct {
	r         *mmap.ReaderAt
	codec     Codec[P]
	pageSize  int
	leafCount int
}

// openMmapLeaves maps path read-only and asserts its size is an exact
// multiple of pageSize, per the "leaf file size is an exact multiple of
// LEAF_PAGE_SIZE" invariant; a failure to map or a misaligned size is a
// fatal open-time error.
func openMmapLeaves[P Payload](path string, codec Codec[P], pageSize int) (*mmapLeaves[P], error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("segtree: mapping leaf file %q: %w", path, err)
	}
	size := r.Len()
	if size%pageSize != 0 {
		r.Close()
		return nil, fmt.Errorf("segtree: leaf file %q size %d is not a multiple of page size %d", path, size, pageSize)
	}
	return &mmapLeaves[P]{r: r, codec: codec, pageSize: pageSize, leafCount: size / pageSize}, nil
}

func (m *mmapLeaves[P]) Close() error { return m.r.Close() }

func (m *mmapLeaves[P]) LeafCount() int { return m.leafCount }

// LeafMBR reads only the fixed page header, for the prune path where a
// child's bounds are needed without its payloads.
func (m *mmapLeaves[P]) LeafMBR(idx uint32) geom.Rect {
	var hdr [leafHeaderSize]byte
	off := int64(idx) * int64(m.pageSize)
	if _, err := m.r.ReadAt(hdr[:], off); err != nil {
		panic(fmt.Errorf("segtree: reading leaf page %d header: %w", idx, err))
	}
	return geom.Rect{
		MinLon: int32(decodeUint32(hdr[4:8])),
		MaxLon: int32(decodeUint32(hdr[8:12])),
		MinLat: int32(decodeUint32(hdr[12:16])),
		MaxLat: int32(decodeUint32(hdr[16:20])),
	}
}

// LeafObjects reads the leaf's page exactly once and decodes every payload
// from that single buffer.
func (m *mmapLeaves[P]) LeafObjects(idx uint32) []P {
	page := make([]byte, m.pageSize)
	off := int64(idx) * int64(m.pageSize)
	if _, err := m.r.ReadAt(page, off); err != nil {
		panic(fmt.Errorf("segtree: reading leaf page %d: %w", idx, err))
	}

	count := decodeUint32(page[0:4])
	size := m.codec.Size()
	out := make([]P, count)
	for i := range out {
		po := leafHeaderSize + i*size
		out[i] = m.codec.Unmarshal(page[po : po+size])
	}
	return out
}

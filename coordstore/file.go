package coordstore

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/waypointd/segrtree/geom"
)

// recordSize is the on-disk size of one point: two little-endian int32s.
const recordSize = 8

// File is a Store backed by fixed-offset binary reads against an
// io.ReaderAt, mirroring the corpus's point32 fixed-offset record
// convention. Ids are sequential from zero; At(id) reads exactly one
// recordSize-byte slice at id*recordSize, so the backing reader can be a
// plain *os.File or a memory-mapped reader without extra buffering.
type File struct {
	r   io.ReaderAt
	len int
}

// OpenFile wraps r as a coordinate Store of n points. n is caller-supplied
// rather than derived from file size because r may be a shared mapping that
// also holds other data after the point records.
func OpenFile(r io.ReaderAt, n int) *File {
	return &File{r: r, len: n}
}

func (f *File) Len() int { return f.len }

func (f *File) At(id uint32) geom.Point {
	var buf [recordSize]byte
	off := int64(id) * recordSize
	if _, err := f.r.ReadAt(buf[:], off); err != nil {
		panic(fmt.Errorf("coordstore: reading point %d at offset %d: %w", id, off, err))
	}
	return decodePoint(buf[:])
}

func decodePoint(buf []byte) geom.Point {
	return geom.Point{
		Lon: int32(binary.LittleEndian.Uint32(buf[0:4])),
		Lat: int32(binary.LittleEndian.Uint32(buf[4:8])),
	}
}

// WriteTo appends points sequentially in File's on-disk layout, for use by
// the build pipeline when materializing a coordinate table to disk.
func WriteTo(w io.Writer, points []geom.Point) error {
	buf := make([]byte, recordSize)
	for _, p := range points {
		binary.LittleEndian.PutUint32(buf[0:4], uint32(p.Lon))
		binary.LittleEndian.PutUint32(buf[4:8], uint32(p.Lat))
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("coordstore: writing point: %w", err)
		}
	}
	return nil
}

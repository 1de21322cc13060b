package coordstore

import (
	"fmt"

	"github.com/waypointd/segrtree/geom"
)

// Mem is a Store backed by a plain in-memory slice.
type Mem []geom.Point

func (m Mem) At(id uint32) geom.Point { return m[id] }
func (m Mem) Len() int                { return len(m) }

// DecodeMem decodes raw into a Mem, using the same fixed 8-byte
// little-endian (lon, lat) record layout as File.
func DecodeMem(raw []byte) (Mem, error) {
	if len(raw)%recordSize != 0 {
		return nil, fmt.Errorf("coordstore: size %d is not a multiple of record size %d", len(raw), recordSize)
	}
	out := make(Mem, len(raw)/recordSize)
	for i := range out {
		out[i] = decodePoint(raw[i*recordSize : (i+1)*recordSize])
	}
	return out, nil
}

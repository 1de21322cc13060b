package segtree

// Payload is the contract the index requires of a segment record: it must
// expose the two coordinate-table ids its geometry spans, and support
// returning a copy with its direction-enabled flags ANDed down by the
// nearest-query filter. Implementations are expected to be small, copyable
// structs — the index stores them by value inside leaf pages.
type Payload interface {
	// Endpoints returns the coordinate-table ids of the segment's two
	// endpoints.
	Endpoints() (u, v uint32)
	// WithEnabled returns a copy of the payload with forward/reverse
	// ANDed into its existing direction-enabled flags.
	WithEnabled(forward, reverse bool) Payload
}

// Codec knows how to serialize a Payload type to and from its fixed-size
// on-disk representation. Size must be constant for a given P; it is used
// to compute LeafNodeSize and to lay out leaf pages.
type Codec[P Payload] interface {
	Size() int
	Marshal(dst []byte, p P)
	Unmarshal(src []byte) P
}

// EdgeData is the concrete segment payload used throughout this module: an
// opaque record carrying two coordinate-table ids and two per-direction
// enabled flags that a nearest-query filter may clear on the returned copy.
type EdgeData struct {
	U, V                           uint32
	ForwardEnabled, ReverseEnabled bool
}

func (e EdgeData) Endpoints() (u, v uint32) { return e.U, e.V }

func (e EdgeData) WithEnabled(forward, reverse bool) Payload {
	e.ForwardEnabled = e.ForwardEnabled && forward
	e.ReverseEnabled = e.ReverseEnabled && reverse
	return e
}

// EdgeDataCodec is the Codec for EdgeData: two little-endian uint32s
// followed by two single-byte boolean flags, 10 bytes total.
type EdgeDataCodec struct{}

func (EdgeDataCodec) Size() int { return 10 }

func (EdgeDataCodec) Marshal(dst []byte, e EdgeData) {
	putUint32(dst[0:4], e.U)
	putUint32(dst[4:8], e.V)
	dst[8] = boolByte(e.ForwardEnabled)
	dst[9] = boolByte(e.ReverseEnabled)
}

func (EdgeDataCodec) Unmarshal(src []byte) EdgeData {
	return EdgeData{
		U:              getUint32(src[0:4]),
		V:              getUint32(src[4:8]),
		ForwardEnabled: src[8] != 0,
		ReverseEnabled: src[9] != 0,
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func putUint32(dst []byte, v uint32) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
	dst[3] = byte(v >> 24)
}

func getUint32(src []byte) uint32 {
	return uint32(src[0]) | uint32(src[1])<<8 | uint32(src[2])<<16 | uint32(src[3])<<24
}

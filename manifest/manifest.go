// Package manifest implements the versioned sidecar file written alongside
// a built index's branch and leaf files: magic bytes, then a compatibility
// level, then the body. The body is encoded with protobuf wire-format
// primitives directly rather than a generated message type — the manifest
// is small and its field set fixed, so hand-writing the wire encoding with
// google.golang.org/protobuf/encoding/protowire avoids a code generator
// run while staying forward-compatible with fields added later.
package manifest

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

// MagicBytes identifies a manifest file.
var MagicBytes = [4]byte{'S', 'R', 'T', 'M'}

// CompatibilityLevel is bumped whenever the manifest's field layout changes
// in a way older readers can't tolerate.
const CompatibilityLevel = 1

// Field numbers for the protowire-encoded manifest body.
const (
	fieldPacker          = 1
	fieldSegmentCount    = 2
	fieldBranchingFactor = 3
	fieldLeafPageSize    = 4
	fieldPayloadSize     = 5
	fieldCoordHash       = 6
	fieldBuiltAtUnix     = 7
	fieldBuildRunID      = 8
)

// Manifest describes the packing parameters a branch/leaf file pair was
// built with, checked at open time before either file is trusted.
type Manifest struct {
	Packer               string
	SegmentCount         uint64
	BranchingFactor      uint32
	LeafPageSize         uint32
	PayloadSize          uint32
	CoordinateTableHash  [sha256.Size]byte
	BuiltAtUnix          int64
	BuildRunID           uuid.UUID
}

// HashCoordinateTable computes the content hash stamped into a manifest
// from a coordinate table's raw on-disk bytes.
func HashCoordinateTable(raw []byte) [sha256.Size]byte {
	return sha256.Sum256(raw)
}

// HashCoordinateReader computes the same hash by streaming r, for open-time
// verification of a coordinate table too large to hold resident.
func HashCoordinateReader(r io.Reader) ([sha256.Size]byte, error) {
	var out [sha256.Size]byte
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return out, fmt.Errorf("manifest: hashing coordinate table: %w", err)
	}
	copy(out[:], h.Sum(nil))
	return out, nil
}

// Write serializes m as magic bytes + compatibility level + protowire body.
func Write(w io.Writer, m Manifest) error {
	if _, err := w.Write(MagicBytes[:]); err != nil {
		return fmt.Errorf("manifest: writing magic bytes: %w", err)
	}
	var levelBuf [4]byte
	binary.LittleEndian.PutUint32(levelBuf[:], CompatibilityLevel)
	if _, err := w.Write(levelBuf[:]); err != nil {
		return fmt.Errorf("manifest: writing compatibility level: %w", err)
	}

	var body []byte
	body = protowire.AppendTag(body, fieldPacker, protowire.BytesType)
	body = protowire.AppendString(body, m.Packer)
	body = protowire.AppendTag(body, fieldSegmentCount, protowire.VarintType)
	body = protowire.AppendVarint(body, m.SegmentCount)
	body = protowire.AppendTag(body, fieldBranchingFactor, protowire.VarintType)
	body = protowire.AppendVarint(body, uint64(m.BranchingFactor))
	body = protowire.AppendTag(body, fieldLeafPageSize, protowire.VarintType)
	body = protowire.AppendVarint(body, uint64(m.LeafPageSize))
	body = protowire.AppendTag(body, fieldPayloadSize, protowire.VarintType)
	body = protowire.AppendVarint(body, uint64(m.PayloadSize))
	body = protowire.AppendTag(body, fieldCoordHash, protowire.BytesType)
	body = protowire.AppendBytes(body, m.CoordinateTableHash[:])
	body = protowire.AppendTag(body, fieldBuiltAtUnix, protowire.VarintType)
	body = protowire.AppendVarint(body, uint64(m.BuiltAtUnix))
	body = protowire.AppendTag(body, fieldBuildRunID, protowire.BytesType)
	runID, _ := m.BuildRunID.MarshalBinary()
	body = protowire.AppendBytes(body, runID)

	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("manifest: writing body: %w", err)
	}
	return nil
}

// Read parses a manifest written by Write. A mismatched compatibility
// level or malformed wire data is a fatal, wrapped error.
func Read(r io.Reader) (Manifest, error) {
	var m Manifest

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return m, fmt.Errorf("manifest: reading magic bytes: %w", err)
	}
	if magic != MagicBytes {
		return m, fmt.Errorf("manifest: bad magic bytes %x, not a segtree manifest", magic)
	}

	var levelBuf [4]byte
	if _, err := io.ReadFull(r, levelBuf[:]); err != nil {
		return m, fmt.Errorf("manifest: reading compatibility level: %w", err)
	}
	level := binary.LittleEndian.Uint32(levelBuf[:])
	if level != CompatibilityLevel {
		return m, fmt.Errorf("manifest: unsupported compatibility level %d", level)
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return m, fmt.Errorf("manifest: reading body: %w", err)
	}

	for len(body) > 0 {
		num, typ, n := protowire.ConsumeTag(body)
		if n < 0 {
			return m, fmt.Errorf("manifest: malformed tag: %w", protowire.ParseError(n))
		}
		body = body[n:]

		switch num {
		case fieldPacker:
			v, n := protowire.ConsumeString(body)
			if n < 0 {
				return m, fmt.Errorf("manifest: malformed packer field: %w", protowire.ParseError(n))
			}
			m.Packer = v
			body = body[n:]
		case fieldSegmentCount:
			v, n := protowire.ConsumeVarint(body)
			if n < 0 {
				return m, fmt.Errorf("manifest: malformed segment_count field: %w", protowire.ParseError(n))
			}
			m.SegmentCount = v
			body = body[n:]
		case fieldBranchingFactor:
			v, n := protowire.ConsumeVarint(body)
			if n < 0 {
				return m, fmt.Errorf("manifest: malformed branching_factor field: %w", protowire.ParseError(n))
			}
			m.BranchingFactor = uint32(v)
			body = body[n:]
		case fieldLeafPageSize:
			v, n := protowire.ConsumeVarint(body)
			if n < 0 {
				return m, fmt.Errorf("manifest: malformed leaf_page_size field: %w", protowire.ParseError(n))
			}
			m.LeafPageSize = uint32(v)
			body = body[n:]
		case fieldPayloadSize:
			v, n := protowire.ConsumeVarint(body)
			if n < 0 {
				return m, fmt.Errorf("manifest: malformed payload_size field: %w", protowire.ParseError(n))
			}
			m.PayloadSize = uint32(v)
			body = body[n:]
		case fieldCoordHash:
			v, n := protowire.ConsumeBytes(body)
			if n < 0 {
				return m, fmt.Errorf("manifest: malformed coordinate_table_hash field: %w", protowire.ParseError(n))
			}
			copy(m.CoordinateTableHash[:], v)
			body = body[n:]
		case fieldBuiltAtUnix:
			v, n := protowire.ConsumeVarint(body)
			if n < 0 {
				return m, fmt.Errorf("manifest: malformed built_at_unix field: %w", protowire.ParseError(n))
			}
			m.BuiltAtUnix = int64(v)
			body = body[n:]
		case fieldBuildRunID:
			v, n := protowire.ConsumeBytes(body)
			if n < 0 {
				return m, fmt.Errorf("manifest: malformed build_run_id field: %w", protowire.ParseError(n))
			}
			if err := m.BuildRunID.UnmarshalBinary(v); err != nil {
				return m, fmt.Errorf("manifest: decoding build_run_id: %w", err)
			}
			body = body[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, body)
			if n < 0 {
				return m, fmt.Errorf("manifest: malformed unknown field %d: %w", num, protowire.ParseError(n))
			}
			body = body[n:]
		}
	}

	return m, nil
}

// Check validates that a manifest read at open time describes the payload
// size and branching factor the caller actually compiled with; a mismatch
// on either is a fatal, caller-visible error.
func Check(m Manifest, wantBranchingFactor, wantPayloadSize uint32) error {
	if m.BranchingFactor != wantBranchingFactor {
		return fmt.Errorf("manifest: branching factor mismatch: file has %d, binary expects %d", m.BranchingFactor, wantBranchingFactor)
	}
	if m.PayloadSize != wantPayloadSize {
		return fmt.Errorf("manifest: payload size mismatch: file has %d, codec expects %d", m.PayloadSize, wantPayloadSize)
	}
	return nil
}

// Package coordstore provides the coordinate table the index reads segment
// endpoints from. The index never mutates this table; it only looks up
// points by id, so a Store just needs to answer At and Len. Two
// implementations are provided: an in-memory slice (Mem) for tests and
// small inputs, and a fixed-offset file-backed table (File) for coordinate
// sets too large to keep resident.
package coordstore

import "github.com/waypointd/segrtree/geom"

// Store is an externally-owned, read-only, ordered sequence of fixed-point
// points indexed by a 32-bit id. Its lifetime must cover the lifetime of
// any index built against it.
type Store interface {
	At(id uint32) geom.Point
	Len() int
}

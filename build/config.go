package build

import (
	"log/slog"
	"runtime"

	"github.com/waypointd/segrtree/segtree"
)

// Config is the generate pipeline's set of knobs: a plain struct with a
// DefaultConfig constructor that fills in runtime-derived defaults.
type Config struct {
	Workers      int
	Packer       segtree.PackerKind
	LeafPageSize int
	Logger       *slog.Logger

	// ZstdInput accepts a .zst-compressed segment/coordinate source,
	// transparently decompressed while reading.
	ZstdInput bool
}

// DefaultConfig returns GOMAXPROCS workers, the default packer and leaf
// page size, and slog.Default for progress logs.
func DefaultConfig() Config {
	return Config{
		Workers:      runtime.GOMAXPROCS(-1),
		Packer:       segtree.PackerOMT,
		LeafPageSize: segtree.LeafPageSize,
		Logger:       slog.Default(),
	}
}

package segtree

import "log/slog"

// PackerKind selects one of the three bulk-packing algorithms.
type PackerKind int

const (
	// PackerOMT is the default: top-down partitioning (Lee & Lee),
	// tailored to skewed road-network geometry.
	PackerOMT PackerKind = iota
	PackerHilbert
	PackerSTR
)

func (k PackerKind) String() string {
	switch k {
	case PackerOMT:
		return "omt"
	case PackerHilbert:
		return "hilbert"
	case PackerSTR:
		return "str"
	default:
		return "unknown"
	}
}

// packOptions carries the build-time knobs every packer needs.
type packOptions struct {
	leafPageSize int
	workers      int
}

// BuildOption configures Build.
type BuildOption interface {
	apply(*buildConfig)
}

type buildConfig struct {
	packer       PackerKind
	leafPageSize int
	workers      int
	log          *slog.Logger
}

func defaultBuildConfig() buildConfig {
	return buildConfig{
		packer:       PackerOMT,
		leafPageSize: LeafPageSize,
		workers:      0,
		log:          slog.Default(),
	}
}

type optionFunc func(*buildConfig)

func (f optionFunc) apply(c *buildConfig) { f(c) }

// WithPacker selects the bulk-packing algorithm. Default PackerOMT.
func WithPacker(kind PackerKind) BuildOption {
	return optionFunc(func(c *buildConfig) { c.packer = kind })
}

// WithLeafPageSize overrides the default 4096-byte leaf page size. Must
// stay a page-size-friendly value in production; tests may use smaller
// pages to exercise multi-leaf trees with small inputs.
func WithLeafPageSize(size int) BuildOption {
	return optionFunc(func(c *buildConfig) { c.leafPageSize = size })
}

// WithWorkers bounds the number of goroutines used for data-parallel build
// stages. 0 (the default) uses GOMAXPROCS.
func WithWorkers(n int) BuildOption {
	return optionFunc(func(c *buildConfig) { c.workers = n })
}

// WithLogger overrides the default slog.Logger used for build progress
// messages.
func WithLogger(l *slog.Logger) BuildOption {
	return optionFunc(func(c *buildConfig) { c.log = l })
}

// Package build implements the generate pipeline: reading a segment and
// coordinate source, bulk-loading a segtree.Tree with the configured
// packer, and writing the branch file, leaf file, and manifest sidecar.
package build

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/cheggaaa/pb/v3/termutil"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/waypointd/segrtree/coordstore"
	"github.com/waypointd/segrtree/manifest"
	"github.com/waypointd/segrtree/segtree"
)

// Paths names the three output files a generate run produces, sharing a
// base name the way segtree's branch/leaf pair and its manifest do.
type Paths struct {
	BranchPath   string
	LeafPath     string
	ManifestPath string
}

// OutputPaths derives the standard Paths from baseName.
func OutputPaths(baseName string) Paths {
	return Paths{
		BranchPath:   baseName + ".branches",
		LeafPath:     baseName + ".leaves",
		ManifestPath: baseName + ".manifest",
	}
}

// Run reads coords from coordsPath and segments from segmentsPath (each
// optionally .zst-compressed per cfg.ZstdInput), builds a tree with the
// configured packer, and writes it plus a manifest to out.
func Run[P segtree.Payload](cfg Config, segmentsPath, coordsPath string, codec segtree.Codec[P], out Paths) error {
	started := time.Now()

	coordsRaw, err := readAll(coordsPath, cfg.ZstdInput, "1/3 reading coordinate table")
	if err != nil {
		return fmt.Errorf("build: reading coordinates: %w", err)
	}
	coords, err := decodeCoords(coordsRaw)
	if err != nil {
		return err
	}

	segmentsRaw, err := readAll(segmentsPath, cfg.ZstdInput, "2/3 reading segments")
	if err != nil {
		return fmt.Errorf("build: reading segments: %w", err)
	}
	payloads, err := decodeSegments(segmentsRaw, codec)
	if err != nil {
		return err
	}

	cfg.Logger.Info("3/3 packing tree", "packer", cfg.Packer.String(), "segments", len(payloads), "workers", cfg.Workers)
	tree, err := segtree.Build(payloads, coords, codec,
		segtree.WithPacker(cfg.Packer),
		segtree.WithLeafPageSize(cfg.LeafPageSize),
		segtree.WithWorkers(cfg.Workers),
		segtree.WithLogger(cfg.Logger),
	)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	if err := tree.WriteTo(out.BranchPath, out.LeafPath); err != nil {
		return fmt.Errorf("build: writing tree: %w", err)
	}

	mf := manifest.Manifest{
		Packer:              cfg.Packer.String(),
		SegmentCount:        uint64(len(payloads)),
		BranchingFactor:     segtree.BranchingFactor,
		LeafPageSize:        uint32(cfg.LeafPageSize),
		PayloadSize:         uint32(codec.Size()),
		CoordinateTableHash: manifest.HashCoordinateTable(coordsRaw),
		BuiltAtUnix:         time.Now().Unix(),
		BuildRunID:          uuid.New(),
	}
	mfFile, err := os.Create(out.ManifestPath)
	if err != nil {
		return fmt.Errorf("build: creating manifest: %w", err)
	}
	defer mfFile.Close()
	if err := manifest.Write(mfFile, mf); err != nil {
		return fmt.Errorf("build: writing manifest: %w", err)
	}
	if err := mfFile.Close(); err != nil {
		return fmt.Errorf("build: closing manifest: %w", err)
	}

	elapsed := time.Since(started)
	cfg.Logger.Info("build complete",
		"segments", len(payloads),
		"elapsed", elapsed.String(),
		"throughput", humanize.Comma(int64(float64(len(payloads))/elapsed.Seconds())),
	)
	return nil
}

// readAll streams path into memory through a progress bar, transparently
// decompressing through zstd when requested.
func readAll(path string, zstdInput bool, label string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	bar := pb.Start64(stat.Size())
	bar.Set("prefix", label)
	bar.Set(pb.Bytes, true)
	bar.SetRefreshRate(time.Second)
	if w, werr := termutil.TerminalWidth(); w == 0 || werr != nil {
		bar.SetTemplateString(`{{with string . "prefix"}}{{.}} {{end}}{{counters . }} {{bar . }} {{percent . }} {{speed . }} {{rtime . "ETA %s"}}` + "\n")
	}
	defer bar.Finish()

	var r io.Reader = bar.NewProxyReader(f)
	if zstdInput {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("opening zstd stream: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	return io.ReadAll(r)
}

func decodeCoords(raw []byte) (coordstore.Mem, error) {
	return coordstore.DecodeMem(raw)
}

func decodeSegments[P segtree.Payload](raw []byte, codec segtree.Codec[P]) ([]P, error) {
	size := codec.Size()
	if len(raw)%size != 0 {
		return nil, fmt.Errorf("build: segment table size %d is not a multiple of record size %d", len(raw), size)
	}
	out := make([]P, len(raw)/size)
	for i := range out {
		out[i] = codec.Unmarshal(raw[i*size : (i+1)*size])
	}
	return out, nil
}

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/urfave/cli/v3"
	_ "go.uber.org/automaxprocs"

	_ "github.com/KimMachineGun/automemlimit/memlimit"

	"github.com/waypointd/segrtree/build"
	"github.com/waypointd/segrtree/coordstore"
	"github.com/waypointd/segrtree/internal/logging"
	"github.com/waypointd/segrtree/manifest"
	"github.com/waypointd/segrtree/segserver"
	"github.com/waypointd/segrtree/segtree"
)

func main() {
	app := &cli.App{
		Name:        "segtreectl",
		Description: "Builds and serves a static packed R-tree over road-network segments",
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "bulk-load a tree from a segment and coordinate source and write it to disk",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "segments", Aliases: []string{"s"}, Required: true, TakesFile: true},
					&cli.StringFlag{Name: "coords", Aliases: []string{"c"}, Required: true, TakesFile: true},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Required: true},
					&cli.StringFlag{Name: "packer", Value: "omt"},
					&cli.IntFlag{Name: "threads", DefaultText: "max"},
					&cli.BoolFlag{Name: "zstd"},
				},
				Action: generate,
			},
			{
				Name:  "serve",
				Usage: "open a previously built tree and serve /nearest and /box",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "index", Aliases: []string{"i"}, Required: true},
					&cli.StringFlag{Name: "coords", Aliases: []string{"c"}, Required: true, TakesFile: true},
					&cli.StringFlag{Name: "listen", Value: ":8080"},
				},
				Action: serve,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func generate(ctx *cli.Context) error {
	logging.Setup("generate")
	log := slog.Default()

	threads := ctx.Int("threads")
	if threads == 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	log = log.With("threads", threads)

	packer, err := parsePacker(ctx.String("packer"))
	if err != nil {
		return err
	}

	cfg := build.DefaultConfig()
	cfg.Workers = threads
	cfg.Packer = packer
	cfg.Logger = log
	cfg.ZstdInput = ctx.Bool("zstd")

	out := build.OutputPaths(ctx.String("out"))
	return build.Run[segtree.EdgeData](cfg, ctx.String("segments"), ctx.String("coords"), segtree.EdgeDataCodec{}, out)
}

func serve(ctx *cli.Context) error {
	logging.Setup("serve")
	log := slog.Default()

	out := build.OutputPaths(ctx.String("index"))

	mfFile, err := os.Open(out.ManifestPath)
	if err != nil {
		return fmt.Errorf("opening manifest: %w", err)
	}
	mf, err := manifest.Read(mfFile)
	mfFile.Close()
	if err != nil {
		return err
	}
	codec := segtree.EdgeDataCodec{}
	if err := manifest.Check(mf, segtree.BranchingFactor, uint32(codec.Size())); err != nil {
		return err
	}

	coordsFile, err := os.Open(ctx.String("coords"))
	if err != nil {
		return fmt.Errorf("opening coordinate table: %w", err)
	}
	defer coordsFile.Close()
	stat, err := coordsFile.Stat()
	if err != nil {
		return err
	}
	hash, err := manifest.HashCoordinateReader(coordsFile)
	if err != nil {
		return err
	}
	if hash != mf.CoordinateTableHash {
		return fmt.Errorf("coordinate table %q does not match the one the index was built from", ctx.String("coords"))
	}
	coords := coordstore.OpenFile(coordsFile, int(stat.Size())/8)

	tree, err := segtree.Open[segtree.EdgeData](out.BranchPath, out.LeafPath, codec, coords, int(mf.LeafPageSize))
	if err != nil {
		return fmt.Errorf("opening tree: %w", err)
	}
	defer tree.Close()

	log.Info("tree opened", "branches", tree.BranchCount(), "leaves", tree.LeafCount())

	runCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return segserver.Run[segtree.EdgeData](runCtx, ctx.String("listen"), tree)
}

func parsePacker(s string) (segtree.PackerKind, error) {
	switch s {
	case "omt", "":
		return segtree.PackerOMT, nil
	case "hilbert":
		return segtree.PackerHilbert, nil
	case "str":
		return segtree.PackerSTR, nil
	default:
		return 0, fmt.Errorf("unknown packer %q", s)
	}
}

package segtree

import (
	"bytes"
	"context"
	"math/rand"
	"testing"

	"github.com/waypointd/segrtree/coordstore"
	"github.com/waypointd/segrtree/geom"
)

// randomFixture builds n segments with endpoints drawn uniformly from
// [-1,1]^2 degrees, deterministic for a given seed.
func randomFixture(n int, seed int64) (coordstore.Mem, []EdgeData) {
	rng := rand.New(rand.NewSource(seed))
	coords := make(coordstore.Mem, 2*n)
	edges := make([]EdgeData, n)
	for i := 0; i < n; i++ {
		coords[2*i] = geom.FromDegrees(rng.Float64()*2-1, rng.Float64()*2-1)
		coords[2*i+1] = geom.FromDegrees(rng.Float64()*2-1, rng.Float64()*2-1)
		edges[i] = EdgeData{U: uint32(2 * i), V: uint32(2*i + 1), ForwardEnabled: true, ReverseEnabled: true}
	}
	return coords, edges
}

func rectContains(outer, inner geom.Rect) bool {
	return outer.MinLon <= inner.MinLon && outer.MaxLon >= inner.MaxLon &&
		outer.MinLat <= inner.MinLat && outer.MaxLat >= inner.MaxLat
}

func payloadMercatorBox(coords coordstore.Store, e EdgeData) geom.Rect {
	pu := geom.ToMercator(coords.At(e.U))
	pv := geom.ToMercator(coords.At(e.V))
	return geom.Empty.Extend(pu).Extend(pv)
}

// checkTreeInvariants walks the whole tree from the root handle and verifies
// the structural contract: every branch MBR contains its children's MBRs,
// every leaf MBR contains its payloads' Mercator endpoint boxes, every node
// is reachable from branch index 0 exactly once, and the leaf object counts
// sum to the input segment count.
func checkTreeInvariants(t *testing.T, tree *Tree[EdgeData], coords coordstore.Store, segmentCount int) {
	t.Helper()

	if len(tree.branches) == 0 {
		t.Fatalf("tree has no branch nodes")
	}

	seenBranch := make([]bool, len(tree.branches))
	seenLeaf := make([]bool, tree.leaves.LeafCount())
	total := 0

	var walk func(h Handle)
	walk = func(h Handle) {
		if h.IsLeaf() {
			idx := h.Index()
			if seenLeaf[idx] {
				t.Fatalf("leaf %d reachable via more than one parent", idx)
			}
			seenLeaf[idx] = true

			objs := tree.leaves.LeafObjects(idx)
			if len(objs) == 0 {
				t.Fatalf("leaf %d is empty", idx)
			}
			total += len(objs)
			mbr := tree.leaves.LeafMBR(idx)
			for _, obj := range objs {
				box := payloadMercatorBox(coords, obj)
				if !rectContains(mbr, box) {
					t.Fatalf("leaf %d MBR %+v does not contain payload box %+v", idx, mbr, box)
				}
			}
			return
		}

		idx := h.Index()
		if seenBranch[idx] {
			t.Fatalf("branch %d reachable via more than one parent", idx)
		}
		seenBranch[idx] = true

		b := tree.branches[idx]
		if b.ChildCount == 0 || b.ChildCount > BranchingFactor {
			t.Fatalf("branch %d has child count %d", idx, b.ChildCount)
		}
		for c := uint32(0); c < b.ChildCount; c++ {
			child := b.Children[c]
			if !rectContains(b.MBR, tree.childMBR(child)) {
				t.Fatalf("branch %d MBR does not contain child %d's MBR", idx, c)
			}
			walk(child)
		}
	}
	walk(rootHandle)

	for i, seen := range seenBranch {
		if !seen {
			t.Fatalf("branch %d unreachable from the root", i)
		}
	}
	for i, seen := range seenLeaf {
		if !seen {
			t.Fatalf("leaf %d unreachable from the root", i)
		}
	}
	if total != segmentCount {
		t.Fatalf("leaf object counts sum to %d, want %d", total, segmentCount)
	}
}

func TestStructuralInvariantsAllPackers(t *testing.T) {
	coords, edges := randomFixture(3000, 7)

	for _, packer := range []PackerKind{PackerOMT, PackerHilbert, PackerSTR} {
		t.Run(packer.String(), func(t *testing.T) {
			tree, err := Build(edges, coords, EdgeDataCodec{}, WithPacker(packer))
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			checkTreeInvariants(t, tree, coords, len(edges))
		})
	}
}

func TestLeafFileLayout(t *testing.T) {
	coords, edges := randomFixture(2000, 11)

	for _, packer := range []PackerKind{PackerOMT, PackerHilbert, PackerSTR} {
		t.Run(packer.String(), func(t *testing.T) {
			tree, err := Build(edges, coords, EdgeDataCodec{}, WithPacker(packer))
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			mem := tree.leaves.(*memLeaves[EdgeData])

			var buf bytes.Buffer
			if err := WriteLeaves(&buf, mem.leaves, EdgeDataCodec{}, LeafPageSize); err != nil {
				t.Fatalf("WriteLeaves: %v", err)
			}
			if buf.Len()%LeafPageSize != 0 {
				t.Fatalf("leaf file size %d is not a multiple of page size %d", buf.Len(), LeafPageSize)
			}

			leafNodeSize := LeafNodeSize(LeafPageSize, EdgeDataCodec{}.Size())
			raw := buf.Bytes()
			total := 0
			for off := 0; off < len(raw); off += LeafPageSize {
				count := int(decodeUint32(raw[off : off+4]))
				if count == 0 || count > leafNodeSize {
					t.Fatalf("leaf at offset %d has object count %d, want 1..%d", off, count, leafNodeSize)
				}
				total += count
			}
			if total != len(edges) {
				t.Fatalf("object counts sum to %d, want %d", total, len(edges))
			}
		})
	}
}

// bruteNearestDist scans every segment and returns the smallest projected
// squared distance to q, the same distance function the engine uses.
func bruteNearestDist(coords coordstore.Store, edges []EdgeData, q geom.Point) int64 {
	projected := geom.ToMercator(q)
	best := int64(-1)
	for _, e := range edges {
		a := geom.ToMercator(coords.At(e.U))
		b := geom.ToMercator(coords.At(e.V))
		_, d := geom.NearestPointOnSegment(a, b, projected)
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

func segmentDist(coords coordstore.Store, e EdgeData, q geom.Point) int64 {
	projected := geom.ToMercator(q)
	a := geom.ToMercator(coords.At(e.U))
	b := geom.ToMercator(coords.At(e.V))
	_, d := geom.NearestPointOnSegment(a, b, projected)
	return d
}

func TestNearestAgreesWithBruteForce(t *testing.T) {
	coords, edges := randomFixture(10000, 23)
	tree, err := Build(edges, coords, EdgeDataCodec{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 100; i++ {
		q := geom.FromDegrees(rng.Float64()*2-1, rng.Float64()*2-1)

		got := tree.NearestK(q, 1)
		if len(got) != 1 {
			t.Fatalf("query %d: want 1 result, got %d", i, len(got))
		}
		want := bruteNearestDist(coords, edges, q)
		if d := segmentDist(coords, got[0], q); d != want {
			t.Fatalf("query %d: engine top-1 distance %d, brute force %d", i, d, want)
		}
	}
}

func TestNearestDistancesMonotonic(t *testing.T) {
	coords, edges := randomFixture(5000, 31)

	for _, packer := range []PackerKind{PackerOMT, PackerHilbert, PackerSTR} {
		t.Run(packer.String(), func(t *testing.T) {
			tree, err := Build(edges, coords, EdgeDataCodec{}, WithPacker(packer))
			if err != nil {
				t.Fatalf("build: %v", err)
			}

			q := geom.FromDegrees(0.25, -0.25)
			results := tree.NearestK(q, 50)
			if len(results) != 50 {
				t.Fatalf("want 50 results, got %d", len(results))
			}
			prev := int64(-1)
			for i, r := range results {
				d := segmentDist(coords, r, q)
				if d < prev {
					t.Fatalf("result %d has distance %d, smaller than previous %d", i, d, prev)
				}
				prev = d
			}
		})
	}
}

func TestNearestZeroLengthSegment(t *testing.T) {
	coords := coordstore.Mem{
		geom.FromDegrees(0, 0),
		geom.FromDegrees(5, 5),
		geom.FromDegrees(6, 5),
	}
	edges := []EdgeData{
		{U: 0, V: 0, ForwardEnabled: true, ReverseEnabled: true},
		{U: 1, V: 2, ForwardEnabled: true, ReverseEnabled: true},
	}

	tree, err := Build(edges, coords, EdgeDataCodec{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	results := tree.NearestK(geom.FromDegrees(0.1, 0.1), 1)
	if len(results) != 1 {
		t.Fatalf("want 1 result, got %d", len(results))
	}
	if results[0].U != 0 || results[0].V != 0 {
		t.Fatalf("want the degenerate segment nearest, got %+v", results[0])
	}
}

func TestNearestContextCancelled(t *testing.T) {
	coords, edges := randomFixture(1000, 3)
	tree, err := Build(edges, coords, EdgeDataCodec{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := tree.NearestContext(ctx, geom.FromDegrees(0, 0), nil, nil)
	if len(results) != 0 {
		t.Fatalf("want no results from an already-cancelled query, got %d", len(results))
	}
}

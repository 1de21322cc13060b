package segtree

import (
	"runtime"
	"sort"

	"github.com/sourcegraph/conc/pool"
	"github.com/waypointd/segrtree/coordstore"
	"github.com/waypointd/segrtree/geom"
)

// buildSegment is the packers' common working representation: a payload
// plus its precomputed Mercator-projected endpoint box, centroid and
// Hilbert code, and its original input position for deterministic
// tiebreaks.
type buildSegment[P Payload] struct {
	payload  P
	box      geom.Rect // Mercator endpoint bounding box
	centroid geom.Point
	hilbert  uint64
	input    int
}

// prepareSegments projects every segment's endpoints and centroid once, in
// parallel over disjoint ranges, matching the concurrency model's
// requirement that per-range stages share nothing. workers <= 0 means use
// one worker per available core.
func prepareSegments[P Payload](payloads []P, coords coordstore.Store, workers int) []buildSegment[P] {
	out := make([]buildSegment[P], len(payloads))
	parallelRanges(len(payloads), workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			p := payloads[i]
			u, v := p.Endpoints()
			pu := geom.ToMercator(coords.At(u))
			pv := geom.ToMercator(coords.At(v))
			box := geom.Empty.Extend(pu).Extend(pv)
			centroid := geom.Point{
				Lon: pu.Lon + (pv.Lon-pu.Lon)/2,
				Lat: pu.Lat + (pv.Lat-pu.Lat)/2,
			}
			out[i] = buildSegment[P]{
				payload:  p,
				box:      box,
				centroid: centroid,
				hilbert:  geom.HilbertCode(centroid),
				input:    i,
			}
		}
	})
	return out
}

// parallelRanges splits [0,n) into contiguous ranges and runs f over each
// range in a bounded worker pool, waiting for all to finish. It backs the
// centroid/Hilbert computation in prepareSegments; the packers' sorts and the
// reverse-and-renumber pass run on a single goroutine. workers <= 0 means
// GOMAXPROCS workers.
func parallelRanges(n, workers int, f func(lo, hi int)) {
	if n == 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	p := pool.New().WithMaxGoroutines(workers)
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		p.Go(func() { f(lo, hi) })
	}
	p.Wait()
}

func sortByHilbert[P Payload](segs []buildSegment[P]) {
	sort.Slice(segs, func(i, j int) bool {
		if segs[i].hilbert != segs[j].hilbert {
			return segs[i].hilbert < segs[j].hilbert
		}
		return segs[i].input < segs[j].input
	})
}

func sortByLon[P Payload](segs []buildSegment[P]) {
	sort.Slice(segs, func(i, j int) bool {
		if segs[i].centroid.Lon != segs[j].centroid.Lon {
			return segs[i].centroid.Lon < segs[j].centroid.Lon
		}
		return segs[i].input < segs[j].input
	})
}

func sortByLat[P Payload](segs []buildSegment[P]) {
	sort.Slice(segs, func(i, j int) bool {
		if segs[i].centroid.Lat != segs[j].centroid.Lat {
			return segs[i].centroid.Lat < segs[j].centroid.Lat
		}
		return segs[i].input < segs[j].input
	})
}

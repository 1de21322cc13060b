// Package segserver is the HTTP surface over an opened segtree.Tree:
// GET /nearest and GET /box, plus a /metrics endpoint. It is a thin
// consumer of the query engine's public API, not part of the core's
// correctness surface.
package segserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"golang.org/x/sync/errgroup"

	"github.com/waypointd/segrtree/geom"
	"github.com/waypointd/segrtree/segtree"
)

// MaxBodySize bounds request bodies; this surface takes only query
// parameters, so it stays small.
const MaxBodySize = 1 << 16

var meter = otel.Meter("github.com/waypointd/segrtree/segserver")

// Queryable is the subset of *segtree.Tree[P] the server needs, so tests can
// substitute a fake.
type Queryable[P segtree.Payload] interface {
	SearchInBox(rect geom.Rect) []P
	NearestK(q geom.Point, k int) []P
}

type server[P segtree.Payload] struct {
	tree Queryable[P]

	nearestCalls metric.Int64Counter
	boxCalls     metric.Int64Counter
}

// Run wires an OTel Prometheus exporter, registers the /nearest, /box and
// /metrics handlers, and serves until ctx is cancelled.
func Run[P segtree.Payload](ctx context.Context, address string, tree Queryable[P]) error {
	hostName, _ := os.Hostname()
	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName("segserver"),
			semconv.HostName(hostName),
			semconv.ServiceInstanceID(uuid.NewString()),
		),
	)
	if err != nil {
		return err
	}

	promExporter, err := prometheus.New()
	if err != nil {
		return err
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(r),
		sdkmetric.WithReader(promExporter),
	)
	otel.SetMeterProvider(provider)

	nearestCalls, err := meter.Int64Counter("http_nearest_call_total")
	if err != nil {
		return err
	}
	boxCalls, err := meter.Int64Counter("http_box_call_total")
	if err != nil {
		return err
	}

	s := &server[P]{tree: tree, nearestCalls: nearestCalls, boxCalls: boxCalls}

	mux := func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/nearest":
			s.handleNearest(ctx)
		case "/box":
			s.handleBox(ctx)
		case "/metrics":
			fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())(ctx)
		default:
			ctx.SetStatusCode(http.StatusNotFound)
		}
	}

	httpServer := &fasthttp.Server{
		ReadTimeout:        time.Second,
		MaxRequestBodySize: MaxBodySize,
		Handler:            mux,
	}

	log := slog.Default()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("segserver listening", "address", address)
		if err := httpServer.ListenAndServe(address); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := httpServer.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		return provider.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *server[P]) handleNearest(ctx *fasthttp.RequestCtx) {
	s.nearestCalls.Add(ctx, 1)

	lon, err := strconv.ParseFloat(string(ctx.QueryArgs().Peek("lon")), 64)
	if err != nil {
		ctx.SetStatusCode(http.StatusBadRequest)
		return
	}
	lat, err := strconv.ParseFloat(string(ctx.QueryArgs().Peek("lat")), 64)
	if err != nil {
		ctx.SetStatusCode(http.StatusBadRequest)
		return
	}
	k, err := strconv.Atoi(string(ctx.QueryArgs().Peek("k")))
	if err != nil || k <= 0 {
		k = 1
	}

	results := s.tree.NearestK(geom.FromDegrees(lon, lat), k)
	writeJSON(ctx, results)
}

func (s *server[P]) handleBox(ctx *fasthttp.RequestCtx) {
	s.boxCalls.Add(ctx, 1)

	minLon, err1 := strconv.ParseFloat(string(ctx.QueryArgs().Peek("min_lon")), 64)
	minLat, err2 := strconv.ParseFloat(string(ctx.QueryArgs().Peek("min_lat")), 64)
	maxLon, err3 := strconv.ParseFloat(string(ctx.QueryArgs().Peek("max_lon")), 64)
	maxLat, err4 := strconv.ParseFloat(string(ctx.QueryArgs().Peek("max_lat")), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		ctx.SetStatusCode(http.StatusBadRequest)
		return
	}

	min := geom.FromDegrees(minLon, minLat)
	max := geom.FromDegrees(maxLon, maxLat)
	rect := geom.Rect{MinLon: min.Lon, MinLat: min.Lat, MaxLon: max.Lon, MaxLat: max.Lat}

	results := s.tree.SearchInBox(rect)
	writeJSON(ctx, results)
}

func writeJSON[P segtree.Payload](ctx *fasthttp.RequestCtx, results []P) {
	out, err := json.Marshal(results)
	if err != nil {
		ctx.SetStatusCode(http.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(http.StatusOK)
	ctx.SetBody(out)
}

package manifest_test

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/waypointd/segrtree/manifest"
)

func TestRoundTrip(t *testing.T) {
	want := manifest.Manifest{
		Packer:              "omt",
		SegmentCount:        12345,
		BranchingFactor:     128,
		LeafPageSize:        4096,
		PayloadSize:         10,
		CoordinateTableHash: manifest.HashCoordinateTable([]byte("coords")),
		BuiltAtUnix:         1700000000,
		BuildRunID:          uuid.New(),
	}

	var buf bytes.Buffer
	if err := manifest.Write(&buf, want); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := manifest.Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got.Packer != want.Packer || got.SegmentCount != want.SegmentCount ||
		got.BranchingFactor != want.BranchingFactor || got.LeafPageSize != want.LeafPageSize ||
		got.PayloadSize != want.PayloadSize || got.BuiltAtUnix != want.BuiltAtUnix ||
		got.CoordinateTableHash != want.CoordinateTableHash || got.BuildRunID != want.BuildRunID {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestCheckRejectsCorruptedManifest(t *testing.T) {
	m := manifest.Manifest{BranchingFactor: 128, PayloadSize: 10}
	if err := manifest.Check(m, 128, 99); err == nil {
		t.Fatalf("expected Check to reject a payload size mismatch")
	}
	if err := manifest.Check(m, 64, 10); err == nil {
		t.Fatalf("expected Check to reject a branching factor mismatch")
	}
	if err := manifest.Check(m, 128, 10); err != nil {
		t.Fatalf("expected matching manifest to pass, got %v", err)
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBufferString("nope")
	if _, err := manifest.Read(buf); err == nil {
		t.Fatalf("expected Read to reject bad magic bytes")
	}
}

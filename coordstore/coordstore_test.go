package coordstore_test

import (
	"bytes"
	"testing"

	"github.com/waypointd/segrtree/coordstore"
	"github.com/waypointd/segrtree/geom"
)

func TestFileAgreesWithMem(t *testing.T) {
	points := coordstore.Mem{
		geom.FromDegrees(1, 2),
		geom.FromDegrees(-3.5, 4.25),
		geom.FromDegrees(179.9, -89.9),
	}

	var buf bytes.Buffer
	if err := coordstore.WriteTo(&buf, points); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	file := coordstore.OpenFile(bytes.NewReader(buf.Bytes()), len(points))
	if file.Len() != len(points) {
		t.Fatalf("want len %d, got %d", len(points), file.Len())
	}
	for i, want := range points {
		if got := file.At(uint32(i)); got != want {
			t.Fatalf("point %d: want %+v, got %+v", i, want, got)
		}
	}

	decoded, err := coordstore.DecodeMem(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeMem: %v", err)
	}
	for i, want := range points {
		if decoded[i] != want {
			t.Fatalf("decoded point %d: want %+v, got %+v", i, want, decoded[i])
		}
	}
}

package client

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/julian-ornelas/ai-open-source-prework/pkg/shared"
)

// testFramePNG returns a tiny opaque PNG as base64, the same shape
// frame sources arrive in over the wire.
func testFramePNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test frame: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func testAvatar(t *testing.T, name string) *shared.Avatar {
	t.Helper()
	frame := testFramePNG(t)
	return &shared.Avatar{
		Name: name,
		Frames: map[shared.Facing][]string{
			shared.FaceNorth: {frame, frame},
			shared.FaceSouth: {frame, frame, frame},
			shared.FaceEast:  {frame},
		},
	}
}

func TestPopulateIsIdempotent(t *testing.T) {
	c := NewSpriteCache()
	if err := c.Populate(testAvatar(t, "fox")); err != nil {
		t.Fatalf("first populate: %v", err)
	}
	first, _, ok := c.Lookup("fox", shared.FaceSouth, 0)
	if !ok {
		t.Fatal("lookup after populate failed")
	}
	// a second populate for the same name must not rebuild anything
	if err := c.Populate(testAvatar(t, "fox")); err != nil {
		t.Fatalf("second populate: %v", err)
	}
	second, _, _ := c.Lookup("fox", shared.FaceSouth, 0)
	if first != second {
		t.Error("re-populating a known avatar replaced its sprites")
	}
}

func TestPopulateDataURLPrefix(t *testing.T) {
	c := NewSpriteCache()
	a := &shared.Avatar{
		Name: "prefixed",
		Frames: map[shared.Facing][]string{
			shared.FaceSouth: {"data:image/png;base64," + testFramePNG(t)},
		},
	}
	if err := c.Populate(a); err != nil {
		t.Fatalf("populate with data URL prefix: %v", err)
	}
	if _, _, ok := c.Lookup("prefixed", shared.FaceSouth, 0); !ok {
		t.Error("prefixed frame not decoded")
	}
}

func TestPopulateRejectsBadFrame(t *testing.T) {
	c := NewSpriteCache()
	a := &shared.Avatar{
		Name: "broken",
		Frames: map[shared.Facing][]string{
			shared.FaceSouth: {"not base64 at all!"},
		},
	}
	if err := c.Populate(a); err == nil {
		t.Fatal("expected an error for an undecodable frame")
	}
	if c.Has("broken") {
		t.Error("partially decoded avatar was cached")
	}
}

func TestLookupFallbacks(t *testing.T) {
	c := NewSpriteCache()
	if err := c.Populate(testAvatar(t, "fox")); err != nil {
		t.Fatal(err)
	}

	// west has no frames of its own; it borrows east's, flagged for
	// mirroring at draw time
	west, mirrored, ok := c.Lookup("fox", shared.FaceWest, 0)
	if !ok {
		t.Fatal("west lookup failed")
	}
	if !mirrored {
		t.Error("borrowed east frame not flagged for mirroring")
	}
	east, _, _ := c.Lookup("fox", shared.FaceEast, 0)
	if west != east {
		t.Error("west did not fall through to east")
	}

	// a facing with no cached entry falls back to south
	odd, mirrored, ok := c.Lookup("fox", shared.Facing("upside-down"), 0)
	if !ok {
		t.Fatal("unrecognized facing lookup failed")
	}
	if mirrored {
		t.Error("south fallback flagged as mirrored")
	}
	south, _, _ := c.Lookup("fox", shared.FaceSouth, 0)
	if odd != south {
		t.Error("unrecognized facing did not fall back to south")
	}

	// frame indices wrap instead of going out of range
	wrapped, _, ok := c.Lookup("fox", shared.FaceSouth, 7)
	if !ok {
		t.Fatal("wrapped lookup failed")
	}
	direct, _, _ := c.Lookup("fox", shared.FaceSouth, 7%3)
	if wrapped != direct {
		t.Error("frame index did not wrap by sequence length")
	}

	if _, _, ok := c.Lookup("unknown", shared.FaceSouth, 0); ok {
		t.Error("lookup for an uncached avatar succeeded")
	}
}

func TestLookupServesIntermediateFacings(t *testing.T) {
	c := NewSpriteCache()
	frame := testFramePNG(t)
	northEast := shared.Facing("north-east")
	southWest := shared.Facing("south-west")
	err := c.Populate(&shared.Avatar{
		Name: "octo",
		Frames: map[shared.Facing][]string{
			shared.FaceSouth: {frame, frame},
			northEast:        {frame, frame},
			southWest:        {frame},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	// an avatar that ships frames for an intermediate label must
	// serve them, not the south fallback
	got, mirrored, ok := c.Lookup("octo", northEast, 1)
	if !ok {
		t.Fatal("intermediate facing lookup failed")
	}
	if mirrored {
		t.Error("exact facing flagged as mirrored")
	}
	south, _, _ := c.Lookup("octo", shared.FaceSouth, 1)
	if got == south {
		t.Error("north-east frames exist but lookup served the south fallback")
	}
	sw, _, _ := c.Lookup("octo", southWest, 0)
	if sw == south {
		t.Error("south-west frames exist but lookup served the south fallback")
	}
}

func TestLookupNativeWestIsNotMirrored(t *testing.T) {
	c := NewSpriteCache()
	frame := testFramePNG(t)
	err := c.Populate(&shared.Avatar{
		Name: "crab",
		Frames: map[shared.Facing][]string{
			shared.FaceWest: {frame},
			shared.FaceEast: {frame},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	got, mirrored, ok := c.Lookup("crab", shared.FaceWest, 0)
	if !ok {
		t.Fatal("west lookup failed")
	}
	if mirrored {
		t.Error("natively authored west frames must not be mirrored")
	}
	east, _, _ := c.Lookup("crab", shared.FaceEast, 0)
	if got == east {
		t.Error("native west frames exist but lookup served east")
	}
}

package client

import (
	"math"
	"testing"

	"github.com/julian-ornelas/ai-open-source-prework/pkg/shared"
)

func jointWorld() *World {
	w := NewWorld(2048, 2048)
	w.SetCanvasSize(800, 600)
	w.Reset("p1", map[string]*shared.Player{
		"p1": {ID: "p1", Username: "alice", Avatar: "fox", X: 100, Y: 100, Facing: shared.FaceSouth},
		"p2": {ID: "p2", Username: "bob", Avatar: "owl", X: 900, Y: 900, Facing: shared.FaceNorth},
	}, map[string]*shared.Avatar{
		"fox": {Name: "fox"},
		"owl": {Name: "owl"},
	})
	return w
}

func TestResetDerivesViewport(t *testing.T) {
	w := jointWorld()
	want := Viewport{X: 0, Y: 0, W: 800, H: 600}
	if got := w.Viewport(); got != want {
		t.Errorf("viewport after join = %+v, want %+v", got, want)
	}
	if w.Self() == nil || w.Self().ID != "p1" {
		t.Errorf("self alias not set: %+v", w.Self())
	}
}

func TestMergeMovedIgnoresUnknownIDs(t *testing.T) {
	w := jointWorld()
	before := w.PlayerCount()
	w.MergeMoved(map[string]*shared.Player{
		"ghost": {ID: "ghost", X: 1, Y: 1},
	})
	if w.PlayerCount() != before {
		t.Errorf("unknown id inserted: count %d, want %d", w.PlayerCount(), before)
	}
}

func TestMergeMovedRefreshesSelfAlias(t *testing.T) {
	w := jointWorld()
	replacement := &shared.Player{ID: "p1", Username: "alice", Avatar: "fox", X: 1024, Y: 1024}
	moved := w.MergeMoved(map[string]*shared.Player{"p1": replacement})
	if !moved {
		t.Fatal("expected selfMoved")
	}
	if w.Self() != replacement {
		t.Error("self alias not refreshed to the replacement player")
	}
	want := Viewport{X: 624, Y: 724, W: 800, H: 600}
	if got := w.Viewport(); got != want {
		t.Errorf("viewport after self move = %+v, want %+v", got, want)
	}
}

func TestMergeMovedOtherPlayerKeepsViewport(t *testing.T) {
	w := jointWorld()
	before := w.Viewport()
	if moved := w.MergeMoved(map[string]*shared.Player{"p2": {ID: "p2", X: 500, Y: 500}}); moved {
		t.Fatal("p2 is not self")
	}
	if got := w.Viewport(); got != before {
		t.Errorf("viewport changed on other player's move: %+v", got)
	}
}

func TestRemoveAbsentPlayerIsNoop(t *testing.T) {
	w := jointWorld()
	before := w.PlayerCount()
	w.RemovePlayer("ghost")
	if w.PlayerCount() != before {
		t.Errorf("count changed: %d, want %d", w.PlayerCount(), before)
	}
}

func TestWheelZoomSteps(t *testing.T) {
	w := jointWorld()
	// three wheel-down steps: 0.9^3
	w.AdjustZoom(-1)
	w.AdjustZoom(-1)
	z := w.AdjustZoom(-1)
	if math.Abs(z-0.729) > 1e-9 {
		t.Fatalf("zoom after three wheel-down = %v, want 0.729", z)
	}
	vp := w.Viewport()
	if math.Abs(vp.W-800/0.729) > 1e-9 || math.Abs(vp.H-600/0.729) > 1e-9 {
		t.Errorf("viewport %vx%v did not grow with zoom-out", vp.W, vp.H)
	}
}

func TestZoomStaysClamped(t *testing.T) {
	w := jointWorld()
	for i := 0; i < 40; i++ {
		w.AdjustZoom(-1)
	}
	if z := w.Zoom(); z != MinZoom {
		t.Errorf("zoom floor = %v, want %v", z, MinZoom)
	}
	for i := 0; i < 80; i++ {
		w.AdjustZoom(1)
	}
	if z := w.Zoom(); z != MaxZoom {
		t.Errorf("zoom ceiling = %v, want %v", z, MaxZoom)
	}
}

func TestDisplayMoving(t *testing.T) {
	w := jointWorld()
	// local input intent wins for self
	if !w.DisplayMoving("p1", true) {
		t.Error("self with held keys should display as moving")
	}
	if w.DisplayMoving("p1", false) {
		t.Error("self without held keys should display as idle")
	}
	// others follow the server flag only
	if w.DisplayMoving("p2", true) {
		t.Error("other player without server flag should display as idle")
	}
	w.MergeMoved(map[string]*shared.Player{"p2": {ID: "p2", IsMoving: true}})
	if !w.DisplayMoving("p2", false) {
		t.Error("other player with server flag should display as moving")
	}
	if w.DisplayMoving("ghost", true) {
		t.Error("absent id should display as idle")
	}
}

package client

import (
	"sync"

	"github.com/julian-ornelas/ai-open-source-prework/pkg/shared"
)

// World owns the authoritative snapshot on the client: our identity,
// every participant the server asserts, avatar definitions, and the
// locally derived camera. All mutation goes through its methods and
// completes before any render can observe it.
//
// PLEASE do not modify players through references returned here;
// they are for reading only.
type World struct {
	mu sync.RWMutex

	selfID string
	self   *shared.Player // cached alias into players; revalidated on every merge

	players map[string]*shared.Player
	avatars map[string]*shared.Avatar

	zoom             float64
	viewport         Viewport
	canvasW, canvasH float64
	worldW, worldH   float64
}

func NewWorld(worldW, worldH float64) *World {
	return &World{
		players: make(map[string]*shared.Player),
		avatars: make(map[string]*shared.Avatar),
		zoom:    1.0,
		worldW:  worldW,
		worldH:  worldH,
	}
}

// Reset replaces the entire session state from a successful join:
// identity, the full participant set and the full avatar set.
func (w *World) Reset(selfID string, players map[string]*shared.Player, avatars map[string]*shared.Avatar) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selfID = selfID
	w.players = make(map[string]*shared.Player, len(players))
	for id, p := range players {
		w.players[id] = p
	}
	w.avatars = make(map[string]*shared.Avatar, len(avatars))
	for name, a := range avatars {
		w.avatars[name] = a
	}
	w.self = w.players[selfID]
	w.recomputeViewport()
}

// UpsertPlayer inserts or wholesale-replaces one participant and, if
// the avatar is new, merges its definition.
func (w *World) UpsertPlayer(p *shared.Player, avatar *shared.Avatar) {
	if p == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.players[p.ID] = p
	if avatar != nil {
		if _, known := w.avatars[avatar.Name]; !known {
			w.avatars[avatar.Name] = avatar
		}
	}
	if p.ID == w.selfID {
		w.self = p
		w.recomputeViewport()
	}
}

// MergeMoved applies a partial id -> player mapping. Present keys are
// fully replaced; ids we have never seen are NOT inserted. Returns
// whether our own participant was among the updates.
func (w *World) MergeMoved(moved map[string]*shared.Player) (selfMoved bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, p := range moved {
		if p == nil {
			continue
		}
		if _, known := w.players[id]; !known {
			continue
		}
		w.players[id] = p
		if id == w.selfID {
			// the underlying Player may be replaced wholesale,
			// so the alias must be refreshed
			w.self = p
			selfMoved = true
		}
	}
	if selfMoved {
		w.recomputeViewport()
	}
	return selfMoved
}

// RemovePlayer deletes one participant. Removing an absent id is a
// no-op, not an error.
func (w *World) RemovePlayer(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.players, id)
	if id == w.selfID {
		w.self = nil
	}
}

// Self returns our own participant, or nil before a successful join.
func (w *World) Self() *shared.Player {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.self
}

func (w *World) SelfID() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.selfID
}

// ForEach calls f on each participant. Read-only; enumeration order
// is the map's natural order.
func (w *World) ForEach(f func(p *shared.Player)) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, p := range w.players {
		f(p)
	}
}

func (w *World) PlayerCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.players)
}

func (w *World) Avatar(name string) (*shared.Avatar, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	a, ok := w.avatars[name]
	return a, ok
}

// DisplayMoving is the movement status shown for a participant. For
// ourselves local input intent wins over the round-tripped server
// flag; for everyone else only the server-asserted flag counts.
func (w *World) DisplayMoving(id string, localInputMoving bool) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if id == w.selfID {
		return localInputMoving
	}
	p, ok := w.players[id]
	if !ok {
		return false
	}
	return p.IsMoving
}

// AdjustZoom applies one wheel step (in toward the world for
// positive steps) and reclamps. Returns the resulting zoom.
func (w *World) AdjustZoom(steps float64) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	factor := zoomInFactor
	if steps < 0 {
		factor = zoomOutFactor
		steps = -steps
	}
	for i := 0.0; i < steps; i++ {
		w.zoom = ClampZoom(w.zoom * factor)
	}
	w.recomputeViewport()
	return w.zoom
}

func (w *World) Zoom() float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.zoom
}

// SetCanvasSize records the drawing surface size in pixels and
// rederives the viewport. Called on startup and on window resize.
func (w *World) SetCanvasSize(cw, ch float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.canvasW, w.canvasH = cw, ch
	w.recomputeViewport()
}

func (w *World) Viewport() Viewport {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.viewport
}

func (w *World) WorldBounds() (fw, fh float64) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.worldW, w.worldH
}

// recomputeViewport rederives the camera from scratch. Callers hold
// the write lock.
func (w *World) recomputeViewport() {
	var px, py float64
	if w.self != nil {
		px, py = w.self.X, w.self.Y
	}
	w.viewport = ComputeViewport(px, py, w.zoom, w.canvasW, w.canvasH, w.worldW, w.worldH)
}

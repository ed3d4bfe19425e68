package client

// Viewport is the world-coordinate rectangle currently visible on
// screen. It is fully derived from the local player position, the
// zoom factor, the canvas size and the world bounds; nothing mutates
// it incrementally.
type Viewport struct {
	X, Y, W, H float64
}

// Contains reports whether the world point (x, y) falls inside the
// viewport, bounds inclusive.
func (v Viewport) Contains(x, y float64) bool {
	return x >= v.X && x <= v.X+v.W && y >= v.Y && y <= v.Y+v.H
}

// Zoom bounds and wheel step factors.
const (
	MinZoom = 0.5
	MaxZoom = 3.0

	zoomInFactor  = 1.1
	zoomOutFactor = 0.9
)

// ClampZoom bounds z into [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	return clamp(z, MinZoom, MaxZoom)
}

// ComputeViewport derives the visible world rectangle: the canvas
// divided by zoom (higher zoom shows a smaller slice), centered on
// the player, clamped per axis into the world. An axis on which the
// viewport is at least as large as the world is centered instead,
// letterboxing the world.
func ComputeViewport(playerX, playerY, zoom, canvasW, canvasH, worldW, worldH float64) Viewport {
	w := canvasW / zoom
	h := canvasH / zoom
	return Viewport{
		X: clampAxis(playerX-w/2, w, worldW),
		Y: clampAxis(playerY-h/2, h, worldH),
		W: w,
		H: h,
	}
}

func clampAxis(origin, viewDim, worldDim float64) float64 {
	if viewDim >= worldDim {
		return (worldDim - viewDim) / 2
	}
	return clamp(origin, 0, worldDim-viewDim)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

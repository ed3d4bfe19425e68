package client

import (
	"github.com/faiface/pixel"
	"github.com/faiface/pixel/pixelgl"
	"github.com/faiface/pixel/text"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"

	"github.com/julian-ornelas/ai-open-source-prework/pkg/shared"
)

// Renderer composes one frame: clear, the world slice under the
// viewport, then every visible participant's sprite and name label.
// It only reads the world and the sprite cache, never mutates them.
type Renderer struct {
	win     *pixelgl.Window
	world   *World
	sprites *SpriteCache

	spriteSize float64

	worldPic    pixel.Picture
	worldSprite *pixel.Sprite

	txt *text.Text
}

func NewRenderer(win *pixelgl.Window, world *World, sprites *SpriteCache, spriteSize float64) *Renderer {
	atlas := text.NewAtlas(basicfont.Face7x13, text.ASCII)
	return &Renderer{
		win:        win,
		world:      world,
		sprites:    sprites,
		spriteSize: spriteSize,
		txt:        text.New(pixel.ZV, atlas),
	}
}

// SetWorldPicture installs the world background once its image has
// finished loading. Until then the background step is skipped.
func (r *Renderer) SetWorldPicture(pic pixel.Picture) {
	r.worldPic = pic
	r.worldSprite = pixel.NewSprite(pic, pic.Bounds())
}

// Frame draws one complete frame in the fixed order: clear, world
// background, visible participants.
func (r *Renderer) Frame() {
	win := r.win
	win.Clear(colornames.Darkgray)

	vp := r.world.Viewport()
	zoom := r.world.Zoom()
	winH := win.Bounds().H()

	r.drawBackground(vp, zoom, winH)

	r.world.ForEach(func(p *shared.Player) {
		if !vp.Contains(p.X, p.Y) {
			return
		}
		r.drawPlayer(p, vp, zoom, winH)
	})
}

func (r *Renderer) drawBackground(vp Viewport, zoom, winH float64) {
	if r.worldPic == nil {
		return
	}
	rect, center, ok := worldSlice(vp, r.worldPic.Bounds())
	if !ok {
		return
	}
	r.worldSprite.Set(r.worldPic, rect)
	cx, cy := canvasPos(center.X, center.Y, vp, zoom)
	pos := pixel.V(cx, winH-cy)
	r.worldSprite.Draw(r.win, pixel.IM.Scaled(pixel.ZV, zoom).Moved(pos))
}

func (r *Renderer) drawPlayer(p *shared.Player, vp Viewport, zoom, winH float64) {
	sprite, mirrored, ok := r.sprites.Lookup(p.Avatar, p.Facing, p.AnimationFrame)
	if !ok {
		// avatar metadata not cached yet; skip silently
		return
	}

	cx, cy := canvasPos(p.X, p.Y, vp, zoom)
	feetY := winH - cy

	frame := sprite.Frame()
	scale := spriteScale(frame.H(), r.spriteSize, zoom)
	drawnH := frame.H() * scale

	// feet at the participant's position, horizontally centered
	center := pixel.V(cx, feetY+drawnH/2)
	matrix := pixel.IM.Scaled(pixel.ZV, scale)
	if mirrored {
		// west served from east-authored art
		matrix = pixel.IM.ScaledXY(pixel.ZV, pixel.V(-scale, scale))
	}
	sprite.Draw(r.win, matrix.Moved(center))

	r.drawLabel(p.Username, pixel.V(cx, feetY+drawnH+6*zoom), zoom)
}

// drawLabel renders an outlined name so it stays readable over any
// background. Stroke width and size scale with zoom.
func (r *Renderer) drawLabel(name string, pos pixel.Vec, zoom float64) {
	if name == "" {
		return
	}
	txt := r.txt
	txt.Clear()
	txt.Dot = txt.Orig
	txt.Dot.X -= txt.BoundsOf(name).W() / 2
	txt.WriteString(name)

	stroke := zoom
	for _, off := range [4]pixel.Vec{{X: -stroke}, {X: stroke}, {Y: -stroke}, {Y: stroke}} {
		txt.DrawColorMask(r.win, pixel.IM.Scaled(pixel.ZV, zoom).Moved(pos.Add(off)), colornames.Black)
	}
	txt.DrawColorMask(r.win, pixel.IM.Scaled(pixel.ZV, zoom).Moved(pos), colornames.White)
}

// canvasPos maps a world point into canvas coordinates (origin top
// left, y down) under the viewport and zoom.
func canvasPos(x, y float64, vp Viewport, zoom float64) (cx, cy float64) {
	return (x - vp.X) * zoom, (y - vp.Y) * zoom
}

// spriteScale is the uniform factor that makes a frame's drawn
// height equal the zoom-scaled base size while preserving aspect.
func spriteScale(frameH, base, zoom float64) float64 {
	if frameH <= 0 {
		return zoom
	}
	return base * zoom / frameH
}

// worldSlice maps the viewport onto the world picture. World
// coordinates have y growing downward while pictures have y growing
// upward, so the rect flips vertically. The returned rect is clipped
// to the picture; center is the clipped region's center in world
// coordinates. ok is false when the viewport misses the picture
// entirely.
func worldSlice(vp Viewport, picBounds pixel.Rect) (rect pixel.Rect, center pixel.Vec, ok bool) {
	picH := picBounds.H()
	raw := pixel.R(vp.X, picH-(vp.Y+vp.H), vp.X+vp.W, picH-vp.Y)
	rect = raw.Intersect(picBounds)
	if rect.W() <= 0 || rect.H() <= 0 {
		return pixel.Rect{}, pixel.ZV, false
	}
	center = pixel.V(
		(rect.Min.X+rect.Max.X)/2,
		picH-(rect.Min.Y+rect.Max.Y)/2,
	)
	return rect, center, true
}

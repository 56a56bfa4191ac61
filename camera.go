package grove

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Camera is a stage viewport. During Step it decides which grid cells
// count as on screen; during Render it supplies the world-to-screen view.
// The view is Translate(screen center) * Scale(Zoom) * Rotate(-Rotation)
// * Translate(-X, -Y).
type Camera struct {
	// X and Y are the world point shown at the center of Viewport.
	X, Y float64
	// Zoom scales the world; 2 shows half as much of it.
	Zoom float64
	// Rotation in radians, clockwise.
	Rotation float64
	// Viewport is the screen rectangle the stage renders into.
	Viewport Rect

	// BoundsEnabled keeps the visible area inside Bounds.
	BoundsEnabled bool
	Bounds        Rect

	target *Entity
	offset Vec2
	lerp   float64

	scroll *cameraScroll

	view, inverse Matrix2D
	// last is the state view was built from
	last  [4]float64
	stale bool
}

// cameraScroll eases the camera from one point to another. A single gween
// tween drives the progress and both axes interpolate from it.
type cameraScroll struct {
	from, to Vec2
	progress *gween.Tween
}

// NewCamera returns a camera centered on the middle of viewport.
func NewCamera(viewport Rect) *Camera {
	return &Camera{
		X:        viewport.X + viewport.Width/2,
		Y:        viewport.Y + viewport.Height/2,
		Zoom:     1,
		Viewport: viewport,
		stale:    true,
	}
}

// AddViewport attaches a camera covering the stage's view size.
func (s *Stage) AddViewport() *Camera {
	s.Viewport = NewCamera(Rect{Width: s.options.W, Height: s.options.H})
	return s.Viewport
}

// CenterOn moves the camera to (x, y) at once, dropping any scroll.
func (c *Camera) CenterOn(x, y float64) {
	c.X, c.Y = x, y
	c.scroll = nil
	c.ClampToBounds()
	c.stale = true
}

// Follow tracks e's world position plus (offsetX, offsetY). Each step
// closes lerp of the remaining distance; 1 snaps.
func (c *Camera) Follow(e *Entity, offsetX, offsetY, lerp float64) {
	c.target = e
	c.offset = Vec2{offsetX, offsetY}
	c.lerp = lerp
}

// Unfollow stops tracking.
func (c *Camera) Unfollow() {
	c.target = nil
}

// ScrollTo eases the camera to (x, y) over duration seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.Linear
	}
	c.scroll = &cameraScroll{
		from:     Vec2{c.X, c.Y},
		to:       Vec2{x, y},
		progress: gween.New(0, 1, duration, easeFn),
	}
}

// ScrollToTile scrolls to the center of tile (tileX, tileY).
func (c *Camera) ScrollToTile(tileX, tileY int, tileW, tileH float64, duration float32, easeFn ease.TweenFunc) {
	c.ScrollTo((float64(tileX)+0.5)*tileW, (float64(tileY)+0.5)*tileH, duration, easeFn)
}

// SetBounds turns on clamping to bounds.
func (c *Camera) SetBounds(bounds Rect) {
	c.Bounds = bounds
	c.BoundsEnabled = true
}

// ClearBounds turns clamping off.
func (c *Camera) ClearBounds() {
	c.BoundsEnabled = false
}

// ClampToBounds applies the bounds right away. Use it after moving X/Y by
// hand so the next frame does not show outside them.
func (c *Camera) ClampToBounds() {
	if !c.BoundsEnabled {
		return
	}
	c.X = clampAxis(c.X, c.Bounds.X, c.Bounds.Width, c.Viewport.Width/(2*c.Zoom))
	c.Y = clampAxis(c.Y, c.Bounds.Y, c.Bounds.Height, c.Viewport.Height/(2*c.Zoom))
}

// clampAxis keeps pos at least half from both ends of [lo, lo+size], or
// centers it when the range is narrower than the view.
func clampAxis(pos, lo, size, half float64) float64 {
	if size < 2*half {
		return lo + size/2
	}
	return math.Max(lo+half, math.Min(pos, lo+size-half))
}

// update runs follow, scroll and clamping. Called by Stage.Step.
func (c *Camera) update(dt float64) {
	if c.target != nil && c.target.IsDestroyed() {
		c.target = nil
	}
	if t := c.target; t != nil {
		wx, wy := t.P.X, t.P.Y
		if t.C != nil {
			wx, wy = t.C.X, t.C.Y
		}
		c.X += (wx + c.offset.X - c.X) * c.lerp
		c.Y += (wy + c.offset.Y - c.Y) * c.lerp
	}

	if sc := c.scroll; sc != nil {
		p, done := sc.progress.Update(float32(dt))
		if done {
			c.X, c.Y = sc.to.X, sc.to.Y
			c.scroll = nil
		} else {
			c.X = sc.from.X + (sc.to.X-sc.from.X)*float64(p)
			c.Y = sc.from.Y + (sc.to.Y-sc.from.Y)*float64(p)
		}
	}

	c.ClampToBounds()
}

// MarkDirty forces the view to be rebuilt.
func (c *Camera) MarkDirty() {
	c.stale = true
}

// matrix returns the world-to-screen transform, rebuilding it when the
// camera moved.
func (c *Camera) matrix() [6]float64 {
	state := [4]float64{c.X, c.Y, c.Zoom, c.Rotation}
	if !c.stale && state == c.last {
		return c.view.m
	}
	c.stale = false
	c.last = state

	c.view.Identity().
		Translate(c.Viewport.X+c.Viewport.Width/2, c.Viewport.Y+c.Viewport.Height/2).
		Scale(c.Zoom, c.Zoom).
		Rotate(-c.Rotation).
		Translate(-c.X, -c.Y)
	c.inverse.m = invertAffine(c.view.m)
	return c.view.m
}

// WorldToScreen maps a world point to the screen.
func (c *Camera) WorldToScreen(wx, wy float64) (float64, float64) {
	c.matrix()
	return c.view.Transform(wx, wy)
}

// ScreenToWorld maps a screen point into the world.
func (c *Camera) ScreenToWorld(sx, sy float64) (float64, float64) {
	c.matrix()
	return c.inverse.Transform(sx, sy)
}

// VisibleBounds returns the world-space box around everything the
// viewport shows.
func (c *Camera) VisibleBounds() Rect {
	c.matrix()
	v := c.Viewport
	corners := c.inverse.TransformPoints([]Vec2{
		{v.X, v.Y},
		{v.X + v.Width, v.Y},
		{v.X + v.Width, v.Y + v.Height},
		{v.X, v.Y + v.Height},
	}, nil)

	lo, hi := corners[0], corners[0]
	for _, p := range corners[1:] {
		lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
		hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
	}
	return Rect{X: lo.X, Y: lo.Y, Width: hi.X - lo.X, Height: hi.Y - lo.Y}
}

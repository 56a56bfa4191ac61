package grove

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Props is an entity's local property bag. Fields not used by the core
// (velocity, sheet, frame, color) are consumed by components and the
// default renderer; Ext holds anything else a component needs.
type Props struct {
	ID uint32 `yaml:"id"`

	// Local transform
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Z     float64 `yaml:"z"`
	W     float64 `yaml:"w"`
	H     float64 `yaml:"h"`
	CX    float64 `yaml:"cx"`
	CY    float64 `yaml:"cy"`
	Angle float64 `yaml:"angle"` // degrees
	Scale float64 `yaml:"scale"` // uniform; 0 behaves as 1

	// Motion (MovingSprite, 2d component)
	VX float64 `yaml:"vx"`
	VY float64 `yaml:"vy"`
	AX float64 `yaml:"ax"`
	AY float64 `yaml:"ay"`

	// Collision categories
	Type          uint32 `yaml:"type"`
	CollisionMask uint32 `yaml:"collision_mask"` // 0 tests every category

	// Local polygon relative to the center. Generated from W/H when empty.
	Points []Vec2 `yaml:"points"`

	// Moved forces the next GenerateCollisionPoints to recompute.
	Moved bool `yaml:"-"`

	// Visibility
	Hidden       bool    `yaml:"hidden"`
	VisibleOnly  bool    `yaml:"visible_only"`  // step only while inside the viewport
	RenderAlways bool    `yaml:"render_always"` // render even when outside the viewport
	Opacity      float64 `yaml:"opacity"`
	Sort         bool    `yaml:"sort"` // z-sort children before rendering them

	// Appearance
	Name   string   `yaml:"name"`
	Asset  string   `yaml:"asset"`
	Sheet  string   `yaml:"sheet"`
	Sprite string   `yaml:"sprite"` // animation set name
	Frame  int      `yaml:"frame"`
	Flip   FlipMode `yaml:"flip"`
	Color  Color    `yaml:"-"`

	Ext map[string]any `yaml:"ext"`
}

// Float returns a numeric extension field, or def when absent.
func (p *Props) Float(key string, def float64) float64 {
	switch v := p.Ext[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return def
}

// Bool returns a boolean extension field, or false when absent.
func (p *Props) Bool(key string) bool {
	v, _ := p.Ext[key].(bool)
	return v
}

// SetExt stores a component-specific value.
func (p *Props) SetExt(key string, v any) {
	if p.Ext == nil {
		p.Ext = make(map[string]any)
	}
	p.Ext[key] = v
}

// CollisionState is the cached world-space geometry derived from Props and
// the entity matrix by GenerateCollisionPoints.
type CollisionState struct {
	Points []Vec2

	// World bounding box: left edge is X-CX, top edge is Y-CY.
	X, Y, CX, CY, W, H float64
	Angle, Scale       float64

	// Snapshot of the local properties the cache was built from.
	origX, origY, origScale, origAngle float64
	valid                              bool
}

// Bounds returns the world bounding box as a Rect.
func (c *CollisionState) Bounds() Rect {
	return Rect{X: c.X - c.CX, Y: c.Y - c.CY, Width: c.W, Height: c.H}
}

// GridRange is the inclusive cell range an entity occupies in a stage grid.
type GridRange struct {
	X1, Y1, X2, Y2 int
}

// Collider is implemented by collision layers: large static colliders a
// stage queries before its grid.
type Collider interface {
	Collide(obj *Entity) *Collision
}

// entityIDCounter is a plain counter (no atomic, grove is single-threaded).
var entityIDCounter uint32

func nextEntityID() uint32 {
	entityIDCounter++
	return entityIDCounter
}

// Entity is a positioned, typed game object. Behavior is attached through
// components and the optional OnStep/OnDraw callbacks rather than through
// embedding.
type Entity struct {
	Evented

	ClassName string
	P         Props
	C         *CollisionState

	// Container is the parent entity for nested transforms (non-owning).
	Container *Entity
	children  []*Entity

	// Layer marks the entity as a collision layer when set.
	Layer Collider

	// Per-entity callbacks (nil by default)
	OnStep func(e *Entity, dt float64)
	OnDraw func(e *Entity, target *ebiten.Image, op *ebiten.DrawImageOptions)

	matrix *Matrix2D
	stage  *Stage

	grid    GridRange
	gridSet bool

	components map[string]Component
	active     []string

	mark           float64
	customCenter   bool
	collisionLayer bool
	pendingRemoval bool
	destroyed      bool
}

// NewEntity creates an entity of the given class. An ID is assigned unless
// props carries one; Scale and Opacity default to 1.
func NewEntity(className string, props Props) *Entity {
	e := &Entity{ClassName: className, P: props, mark: -1}
	if e.P.ID == 0 {
		e.P.ID = nextEntityID()
	} else if e.P.ID > entityIDCounter {
		entityIDCounter = e.P.ID
	}
	if e.P.Scale == 0 {
		e.P.Scale = 1
	}
	if e.P.Opacity == 0 {
		e.P.Opacity = 1
	}
	e.matrix = NewMatrix2D()
	e.Size(false)
	e.RefreshMatrix()
	return e
}

// NewSprite creates a renderable entity typed TypeDefault|TypeActive unless
// props sets a type.
func NewSprite(props Props) *Entity {
	if props.Type == TypeNone {
		props.Type = TypeDefault | TypeActive
	}
	return NewEntity("Sprite", props)
}

// NewMovingSprite creates a sprite that integrates VX/VY with AX/AY each
// step before running OnStep.
func NewMovingSprite(props Props) *Entity {
	e := NewSprite(props)
	e.ClassName = "MovingSprite"
	e.OnStep = stepNewtonian
	return e
}

func stepNewtonian(e *Entity, dt float64) {
	p := &e.P
	p.VX += p.AX * dt
	p.VY += p.AY * dt
	p.X += p.VX * dt
	p.Y += p.VY * dt
}

// ID returns the entity's unique id.
func (e *Entity) ID() uint32 {
	return e.P.ID
}

// Stage returns the owning stage, or nil.
func (e *Entity) Stage() *Stage {
	return e.stage
}

// Matrix returns the entity's world transform. Nil once the entity has been
// removed from its stage and its matrix released.
func (e *Entity) Matrix() *Matrix2D {
	return e.matrix
}

// Grid returns the stored grid range and whether one has been computed.
func (e *Entity) Grid() (GridRange, bool) {
	return e.grid, e.gridSet
}

// Children returns the nested entities. The returned slice MUST NOT be
// mutated by the caller.
func (e *Entity) Children() []*Entity {
	return e.children
}

// IsDestroyed reports whether Destroy has run.
func (e *Entity) IsDestroyed() bool {
	return e.destroyed
}

// IsCollisionLayer reports whether the entity was registered through
// Stage.CollisionLayer.
func (e *Entity) IsCollisionLayer() bool {
	return e.collisionLayer
}

// Size resolves W/H from the entity's asset or sheet when unset (or when
// force is true) and recenters CX/CY on the middle of the box unless a
// custom center was set.
func (e *Entity) Size(force bool) {
	p := &e.P
	if force || p.W == 0 || p.H == 0 {
		if res := e.resources(); res != nil {
			if img := res.Assets.Image(p.Asset); img != nil {
				b := img.Bounds()
				p.W, p.H = float64(b.Dx()), float64(b.Dy())
			} else if sh := res.Sheet(p.Sheet); sh != nil {
				p.W, p.H = float64(sh.TileW), float64(sh.TileH)
			}
		}
	}
	if force || !e.customCenter {
		p.CX = p.W / 2
		p.CY = p.H / 2
	}
}

// SetCenter pins the center offset; later Size calls keep it unless forced.
func (e *Entity) SetCenter(cx, cy float64) {
	e.P.CX, e.P.CY = cx, cy
	e.customCenter = true
}

// Resize changes W/H, recenters, and regenerates the local polygon.
func (e *Entity) Resize(w, h float64) {
	e.P.W, e.P.H = w, h
	e.Size(false)
	GeneratePoints(e, true)
	e.P.Moved = true
}

// Set applies fn to the property bag and flags the entity as moved.
func (e *Entity) Set(fn func(p *Props)) *Entity {
	fn(&e.P)
	e.P.Moved = true
	return e
}

// Moved flags the entity so its collision points are recomputed.
func (e *Entity) Moved() {
	e.P.Moved = true
}

// Hide stops the entity from rendering.
func (e *Entity) Hide() { e.P.Hidden = true }

// Show resumes rendering.
func (e *Entity) Show() { e.P.Hidden = false }

// Center moves the entity to the middle of its container, or of the
// stage's view when top-level.
func (e *Entity) Center() {
	if e.Container != nil {
		e.P.X, e.P.Y = 0, 0
		return
	}
	if e.stage != nil {
		e.P.X = e.stage.options.W / 2
		e.P.Y = e.stage.options.H / 2
	}
}

// RefreshMatrix rebuilds the matrix: identity, parent matrix, translate,
// scale, rotate (degrees).
func (e *Entity) RefreshMatrix() {
	if e.matrix == nil {
		return
	}
	p := &e.P
	e.matrix.Identity()
	if e.Container != nil && e.Container.matrix != nil {
		e.matrix.Multiply(e.Container.matrix)
	}
	e.matrix.Translate(p.X, p.Y)
	if p.Scale != 0 {
		e.matrix.Scale(p.Scale, p.Scale)
	}
	e.matrix.RotateDeg(p.Angle)
}

// Update runs one step of entity-local logic: prestep, OnStep, step, then
// collision points and nested children.
func (e *Entity) Update(dt float64) {
	e.Trigger("prestep", dt)
	if e.OnStep != nil {
		e.OnStep(e, dt)
	}
	e.Trigger("step", dt)
	GenerateCollisionPoints(e)
	if e.stage != nil && len(e.children) > 0 {
		e.stage.updateSprites(e.children, dt, true)
	}
}

// Destroy fires "destroyed", drops the entity's outgoing bindings and
// components, and queues removal from its stage. Terminal; repeated calls
// are no-ops.
func (e *Entity) Destroy() {
	if e.destroyed {
		return
	}
	e.Trigger("destroyed", nil)
	e.Debind()
	if e.stage != nil && !e.pendingRemoval {
		e.stage.Remove(e)
	}
	e.destroyed = true
	e.delAll()
}

// isAncestor reports whether candidate is e or one of e's containers.
func isAncestor(candidate, e *Entity) bool {
	for p := e; p != nil; p = p.Container {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from e.children without clearing
// child.Container. Uses copy+nil to avoid retaining a dangling pointer.
func (e *Entity) removeChildByPtr(child *Entity) {
	for i, c := range e.children {
		if c == child {
			copy(e.children[i:], e.children[i+1:])
			e.children[len(e.children)-1] = nil
			e.children = e.children[:len(e.children)-1]
			return
		}
	}
}

// markChildrenMoved flags each direct child; deeper descendants pick the
// change up from their own lazy check.
func (e *Entity) markChildrenMoved() {
	for _, c := range e.children {
		c.Moved()
	}
}

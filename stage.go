package grove

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

var (
	// ErrDuplicateID is returned by Insert when the stage already indexes an
	// entity with the same id.
	ErrDuplicateID = errors.New("grove: duplicate entity id")
	// ErrDestroyed is returned when a destroyed entity is inserted, or an
	// entity is inserted into a destroyed stage.
	ErrDestroyed = errors.New("grove: entity destroyed")
	// ErrInStage is returned when an entity already belongs to a stage.
	ErrInStage = errors.New("grove: entity already on a stage")
	// ErrNoCollider is returned by CollisionLayer for entities without a
	// Layer collider.
	ErrNoCollider = errors.New("grove: collision layer has no collider")
)

// Default stage options.
const (
	DefaultGridSize      = 400
	DefaultMaxCollisions = 3
)

// StageOptions configures a stage. Zero fields fall back to the defaults
// (grid 400x400, view size from the engine).
type StageOptions struct {
	// W and H are the view size in pixels.
	W, H float64
	// GridW and GridH are the broad-phase cell size.
	GridW, GridH float64
	// Sort z-sorts items before rendering.
	Sort bool
	// NoSort turns off a Sort inherited from the config or the scene.
	NoSort bool
	// MaxCollisions is the default correction budget for Collide.
	MaxCollisions int
	// Assets lists entities to insert when the stage is created.
	Assets []ManifestEntry
}

func (o *StageOptions) applyDefaults() {
	if o.GridW <= 0 {
		o.GridW = DefaultGridSize
	}
	if o.GridH <= 0 {
		o.GridH = DefaultGridSize
	}
	if o.MaxCollisions <= 0 {
		o.MaxCollisions = DefaultMaxCollisions
	}
}

// CollisionEvent is forwarded to an EventStore for every hit reported by
// Stage.Collide.
type CollisionEvent struct {
	Source    uint32 // querying entity
	Target    uint32 // entity or layer hit
	Layer     bool
	NormalX   float64
	NormalY   float64
	Magnitude float64
	Separate  Vec2
}

// EventStore is the interface for optional ECS integration. When set on a
// Stage, collision hits are forwarded to it.
type EventStore interface {
	EmitCollision(event CollisionEvent)
}

// Stage owns a set of entities, their spatial grid and collision layers,
// and runs their per-frame step and render passes. Stages are created by
// Engine.StageScene or NewStage; they are not safe for concurrent use.
type Stage struct {
	Evented

	// Viewport, when set, bounds which entities are marked visible each
	// step and supplies the render view transform.
	Viewport *Camera

	scene   *Scene
	engine  *Engine
	options StageOptions
	logger  *zap.Logger
	store   EventStore

	items      []*Entity
	lists      map[string][]*Entity
	index      map[uint32]*Entity
	removeList []*Entity
	layers     []*Entity
	grid       *spatialGrid

	time      float64
	paused    bool
	hidden    bool
	destroyed bool
	debug     bool

	probe *Entity
}

// NewStage creates a stage outside of any engine. scene may be nil.
func NewStage(scene *Scene, opts StageOptions) *Stage {
	if scene != nil {
		opts = scene.mergeOptions(opts)
	}
	opts.applyDefaults()
	s := &Stage{
		scene:   scene,
		options: opts,
		logger:  zap.NewNop(),
		lists:   make(map[string][]*Entity),
		index:   make(map[uint32]*Entity),
		grid:    newSpatialGrid(),
	}
	s.probe = &Entity{ClassName: "probe", P: Props{W: 1, H: 1}}
	return s
}

// Options returns the stage's resolved options.
func (s *Stage) Options() StageOptions { return s.options }

// Scene returns the scene the stage was built from, or nil.
func (s *Stage) Scene() *Scene { return s.scene }

// Engine returns the owning engine, or nil for a standalone stage.
func (s *Stage) Engine() *Engine { return s.engine }

// Time returns the accumulated step time in seconds.
func (s *Stage) Time() float64 { return s.time }

// Items returns the stage's entities in insertion (or last render sort)
// order. The returned slice MUST NOT be mutated by the caller.
func (s *Stage) Items() []*Entity { return s.items }

// List returns the entities registered under a class name or a
// "."-prefixed component name.
func (s *Stage) List(name string) []*Entity { return s.lists[name] }

// SetLogger replaces the stage logger. nil restores the no-op logger.
func (s *Stage) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	s.logger = l
}

// SetDebugMode enables step timing logs at debug level.
func (s *Stage) SetDebugMode(enabled bool) { s.debug = enabled }

// SetEventStore sets the optional collision event sink.
func (s *Stage) SetEventStore(store EventStore) { s.store = store }

// Insert adds a top-level entity to the stage.
func (s *Stage) Insert(e *Entity) error {
	return s.InsertInto(e, nil)
}

// MustInsert is Insert that panics on error, for scene setup code.
func (s *Stage) MustInsert(e *Entity) *Entity {
	if err := s.Insert(e); err != nil {
		panic(fmt.Sprintf("grove: insert %s %d: %v", e.ClassName, e.P.ID, err))
	}
	return e
}

// InsertInto adds e to the stage as a child of container (nil for a
// top-level entity). The entity's points and collision points are
// generated, it is listed by class and component, indexed by id, notified
// with "inserted", and placed in the grid.
func (s *Stage) InsertInto(e *Entity, container *Entity) error {
	if e == nil {
		panic("grove: cannot insert nil entity")
	}
	if e.destroyed || s.destroyed {
		return ErrDestroyed
	}
	if e.stage != nil {
		return ErrInStage
	}
	if _, ok := s.index[e.P.ID]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateID, e.P.ID)
	}
	if container != nil {
		if container.stage != s {
			panic("grove: container is not on this stage")
		}
		if isAncestor(e, container) {
			panic("grove: inserting entity would create a container cycle")
		}
	}

	s.items = append(s.items, e)
	e.stage = s
	if e.matrix == nil {
		e.matrix = NewMatrix2D()
	}
	e.Container = container
	if container != nil {
		container.children = append(container.children, e)
	}
	if s.debug {
		s.debugCheckTreeDepth(e)
		if container != nil {
			s.debugCheckChildCount(container)
		}
	}
	e.gridSet = false
	e.pendingRemoval = false

	e.Size(false)
	GeneratePoints(e, false)
	GenerateCollisionPoints(e)

	if e.ClassName != "" {
		s.addToList(e.ClassName, e)
	}
	for _, name := range e.active {
		s.addToList(componentListName(name), e)
	}
	s.index[e.P.ID] = e

	s.Trigger("inserted", e)
	e.Trigger("inserted", s)

	s.regrid(e, false)
	return nil
}

// Remove takes e out of the grid immediately and queues it for removal at
// the end of the current (or next) step. Repeated calls are no-ops.
func (s *Stage) Remove(e *Entity) {
	if e.stage != s || e.pendingRemoval {
		return
	}
	s.delGrid(e)
	e.pendingRemoval = true
	s.removeList = append(s.removeList, e)
}

// forceRemove detaches e from every stage structure, destroys it, and
// fires "removed". Children are queued for removal with it.
func (s *Stage) forceRemove(e *Entity) {
	idx := -1
	for i, it := range s.items {
		if it == e {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	copy(s.items[idx:], s.items[idx+1:])
	s.items[len(s.items)-1] = nil
	s.items = s.items[:len(s.items)-1]

	if e.ClassName != "" {
		s.removeFromList(e.ClassName, e)
	}
	for _, name := range e.active {
		s.removeFromList(componentListName(name), e)
	}
	if e.Container != nil {
		e.Container.removeChildByPtr(e)
	}
	for _, child := range e.children {
		s.Remove(child)
	}

	e.Destroy()
	if s.index[e.P.ID] == e {
		delete(s.index, e.P.ID)
	}
	for i, l := range s.layers {
		if l == e {
			s.layers = append(s.layers[:i], s.layers[i+1:]...)
			break
		}
	}
	s.Trigger("removed", e)

	e.stage = nil
	if e.matrix != nil {
		e.matrix.Release()
		e.matrix = nil
	}
}

func (s *Stage) flushRemovals() {
	// Children queued during the flush are appended and handled in the
	// same pass.
	for i := 0; i < len(s.removeList); i++ {
		s.forceRemove(s.removeList[i])
		s.removeList[i] = nil
	}
	s.removeList = s.removeList[:0]
}

func (s *Stage) addToList(name string, e *Entity) {
	s.lists[name] = append(s.lists[name], e)
}

func (s *Stage) removeFromList(name string, e *Entity) {
	list := s.lists[name]
	for i, it := range list {
		if it == e {
			copy(list[i:], list[i+1:])
			list[len(list)-1] = nil
			s.lists[name] = list[:len(list)-1]
			return
		}
	}
}

// CollisionLayer registers e as a collision layer: it is consulted by
// Search before the grid and is never placed in the grid itself.
func (s *Stage) CollisionLayer(e *Entity) error {
	if e.Layer == nil {
		return ErrNoCollider
	}
	e.collisionLayer = true
	if err := s.Insert(e); err != nil {
		e.collisionLayer = false
		return err
	}
	s.layers = append(s.layers, e)
	return nil
}

// Layers returns the registered collision layers in registration order.
func (s *Stage) Layers() []*Entity { return s.layers }

// Find returns the entity with the given id, or nil.
func (s *Stage) Find(id uint32) *Entity {
	return s.index[id]
}

// Each calls fn for every item in order.
func (s *Stage) Each(fn func(e *Entity)) {
	for _, e := range s.items {
		fn(e)
	}
}

// Detect returns the most recently inserted item for which fn returns
// true, or nil.
func (s *Stage) Detect(fn func(e *Entity) bool) *Entity {
	for i := len(s.items) - 1; i >= 0; i-- {
		if fn(s.items[i]) {
			return s.items[i]
		}
	}
	return nil
}

// Pause stops Step from advancing the stage.
func (s *Stage) Pause() { s.paused = true }

// Unpause resumes stepping.
func (s *Stage) Unpause() { s.paused = false }

// IsPaused reports whether the stage is paused.
func (s *Stage) IsPaused() bool { return s.paused }

// Hide stops Render from drawing the stage.
func (s *Stage) Hide() { s.hidden = true }

// Show resumes rendering.
func (s *Stage) Show() { s.hidden = false }

// IsHidden reports whether the stage is hidden.
func (s *Stage) IsHidden() bool { return s.hidden }

// Stop hides and pauses the stage.
func (s *Stage) Stop() {
	s.Hide()
	s.Pause()
}

// Start shows and unpauses the stage.
func (s *Stage) Start() {
	s.Show()
	s.Unpause()
}

// Destroy detaches every entity, fires "destroyed" and drops the stage's
// own listeners. Terminal: a destroyed stage no longer steps, renders or
// accepts entities. Called when a stage slot is replaced or cleared.
func (s *Stage) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	for _, e := range s.items {
		e.Debind()
		s.detach(e)
	}
	clear(s.items)
	s.items = s.items[:0]
	clear(s.removeList)
	s.removeList = s.removeList[:0]
	s.layers = nil
	s.lists = make(map[string][]*Entity)
	s.index = make(map[uint32]*Entity)
	s.grid.reset()

	s.Trigger("destroyed", nil)
	s.Debind()
}

// IsDestroyed reports whether Destroy has been called.
func (s *Stage) IsDestroyed() bool { return s.destroyed }

// detach clears e's stage membership and tree links without touching the
// stage's tables.
func (s *Stage) detach(e *Entity) {
	e.stage = nil
	e.Container = nil
	e.children = nil
	e.gridSet = false
	e.pendingRemoval = false
	e.collisionLayer = false
	if e.matrix != nil {
		e.matrix.Release()
		e.matrix = nil
	}
}

// markSprites stamps every entity registered in a cell the view touches
// (and that entity's container) with the current time.
func (s *Stage) markSprites() {
	view := s.viewRect()
	x1 := int(floorDiv(view.X, s.options.GridW))
	y1 := int(floorDiv(view.Y, s.options.GridH))
	x2 := int(floorDiv(view.X+view.Width, s.options.GridW))
	y2 := int(floorDiv(view.Y+view.Height, s.options.GridH))

	for y := y1; y <= y2; y++ {
		row := s.grid.rows[y]
		if row == nil {
			continue
		}
		for x := x1; x <= x2; x++ {
			for _, ent := range row[x] {
				if e := s.index[ent.id]; e != nil {
					e.mark = s.time
					if e.Container != nil {
						e.Container.mark = s.time
					}
				}
			}
		}
	}
}

// viewRect is the world-space area considered on screen.
func (s *Stage) viewRect() Rect {
	if s.Viewport != nil {
		return s.Viewport.VisibleBounds()
	}
	return Rect{Width: s.options.W, Height: s.options.H}
}

// updateSprites steps the first len(items) entries. Top-level passes skip
// contained entities (their container steps them) and visible-only
// entities that were not marked this step.
func (s *Stage) updateSprites(items []*Entity, dt float64, isContainer bool) {
	n := len(items)
	for i := 0; i < n && !s.destroyed; i++ {
		e := items[i]
		if !isContainer && e.P.VisibleOnly && e.mark < s.time {
			continue
		}
		if isContainer || e.Container == nil {
			e.Update(dt)
			if s.destroyed {
				return
			}
			GenerateCollisionPoints(e)
			s.regrid(e, false)
		}
	}
}

// Step advances the stage by dt seconds: mark visible entities, fire
// "prestep", update entities, fire "step", flush queued removals, fire
// "poststep". Does nothing while paused or after Destroy.
func (s *Stage) Step(dt float64) {
	if s.paused || s.destroyed {
		return
	}
	var start time.Time
	if s.debug {
		start = time.Now()
	}

	s.time += dt
	s.markSprites()

	s.Trigger("prestep", dt)
	s.updateSprites(s.items, dt, false)
	if s.destroyed {
		return
	}
	if s.Viewport != nil {
		s.Viewport.update(dt)
	}
	s.Trigger("step", dt)

	removed := len(s.removeList)
	if removed > 0 {
		s.flushRemovals()
	}

	s.Trigger("poststep", dt)

	if s.debug {
		s.logger.Debug("stage step",
			zap.Duration("elapsed", time.Since(start)),
			zap.Int("items", len(s.items)),
			zap.Int("removed", removed),
			zap.Int("cells", s.grid.cellCount()),
		)
	}
}

// zKey treats an unset z as -1 so explicitly layered entities draw above
// unlayered ones.
func zKey(e *Entity) float64 {
	if e.P.Z == 0 {
		return -1
	}
	return e.P.Z
}

func sortByZ(items []*Entity) {
	sort.SliceStable(items, func(i, j int) bool {
		return zKey(items[i]) < zKey(items[j])
	})
}

// Render draws the stage onto target: optional z-sort, "prerender" and
// "beforerender", every top-level entity that is marked visible (or
// RenderAlways), then "render" and "postrender".
func (s *Stage) Render(target *ebiten.Image) {
	if s.hidden || s.destroyed {
		return
	}
	if s.options.Sort {
		sortByZ(s.items)
	}
	s.Trigger("prerender", target)
	s.Trigger("beforerender", target)

	var stats renderStats
	if s.debug {
		stats.start = time.Now()
	}
	view := s.viewGeoM()
	for _, e := range s.items {
		if s.destroyed {
			return
		}
		if e.Container == nil && (e.P.RenderAlways || e.mark >= s.time) {
			e.Render(target, view)
			stats.drawn++
		}
	}

	s.Trigger("render", target)
	s.Trigger("postrender", target)
	if s.debug {
		s.debugLogRender(stats)
	}
}

func (s *Stage) viewGeoM() ebiten.GeoM {
	if s.Viewport != nil {
		return geoM(s.Viewport.matrix())
	}
	return ebiten.GeoM{}
}

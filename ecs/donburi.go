package ecs

import (
	"github.com/phanxgames/grove"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// CollisionEventType is the Donburi event type for stage collision hits.
var CollisionEventType = events.NewEventType[grove.CollisionEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EventStore backed by a Donburi world.
// Collision hits are published to CollisionEventType and can be consumed
// with Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) grove.EventStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitCollision(event grove.CollisionEvent) {
	CollisionEventType.Publish(s.world, event)
}

// BodyData is the mirrored state of a stage entity.
type BodyData struct {
	ID     uint32
	Class  string
	Type   uint32
	X, Y   float64
	VX, VY float64
	W, H   float64
}

// Body is the component Mirror attaches to every mirrored entity.
var Body = donburi.NewComponentType[BodyData]()

// Bodies matches every mirrored entry.
var Bodies = donburi.NewQuery(filter.Contains(Body))

// Mirror reflects stage entities whose type intersects a mask into a
// Donburi world.
type Mirror struct {
	world   donburi.World
	stage   *grove.Stage
	mask    uint32
	entries map[uint32]donburi.Entity
}

// NewMirror mirrors the matching entities already on stage and follows
// later insertions and removals. Bodies are refreshed on "poststep".
// A zero mask mirrors everything.
func NewMirror(world donburi.World, stage *grove.Stage, mask uint32) *Mirror {
	if mask == 0 {
		mask = grove.TypeAll
	}
	m := &Mirror{
		world:   world,
		stage:   stage,
		mask:    mask,
		entries: make(map[uint32]donburi.Entity),
	}
	for _, e := range stage.Items() {
		m.add(e)
	}
	stage.On("inserted", func(data any) {
		if e, ok := data.(*grove.Entity); ok {
			m.add(e)
		}
	})
	stage.On("removed", func(data any) {
		if e, ok := data.(*grove.Entity); ok {
			m.remove(e.ID())
		}
	})
	stage.On("poststep", func(any) { m.Sync() })
	return m
}

// Len returns the number of mirrored entities.
func (m *Mirror) Len() int {
	return len(m.entries)
}

// Entry returns the Donburi entry mirroring id, or nil.
func (m *Mirror) Entry(id uint32) *donburi.Entry {
	ent, ok := m.entries[id]
	if !ok || !m.world.Valid(ent) {
		return nil
	}
	return m.world.Entry(ent)
}

// Sync copies the current state of every mirrored entity into its Body.
func (m *Mirror) Sync() {
	for id, ent := range m.entries {
		e := m.stage.Find(id)
		if e == nil || !m.world.Valid(ent) {
			continue
		}
		Body.SetValue(m.world.Entry(ent), bodyOf(e))
	}
}

func (m *Mirror) add(e *grove.Entity) {
	if e.P.Type&m.mask == 0 {
		return
	}
	if _, ok := m.entries[e.ID()]; ok {
		return
	}
	ent := m.world.Create(Body)
	Body.SetValue(m.world.Entry(ent), bodyOf(e))
	m.entries[e.ID()] = ent
}

func (m *Mirror) remove(id uint32) {
	ent, ok := m.entries[id]
	if !ok {
		return
	}
	delete(m.entries, id)
	if m.world.Valid(ent) {
		m.world.Remove(ent)
	}
}

func bodyOf(e *grove.Entity) BodyData {
	p := &e.P
	return BodyData{
		ID:    p.ID,
		Class: e.ClassName,
		Type:  p.Type,
		X:     p.X,
		Y:     p.Y,
		VX:    p.VX,
		VY:    p.VY,
		W:     p.W,
		H:     p.H,
	}
}

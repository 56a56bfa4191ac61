package grove

import "math"

// Gravity is the acceleration applied by the 2d component, scaled per
// entity by the "gravity" extension prop (default 1).
var Gravity = Vec2{X: 0, Y: 9.8 * 100}

// maxPhysicsStep bounds each integration sub-step so fast movers do not
// tunnel through thin colliders.
const maxPhysicsStep = 1.0 / 30

// Physics2D integrates velocity and gravity in bounded sub-steps, runs
// Stage.Collide after each one and resolves hits by moving the entity out
// by the separation vector and zeroing the velocity into the contact.
// Registered as "2d". Fires "bump.top", "bump.bottom", "bump.left" and
// "bump.right" with the collision, its Impact set to the speed along the
// bumped axis. The "skip_collide" extension prop keeps the velocity.
type Physics2D struct {
	BaseComponent
	// Collisions holds the hits resolved during the current step.
	Collisions []Collision
}

func init() {
	RegisterComponent("2d", func() Component { return &Physics2D{} })
}

// Added hooks the entity's step and hit events.
func (ph *Physics2D) Added(e *Entity) {
	ph.BaseComponent.Added(e)
	if e.P.Type == TypeNone {
		e.P.Type = TypeDefault
	}
	ph.Listen("step", func(data any) {
		dt, _ := data.(float64)
		ph.step(dt)
	})
	ph.Listen("hit", func(data any) {
		if col, ok := data.(*Collision); ok {
			ph.collision(col)
		}
	})
}

func (ph *Physics2D) collision(col *Collision) {
	e := ph.Entity()
	if col.Obj != nil && col.Obj.P.Bool("sensor") {
		col.Obj.Trigger("sensor", e)
		return
	}
	p := &e.P
	keep := p.Bool("skip_collide")
	impactX, impactY := math.Abs(p.VX), math.Abs(p.VY)
	p.X -= col.Separate.X
	p.Y -= col.Separate.Y
	p.Moved = true
	col.Impact = 0

	switch {
	case col.NormalY < -0.3:
		if !keep && p.VY > 0 {
			p.VY = 0
		}
		col.Impact = impactY
		e.Trigger("bump.bottom", col)
	case col.NormalY > 0.3:
		if !keep && p.VY < 0 {
			p.VY = 0
		}
		col.Impact = impactY
		e.Trigger("bump.top", col)
	}
	switch {
	case col.NormalX < -0.3:
		if !keep && p.VX > 0 {
			p.VX = 0
		}
		col.Impact = impactX
		e.Trigger("bump.right", col)
	case col.NormalX > 0.3:
		if !keep && p.VX < 0 {
			p.VX = 0
		}
		col.Impact = impactX
		e.Trigger("bump.left", col)
	}
	ph.Collisions = append(ph.Collisions, *col)
}

func (ph *Physics2D) step(dt float64) {
	e := ph.Entity()
	p := &e.P
	ph.Collisions = ph.Collisions[:0]
	gravity := p.Float("gravity", 1)

	for remaining := dt; remaining > 0; remaining -= maxPhysicsStep {
		sub := math.Min(maxPhysicsStep, remaining)
		p.VX += (p.AX + Gravity.X*gravity) * sub
		p.VY += (p.AY + Gravity.Y*gravity) * sub
		p.X += p.VX * sub
		p.Y += p.VY * sub
		if e.stage != nil {
			e.stage.Collide(e, CollideOptions{})
		}
	}
}

// PhysicsOf returns e's 2d component, or nil.
func PhysicsOf(e *Entity) *Physics2D {
	ph, _ := e.Component("2d").(*Physics2D)
	return ph
}

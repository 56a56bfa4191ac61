package grove

// PlatformerControls drives a 2d entity from the engine's Inputs: left and
// right walk (following slopes while landed), up or action jumps.
// Registered as "platformerControls". Tunables come from extension props
// "speed" (200) and "jump_speed" (-300).
type PlatformerControls struct {
	BaseComponent
	Direction string
	landed    float64
	jumping   bool
}

// StepControls moves an entity one tile per press in the held direction,
// snapping back if the move hits something. Registered as "stepControls".
// Tunables: "step_distance" (32) and "step_delay" (0.2).
type StepControls struct {
	BaseComponent
	stepping     bool
	wait         float64
	origX, origY float64
	destX, destY float64
	diffX, diffY float64
}

func init() {
	RegisterComponent("platformerControls", func() Component { return &PlatformerControls{Direction: "right"} })
	RegisterComponent("stepControls", func() Component { return &StepControls{} })
}

// inputsOf returns the engine inputs reachable from e, or nil.
func inputsOf(e *Entity) *Inputs {
	if g := e.resources(); g != nil {
		return g.Inputs
	}
	return nil
}

// Added hooks step and landing.
func (pc *PlatformerControls) Added(e *Entity) {
	pc.BaseComponent.Added(e)
	pc.Listen("step", func(data any) {
		dt, _ := data.(float64)
		pc.step(dt)
	})
	pc.Listen("bump.bottom", func(any) {
		pc.landed = 1.0 / 5
	})
}

// Landed reports whether the entity touched ground recently.
func (pc *PlatformerControls) Landed() bool { return pc.landed > 0 }

// slope picks the contact to walk along: the only one, or the last with
// an upward normal. Near-vertical contacts (walls) are ignored.
func (pc *PlatformerControls) slope(in *Inputs) *Collision {
	ph := PhysicsOf(pc.Entity())
	if ph == nil || len(ph.Collisions) == 0 {
		return nil
	}
	if !in.Pressed("left") && !in.Pressed("right") && pc.landed <= 0 {
		return nil
	}
	var col *Collision
	if len(ph.Collisions) == 1 {
		col = &ph.Collisions[0]
	} else {
		for i := range ph.Collisions {
			if ph.Collisions[i].NormalY < 0 {
				col = &ph.Collisions[i]
			}
		}
	}
	if col != nil && col.NormalY > -0.3 && col.NormalY < 0.3 {
		return nil
	}
	return col
}

func (pc *PlatformerControls) step(dt float64) {
	e := pc.Entity()
	p := &e.P
	in := inputsOf(e)
	if in == nil || p.Bool("ignore_controls") {
		pc.landed -= dt
		return
	}
	speed := p.Float("speed", 200)
	jumpSpeed := p.Float("jump_speed", -300)
	col := pc.slope(in)

	switch {
	case in.Pressed("left"):
		pc.Direction = "left"
		if col != nil && pc.landed > 0 {
			p.VX = speed * col.NormalY
			p.VY = -speed * col.NormalX
		} else {
			p.VX = -speed
		}
	case in.Pressed("right"):
		pc.Direction = "right"
		if col != nil && pc.landed > 0 {
			p.VX = -speed * col.NormalY
			p.VY = speed * col.NormalX
		} else {
			p.VX = speed
		}
	default:
		p.VX = 0
		if col != nil && pc.landed > 0 {
			p.VY = 0
		}
	}

	jumpHeld := in.Pressed("up") || in.Pressed("action")
	if pc.landed > 0 && jumpHeld && !pc.jumping {
		p.VY = jumpSpeed
		pc.landed = -dt
		pc.jumping = true
	} else if jumpHeld {
		e.Trigger("jump", e)
		pc.jumping = true
	}

	if pc.jumping && !jumpHeld {
		pc.jumping = false
		e.Trigger("jumped", e)
		if p.VY < jumpSpeed/3 {
			p.VY = jumpSpeed / 3
		}
	}
	pc.landed -= dt
}

// Added hooks step and hit.
func (sc *StepControls) Added(e *Entity) {
	sc.BaseComponent.Added(e)
	sc.Listen("step", func(data any) {
		dt, _ := data.(float64)
		sc.step(dt)
	})
	sc.Listen("hit", func(any) {
		if sc.stepping {
			sc.stepping = false
			e.P.X, e.P.Y = sc.origX, sc.origY
			e.P.Moved = true
		}
	})
}

func (sc *StepControls) step(dt float64) {
	e := sc.Entity()
	p := &e.P
	distance := p.Float("step_distance", 32)
	delay := p.Float("step_delay", 0.2)

	sc.wait -= dt
	// A zero delay snaps to the destination on the next frame.
	if sc.stepping && delay > 0 {
		p.X += sc.diffX * dt / delay
		p.Y += sc.diffY * dt / delay
	}
	if sc.wait > 0 {
		return
	}
	if sc.stepping {
		p.X, p.Y = sc.destX, sc.destY
	}
	sc.stepping = false
	sc.diffX, sc.diffY = 0, 0

	in := inputsOf(e)
	if in == nil {
		return
	}
	switch {
	case in.Pressed("left"):
		sc.diffX = -distance
	case in.Pressed("right"):
		sc.diffX = distance
	}
	switch {
	case in.Pressed("up"):
		sc.diffY = -distance
	case in.Pressed("down"):
		sc.diffY = distance
	}

	if sc.diffX != 0 || sc.diffY != 0 {
		sc.stepping = true
		sc.origX, sc.origY = p.X, p.Y
		sc.destX, sc.destY = p.X+sc.diffX, p.Y+sc.diffY
		sc.wait = delay
	}
}

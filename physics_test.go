package grove

import (
	"math"
	"testing"
)

func newBody(t *testing.T, props Props, components ...string) *Entity {
	t.Helper()
	e := NewSprite(props)
	if err := e.Add(components...); err != nil {
		t.Fatal(err)
	}
	return e
}

func stepN(s *Stage, n int) {
	for range n {
		s.Step(1.0 / 60)
	}
}

func TestPhysicsLandsOnTiles(t *testing.T) {
	s := NewStage(nil, StageOptions{})
	if err := s.CollisionLayer(NewTileLayer(Props{}, [][]uint32{{0}, {1}}, 32, 32)); err != nil {
		t.Fatal(err)
	}
	body := s.MustInsert(newBody(t, Props{X: 16, Y: 0, W: 16, H: 16}, "2d"))
	landed := 0
	body.On("bump.bottom", func(data any) {
		if data.(*Collision).Tile == nil {
			t.Error("tile hit should carry its cell")
		}
		landed++
	})

	stepN(s, 60)

	if landed == 0 {
		t.Fatal("bump.bottom never fired")
	}
	if math.Abs(body.P.Y-24) > 1e-6 {
		t.Errorf("resting Y = %v, want 24", body.P.Y)
	}
	if body.P.VY != 0 {
		t.Errorf("VY = %v, want 0 on the ground", body.P.VY)
	}
	if body.P.X != 16 {
		t.Errorf("X drifted to %v", body.P.X)
	}
}

func TestPhysicsGravityScale(t *testing.T) {
	s := NewStage(nil, StageOptions{})
	floaty := newBody(t, Props{W: 8, H: 8}, "2d")
	floaty.P.SetExt("gravity", 0.0)
	heavy := newBody(t, Props{X: 500, W: 8, H: 8}, "2d")
	heavy.P.SetExt("gravity", 2)
	s.MustInsert(floaty)
	s.MustInsert(heavy)

	s.Step(1.0 / 60)
	if floaty.P.VY != 0 || floaty.P.Y != 0 {
		t.Errorf("zero gravity moved: VY=%v Y=%v", floaty.P.VY, floaty.P.Y)
	}
	assertNear(t, "heavy VY", heavy.P.VY, 2*Gravity.Y/60)
}

func TestPhysicsSubSteps(t *testing.T) {
	s := NewStage(nil, StageOptions{})
	e := s.MustInsert(newBody(t, Props{W: 8, H: 8}, "2d"))
	e.P.SetExt("gravity", 0.0)
	e.P.VX = 30

	// 0.1s integrates in sub-steps of at most 1/30
	s.Step(0.1)
	if math.Abs(e.P.X-3) > 1e-9 {
		t.Errorf("X = %v, want 3", e.P.X)
	}
}

func TestPhysicsImpactAndSkipCollide(t *testing.T) {
	tests := []struct {
		name   string
		skip   bool
		wantVX float64
	}{
		{"zeroes velocity", false, 0},
		{"skip_collide keeps velocity", true, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStage(nil, StageOptions{})
			e := s.MustInsert(newBody(t, Props{W: 16, H: 16}, "2d"))
			e.P.SetExt("gravity", 0.0)
			if tt.skip {
				e.P.SetExt("skip_collide", true)
			}
			e.P.VX = 100
			s.MustInsert(NewSprite(Props{X: 20, W: 16, H: 16}))
			var impacts []float64
			e.On("bump.right", func(data any) { impacts = append(impacts, data.(*Collision).Impact) })

			stepN(s, 10)

			if len(impacts) == 0 || impacts[0] != 100 {
				t.Fatalf("impacts = %v, want first impact 100", impacts)
			}
			if e.P.VX != tt.wantVX {
				t.Errorf("VX = %v, want %v", e.P.VX, tt.wantVX)
			}
			if ph := PhysicsOf(e); tt.skip && ph.Collisions[0].Impact != 100 {
				t.Errorf("stored collision impact = %v", ph.Collisions[0].Impact)
			}
		})
	}
}

func TestPhysicsBumpRight(t *testing.T) {
	s := NewStage(nil, StageOptions{})
	e := s.MustInsert(newBody(t, Props{W: 16, H: 16}, "2d"))
	e.P.SetExt("gravity", 0.0)
	e.P.VX = 100
	wall := s.MustInsert(NewSprite(Props{X: 20, W: 16, H: 16}))
	bumps := 0
	e.On("bump.right", func(any) { bumps++ })
	var mirrored *Collision
	wall.On("hit", func(data any) { mirrored = data.(*Collision) })

	stepN(s, 10)

	if bumps == 0 {
		t.Fatal("bump.right never fired")
	}
	if e.P.VX != 0 {
		t.Errorf("VX = %v, want 0 after hitting the wall", e.P.VX)
	}
	if math.Abs(e.P.X-4) > 1e-6 {
		t.Errorf("X = %v, want 4 (flush against the wall)", e.P.X)
	}
	if mirrored == nil || mirrored.Obj != e || mirrored.NormalX != 1 {
		t.Errorf("wall hit = %+v", mirrored)
	}
	if wall.P.X != 20 {
		t.Error("static wall moved")
	}
}

func TestPhysicsSensor(t *testing.T) {
	s := NewStage(nil, StageOptions{})
	e := s.MustInsert(newBody(t, Props{W: 16, H: 16}, "2d"))
	e.P.SetExt("gravity", 0.0)
	sensor := NewSprite(Props{X: 4, Y: 4, W: 16, H: 16})
	sensor.P.SetExt("sensor", true)
	s.MustInsert(sensor)
	var who *Entity
	sensor.On("sensor", func(data any) { who = data.(*Entity) })

	s.Step(1.0 / 60)

	if who != e {
		t.Errorf("sensor event carried %v, want the body", who)
	}
	if e.P.X != 0 || e.P.Y != 0 {
		t.Errorf("sensor pushed the body to (%v, %v)", e.P.X, e.P.Y)
	}
	if n := len(PhysicsOf(e).Collisions); n != 0 {
		t.Errorf("sensor recorded %d collisions", n)
	}
}

func TestPhysicsOfMissing(t *testing.T) {
	if PhysicsOf(NewSprite(Props{})) != nil {
		t.Error("entity without 2d returned a component")
	}
}

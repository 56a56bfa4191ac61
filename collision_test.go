package grove

import (
	"math"
	"testing"
)

func placed(x, y, w, h float64) *Entity {
	e := NewEntity("Box", Props{X: x, Y: y, W: w, H: h})
	GeneratePoints(e, false)
	GenerateCollisionPoints(e)
	return e
}

func TestSATOverlappingBoxes(t *testing.T) {
	a := placed(0, 0, 32, 32)
	b := placed(16, 16, 32, 32)
	col := SAT(a, b)
	if col == nil {
		t.Fatal("expected a collision")
	}
	assertNear(t, "Magnitude", col.Magnitude, 16)
	assertNear(t, "Distance", col.Distance, -16)
	assertNear(t, "NormalX", col.NormalX, -1)
	assertNear(t, "NormalY", col.NormalY, 0)
	assertNear(t, "Separate.X", col.Separate.X, 16)
	assertNear(t, "Separate.Y", col.Separate.Y, 0)

	// applying the correction separates the pair
	a.P.X -= col.Separate.X
	a.P.Y -= col.Separate.Y
	GenerateCollisionPoints(a)
	if SAT(a, b) != nil {
		t.Error("still colliding after applying Separate")
	}
}

func TestSATDisjoint(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
	}{
		{"right", 100, 0},
		{"below", 0, 100},
		{"diagonal", 40, 40},
		{"far", -5000, 3000},
	}
	a := placed(0, 0, 32, 32)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if col := SAT(a, placed(tt.x, tt.y, 32, 32)); col != nil {
				t.Errorf("disjoint boxes collided: %+v", col)
			}
		})
	}
}

func TestSATTouchingIsNotACollision(t *testing.T) {
	a := placed(0, 0, 32, 32)
	b := placed(32, 0, 32, 32)
	if col := SAT(a, b); col != nil {
		t.Errorf("edge contact reported as collision: %+v", col)
	}
}

func TestSATSymmetricMagnitude(t *testing.T) {
	a := placed(0, 0, 40, 20)
	b := placed(25, 5, 20, 20)
	ab := SAT(a, b)
	ba := SAT(b, a)
	if ab == nil || ba == nil {
		t.Fatal("expected collisions both ways")
	}
	assertNear(t, "magnitude", ab.Magnitude, ba.Magnitude)
	assertNear(t, "normal x", ab.NormalX, -ba.NormalX)
}

func TestSATLocalPointsUseOffset(t *testing.T) {
	// Entities that never had collision points generated are tested in
	// local space with their positions as offsets.
	a := NewEntity("A", Props{X: 0, Y: 0, W: 32, H: 32})
	b := NewEntity("B", Props{X: 16, Y: 16, W: 32, H: 32})
	col := SAT(a, b)
	if col == nil {
		t.Fatal("expected a collision")
	}
	assertNear(t, "Magnitude", col.Magnitude, 16)

	far := NewEntity("C", Props{X: 500, Y: 0, W: 32, H: 32})
	if SAT(a, far) != nil {
		t.Error("distant local entities collided")
	}
}

func TestSATMixedWorldAndLocal(t *testing.T) {
	a := placed(0, 0, 32, 32)
	b := NewEntity("B", Props{X: 16, Y: 16, W: 32, H: 32})
	col := SAT(a, b)
	if col == nil {
		t.Fatal("expected a collision")
	}
	assertNear(t, "Magnitude", col.Magnitude, 16)
}

func TestSATRotatedPolygon(t *testing.T) {
	a := placed(0, 0, 20, 20)
	diamond := NewEntity("D", Props{X: 24, Y: 0, W: 20, H: 20, Angle: 45})
	GeneratePoints(diamond, false)
	GenerateCollisionPoints(diamond)
	col := SAT(a, diamond)
	if col == nil {
		t.Fatal("expected the diamond tip to overlap")
	}
	// tip reaches 24 - 10*sqrt2 ≈ 9.86, box edge at 10
	want := 10 - (24 - 10*math.Sqrt2)
	if math.Abs(col.Magnitude-want) > 1e-6 {
		t.Errorf("Magnitude = %v, want %v", col.Magnitude, want)
	}
}

func TestOverlap(t *testing.T) {
	a := placed(0, 0, 10, 10)
	if !Overlap(a, placed(10, 0, 10, 10)) {
		t.Error("touching boxes should overlap")
	}
	if Overlap(a, placed(11, 0, 10, 10)) {
		t.Error("separated boxes should not overlap")
	}
}

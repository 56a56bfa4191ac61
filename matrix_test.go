package grove

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want [6]float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

func assertPoint(t *testing.T, name string, gotX, gotY, wantX, wantY float64) {
	t.Helper()
	if math.Abs(gotX-wantX) > epsilon || math.Abs(gotY-wantY) > epsilon {
		t.Errorf("%s = (%v, %v), want (%v, %v)", name, gotX, gotY, wantX, wantY)
	}
}

// --- composition ---

func TestMatrixIdentity(t *testing.T) {
	m := NewMatrix2D()
	assertMatrix(t, "identity", m.Values(), identityTransform)
	x, y := m.Transform(3, 4)
	assertPoint(t, "identity transform", x, y, 3, 4)
}

func TestMatrixTranslate(t *testing.T) {
	m := NewMatrix2D().Translate(10, 20)
	assertMatrix(t, "translate", m.Values(), [6]float64{1, 0, 0, 1, 10, 20})
}

func TestMatrixScale(t *testing.T) {
	m := NewMatrix2D().Scale(2, 3)
	assertMatrix(t, "scale", m.Values(), [6]float64{2, 0, 0, 3, 0, 0})
}

func TestMatrixRotate90(t *testing.T) {
	m := NewMatrix2D().RotateDeg(90)
	// cos(90)=0, sin(90)=1 → a=0, b=1, c=-1, d=0
	assertMatrix(t, "rot90", m.Values(), [6]float64{0, 1, -1, 0, 0, 0})
}

func TestMatrixRotateZeroIsNoop(t *testing.T) {
	m := NewMatrix2D().Translate(5, 5)
	before := m.Values()
	m.Rotate(0).RotateDeg(0)
	assertMatrix(t, "rot0", m.Values(), before)
}

// The operation composed last acts first on points: rotating after a
// translation spins around the translated origin.
func TestMatrixTranslateThenRotate(t *testing.T) {
	m := NewMatrix2D().Translate(10, 0).RotateDeg(90)

	x, y := m.Transform(0, 0)
	assertPoint(t, "origin", x, y, 10, 0)

	x, y = m.Transform(1, 0)
	assertPoint(t, "unit x", x, y, 10, 1)

	assertNear(t, "TransformX", m.TransformX(0, 1), 9)
	assertNear(t, "TransformY", m.TransformY(0, 1), 0)
}

func TestMatrixScaleThenRotate(t *testing.T) {
	m := NewMatrix2D().Translate(50, 100).Scale(2, 2).RotateDeg(90)
	assertMatrix(t, "combined", m.Values(), [6]float64{0, 2, -2, 0, 50, 100})
}

func TestMatrixMultiply(t *testing.T) {
	parent := NewMatrix2D().Translate(100, 0)
	child := NewMatrix2D().Clone(parent).Translate(10, 0)
	assertMatrix(t, "chained", child.Values(), [6]float64{1, 0, 0, 1, 110, 0})

	m := NewMatrix2D().Multiply(parent).Multiply(NewMatrix2D().Scale(2, 2))
	x, y := m.Transform(1, 1)
	assertPoint(t, "multiply", x, y, 102, 2)
}

func TestMatrixTransformVecAliases(t *testing.T) {
	m := NewMatrix2D().Translate(1, 2)
	v := Vec2{3, 4}
	m.TransformVec(v, &v)
	assertPoint(t, "aliased", v.X, v.Y, 4, 6)
}

func TestMatrixTransformPointsReusesDst(t *testing.T) {
	m := NewMatrix2D().Translate(10, 10)
	src := []Vec2{{0, 0}, {1, 1}, {-1, 2}}
	dst := make([]Vec2, 0, 8)
	out := m.TransformPoints(src, dst)
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	if &out[0] != &dst[:1][0] {
		t.Error("TransformPoints allocated despite enough capacity")
	}
	assertPoint(t, "pt2", out[2].X, out[2].Y, 9, 12)

	short := m.TransformPoints(src[:1], out)
	if len(short) != 1 {
		t.Errorf("len = %d, want 1", len(short))
	}
}

func TestMatrixPoolReuse(t *testing.T) {
	m := NewMatrix2D().Translate(5, 5).Scale(3, 3)
	m.Release()
	got := NewMatrix2D()
	assertMatrix(t, "recycled", got.Values(), identityTransform)
}

// --- multiplyAffine / invertAffine ---

func TestMultiplyAffineIdentity(t *testing.T) {
	id := identityTransform
	m := [6]float64{2, 1, 3, 4, 5, 6}
	assertMatrix(t, "id*m", multiplyAffine(id, m), m)
	assertMatrix(t, "m*id", multiplyAffine(m, id), m)
}

func TestMultiplyAffineTranslations(t *testing.T) {
	a := [6]float64{1, 0, 0, 1, 10, 20}
	b := [6]float64{1, 0, 0, 1, 5, 3}
	got := multiplyAffine(a, b)
	assertMatrix(t, "translations", got, [6]float64{1, 0, 0, 1, 15, 23})
}

func TestInvertAffine(t *testing.T) {
	m := [6]float64{2, 0, 0, 3, 10, 20}
	inv := invertAffine(m)
	assertMatrix(t, "m*inv=id", multiplyAffine(m, inv), identityTransform)
}

func TestInvertAffineComplex(t *testing.T) {
	m := NewMatrix2D().Translate(7, -3).Scale(2, 1).Rotate(math.Pi / 3).Values()
	inv := invertAffine(m)
	assertMatrix(t, "m*inv=id", multiplyAffine(m, inv), identityTransform)
}

func TestInvertAffineSingular(t *testing.T) {
	inv := invertAffine([6]float64{0, 0, 0, 0, 5, 5})
	assertMatrix(t, "singular", inv, identityTransform)
}

func TestGeoMMatchesMatrix(t *testing.T) {
	m := NewMatrix2D().Translate(10, 0).RotateDeg(90).Scale(2, 2)
	g := m.GeoM()
	gx, gy := g.Apply(3, 4)
	mx, my := m.Transform(3, 4)
	assertPoint(t, "GeoM.Apply", gx, gy, mx, my)
}

package grove

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Matrix2D is a 2D affine transform stored as six coefficients.
//
//	Layout: [a, b, c, d, e, f]
//	| a  c  e |
//	| b  d  f |
//	| 0  0  1 |
//
// All composing operations right-multiply: m.Translate(tx, ty) leaves
// m = m * T, so the operation applied last acts first on points.
type Matrix2D struct {
	m [6]float64
}

// matrixPool is a free list of released matrices (no locking, grove is
// single-threaded).
var matrixPool []*Matrix2D

// NewMatrix2D returns an identity matrix, reusing a released one if any.
func NewMatrix2D() *Matrix2D {
	if n := len(matrixPool); n > 0 {
		mx := matrixPool[n-1]
		matrixPool[n-1] = nil
		matrixPool = matrixPool[:n-1]
		return mx.Identity()
	}
	return &Matrix2D{m: [6]float64{1, 0, 0, 1, 0, 0}}
}

// Release returns the matrix to the shared pool. The matrix must not be
// used afterwards.
func (mx *Matrix2D) Release() {
	matrixPool = append(matrixPool, mx)
}

// Values returns the six coefficients [a, b, c, d, e, f].
func (mx *Matrix2D) Values() [6]float64 {
	return mx.m
}

// Identity resets the matrix to the identity transform.
func (mx *Matrix2D) Identity() *Matrix2D {
	mx.m = [6]float64{1, 0, 0, 1, 0, 0}
	return mx
}

// Clone copies other's coefficients into mx.
func (mx *Matrix2D) Clone(other *Matrix2D) *Matrix2D {
	mx.m = other.m
	return mx
}

// Multiply composes mx = mx * other.
func (mx *Matrix2D) Multiply(other *Matrix2D) *Matrix2D {
	mx.m = multiplyAffine(mx.m, other.m)
	return mx
}

// Rotate composes a rotation of the given radians.
func (mx *Matrix2D) Rotate(radians float64) *Matrix2D {
	if radians == 0 {
		return mx
	}
	sin, cos := math.Sincos(radians)
	m := &mx.m
	a := m[0]*cos + m[2]*sin
	b := m[1]*cos + m[3]*sin
	c := m[2]*cos - m[0]*sin
	d := m[3]*cos - m[1]*sin
	m[0], m[1], m[2], m[3] = a, b, c, d
	return mx
}

// RotateDeg composes a rotation of the given degrees.
func (mx *Matrix2D) RotateDeg(degrees float64) *Matrix2D {
	if degrees == 0 {
		return mx
	}
	return mx.Rotate(math.Pi * degrees / 180)
}

// Scale composes a scale by (sx, sy).
func (mx *Matrix2D) Scale(sx, sy float64) *Matrix2D {
	m := &mx.m
	m[0] *= sx
	m[1] *= sx
	m[2] *= sy
	m[3] *= sy
	return mx
}

// Translate composes a translation by (tx, ty).
func (mx *Matrix2D) Translate(tx, ty float64) *Matrix2D {
	m := &mx.m
	m[4] += m[0]*tx + m[2]*ty
	m[5] += m[1]*tx + m[3]*ty
	return mx
}

// Transform applies the matrix to the point (x, y).
func (mx *Matrix2D) Transform(x, y float64) (float64, float64) {
	return transformPoint(mx.m, x, y)
}

// TransformX returns only the transformed x coordinate.
func (mx *Matrix2D) TransformX(x, y float64) float64 {
	return mx.m[0]*x + mx.m[2]*y + mx.m[4]
}

// TransformY returns only the transformed y coordinate.
func (mx *Matrix2D) TransformY(x, y float64) float64 {
	return mx.m[1]*x + mx.m[3]*y + mx.m[5]
}

// TransformVec writes the transform of in to out and returns out.
// in and out may alias.
func (mx *Matrix2D) TransformVec(in Vec2, out *Vec2) *Vec2 {
	out.X, out.Y = transformPoint(mx.m, in.X, in.Y)
	return out
}

// TransformPoints transforms every point of src into dst, growing dst as
// needed, and returns it.
func (mx *Matrix2D) TransformPoints(src, dst []Vec2) []Vec2 {
	if cap(dst) < len(src) {
		dst = make([]Vec2, len(src))
	}
	dst = dst[:len(src)]
	for i, p := range src {
		dst[i].X, dst[i].Y = transformPoint(mx.m, p.X, p.Y)
	}
	return dst
}

// GeoM converts the matrix to an ebiten.GeoM for drawing.
func (mx *Matrix2D) GeoM() ebiten.GeoM {
	return geoM(mx.m)
}

func geoM(m [6]float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(0, 1, m[2])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 0, m[1])
	g.SetElement(1, 1, m[3])
	g.SetElement(1, 2, m[5])
	return g
}

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// multiplyAffine multiplies two 2D affine matrices: result = p * c.
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

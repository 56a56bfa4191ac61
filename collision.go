package grove

import "math"

// Collision describes a narrow-phase hit. Separate is the vector the
// querying entity subtracts from its position to stop overlapping.
type Collision struct {
	Distance  float64 // signed penetration, never positive
	Magnitude float64 // |Distance|; 0 is not a collision
	NormalX   float64
	NormalY   float64
	Separate  Vec2

	// Obj is the other party: the entity hit, or the collision layer.
	Obj *Entity

	// Tile is set by tile layers to the cell that was hit.
	Tile *TileHit

	// Impact is the speed into the contact, set by the 2d component when
	// it resolves the hit.
	Impact float64
}

// polygon returns the points SAT projects for e and whether they are
// already in world space.
func polygon(e *Entity) ([]Vec2, bool) {
	if e.C != nil {
		return e.C.Points, true
	}
	return e.P.Points, false
}

func edgeNormal(points []Vec2, i int) (nx, ny float64) {
	pt1 := points[i]
	pt2 := points[0]
	if i+1 < len(points) {
		pt2 = points[i+1]
	}
	nx = -(pt2.Y - pt1.Y)
	ny = pt2.X - pt1.X
	if d := math.Sqrt(nx*nx + ny*ny); d > 0 {
		nx /= d
		ny /= d
	}
	return nx, ny
}

func project(points []Vec2, nx, ny float64) (lo, hi float64) {
	lo = nx*points[0].X + ny*points[0].Y
	hi = lo
	for _, pt := range points[1:] {
		d := nx*pt.X + ny*pt.Y
		if d < lo {
			lo = d
		}
		if d > hi {
			hi = d
		}
	}
	return lo, hi
}

// collideEdges tests o2 against every edge normal of o1. Entities without
// cached world points contribute their position as a projection offset.
// flip negates the penetration so the reverse pass reports it from o2's
// side.
func collideEdges(o1, o2 *Entity, flip bool) (Collision, bool) {
	p1, world1 := polygon(o1)
	p2, world2 := polygon(o2)
	var res Collision
	if len(p1) == 0 || len(p2) == 0 {
		return res, false
	}

	var offX, offY float64
	if !world1 {
		offX += o1.P.X
		offY += o1.P.Y
	}
	if !world2 {
		offX -= o2.P.X
		offY -= o2.P.Y
	}

	shortest := math.Inf(1)
	collided := false
	for i := range p1 {
		nx, ny := edgeNormal(p1, i)
		min1, max1 := project(p1, nx, ny)
		min2, max2 := project(p2, nx, ny)

		off := nx*offX + ny*offY
		min1 += off
		max1 += off

		if min1-max2 > 0 || min2-max1 > 0 {
			return res, false
		}

		minDist := -(max2 - min1)
		if flip {
			minDist = -minDist
		}
		if abs := math.Abs(minDist); abs < shortest {
			res.Distance = minDist
			res.Magnitude = abs
			res.NormalX = nx
			res.NormalY = ny
			if res.Distance > 0 {
				res.Distance = -res.Distance
				res.NormalX = -res.NormalX
				res.NormalY = -res.NormalY
			}
			collided = true
			shortest = abs
		}
	}
	return res, collided
}

// SAT runs the separating-axis test between two convex polygons, testing
// the edge normals of both. It returns nil when they are disjoint or only
// touching. Entities without local points get a rectangle generated from
// their size first.
func SAT(a, b *Entity) *Collision {
	if len(a.P.Points) == 0 {
		GeneratePoints(a, false)
	}
	if len(b.P.Points) == 0 {
		GeneratePoints(b, false)
	}

	r1, ok := collideEdges(a, b, false)
	if !ok {
		return nil
	}
	r2, ok := collideEdges(b, a, true)
	if !ok {
		return nil
	}

	res := r1
	if r2.Magnitude < r1.Magnitude {
		res = r2
	}
	if res.Magnitude == 0 {
		return nil
	}
	res.Separate = Vec2{res.Distance * res.NormalX, res.Distance * res.NormalY}
	return &res
}

// bounds returns the box used for broad-phase tests: the cached world box
// when present, else the local properties.
func bounds(e *Entity) Rect {
	if e.C != nil {
		return e.C.Bounds()
	}
	return Rect{X: e.P.X - e.P.CX, Y: e.P.Y - e.P.CY, Width: e.P.W, Height: e.P.H}
}

// Overlap reports whether the bounding boxes of a and b intersect. Boxes
// that share only an edge count as overlapping.
func Overlap(a, b *Entity) bool {
	return bounds(a).Intersects(bounds(b))
}

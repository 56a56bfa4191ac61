package grove

import "math"

// GeneratePoints fills e.P.Points with a rectangle centered on the origin
// (TL, TR, BR, BL) sized W x H. Existing points are kept unless force.
func GeneratePoints(e *Entity, force bool) {
	p := &e.P
	if len(p.Points) > 0 && !force {
		return
	}
	hw, hh := p.W/2, p.H/2
	p.Points = append(p.Points[:0],
		Vec2{-hw, -hh},
		Vec2{hw, -hh},
		Vec2{hw, hh},
		Vec2{-hw, hh},
	)
}

// GenerateCollisionPoints updates e.C (world polygon, bounding box, angle,
// scale) from the entity's properties, its matrix, and its container's
// state. Recomputation only happens when position, scale or angle changed
// since the last run or when Props.Moved is set; afterward Moved is cleared
// and every direct child is flagged.
func GenerateCollisionPoints(e *Entity) {
	if e.matrix == nil {
		return
	}
	p := &e.P
	if e.C == nil {
		e.C = &CollisionState{}
	}
	c := e.C
	if c.valid && !p.Moved &&
		c.origX == p.X && c.origY == p.Y &&
		c.origScale == p.Scale && c.origAngle == p.Angle {
		return
	}
	c.origX, c.origY = p.X, p.Y
	c.origScale, c.origAngle = p.Scale, p.Angle
	c.valid = true

	e.RefreshMatrix()

	if len(c.Points) != len(p.Points) {
		c.Points = make([]Vec2, len(p.Points))
	}

	if e.Container == nil && (p.Scale == 0 || p.Scale == 1) && p.Angle == 0 {
		for i, pt := range p.Points {
			c.Points[i] = Vec2{pt.X + p.X, pt.Y + p.Y}
		}
		c.X, c.Y = p.X, p.Y
		c.CX, c.CY = p.CX, p.CY
		c.W, c.H = p.W, p.H
		c.Angle = p.Angle
		c.Scale = p.Scale
	} else {
		generateTransformedPoints(e)
	}

	p.Moved = false
	e.markChildrenMoved()
}

func generateTransformedPoints(e *Entity) {
	p := &e.P
	c := e.C

	scale := p.Scale
	if scale == 0 {
		scale = 1
	}
	c.Angle = p.Angle
	c.Scale = scale
	if cont := e.Container; cont != nil && cont.matrix != nil {
		c.X, c.Y = cont.matrix.Transform(p.X, p.Y)
		if cont.C != nil {
			c.Angle += cont.C.Angle
			if cont.C.Scale != 0 {
				c.Scale *= cont.C.Scale
			}
		}
	} else {
		c.X, c.Y = p.X, p.Y
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	e.matrix.TransformPoints(p.Points, c.Points)
	for _, pt := range c.Points {
		minX = math.Min(minX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxX = math.Max(maxX, pt.X)
		maxY = math.Max(maxY, pt.Y)
	}
	if len(c.Points) == 0 {
		minX, minY, maxX, maxY = c.X, c.Y, c.X, c.Y
	}
	if minX == maxX {
		maxX++
	}
	if minY == maxY {
		maxY++
	}
	c.CX = c.X - minX
	c.CY = c.Y - minY
	c.W = maxX - minX
	c.H = maxY - minY
}

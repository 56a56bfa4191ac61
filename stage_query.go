package grove

// CollideOptions tunes Stage.Collide.
type CollideOptions struct {
	// CollisionMask limits hits to these categories. 0 uses the entity's
	// own CollisionMask, and TypeAll when that is 0 too.
	CollisionMask uint32
	// MaxCol bounds the correction iterations per phase (layers, then
	// grid). 0 uses the stage's MaxCollisions.
	MaxCol int
	// SkipEvents suppresses layer hit events and the mirrored event on
	// the other entity of a grid hit.
	SkipEvents bool
}

func resolveMask(e *Entity, mask uint32) uint32 {
	if mask != 0 {
		return mask
	}
	if e.P.CollisionMask != 0 {
		return e.P.CollisionMask
	}
	return TypeAll
}

// collideLayers asks each layer whose type intersects mask to test obj and
// returns the first hit.
func (s *Stage) collideLayers(obj *Entity, mask uint32) *Collision {
	for _, layer := range s.layers {
		if layer.P.Type&mask == 0 || layer == obj {
			continue
		}
		if col := layer.Layer.Collide(obj); col != nil {
			col.Obj = layer
			return col
		}
	}
	return nil
}

// gridTest walks obj's cell range and returns the first SAT hit against a
// distinct, bounding-box-overlapping entity whose type intersects mask.
func (s *Stage) gridTest(obj *Entity, mask uint32) *Collision {
	r := obj.grid
	for y := r.Y1; y <= r.Y2; y++ {
		row := s.grid.rows[y]
		if row == nil {
			continue
		}
		for x := r.X1; x <= r.X2; x++ {
			for _, ent := range row[x] {
				if ent.typ&mask == 0 {
					continue
				}
				obj2 := s.index[ent.id]
				if obj2 == nil || obj2 == obj || !Overlap(obj, obj2) {
					continue
				}
				if col := SAT(obj, obj2); col != nil {
					col.Obj = obj2
					return col
				}
			}
		}
	}
	return nil
}

// Search returns the first collision between obj and this stage's
// collision layers, then its grid neighbors. Entities from other stages
// (or none) are given a grid range without being registered. Returns nil
// when nothing is hit.
func (s *Stage) Search(obj *Entity, mask uint32) *Collision {
	if !obj.gridSet {
		s.regrid(obj, obj.stage != s)
	}
	mask = resolveMask(obj, mask)
	if col := s.collideLayers(obj, mask); col != nil {
		return col
	}
	return s.gridTest(obj, mask)
}

// Collide resolves obj's contacts: up to MaxCol layer hits, then up to
// MaxCol grid hits. Each hit fires "hit" plus "hit.collision" (layers) or
// "hit.sprite" (entities) on obj, whose listeners are expected to apply
// the separation; obj's collision points and grid cells are refreshed
// after every hit. The other entity of a grid hit receives a mirrored copy
// with the normal negated and no separation. Returns the last grid hit,
// else the last layer hit, else nil.
func (s *Stage) Collide(obj *Entity, opts CollideOptions) *Collision {
	mask := resolveMask(obj, opts.CollisionMask)
	maxCol := opts.MaxCol
	if maxCol <= 0 {
		maxCol = s.options.MaxCollisions
	}

	GenerateCollisionPoints(obj)
	s.regrid(obj, false)

	var col, col2 *Collision
	for n := maxCol; n > 0; n-- {
		hit := s.collideLayers(obj, mask)
		if hit == nil {
			break
		}
		col = hit
		if !opts.SkipEvents {
			obj.Trigger("hit", col)
			obj.Trigger("hit.collision", col)
		}
		s.emit(obj, col, true)
		GenerateCollisionPoints(obj)
		s.regrid(obj, false)
	}

	for n := maxCol; n > 0; n-- {
		hit := s.gridTest(obj, mask)
		if hit == nil {
			break
		}
		col2 = hit
		obj.Trigger("hit", col2)
		obj.Trigger("hit.sprite", col2)
		if !opts.SkipEvents {
			mirror := &Collision{
				NormalX: -col2.NormalX,
				NormalY: -col2.NormalY,
				Obj:     obj,
			}
			col2.Obj.Trigger("hit", mirror)
			col2.Obj.Trigger("hit.sprite", mirror)
		}
		s.emit(obj, col2, false)
		GenerateCollisionPoints(obj)
		s.regrid(obj, false)
	}

	if col2 != nil {
		return col2
	}
	return col
}

func (s *Stage) emit(obj *Entity, col *Collision, layer bool) {
	if s.store == nil {
		return
	}
	s.store.EmitCollision(CollisionEvent{
		Source:    obj.P.ID,
		Target:    col.Obj.P.ID,
		Layer:     layer,
		NormalX:   col.NormalX,
		NormalY:   col.NormalY,
		Magnitude: col.Magnitude,
		Separate:  col.Separate,
	})
}

// Locate returns the first entity (or collision layer) whose shape covers
// the point (x, y), or nil. mask 0 matches every category.
func (s *Stage) Locate(x, y float64, mask uint32) *Entity {
	p := s.probe
	p.P.X, p.P.Y = x, y
	if len(p.P.Points) == 0 {
		GeneratePoints(p, false)
	}
	s.regrid(p, true)
	if mask == 0 {
		mask = TypeAll
	}
	col := s.collideLayers(p, mask)
	if col == nil {
		col = s.gridTest(p, mask)
	}
	if col == nil {
		return nil
	}
	return col.Obj
}

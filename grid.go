package grove

import (
	"math"
	"sort"
)

// gridEntry records an entity's id and the type it had when it entered
// the cell.
type gridEntry struct {
	id  uint32
	typ uint32
}

// spatialGrid is a sparse row -> column -> cell map. Cells keep their
// entries sorted by id so candidate order does not depend on insertion
// history; empty cells and rows are pruned.
type spatialGrid struct {
	rows map[int]map[int][]gridEntry
}

func newSpatialGrid() *spatialGrid {
	return &spatialGrid{rows: make(map[int]map[int][]gridEntry)}
}

func (g *spatialGrid) cell(x, y int) []gridEntry {
	row := g.rows[y]
	if row == nil {
		return nil
	}
	return row[x]
}

func (g *spatialGrid) add(r GridRange, id, typ uint32) {
	for y := r.Y1; y <= r.Y2; y++ {
		row := g.rows[y]
		if row == nil {
			row = make(map[int][]gridEntry)
			g.rows[y] = row
		}
		for x := r.X1; x <= r.X2; x++ {
			cell := row[x]
			i := sort.Search(len(cell), func(i int) bool { return cell[i].id >= id })
			if i < len(cell) && cell[i].id == id {
				cell[i].typ = typ
				continue
			}
			cell = append(cell, gridEntry{})
			copy(cell[i+1:], cell[i:])
			cell[i] = gridEntry{id: id, typ: typ}
			row[x] = cell
		}
	}
}

func (g *spatialGrid) del(r GridRange, id uint32) {
	for y := r.Y1; y <= r.Y2; y++ {
		row := g.rows[y]
		if row == nil {
			continue
		}
		for x := r.X1; x <= r.X2; x++ {
			cell := row[x]
			i := sort.Search(len(cell), func(i int) bool { return cell[i].id >= id })
			if i == len(cell) || cell[i].id != id {
				continue
			}
			cell = append(cell[:i], cell[i+1:]...)
			if len(cell) == 0 {
				delete(row, x)
			} else {
				row[x] = cell
			}
		}
		if len(row) == 0 {
			delete(g.rows, y)
		}
	}
}

// contains reports whether id is registered in cell (x, y).
func (g *spatialGrid) contains(x, y int, id uint32) bool {
	cell := g.cell(x, y)
	i := sort.Search(len(cell), func(i int) bool { return cell[i].id >= id })
	return i < len(cell) && cell[i].id == id
}

// cellCount returns the number of non-empty cells.
func (g *spatialGrid) cellCount() int {
	n := 0
	for _, row := range g.rows {
		n += len(row)
	}
	return n
}

func (g *spatialGrid) reset() {
	clear(g.rows)
}

// cellRange maps a bounding box to the inclusive cell range covering it.
// The cached world box is used when present.
func cellRange(e *Entity, gridW, gridH float64) GridRange {
	var x, y, cx, cy, w, h float64
	if c := e.C; c != nil {
		x, y, cx, cy, w, h = c.X, c.Y, c.CX, c.CY, c.W, c.H
	} else {
		p := &e.P
		x, y, cx, cy, w, h = p.X, p.Y, p.CX, p.CY, p.W, p.H
	}
	return GridRange{
		X1: int(floorDiv(x-cx, gridW)),
		Y1: int(floorDiv(y-cy, gridH)),
		X2: int(floorDiv(x-cx+w, gridW)),
		Y2: int(floorDiv(y-cy+h, gridH)),
	}
}

// regrid moves e to the cells covering its current bounds when they differ
// from the stored range. With skipAdd the range is stored but the entity is
// not registered (used for probes and foreign entities). Collision layers
// and entities awaiting removal are never gridded.
func (s *Stage) regrid(e *Entity, skipAdd bool) {
	if e.collisionLayer || e.pendingRemoval {
		return
	}
	r := cellRange(e, s.options.GridW, s.options.GridH)
	if e.gridSet && r == e.grid {
		return
	}
	if e.gridSet {
		s.delGrid(e)
	}
	e.grid = r
	e.gridSet = true
	if !skipAdd {
		s.grid.add(r, e.P.ID, e.P.Type)
	}
}

func (s *Stage) delGrid(e *Entity) {
	if !e.gridSet {
		return
	}
	s.grid.del(e.grid, e.P.ID)
}

func floorDiv(v, size float64) float64 {
	return math.Floor(v / size)
}

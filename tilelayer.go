package grove

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Tile flag bits, same convention as the Tiled TMX format. The low bits are
// the sheet frame; 0 is an empty cell.
const (
	TileFlipH    uint32 = 1 << 31
	TileFlipV    uint32 = 1 << 30
	tileFlagMask uint32 = TileFlipH | TileFlipV | 1<<29
)

// TileHit identifies the tile a TileLayer collision came from.
type TileHit struct {
	Col, Row int
	ID       uint32 // frame id without flag bits
}

// AnimFrame is one step of an animated tile.
type AnimFrame struct {
	ID       uint32
	Duration float64 // seconds
}

// TileLayer is a grid of sheet frames that acts as a stage collision
// layer. Its top-left corner sits at the owning entity's (X, Y).
type TileLayer struct {
	Tiles        [][]uint32
	TileW, TileH float64
	Sheet        string

	// Hulls maps a tile id to a collision polygon relative to the tile
	// center. Tiles without a hull collide as full rectangles.
	Hulls map[uint32][]Vec2

	// Solid reports whether a tile id collides. nil means every non-empty
	// tile does.
	Solid func(id uint32) bool

	entity      *Entity
	probe       *Entity
	rect        []Vec2
	anims       map[uint32][]AnimFrame
	animLength  map[uint32]float64
	animElapsed float64
}

// NewTileLayer wraps tiles in an entity ready for Stage.CollisionLayer. The
// layer is drawn every frame and steps its tile animations.
func NewTileLayer(props Props, tiles [][]uint32, tileW, tileH float64) *Entity {
	tl := &TileLayer{
		Tiles: tiles,
		TileW: tileW,
		TileH: tileH,
		Sheet: props.Sheet,
		probe: &Entity{ClassName: "tileProbe", P: Props{W: tileW, H: tileH}},
		rect: []Vec2{
			{-tileW / 2, -tileH / 2},
			{tileW / 2, -tileH / 2},
			{tileW / 2, tileH / 2},
			{-tileW / 2, tileH / 2},
		},
	}
	cols := 0
	if len(tiles) > 0 {
		cols = len(tiles[0])
	}
	props.W = float64(cols) * tileW
	props.H = float64(len(tiles)) * tileH
	if props.Type == 0 {
		props.Type = TypeDefault
	}
	props.RenderAlways = true
	// drawn through OnDraw, not as a single sprite
	props.Sheet = ""

	e := NewEntity("TileLayer", props)
	e.SetCenter(0, 0)
	e.Layer = tl
	e.OnDraw = tl.draw
	e.OnStep = func(_ *Entity, dt float64) { tl.step(dt) }
	tl.entity = e
	return e
}

// TileLayerOf returns the tile layer behind e, or nil.
func TileLayerOf(e *Entity) *TileLayer {
	tl, _ := e.Layer.(*TileLayer)
	return tl
}

// Rows returns the number of tile rows.
func (tl *TileLayer) Rows() int { return len(tl.Tiles) }

// Cols returns the number of tile columns.
func (tl *TileLayer) Cols() int {
	if len(tl.Tiles) == 0 {
		return 0
	}
	return len(tl.Tiles[0])
}

// Tile returns the raw value at (col, row), including flag bits. Out of
// range cells are empty.
func (tl *TileLayer) Tile(col, row int) uint32 {
	if row < 0 || row >= len(tl.Tiles) || col < 0 || col >= len(tl.Tiles[row]) {
		return 0
	}
	return tl.Tiles[row][col]
}

// SetTile replaces the value at (col, row). Out of range writes are ignored.
func (tl *TileLayer) SetTile(col, row int, id uint32) {
	if row < 0 || row >= len(tl.Tiles) || col < 0 || col >= len(tl.Tiles[row]) {
		return
	}
	tl.Tiles[row][col] = id
}

// TileAt returns the cell containing world point (x, y).
func (tl *TileLayer) TileAt(x, y float64) (col, row int) {
	ox, oy := tl.origin()
	return int(math.Floor((x - ox) / tl.TileW)), int(math.Floor((y - oy) / tl.TileH))
}

// SetAnimation cycles tile id through frames. Cells holding id draw the
// current frame.
func (tl *TileLayer) SetAnimation(id uint32, frames []AnimFrame) {
	if tl.anims == nil {
		tl.anims = make(map[uint32][]AnimFrame)
		tl.animLength = make(map[uint32]float64)
	}
	var total float64
	for _, f := range frames {
		total += f.Duration
	}
	tl.anims[id] = frames
	tl.animLength[id] = total
}

func (tl *TileLayer) origin() (float64, float64) {
	if tl.entity == nil {
		return 0, 0
	}
	return tl.entity.P.X, tl.entity.P.Y
}

func (tl *TileLayer) solid(id uint32) bool {
	if id == 0 {
		return false
	}
	if tl.Solid != nil {
		return tl.Solid(id)
	}
	return true
}

// Collide runs SAT between obj and every solid tile its bounding box
// covers and returns the deepest hit.
func (tl *TileLayer) Collide(obj *Entity) *Collision {
	if tl.TileW <= 0 || tl.TileH <= 0 {
		return nil
	}
	b := bounds(obj)
	ox, oy := tl.origin()
	c1 := max(int(math.Floor((b.X-ox)/tl.TileW)), 0)
	r1 := max(int(math.Floor((b.Y-oy)/tl.TileH)), 0)
	c2 := min(int(math.Floor((b.X+b.Width-ox)/tl.TileW)), tl.Cols()-1)
	r2 := min(int(math.Floor((b.Y+b.Height-oy)/tl.TileH)), tl.Rows()-1)

	var best *Collision
	probe := tl.probe
	for row := r1; row <= r2; row++ {
		for col := c1; col <= c2; col++ {
			id := tl.Tile(col, row) &^ tileFlagMask
			if !tl.solid(id) {
				continue
			}
			probe.P.X = ox + float64(col)*tl.TileW + tl.TileW/2
			probe.P.Y = oy + float64(row)*tl.TileH + tl.TileH/2
			probe.P.Points = tl.rect
			if hull, ok := tl.Hulls[id]; ok && len(hull) > 2 {
				probe.P.Points = hull
			}
			hit := SAT(obj, probe)
			if hit == nil {
				continue
			}
			if best == nil || hit.Magnitude > best.Magnitude {
				hit.Tile = &TileHit{Col: col, Row: row, ID: id}
				best = hit
			}
		}
	}
	return best
}

func (tl *TileLayer) step(dt float64) {
	if len(tl.anims) > 0 {
		tl.animElapsed += dt
	}
}

// frame returns the sheet frame drawn for id at the current animation time.
func (tl *TileLayer) frame(id uint32) uint32 {
	frames, ok := tl.anims[id]
	if !ok || len(frames) == 0 {
		return id
	}
	total := tl.animLength[id]
	if total <= 0 {
		return frames[0].ID
	}
	t := math.Mod(tl.animElapsed, total)
	for _, f := range frames {
		if t < f.Duration {
			return f.ID
		}
		t -= f.Duration
	}
	return frames[len(frames)-1].ID
}

// draw renders the visible cells. op carries the layer's world and view
// transform with the layer origin at (0, 0).
func (tl *TileLayer) draw(e *Entity, target *ebiten.Image, op *ebiten.DrawImageOptions) {
	res := e.resources()
	if res == nil {
		return
	}
	sheet := res.Sheet(tl.Sheet)
	if sheet == nil {
		return
	}

	c1, r1, c2, r2 := 0, 0, tl.Cols()-1, tl.Rows()-1
	if e.stage != nil {
		v := e.stage.viewRect()
		ox, oy := tl.origin()
		c1 = max(c1, int(math.Floor((v.X-ox)/tl.TileW)))
		r1 = max(r1, int(math.Floor((v.Y-oy)/tl.TileH)))
		c2 = min(c2, int(math.Floor((v.X+v.Width-ox)/tl.TileW)))
		r2 = min(r2, int(math.Floor((v.Y+v.Height-oy)/tl.TileH)))
	}

	var tileOp ebiten.DrawImageOptions
	tileOp.ColorScale = op.ColorScale
	for row := r1; row <= r2; row++ {
		for col := c1; col <= c2; col++ {
			raw := tl.Tile(col, row)
			id := raw &^ tileFlagMask
			if id == 0 {
				continue
			}
			tileOp.GeoM.Reset()
			if raw&TileFlipH != 0 {
				tileOp.GeoM.Scale(-1, 1)
				tileOp.GeoM.Translate(tl.TileW, 0)
			}
			if raw&TileFlipV != 0 {
				tileOp.GeoM.Scale(1, -1)
				tileOp.GeoM.Translate(0, tl.TileH)
			}
			tileOp.GeoM.Translate(float64(col)*tl.TileW, float64(row)*tl.TileH)
			tileOp.GeoM.Concat(op.GeoM)
			target.DrawImage(sheet.FrameImage(int(tl.frame(id))), &tileOp)
		}
	}
}

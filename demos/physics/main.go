// physics drops random polygons onto a walled floor. Bodies use the "2d"
// component, which resolves contacts with SAT against the wall tile layer
// and each other. Click a shape to launch it and its neighbors.
// All shapes are procedural (no textures).
package main

import (
	"log"
	"math"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/phanxgames/grove"
)

const (
	screenW    = 1280
	screenH    = 720
	shapeCount = 60
	wallTile   = 40

	// Explosion settings
	blastRadius = 250.0
	blastSpeed  = 900.0
)

func main() {
	cfg := grove.DefaultConfig()
	cfg.Game.Title = "Grove - Physics"
	cfg.Game.Width = screenW
	cfg.Game.Height = screenH
	cfg.Game.Background = "#0f0f17"
	cfg.Stage.GridW, cfg.Stage.GridH = 128, 128

	g := grove.New(cfg)
	g.ShowFPS = true
	g.Scene("physics", setup, grove.StageOptions{})
	if _, err := g.StageScene("physics", 0, grove.StageOptions{}); err != nil {
		log.Fatal(err)
	}
	if err := g.Run(); err != nil {
		log.Fatal(err)
	}
}

func setup(s *grove.Stage) {
	cols, rows := screenW/wallTile, screenH/wallTile
	tiles := make([][]uint32, rows)
	for r := range tiles {
		tiles[r] = make([]uint32, cols)
		for c := range tiles[r] {
			if r == rows-1 || c == 0 || c == cols-1 {
				tiles[r][c] = 1
			}
		}
	}
	walls := grove.NewTileLayer(grove.Props{}, tiles, wallTile, wallTile)
	walls.OnDraw = drawWalls
	if err := s.CollisionLayer(walls); err != nil {
		log.Fatal(err)
	}

	for range shapeCount {
		radius := 18.0 + rand.Float64()*14.0
		sides := 3 + rand.IntN(4)
		body := grove.NewSprite(grove.Props{
			X:  wallTile + radius + rand.Float64()*(screenW-2*wallTile-2*radius),
			Y:  radius + rand.Float64()*(screenH/2),
			W:  radius * 2,
			H:  radius * 2,
			VX: (rand.Float64() - 0.5) * 200,
		})
		body.P.Points = regularPolygon(sides, radius)
		body.P.Color = grove.Color{
			R: 0.3 + rand.Float64()*0.7,
			G: 0.3 + rand.Float64()*0.7,
			B: 0.3 + rand.Float64()*0.7,
			A: 1,
		}
		body.OnDraw = drawPolygon
		s.MustInsert(body)
		if err := body.Add("2d"); err != nil {
			log.Fatal(err)
		}
		body.On("touch", func(any) { explode(s, body) })
	}
}

// explode launches every body within blastRadius of center away from it.
func explode(s *grove.Stage, center *grove.Entity) {
	s.Each(func(e *grove.Entity) {
		if e.IsCollisionLayer() {
			return
		}
		dx, dy := e.P.X-center.P.X, e.P.Y-center.P.Y
		dist := math.Hypot(dx, dy)
		if dist > blastRadius {
			return
		}
		falloff := 1 - dist/blastRadius
		if dist < 1 {
			dx, dy, dist = 0, -1, 1
		}
		e.P.VX += dx / dist * blastSpeed * falloff
		e.P.VY += dy/dist*blastSpeed*falloff - blastSpeed*0.5*falloff
	})
}

func regularPolygon(sides int, radius float64) []grove.Vec2 {
	pts := make([]grove.Vec2, sides)
	for i := range pts {
		a := 2*math.Pi*float64(i)/float64(sides) - math.Pi/2
		pts[i] = grove.Vec2{X: math.Cos(a) * radius, Y: math.Sin(a) * radius}
	}
	return pts
}

func drawPolygon(e *grove.Entity, target *ebiten.Image, op *ebiten.DrawImageOptions) {
	pts := e.P.Points
	clr := e.P.Color.ToRGBA()
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		x0, y0 := op.GeoM.Apply(a.X, a.Y)
		x1, y1 := op.GeoM.Apply(b.X, b.Y)
		vector.StrokeLine(target, float32(x0), float32(y0), float32(x1), float32(y1), 2, clr, true)
	}
}

func drawWalls(e *grove.Entity, target *ebiten.Image, op *ebiten.DrawImageOptions) {
	tl := grove.TileLayerOf(e)
	clr, _ := grove.ParseColor("dimgray")
	for row := range tl.Rows() {
		for col := range tl.Cols() {
			if tl.Tile(col, row) == 0 {
				continue
			}
			x, y := op.GeoM.Apply(float64(col)*tl.TileW, float64(row)*tl.TileH)
			vector.DrawFilledRect(target, float32(x), float32(y), float32(tl.TileW), float32(tl.TileH), clr.ToRGBA(), false)
		}
	}
}

package grove

import (
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
)

// renderStats holds per-frame render metrics.
// Only populated when the stage is in debug mode.
type renderStats struct {
	start time.Time
	drawn int
}

func (s *Stage) debugLogRender(stats renderStats) {
	s.logger.Debug("stage render",
		zap.Duration("elapsed", time.Since(stats.start)),
		zap.Int("drawn", stats.drawn),
		zap.Int("items", len(s.items)),
	)
}

// debugCheckTreeDepth warns if nesting exceeds the threshold.
const debugMaxTreeDepth = 32

func (s *Stage) debugCheckTreeDepth(e *Entity) {
	depth := 0
	for p := e; p != nil; p = p.Container {
		depth++
	}
	if depth > debugMaxTreeDepth {
		s.logger.Warn("entity tree too deep",
			zap.Int("depth", depth),
			zap.Int("threshold", debugMaxTreeDepth),
			zap.Uint32("id", e.P.ID),
			zap.String("class", e.ClassName),
		)
	}
}

// debugCheckChildCount warns if a container holds more than 1000 children.
const debugMaxChildCount = 1000

func (s *Stage) debugCheckChildCount(e *Entity) {
	if len(e.children) > debugMaxChildCount {
		s.logger.Warn("container has many children",
			zap.Uint32("id", e.P.ID),
			zap.Int("children", len(e.children)),
			zap.Int("threshold", debugMaxChildCount),
		)
	}
}

// debugMissingImage reports a sprite whose sheet or asset is not loaded.
// The frame still renders; the sprite falls back to its fill color.
func (s *Stage) debugMissingImage(e *Entity) {
	if ce := s.logger.Check(zap.DebugLevel, "missing sprite image"); ce != nil {
		ce.Write(
			zap.Uint32("id", e.P.ID),
			zap.String("sheet", e.P.Sheet),
			zap.String("asset", e.P.Asset),
			zap.Int("frame", e.P.Frame),
		)
	}
}

var debugOutline = color.RGBA{R: 255, A: 255}

// drawDebugPolygon outlines the world collision polygon of e.
func drawDebugPolygon(target *ebiten.Image, e *Entity, view ebiten.GeoM) {
	if e.C == nil || len(e.C.Points) < 2 {
		return
	}
	pts := e.C.Points
	for i := range pts {
		a := pts[i]
		b := pts[(i+1)%len(pts)]
		x0, y0 := view.Apply(a.X, a.Y)
		x1, y1 := view.Apply(b.X, b.Y)
		vector.StrokeLine(target, float32(x0), float32(y0), float32(x1), float32(y1), 1, debugOutline, false)
	}
}

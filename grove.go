package grove

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/colornames"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs when the color is applied to a draw call.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// IsZero reports whether c is the zero color (used as "no fill").
func (c Color) IsZero() bool {
	return c == Color{}
}

// ToRGBA converts c to a premultiplied color.RGBA.
func (c Color) ToRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(c.R*c.A*255 + 0.5),
		G: uint8(c.G*c.A*255 + 0.5),
		B: uint8(c.B*c.A*255 + 0.5),
		A: uint8(c.A*255 + 0.5),
	}
}

// ParseColor resolves an SVG/CSS color name ("red", "cornflowerblue") or a
// "#rrggbb" hex string to a Color. The second result is false for unknown
// names and malformed hex.
func ParseColor(name string) (Color, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if hex, ok := strings.CutPrefix(name, "#"); ok {
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || len(hex) != 6 {
			return Color{}, false
		}
		return Color{
			R: float64(v>>16&0xff) / 255,
			G: float64(v>>8&0xff) / 255,
			B: float64(v&0xff) / 255,
			A: 1,
		}, true
	}
	rgba, ok := colornames.Map[name]
	if !ok {
		return Color{}, false
	}
	return Color{
		R: float64(rgba.R) / 255,
		G: float64(rgba.G) / 255,
		B: float64(rgba.B) / 255,
		A: float64(rgba.A) / 255,
	}, true
}

// Vec2 is a 2D vector used for positions, polygon points, and separation
// vectors throughout the API.
type Vec2 struct {
	X, Y float64
}

// WhitePixel is a 1x1 white image used to fill solid color entities.
var WhitePixel *ebiten.Image

func init() {
	WhitePixel = ebiten.NewImage(1, 1)
	WhitePixel.Fill(ColorWhite.ToRGBA())
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Category flags for Props.Type and Props.CollisionMask. Values can be
// combined with bitwise OR (e.g. TypeEnemy | TypeActive).
const (
	TypeNone     uint32 = 0
	TypeDefault  uint32 = 1 << 0 // generic colliders
	TypeParticle uint32 = 1 << 1 // visual-only debris
	TypeActive   uint32 = 1 << 2 // stepped, interactive objects
	TypeFriendly uint32 = 1 << 3 // player side
	TypeEnemy    uint32 = 1 << 4 // opposing side
	TypePowerup  uint32 = 1 << 5 // pickups
	TypeUI       uint32 = 1 << 6 // overlay widgets
	TypeAll      uint32 = 0xFFFF
)

// FlipMode mirrors an entity's drawing around its center.
type FlipMode uint8

const (
	FlipNone FlipMode = iota // draw as authored
	FlipX                    // mirror horizontally
	FlipY                    // mirror vertically
	FlipXY                   // mirror both axes
)

// scale factors applied to the draw transform for each FlipMode.
var flipArgs = [4][2]float64{
	{1, 1},
	{-1, 1},
	{1, -1},
	{-1, -1},
}

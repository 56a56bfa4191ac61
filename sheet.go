package grove

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// SheetOptions describes the tile layout of a sprite sheet. Zero tile
// sizes default to 64.
type SheetOptions struct {
	TileW    int `json:"tileW"`
	TileH    int `json:"tileH"`
	SX       int `json:"sx"`
	SY       int `json:"sy"`
	SpacingX int `json:"spacingX"`
	SpacingY int `json:"spacingY"`
	Cols     int `json:"cols"`
}

// SpriteSheet slices an image asset into equally sized frames, numbered
// left to right then top to bottom.
type SpriteSheet struct {
	Name  string
	Asset string
	// W and H are the size of the whole image.
	W, H int
	SheetOptions
	Frames int

	image *ebiten.Image
}

// NewSpriteSheet creates a sheet over img.
func NewSpriteSheet(name, asset string, img *ebiten.Image, opts SheetOptions) *SpriteSheet {
	if opts.TileW <= 0 {
		opts.TileW = 64
	}
	if opts.TileH <= 0 {
		opts.TileH = 64
	}
	sh := &SpriteSheet{Name: name, Asset: asset, SheetOptions: opts, image: img}
	if img != nil {
		b := img.Bounds()
		sh.W, sh.H = b.Dx(), b.Dy()
	}
	if sh.Cols <= 0 {
		sh.Cols = (sh.W + sh.SpacingX) / (sh.TileW + sh.SpacingX)
	}
	sh.Frames = sh.Cols * (sh.H / (sh.TileH + sh.SpacingY))
	return sh
}

// Fx returns the left edge of frame in the image.
func (sh *SpriteSheet) Fx(frame int) int {
	if sh.Cols == 0 {
		return sh.SX
	}
	return (frame%sh.Cols)*(sh.TileW+sh.SpacingX) + sh.SX
}

// Fy returns the top edge of frame in the image.
func (sh *SpriteSheet) Fy(frame int) int {
	if sh.Cols == 0 {
		return sh.SY
	}
	return (frame/sh.Cols)*(sh.TileH+sh.SpacingY) + sh.SY
}

// FrameRect returns the source rectangle of frame.
func (sh *SpriteSheet) FrameRect(frame int) image.Rectangle {
	x, y := sh.Fx(frame), sh.Fy(frame)
	return image.Rect(x, y, x+sh.TileW, y+sh.TileH)
}

// FrameImage returns frame as a sub-image, or a magenta placeholder when
// the sheet has no image or frame is out of range.
func (sh *SpriteSheet) FrameImage(frame int) *ebiten.Image {
	if sh.image == nil || frame < 0 || (sh.Frames > 0 && frame >= sh.Frames) {
		return ensureMagentaImage()
	}
	return sh.image.SubImage(sh.FrameRect(frame)).(*ebiten.Image)
}

// Draw draws frame with its top-left corner at (x, y), snapped to whole
// pixels.
func (sh *SpriteSheet) Draw(target *ebiten.Image, x, y float64, frame int) {
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(math.Floor(x), math.Floor(y))
	target.DrawImage(sh.FrameImage(frame), &op)
}

// magenta placeholder singleton (no sync.Once, grove is single-threaded)
var magentaImage *ebiten.Image

func ensureMagentaImage() *ebiten.Image {
	if magentaImage == nil {
		magentaImage = ebiten.NewImage(1, 1)
		magentaImage.Fill(color.RGBA{R: 255, G: 0, B: 255, A: 255})
	}
	return magentaImage
}

// NewSheet creates and registers a sheet over a loaded image asset.
func (g *Engine) NewSheet(name, asset string, opts SheetOptions) (*SpriteSheet, error) {
	img := g.Assets.Image(asset)
	if img == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingAsset, asset)
	}
	sh := NewSpriteSheet(name, asset, img, opts)
	g.SetSheet(sh)
	return sh, nil
}

// CompileSheets registers one sheet per entry of a sprite data JSON
// object ({"name": {"tileW":..,"tileH":..,"sx":..}, ...}) over imageAsset.
func (g *Engine) CompileSheets(imageAsset string, spriteData []byte) error {
	var data map[string]SheetOptions
	if err := json.Unmarshal(spriteData, &data); err != nil {
		return fmt.Errorf("grove: failed to parse sprite data: %w", err)
	}
	for name, opts := range data {
		if _, err := g.NewSheet(name, imageAsset, opts); err != nil {
			return err
		}
	}
	return nil
}

// --- TexturePacker atlases ---

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame jsonRect `json:"frame"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

// LoadAtlas parses TexturePacker JSON and registers every frame as a
// single-frame sheet named after the frame. The hash format ("frames"
// object) reads from pageAsset; the array format ("textures" list) reads
// each page from the asset named by its "image" key.
func (g *Engine) LoadAtlas(jsonData []byte, pageAsset string) error {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return fmt.Errorf("grove: failed to parse atlas JSON: %w", err)
	}

	var pages []jsonTexturePage
	switch {
	case probe.Textures != nil:
		if err := json.Unmarshal(probe.Textures, &pages); err != nil {
			return fmt.Errorf("grove: failed to parse atlas textures array: %w", err)
		}
	case probe.Frames != nil:
		var frames map[string]jsonFrame
		if err := json.Unmarshal(probe.Frames, &frames); err != nil {
			return fmt.Errorf("grove: failed to parse atlas frames: %w", err)
		}
		pages = []jsonTexturePage{{Image: pageAsset, Frames: frames}}
	default:
		return fmt.Errorf("grove: atlas JSON has neither \"frames\" nor \"textures\" key")
	}

	for _, page := range pages {
		img := g.Assets.Image(page.Image)
		if img == nil {
			return fmt.Errorf("%w: %q", ErrMissingAsset, page.Image)
		}
		for name, f := range page.Frames {
			sh := NewSpriteSheet(name, page.Image, img, SheetOptions{
				TileW: f.Frame.W,
				TileH: f.Frame.H,
				SX:    f.Frame.X,
				SY:    f.Frame.Y,
				Cols:  1,
			})
			sh.Frames = 1
			g.SetSheet(sh)
		}
	}
	return nil
}

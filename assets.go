package grove

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"path"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrMissingAsset is returned when a named asset has not been loaded.
var ErrMissingAsset = errors.New("grove: missing asset")

// Assets is an in-memory cache of loaded images and decoded data keyed by
// name.
type Assets struct {
	images map[string]*ebiten.Image
	data   map[string]any
	raw    map[string][]byte
}

// NewAssets creates an empty cache.
func NewAssets() *Assets {
	return &Assets{
		images: make(map[string]*ebiten.Image),
		data:   make(map[string]any),
		raw:    make(map[string][]byte),
	}
}

// Image returns a loaded image, or nil.
func (a *Assets) Image(name string) *ebiten.Image {
	if name == "" {
		return nil
	}
	return a.images[name]
}

// SetImage stores img under name.
func (a *Assets) SetImage(name string, img *ebiten.Image) {
	a.images[name] = img
}

// Get returns a stored value (image or decoded data) and whether it exists.
func (a *Assets) Get(name string) (any, bool) {
	if img, ok := a.images[name]; ok {
		return img, true
	}
	v, ok := a.data[name]
	return v, ok
}

// Set stores arbitrary decoded data under name.
func (a *Assets) Set(name string, v any) {
	a.data[name] = v
}

// Bytes returns the file contents an asset was loaded from.
func (a *Assets) Bytes(name string) ([]byte, bool) {
	b, ok := a.raw[name]
	return b, ok
}

// Load reads each named file from fsys. Images (png, jpg, gif, bmp, webp)
// are decoded into ebiten images and .json files into generic values.
// Other files are stored as raw bytes. Assets are keyed by their path.
func (a *Assets) Load(fsys fs.FS, names ...string) error {
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("load asset %s: %w", name, err)
		}
		switch strings.ToLower(path.Ext(name)) {
		case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp":
			img, _, err := image.Decode(bytes.NewReader(raw))
			if err != nil {
				return fmt.Errorf("decode image %s: %w", name, err)
			}
			a.images[name] = ebiten.NewImageFromImage(img)
		case ".json":
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("decode json %s: %w", name, err)
			}
			a.data[name] = v
		default:
			a.data[name] = raw
		}
		a.raw[name] = raw
	}
	return nil
}

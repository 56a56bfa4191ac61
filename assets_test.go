package grove

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"reflect"
	"testing"
	"testing/fstest"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestAssetsLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"img/hero.png":     {Data: encodePNG(t, 3, 2)},
		"img/UPPER.PNG":    {Data: encodePNG(t, 1, 1)},
		"data/level.json":  {Data: []byte(`{"name": "one", "tiles": [1, 2]}`)},
		"data/credits.txt": {Data: []byte("thanks")},
	}
	a := NewAssets()
	if err := a.Load(fsys, "img/hero.png", "img/UPPER.PNG", "data/level.json", "data/credits.txt"); err != nil {
		t.Fatal(err)
	}

	hero := a.Image("img/hero.png")
	if hero == nil {
		t.Fatal("png not decoded")
	}
	if b := hero.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("hero bounds = %v", b)
	}
	if a.Image("img/UPPER.PNG") == nil {
		t.Error("upper-case extension not treated as an image")
	}

	level, ok := a.Get("data/level.json")
	if !ok {
		t.Fatal("json missing")
	}
	want := map[string]any{"name": "one", "tiles": []any{1.0, 2.0}}
	if !reflect.DeepEqual(level, want) {
		t.Errorf("level = %#v", level)
	}

	credits, ok := a.Get("data/credits.txt")
	if !ok || string(credits.([]byte)) != "thanks" {
		t.Errorf("credits = %v", credits)
	}
	if raw, ok := a.Bytes("data/level.json"); !ok || len(raw) == 0 {
		t.Error("raw bytes not kept")
	}
	if v, ok := a.Get("img/hero.png"); !ok || v != hero {
		t.Error("Get should return the image")
	}
}

func TestAssetsLoadErrors(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.png":  {Data: []byte("not a png")},
		"bad.json": {Data: []byte("{")},
	}
	a := NewAssets()
	if err := a.Load(fsys, "missing.png"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing: err = %v", err)
	}
	if err := a.Load(fsys, "bad.png"); err == nil {
		t.Error("corrupt image accepted")
	}
	if err := a.Load(fsys, "bad.json"); err == nil {
		t.Error("malformed json accepted")
	}
	if _, ok := a.Get("bad.json"); ok {
		t.Error("failed asset stored")
	}
}

func TestAssetsSetAndMissing(t *testing.T) {
	a := NewAssets()
	a.Set("score", 42)
	if v, ok := a.Get("score"); !ok || v != 42 {
		t.Errorf("Get(score) = %v, %v", v, ok)
	}
	if a.Image("") != nil || a.Image("nothing") != nil {
		t.Error("unknown image should be nil")
	}
	if _, ok := a.Bytes("score"); ok {
		t.Error("Set should not record raw bytes")
	}
}

func TestEngineLoadedAssetSizesSprite(t *testing.T) {
	g := New(nil)
	fsys := fstest.MapFS{"box.png": {Data: encodePNG(t, 12, 6)}}
	if err := g.Assets.Load(fsys, "box.png"); err != nil {
		t.Fatal(err)
	}
	s, _ := g.StageSceneWith(nil, 0, StageOptions{})
	e := s.MustInsert(NewSprite(Props{Asset: "box.png"}))
	if e.P.W != 12 || e.P.H != 6 || e.P.CX != 6 || e.P.CY != 3 {
		t.Errorf("size/center = %vx%v (%v,%v)", e.P.W, e.P.H, e.P.CX, e.P.CY)
	}
}

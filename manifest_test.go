package grove

import (
	"errors"
	"slices"
	"testing"
	"testing/fstest"
)

const sampleManifest = `
entities:
  - class: Sprite
    color: red
    components: [tween]
    props: {name: crate, x: 10, y: 20, w: 8, h: 8, ext: {weight: 3}}
    children:
      - class: Sprite
        props: {name: lid, x: 2, w: 4, h: 4}
  - class: Entity
    center: {x: 0, y: 0}
    props: {name: marker, w: 10, h: 10}
`

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(sampleManifest))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Entities) != 2 {
		t.Fatalf("entities = %d", len(m.Entities))
	}
	crate := m.Entities[0]
	if crate.Props.Name != "crate" || crate.Props.X != 10 || crate.Props.W != 8 {
		t.Errorf("crate props = %+v", crate.Props)
	}
	if crate.Props.Float("weight", 0) != 3 {
		t.Errorf("ext weight = %v", crate.Props.Ext["weight"])
	}
	if len(crate.Children) != 1 || crate.Children[0].Props.Name != "lid" {
		t.Errorf("children = %+v", crate.Children)
	}
	if m.Entities[1].Center == nil {
		t.Error("center not decoded")
	}
}

func TestParseManifestErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", "entities: [\n"},
		{"missing class", "entities:\n  - props: {x: 1}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseManifest([]byte(tt.data)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadManifest(t *testing.T) {
	fsys := fstest.MapFS{"levels/one.yaml": {Data: []byte(sampleManifest)}}
	m, err := LoadManifest(fsys, "levels/one.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Entities) != 2 {
		t.Errorf("entities = %d", len(m.Entities))
	}
	if _, err := LoadManifest(fsys, "levels/two.yaml"); err == nil {
		t.Error("missing manifest loaded")
	}
}

func TestStageLoadAssets(t *testing.T) {
	m, err := ParseManifest([]byte(sampleManifest))
	if err != nil {
		t.Fatal(err)
	}
	s := NewStage(nil, StageOptions{})
	if err := s.LoadAssets(m.Entities); err != nil {
		t.Fatal(err)
	}
	if len(s.Items()) != 3 {
		t.Fatalf("items = %d, want 3", len(s.Items()))
	}

	crate := s.Detect(func(e *Entity) bool { return e.P.Name == "crate" })
	lid := s.Detect(func(e *Entity) bool { return e.P.Name == "lid" })
	marker := s.Detect(func(e *Entity) bool { return e.P.Name == "marker" })
	if crate == nil || lid == nil || marker == nil {
		t.Fatal("manifest entities missing")
	}
	if lid.Container != crate || len(crate.Children()) != 1 {
		t.Error("child not nested in its parent")
	}
	if want, _ := ParseColor("red"); crate.P.Color != want {
		t.Errorf("color = %+v", crate.P.Color)
	}
	if !crate.Has("tween") || len(s.List(componentListName("tween"))) != 1 {
		t.Error("manifest components not attached")
	}
	if marker.ClassName != "Entity" || marker.P.CX != 0 || marker.P.CY != 0 {
		t.Errorf("marker = %s center (%v,%v)", marker.ClassName, marker.P.CX, marker.P.CY)
	}
	if lid.C.X != 12 || lid.C.Y != 20 {
		t.Errorf("lid world position = (%v,%v), want (12,20)", lid.C.X, lid.C.Y)
	}
}

func TestStageLoadAssetsErrors(t *testing.T) {
	tests := []struct {
		name    string
		entries []ManifestEntry
		target  error
	}{
		{"unknown class", []ManifestEntry{{Class: "Ghost"}}, ErrUnknownClass},
		{"unknown color", []ManifestEntry{{Class: "Sprite", Color: "notacolor"}}, nil},
		{"unknown component", []ManifestEntry{{Class: "Sprite", Components: []string{"nope"}}}, ErrUnknownComponent},
		{"duplicate id", []ManifestEntry{
			{Class: "Sprite", Props: Props{ID: 70001}},
			{Class: "Sprite", Props: Props{ID: 70001}},
		}, ErrDuplicateID},
		{"bad child", []ManifestEntry{
			{Class: "Sprite", Children: []ManifestEntry{{Class: "Ghost"}}},
		}, ErrUnknownClass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewStage(nil, StageOptions{}).LoadAssets(tt.entries)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("err = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestRegisterClass(t *testing.T) {
	RegisterClass("Coin", func(p Props) *Entity {
		p.Type = TypeUI
		return NewEntity("Coin", p)
	})
	t.Cleanup(func() { delete(classRegistry, "Coin") })

	names := RegisteredClasses()
	if !slices.Contains(names, "Coin") || !slices.IsSorted(names) {
		t.Errorf("RegisteredClasses = %v", names)
	}
	e, err := NewFromClass("Coin", Props{X: 5})
	if err != nil {
		t.Fatal(err)
	}
	if e.ClassName != "Coin" || e.P.Type != TypeUI || e.P.X != 5 {
		t.Errorf("coin = %s %+v", e.ClassName, e.P)
	}

	defer func() {
		if recover() == nil {
			t.Error("RegisterClass with no factory should panic")
		}
	}()
	RegisterClass("Broken", nil)
}

package grove

import (
	"reflect"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestInputsPressRelease(t *testing.T) {
	in := NewInputs()
	var got []string
	in.On("fire", func(any) { got = append(got, "fire") })
	in.On("fireUp", func(any) { got = append(got, "fireUp") })

	in.Press("fire")
	in.Press("fire") // held: no second event
	if !in.Pressed("fire") {
		t.Error("fire should be held")
	}
	in.Release("fire")
	in.Release("fire")
	if in.Pressed("fire") {
		t.Error("fire still held after release")
	}

	if want := []string{"fire", "fireUp"}; !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestInputsHeldAndReset(t *testing.T) {
	in := NewInputs()
	in.Press("right")
	in.Press("fire")
	in.Press("left")
	if got := in.Held(); !reflect.DeepEqual(got, []string{"fire", "left", "right"}) {
		t.Errorf("Held = %v", got)
	}

	ups := 0
	in.On("leftUp", func(any) { ups++ })
	in.Reset()
	if len(in.Held()) != 0 {
		t.Error("Reset left actions held")
	}
	if ups != 0 {
		t.Error("Reset should not fire release events")
	}
}

func TestParseKeyBindings(t *testing.T) {
	got, err := ParseKeyBindings(map[string]string{
		"ArrowLeft": "left",
		"Space":     "jump",
		"Bogus":     "nothing",
	})
	if err == nil {
		t.Error("expected an error for an unknown key")
	}
	if got[ebiten.KeyArrowLeft] != "left" || got[ebiten.KeySpace] != "jump" {
		t.Errorf("valid bindings dropped: %v", got)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}

	if _, err := ParseKeyBindings(nil); err != nil {
		t.Errorf("nil names: %v", err)
	}
}

func TestNewKeyboardDefaults(t *testing.T) {
	k := NewKeyboard(NewInputs(), nil)
	if !reflect.DeepEqual(k.Bindings(), DefaultKeyBindings) {
		t.Error("empty names should use DefaultKeyBindings")
	}
	for i := 1; i < len(k.keys); i++ {
		if k.keys[i-1] >= k.keys[i] {
			t.Fatalf("keys not sorted: %v", k.keys)
		}
	}

	custom := NewKeyboard(NewInputs(), map[string]string{"W": "up"})
	if len(custom.Bindings()) != 1 || custom.Bindings()[ebiten.KeyW] != "up" {
		t.Errorf("custom bindings = %v", custom.Bindings())
	}
}

func TestEngineTouchAt(t *testing.T) {
	g := New(nil)
	s, err := g.StageSceneWith(nil, 0, StageOptions{})
	if err != nil {
		t.Fatal(err)
	}
	button := s.MustInsert(NewSprite(Props{X: 50, Y: 50, W: 20, H: 20, Type: TypeUI}))
	var ev PointerEvent
	button.On("touch", func(data any) { ev = data.(PointerEvent) })
	inputTouches := 0
	g.Inputs.On("touch", func(any) { inputTouches++ })

	if got := g.touchAt(55, 45); got != button {
		t.Fatalf("touchAt = %v, want the button", got)
	}
	if ev.Stage != s || ev.WorldX != 55 || ev.WorldY != 45 {
		t.Errorf("event = %+v", ev)
	}
	if inputTouches != 1 {
		t.Errorf("Inputs touch fired %d times", inputTouches)
	}
	if got := g.touchAt(300, 300); got != nil {
		t.Errorf("empty space touched %v", got)
	}
}

func TestEngineTouchAtTopStageFirst(t *testing.T) {
	g := New(nil)
	bottom, _ := g.StageSceneWith(nil, 0, StageOptions{})
	top, _ := g.StageSceneWith(nil, 1, StageOptions{})
	under := bottom.MustInsert(NewSprite(Props{X: 50, Y: 50, W: 20, H: 20}))

	cam := top.AddViewport()
	cam.X += 1000
	cam.MarkDirty()
	over := top.MustInsert(NewSprite(Props{X: 1050, Y: 50, W: 20, H: 20}))

	if got := g.touchAt(50, 50); got != over {
		t.Errorf("touchAt = %v, want the entity on the top stage", got)
	}
	top.Hide()
	if got := g.touchAt(50, 50); got != under {
		t.Errorf("hidden top stage: touchAt = %v, want the bottom entity", got)
	}
}

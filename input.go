package grove

import (
	"fmt"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Inputs is the shared action state. Adapters press and release named
// actions ("left", "fire", ...); game code polls Pressed or listens for
// the action name (press) and action+"Up" (release).
type Inputs struct {
	Evented
	state map[string]bool
}

// NewInputs creates an empty action state.
func NewInputs() *Inputs {
	return &Inputs{state: make(map[string]bool)}
}

// Pressed reports whether action is held.
func (in *Inputs) Pressed(action string) bool {
	return in.state[action]
}

// Press marks action held and fires its event on the first press.
func (in *Inputs) Press(action string) {
	if in.state[action] {
		return
	}
	in.state[action] = true
	in.Trigger(action, nil)
}

// Release clears action and fires action+"Up" if it was held.
func (in *Inputs) Release(action string) {
	if !in.state[action] {
		return
	}
	delete(in.state, action)
	in.Trigger(action+"Up", nil)
}

// Reset releases every held action without firing events.
func (in *Inputs) Reset() {
	clear(in.state)
}

// Held returns the held actions, sorted.
func (in *Inputs) Held() []string {
	out := make([]string, 0, len(in.state))
	for a := range in.state {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// DefaultKeyBindings maps the arrow keys to movement and Space/Z, X and
// Enter to fire, action and confirm.
var DefaultKeyBindings = map[ebiten.Key]string{
	ebiten.KeyArrowLeft:  "left",
	ebiten.KeyArrowRight: "right",
	ebiten.KeyArrowUp:    "up",
	ebiten.KeyArrowDown:  "down",
	ebiten.KeySpace:      "fire",
	ebiten.KeyZ:          "fire",
	ebiten.KeyX:          "action",
	ebiten.KeyEnter:      "confirm",
}

// Keyboard feeds key transitions into an Inputs.
type Keyboard struct {
	inputs   *Inputs
	bindings map[ebiten.Key]string
	keys     []ebiten.Key
}

// NewKeyboard binds keys to actions. names maps key names as accepted by
// ebiten.Key.UnmarshalText ("ArrowLeft", "Space", "Z") to actions; nil or
// empty uses DefaultKeyBindings. Unknown key names are skipped.
func NewKeyboard(inputs *Inputs, names map[string]string) *Keyboard {
	bindings, _ := ParseKeyBindings(names)
	if len(bindings) == 0 {
		bindings = DefaultKeyBindings
	}
	k := &Keyboard{inputs: inputs, bindings: bindings}
	for key := range bindings {
		k.keys = append(k.keys, key)
	}
	sort.Slice(k.keys, func(i, j int) bool { return k.keys[i] < k.keys[j] })
	return k
}

// ParseKeyBindings converts key names to keys. Every unknown name is
// reported in the error; the valid bindings are still returned.
func ParseKeyBindings(names map[string]string) (map[ebiten.Key]string, error) {
	out := make(map[ebiten.Key]string, len(names))
	var bad []string
	for name, action := range names {
		var k ebiten.Key
		if err := k.UnmarshalText([]byte(name)); err != nil {
			bad = append(bad, name)
			continue
		}
		out[k] = action
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return out, fmt.Errorf("grove: unknown keys %v", bad)
	}
	return out, nil
}

// Bindings returns the active key bindings.
func (k *Keyboard) Bindings() map[ebiten.Key]string {
	return k.bindings
}

// Poll presses and releases actions for keys that changed this tick.
func (k *Keyboard) Poll() {
	for _, key := range k.keys {
		action := k.bindings[key]
		if inpututil.IsKeyJustPressed(key) {
			k.inputs.Press(action)
		} else if inpututil.IsKeyJustReleased(key) {
			k.inputs.Release(action)
		}
	}
}

// PointerEvent is delivered with "touch" events.
type PointerEvent struct {
	// Screen coordinates
	X, Y float64
	// World coordinates in the stage that was hit
	WorldX, WorldY float64
	Stage          *Stage
}

// pollPointer locates the entity under a fresh left click or touch,
// checking the topmost stage first, and fires "touch" on it and on the
// Inputs.
func (g *Engine) pollPointer() {
	var sx, sy int
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		sx, sy = ebiten.CursorPosition()
	default:
		ids := inpututil.AppendJustPressedTouchIDs(nil)
		if len(ids) == 0 {
			return
		}
		sx, sy = ebiten.TouchPosition(ids[0])
	}
	g.touchAt(float64(sx), float64(sy))
}

func (g *Engine) touchAt(sx, sy float64) *Entity {
	for i := len(g.stages) - 1; i >= 0; i-- {
		s := g.stages[i]
		if s == nil || s.hidden {
			continue
		}
		wx, wy := sx, sy
		if s.Viewport != nil {
			wx, wy = s.Viewport.ScreenToWorld(sx, sy)
		}
		ev := PointerEvent{X: sx, Y: sy, WorldX: wx, WorldY: wy, Stage: s}
		if e := s.Locate(wx, wy, TypeUI|TypeDefault); e != nil {
			e.Trigger("touch", ev)
			g.Inputs.Trigger("touch", ev)
			return e
		}
	}
	return nil
}

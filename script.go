package grove

import (
	"encoding/json"
	"fmt"
)

// syntheticInput is a single injected input event. An empty action is a
// touch at screen (x, y).
type syntheticInput struct {
	action  string
	pressed bool
	x, y    float64
}

// InjectPress queues a press of action. The event is consumed on the next
// frame's Update.
func (g *Engine) InjectPress(action string) {
	g.injectQueue = append(g.injectQueue, syntheticInput{action: action, pressed: true})
}

// InjectRelease queues a release of action.
func (g *Engine) InjectRelease(action string) {
	g.injectQueue = append(g.injectQueue, syntheticInput{action: action})
}

// InjectTap queues a press followed by a release. Consumes two frames.
func (g *Engine) InjectTap(action string) {
	g.InjectPress(action)
	g.InjectRelease(action)
}

// InjectTouch queues a touch at screen coordinates (x, y), converted to
// world coordinates through each stage's viewport like a real click.
func (g *Engine) InjectTouch(x, y float64) {
	g.injectQueue = append(g.injectQueue, syntheticInput{x: x, y: y, pressed: true})
}

// processInjectedInput pops one event from the inject queue and applies it.
// Returns true if an event was consumed.
func (g *Engine) processInjectedInput() bool {
	if len(g.injectQueue) == 0 {
		return false
	}
	evt := g.injectQueue[0]
	copy(g.injectQueue, g.injectQueue[1:])
	g.injectQueue = g.injectQueue[:len(g.injectQueue)-1]

	switch {
	case evt.action == "":
		g.touchAt(evt.x, evt.y)
	case evt.pressed:
		g.Inputs.Press(evt.action)
	default:
		g.Inputs.Release(evt.action)
	}
	return true
}

// scriptStep is a single action in an input script.
type scriptStep struct {
	Action string  `json:"action"`
	Input  string  `json:"input,omitempty"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

type scriptFile struct {
	Steps []scriptStep `json:"steps"`
}

// InputScript replays input actions, touches and screenshots across frames
// for automated runs. Attach it with Engine.SetInputScript.
//
// Supported actions: "press", "release", "tap" (use Input), "touch" (X, Y),
// "screenshot" (Label) and "wait" (Frames).
type InputScript struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadInputScript parses a JSON input script.
func LoadInputScript(jsonData []byte) (*InputScript, error) {
	var f scriptFile
	if err := json.Unmarshal(jsonData, &f); err != nil {
		return nil, fmt.Errorf("parse input script: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("parse input script: no steps")
	}
	for i, st := range f.Steps {
		switch st.Action {
		case "press", "release", "tap":
			if st.Input == "" {
				return nil, fmt.Errorf("parse input script: step %d: %q needs an input", i, st.Action)
			}
		case "touch", "screenshot", "wait":
		default:
			return nil, fmt.Errorf("parse input script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &InputScript{steps: f.Steps}, nil
}

// SetInputScript attaches a script. Its step runs from Update before
// stages are stepped. nil detaches.
func (g *Engine) SetInputScript(script *InputScript) {
	g.script = script
}

// Done reports whether every step has been executed.
func (r *InputScript) Done() bool {
	return r.done
}

// step advances the script by one frame.
func (r *InputScript) step(g *Engine) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(g.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		g.Screenshot(st.Label)
	case "press":
		g.InjectPress(st.Input)
	case "release":
		g.InjectRelease(st.Input)
	case "tap":
		g.InjectTap(st.Input)
	case "touch":
		g.InjectTouch(st.X, st.Y)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(g.injectQueue) == 0 {
		r.done = true
	}
}

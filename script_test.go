package grove

import (
	"reflect"
	"testing"
)

// frame runs the input half of Engine.Update without polling devices.
func frame(g *Engine) {
	if g.script != nil {
		g.script.step(g)
	}
	g.processInjectedInput()
}

func TestLoadInputScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `{`},
		{"no steps", `{"steps": []}`},
		{"press without input", `{"steps": [{"action": "press"}]}`},
		{"unknown action", `{"steps": [{"action": "jump", "input": "up"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadInputScript([]byte(tt.data)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestInputScriptReplay(t *testing.T) {
	g := New(nil)
	script, err := LoadInputScript([]byte(`{"steps": [
		{"action": "press", "input": "right"},
		{"action": "wait", "frames": 2},
		{"action": "release", "input": "right"},
		{"action": "screenshot", "label": "end"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	g.SetInputScript(script)

	var held []bool
	for range 5 {
		frame(g)
		held = append(held, g.Inputs.Pressed("right"))
	}

	if want := []bool{true, true, true, false, false}; !reflect.DeepEqual(held, want) {
		t.Errorf("right held per frame = %v, want %v", held, want)
	}
	if !script.Done() {
		t.Error("script not done after its last step")
	}
	if !reflect.DeepEqual(g.screenshotQueue, []string{"end"}) {
		t.Errorf("screenshots = %v", g.screenshotQueue)
	}

	frame(g)
	if g.Inputs.Pressed("right") {
		t.Error("finished script kept injecting")
	}
}

func TestInputScriptTapDrainsQueue(t *testing.T) {
	g := New(nil)
	script, _ := LoadInputScript([]byte(`{"steps": [{"action": "tap", "input": "fire"}]}`))
	g.SetInputScript(script)
	var events []string
	g.Inputs.On("fire", func(any) { events = append(events, "fire") })
	g.Inputs.On("fireUp", func(any) { events = append(events, "fireUp") })

	frame(g)
	if script.Done() {
		t.Fatal("done before the release was consumed")
	}
	frame(g)
	frame(g)
	if !script.Done() {
		t.Error("not done after the queue drained")
	}
	if want := []string{"fire", "fireUp"}; !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestInputScriptTouch(t *testing.T) {
	g := New(nil)
	s, _ := g.StageSceneWith(nil, 0, StageOptions{})
	button := s.MustInsert(NewSprite(Props{X: 50, Y: 50, W: 20, H: 20}))
	touched := 0
	button.On("touch", func(any) { touched++ })

	script, err := LoadInputScript([]byte(`{"steps": [{"action": "touch", "x": 55, "y": 45}]}`))
	if err != nil {
		t.Fatal(err)
	}
	g.SetInputScript(script)
	frame(g)
	frame(g)
	if touched != 1 {
		t.Errorf("touched %d times, want 1", touched)
	}
}

func TestInjectQueueOrder(t *testing.T) {
	g := New(nil)
	if g.processInjectedInput() {
		t.Fatal("empty queue reported an event")
	}
	g.InjectPress("a")
	g.InjectTap("b")
	g.InjectRelease("a")

	var log []string
	for _, action := range []string{"a", "b"} {
		g.Inputs.On(action, func(any) { log = append(log, action) })
		g.Inputs.On(action+"Up", func(any) { log = append(log, action+"Up") })
	}
	for g.processInjectedInput() {
	}
	if want := []string{"a", "b", "bUp", "aUp"}; !reflect.DeepEqual(log, want) {
		t.Errorf("events = %v, want %v", log, want)
	}
	if len(g.injectQueue) != 0 {
		t.Errorf("queue holds %d events", len(g.injectQueue))
	}
}

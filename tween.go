package grove

import (
	"sort"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenOptions tunes a single tween.
type TweenOptions struct {
	// Delay postpones the start by this many seconds.
	Delay float64
	// Callback runs once the tween completes.
	Callback func(e *Entity)
}

// propField returns a pointer to the named numeric property, or nil.
func propField(p *Props, name string) *float64 {
	switch name {
	case "x":
		return &p.X
	case "y":
		return &p.Y
	case "z":
		return &p.Z
	case "w":
		return &p.W
	case "h":
		return &p.H
	case "angle":
		return &p.Angle
	case "scale":
		return &p.Scale
	case "opacity":
		return &p.Opacity
	case "vx":
		return &p.VX
	case "vy":
		return &p.VY
	}
	return nil
}

// Tween animates a set of numeric properties of one entity toward target
// values. The start values are captured on the first step after any delay,
// so chained tweens continue from where the previous one ended.
type Tween struct {
	target   map[string]float64
	duration float64
	easing   ease.TweenFunc
	opts     TweenOptions

	time    float64
	started bool
	names   []string
	fields  []*float64
	tweens  []*gween.Tween
}

// step advances the tween and reports whether it is still running.
func (tw *Tween) step(e *Entity, dt float64) bool {
	if tw.opts.Delay >= dt {
		tw.opts.Delay -= dt
		return true
	}
	if tw.opts.Delay > 0 {
		dt -= tw.opts.Delay
		tw.opts.Delay = 0
	}
	if !tw.started {
		tw.started = true
		for _, name := range sortedKeys(tw.target) {
			f := propField(&e.P, name)
			if f == nil {
				continue
			}
			tw.names = append(tw.names, name)
			tw.fields = append(tw.fields, f)
			tw.tweens = append(tw.tweens, gween.New(float32(*f), float32(tw.target[name]), float32(tw.duration), tw.easing))
		}
	}
	tw.time += dt

	done := tw.time >= tw.duration
	for i, t := range tw.tweens {
		val, _ := t.Update(float32(dt))
		*tw.fields[i] = float64(val)
	}
	e.P.Moved = true

	if done {
		// land exactly on the target regardless of float32 rounding
		for i, name := range tw.names {
			*tw.fields[i] = tw.target[name]
		}
		if tw.opts.Callback != nil {
			tw.opts.Callback(e)
		}
		return false
	}
	return true
}

// remaining returns the seconds until the tween completes.
func (tw *Tween) remaining() float64 {
	return tw.duration - tw.time + tw.opts.Delay
}

// TweenComponent runs a queue of concurrent tweens on its entity's step.
// Registered as "tween".
type TweenComponent struct {
	BaseComponent
	tweens []*Tween
	gen    int
}

func init() {
	RegisterComponent("tween", func() Component { return &TweenComponent{} })
}

// Added starts listening for steps.
func (tc *TweenComponent) Added(e *Entity) {
	tc.BaseComponent.Added(e)
	tc.Listen("step", func(data any) {
		dt, _ := data.(float64)
		tc.step(dt)
	})
}

// Removed drops pending tweens.
func (tc *TweenComponent) Removed() {
	tc.tweens = nil
	tc.BaseComponent.Removed()
}

// Animate starts tweening the named properties ("x", "y", "angle",
// "scale", "opacity", ...) to target over duration seconds. A nil easing
// is linear; a non-positive duration is one second.
func (tc *TweenComponent) Animate(target map[string]float64, duration float64, easing ease.TweenFunc, opts TweenOptions) *TweenComponent {
	if duration <= 0 {
		duration = 1
	}
	if easing == nil {
		easing = ease.Linear
	}
	tc.tweens = append(tc.tweens, &Tween{
		target:   target,
		duration: duration,
		easing:   easing,
		opts:     opts,
	})
	return tc
}

// Chain is Animate delayed until the last queued tween finishes.
func (tc *TweenComponent) Chain(target map[string]float64, duration float64, easing ease.TweenFunc, opts TweenOptions) *TweenComponent {
	if n := len(tc.tweens); n > 0 {
		opts.Delay = tc.tweens[n-1].remaining()
	}
	return tc.Animate(target, duration, easing, opts)
}

// Stop discards every queued tween.
func (tc *TweenComponent) Stop() *TweenComponent {
	tc.tweens = nil
	tc.gen++
	return tc
}

// Active returns the number of running or pending tweens.
func (tc *TweenComponent) Active() int {
	return len(tc.tweens)
}

func (tc *TweenComponent) step(dt float64) {
	e := tc.Entity()
	if e == nil {
		return
	}
	// Callbacks may queue more tweens or Stop the component.
	running := tc.tweens
	tc.tweens = make([]*Tween, 0, len(running))
	gen := tc.gen
	for _, tw := range running {
		if tc.gen != gen {
			return
		}
		if tw.step(e, dt) {
			tc.tweens = append(tc.tweens, tw)
		}
	}
}

// TweenOf returns e's tween component, adding one if needed.
func TweenOf(e *Entity) *TweenComponent {
	if !e.Has("tween") {
		if err := e.Add("tween"); err != nil {
			panic("grove: " + err.Error())
		}
	}
	return e.Component("tween").(*TweenComponent)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package grove

import "math"

// DefaultAnimationRate is the seconds per frame used when neither the
// animation nor the entity sets a rate.
const DefaultAnimationRate = 1.0 / 3

// Animation is a named frame sequence of a sprite set.
type Animation struct {
	Frames []int   `yaml:"frames"`
	Rate   float64 `yaml:"rate"` // seconds per frame
	// Once stops on the last frame instead of looping.
	Once bool `yaml:"once"`
	// Next is played when the animation ends. Implies Once.
	Next         string `yaml:"next"`
	NextPriority int    `yaml:"next_priority"`
	// Trigger is fired on the entity when the animation ends.
	Trigger     string `yaml:"trigger"`
	TriggerData any    `yaml:"-"`
	// Sheet overrides the entity's sheet while playing.
	Sheet string `yaml:"sheet"`
	// Flip, when non-nil, sets the entity's flip while playing.
	Flip *FlipMode `yaml:"flip"`
}

// animationRegistry maps sprite set -> animation name -> definition.
var animationRegistry = map[string]map[string]Animation{}

// Animations registers (or extends) the animations of a sprite set.
// Entities pick their set through Props.Sprite.
func Animations(sprite string, anims map[string]Animation) {
	set := animationRegistry[sprite]
	if set == nil {
		set = make(map[string]Animation, len(anims))
		animationRegistry[sprite] = set
	}
	for name, a := range anims {
		set[name] = a
	}
}

// LookupAnimation returns a registered animation.
func LookupAnimation(sprite, name string) (Animation, bool) {
	a, ok := animationRegistry[sprite][name]
	return a, ok
}

// AnimationComponent plays registered animations by writing Props.Frame
// (and Sheet/Flip) each step. Registered as "animation". Events:
// "anim"/"anim.<name>" on play, "animFrame" on frame advance,
// "animLoop"/"animLoop.<name>" on wrap and "animEnd"/"animEnd.<name>"
// when a one-shot finishes.
type AnimationComponent struct {
	BaseComponent

	Name     string
	Priority int
	Frame    int
	Time     float64
	changed  bool
}

func init() {
	RegisterComponent("animation", func() Component { return &AnimationComponent{Priority: -1} })
}

// Added starts listening for steps.
func (ac *AnimationComponent) Added(e *Entity) {
	ac.BaseComponent.Added(e)
	ac.Listen("step", func(data any) {
		dt, _ := data.(float64)
		ac.step(dt)
	})
}

// Play switches to the named animation when it differs from the current
// one and priority is at least the current priority. resetFrame restarts
// from the first frame.
func (ac *AnimationComponent) Play(name string, priority int, resetFrame bool) {
	if name == ac.Name || priority < ac.Priority {
		return
	}
	e := ac.Entity()
	ac.Name = name
	if resetFrame {
		ac.changed = true
		ac.Time = 0
		ac.Frame = 0
	}
	ac.Priority = priority
	e.Trigger("anim", name)
	e.Trigger("anim."+name, nil)
}

// Stop clears the current animation, leaving the last frame shown.
func (ac *AnimationComponent) Stop() {
	ac.Name = ""
	ac.Priority = -1
}

func (ac *AnimationComponent) step(dt float64) {
	e := ac.Entity()
	if e == nil || ac.Name == "" {
		return
	}
	p := &e.P
	anim, ok := LookupAnimation(p.Sprite, ac.Name)
	if !ok || len(anim.Frames) == 0 {
		return
	}
	rate := anim.Rate
	if rate <= 0 {
		rate = p.Float("rate", DefaultAnimationRate)
	}

	stepped := 0
	ac.Time += dt
	if ac.changed {
		ac.changed = false
	} else if ac.Time > rate {
		stepped = int(math.Floor(ac.Time / rate))
		ac.Time -= float64(stepped) * rate
		ac.Frame += stepped
	}

	if stepped > 0 {
		if ac.Frame >= len(anim.Frames) {
			if anim.Once || anim.Next != "" {
				name := ac.Name
				ac.Frame = len(anim.Frames) - 1
				ac.apply(anim)
				ac.Name = ""
				ac.Priority = -1
				e.Trigger("animEnd", name)
				e.Trigger("animEnd."+name, nil)
				if anim.Trigger != "" {
					e.Trigger(anim.Trigger, anim.TriggerData)
				}
				if anim.Next != "" {
					ac.Play(anim.Next, anim.NextPriority, true)
				}
				return
			}
			e.Trigger("animLoop", ac.Name)
			e.Trigger("animLoop."+ac.Name, nil)
			ac.Frame %= len(anim.Frames)
		}
		e.Trigger("animFrame", ac.Frame)
	}
	ac.apply(anim)
}

func (ac *AnimationComponent) apply(anim Animation) {
	p := &ac.Entity().P
	if anim.Sheet != "" {
		p.Sheet = anim.Sheet
	}
	p.Frame = anim.Frames[ac.Frame]
	if anim.Flip != nil {
		p.Flip = *anim.Flip
	}
}

// Play starts an animation on e, attaching the animation component if
// needed.
func Play(e *Entity, name string, priority int) {
	if !e.Has("animation") {
		if err := e.Add("animation"); err != nil {
			panic("grove: " + err.Error())
		}
	}
	e.Component("animation").(*AnimationComponent).Play(name, priority, true)
}

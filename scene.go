package grove

import "errors"

// ErrUnknownScene is returned when a scene name is not registered.
var ErrUnknownScene = errors.New("grove: unknown scene")

// SceneFunc populates a freshly created stage.
type SceneFunc func(s *Stage)

// Scene is a named recipe for building a stage.
type Scene struct {
	Name string
	fn   SceneFunc
	opts StageOptions
}

// NewScene creates a scene. fn may be nil for a stage that is filled by
// its Assets option or by hand.
func NewScene(name string, fn SceneFunc, opts StageOptions) *Scene {
	return &Scene{Name: name, fn: fn, opts: opts}
}

// Options returns the stage options the scene was declared with.
func (sc *Scene) Options() StageOptions { return sc.opts }

// mergeOptions layers o over the scene's options.
func (sc *Scene) mergeOptions(o StageOptions) StageOptions {
	return overlayOptions(sc.opts, o)
}

// overlayOptions returns base with every non-zero field of o applied.
// NoSort wins over Sort.
func overlayOptions(base, o StageOptions) StageOptions {
	m := base
	if o.W != 0 {
		m.W = o.W
	}
	if o.H != 0 {
		m.H = o.H
	}
	if o.GridW != 0 {
		m.GridW = o.GridW
	}
	if o.GridH != 0 {
		m.GridH = o.GridH
	}
	switch {
	case o.NoSort:
		m.Sort, m.NoSort = false, true
	case o.Sort:
		m.Sort, m.NoSort = true, false
	}
	if o.MaxCollisions != 0 {
		m.MaxCollisions = o.MaxCollisions
	}
	if len(o.Assets) > 0 {
		m.Assets = o.Assets
	}
	return m
}

func (sc *Scene) load(s *Stage) {
	if sc.fn != nil {
		sc.fn(s)
	}
}

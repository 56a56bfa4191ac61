package grove

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownComponent is returned by Entity.Add for names that were never
// registered with RegisterComponent.
var ErrUnknownComponent = errors.New("grove: unknown component")

// Component is a named capability attached to an entity at runtime.
// Added runs once the component is attached and listed; Removed runs when
// it is detached and must release anything Added acquired.
type Component interface {
	Added(e *Entity)
	Removed()
}

// ComponentFactory builds a fresh component instance for one entity.
type ComponentFactory func() Component

// componentRegistry is the package-level name -> factory table.
var componentRegistry = map[string]ComponentFactory{}

// RegisterComponent makes a component available to Entity.Add under name.
// Registering an existing name replaces the factory.
func RegisterComponent(name string, factory ComponentFactory) {
	if name == "" || factory == nil {
		panic("grove: RegisterComponent needs a name and a factory")
	}
	componentRegistry[name] = factory
}

// RegisteredComponents returns the registered component names, sorted.
func RegisteredComponents() []string {
	names := make([]string, 0, len(componentRegistry))
	for name := range componentRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BaseComponent carries the back-reference and listener registry most
// components need. Embed it and call Bind from Added.
type BaseComponent struct {
	Evented
	entity *Entity
}

// Bind records the owning entity.
func (b *BaseComponent) Bind(e *Entity) {
	b.entity = e
}

// Entity returns the entity the component is attached to.
func (b *BaseComponent) Entity() *Entity {
	return b.entity
}

// Listen binds fn to an entity event on behalf of this component, so the
// binding is dropped automatically when the component is removed.
func (b *BaseComponent) Listen(events string, fn Handler) {
	b.entity.OnTarget(events, &b.Evented, fn)
}

// Added implements Component.
func (b *BaseComponent) Added(e *Entity) {
	b.Bind(e)
}

// Removed implements Component.
func (b *BaseComponent) Removed() {
	b.Debind()
}

// componentListName is the stage list key for a component name.
func componentListName(name string) string {
	return "." + name
}

// Has reports whether the named component is attached.
func (e *Entity) Has(name string) bool {
	_, ok := e.components[name]
	return ok
}

// Component returns the attached component with the given name, or nil.
func (e *Entity) Component(name string) Component {
	return e.components[name]
}

// ActiveComponents returns the attached component names in attach order.
// The returned slice MUST NOT be mutated.
func (e *Entity) ActiveComponents() []string {
	return e.active
}

// Add attaches one or more components. Each argument may hold several
// comma-separated names. Already-attached names are skipped. An unknown
// name fails the call with ErrUnknownComponent before anything is attached.
func (e *Entity) Add(names ...string) error {
	list := normalizeNames(names)
	for _, name := range list {
		if _, ok := componentRegistry[name]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownComponent, name)
		}
	}
	for _, name := range list {
		if e.Has(name) {
			continue
		}
		c := componentRegistry[name]()
		if e.components == nil {
			e.components = make(map[string]Component)
		}
		e.components[name] = c
		e.active = append(e.active, name)
		if e.stage != nil {
			e.stage.addToList(componentListName(name), e)
		}
		c.Added(e)
		e.Trigger("addComponent", c)
	}
	return nil
}

// Del detaches one or more components by name. Unknown or absent names are
// ignored.
func (e *Entity) Del(names ...string) {
	for _, name := range normalizeNames(names) {
		c, ok := e.components[name]
		if !ok {
			continue
		}
		e.Trigger("delComponent", c)
		delete(e.components, name)
		for i, n := range e.active {
			if n == name {
				e.active = append(e.active[:i], e.active[i+1:]...)
				break
			}
		}
		if e.stage != nil {
			e.stage.removeFromList(componentListName(name), e)
		}
		c.Removed()
	}
}

// delAll detaches every component, newest first.
func (e *Entity) delAll() {
	for i := len(e.active) - 1; i >= 0; i-- {
		e.Del(e.active[i])
	}
}

func normalizeNames(names []string) []string {
	var out []string
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

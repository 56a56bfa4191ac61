package grove

// StageSelector is a snapshot of one of a stage's class or ".component"
// lists, taken when the selector is created.
type StageSelector struct {
	stage    *Stage
	selector string
	items    []*Entity
}

// NewStageSelector selects the list named selector on s. A nil stage or
// unknown selector yields an empty selection.
func NewStageSelector(s *Stage, selector string) *StageSelector {
	sel := &StageSelector{stage: s, selector: selector}
	if s != nil {
		sel.items = append([]*Entity(nil), s.lists[selector]...)
	}
	return sel
}

// Len returns the number of selected entities.
func (sel *StageSelector) Len() int { return len(sel.items) }

// Items returns the selection. The returned slice MUST NOT be mutated.
func (sel *StageSelector) Items() []*Entity { return sel.items }

// Each calls fn for every selected entity.
func (sel *StageSelector) Each(fn func(e *Entity)) *StageSelector {
	for _, e := range sel.items {
		fn(e)
	}
	return sel
}

// Invoke calls fn for every selected entity and stops at the first error.
func (sel *StageSelector) Invoke(fn func(e *Entity) error) error {
	for _, e := range sel.items {
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// Trigger fires event on every selected entity.
func (sel *StageSelector) Trigger(event string, data any) *StageSelector {
	return sel.Each(func(e *Entity) { e.Trigger(event, data) })
}

// Destroy destroys every selected entity.
func (sel *StageSelector) Destroy() {
	sel.Each((*Entity).Destroy)
}

// Detect returns the first selected entity for which fn returns true, or
// nil.
func (sel *StageSelector) Detect(fn func(e *Entity) bool) *Entity {
	for _, e := range sel.items {
		if fn(e) {
			return e
		}
	}
	return nil
}

// Set applies fn to every selected entity's props and flags them moved.
func (sel *StageSelector) Set(fn func(p *Props)) *StageSelector {
	for _, e := range sel.items {
		e.Set(fn)
	}
	return sel
}

// At returns the entity at idx, or nil when out of range.
func (sel *StageSelector) At(idx int) *Entity {
	if idx < 0 || idx >= len(sel.items) {
		return nil
	}
	return sel.items[idx]
}

// First returns the first selected entity, or nil.
func (sel *StageSelector) First() *Entity { return sel.At(0) }

// Last returns the last selected entity, or nil.
func (sel *StageSelector) Last() *Entity { return sel.At(len(sel.items) - 1) }

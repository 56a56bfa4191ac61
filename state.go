package grove

import "sort"

// GameState is a global key/value store (score, lives, level) that fires
// "change.<key>" with the new value when a key changes and "change" after
// every Set.
type GameState struct {
	Evented
	p map[string]any
}

// NewGameState creates an empty state.
func NewGameState() *GameState {
	return &GameState{p: make(map[string]any)}
}

// Reset replaces every value with initial and fires "reset". Listeners
// are kept.
func (gs *GameState) Reset(initial map[string]any) {
	gs.p = make(map[string]any, len(initial))
	for k, v := range initial {
		gs.p[k] = v
	}
	gs.Trigger("reset", nil)
}

func (gs *GameState) setOne(key string, value any) {
	if old, ok := gs.p[key]; ok && old == value {
		return
	}
	gs.p[key] = value
	gs.Trigger("change."+key, value)
}

// Set stores one value.
func (gs *GameState) Set(key string, value any) {
	gs.setOne(key, value)
	gs.Trigger("change", nil)
}

// SetAll stores several values in key order and fires "change" once.
func (gs *GameState) SetAll(values map[string]any) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		gs.setOne(k, values[k])
	}
	gs.Trigger("change", nil)
}

// Get returns a value, or nil.
func (gs *GameState) Get(key string) any {
	return gs.p[key]
}

// Float returns a numeric value as float64; missing and non-numeric
// values read as 0.
func (gs *GameState) Float(key string) float64 {
	switch v := gs.p[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Inc adds amount to a numeric value.
func (gs *GameState) Inc(key string, amount float64) {
	gs.Set(key, gs.Float(key)+amount)
}

// Dec subtracts amount from a numeric value.
func (gs *GameState) Dec(key string, amount float64) {
	gs.Set(key, gs.Float(key)-amount)
}

// Mul multiplies a numeric value by amount.
func (gs *GameState) Mul(key string, amount float64) {
	gs.Set(key, gs.Float(key)*amount)
}

package grove

import (
	"testing"
)

// --- Rect.Contains ---

func TestRectContains(t *testing.T) {
	r := Rect{10, 20, 100, 50}
	tests := []struct {
		name   string
		x, y   float64
		expect bool
	}{
		{"inside", 50, 40, true},
		{"top-left corner", 10, 20, true},
		{"bottom-right corner", 110, 70, true},
		{"left edge", 10, 40, true},
		{"right edge", 110, 40, true},
		{"top edge", 50, 20, true},
		{"bottom edge", 50, 70, true},
		{"outside left", 9, 40, false},
		{"outside right", 111, 40, false},
		{"outside above", 50, 19, false},
		{"outside below", 50, 71, false},
		{"far outside", 999, 999, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Contains(tt.x, tt.y)
			if got != tt.expect {
				t.Errorf("Rect%v.Contains(%v, %v) = %v, want %v", r, tt.x, tt.y, got, tt.expect)
			}
		})
	}
}

// --- Rect.Intersects ---

func TestRectIntersects(t *testing.T) {
	base := Rect{10, 10, 100, 100}
	tests := []struct {
		name   string
		other  Rect
		expect bool
	}{
		{"overlapping", Rect{50, 50, 100, 100}, true},
		{"fully contained", Rect{20, 20, 10, 10}, true},
		{"containing", Rect{0, 0, 200, 200}, true},
		{"adjacent right", Rect{110, 10, 50, 50}, true},
		{"adjacent bottom", Rect{10, 110, 50, 50}, true},
		{"adjacent left", Rect{-50, 10, 60, 50}, true},
		{"adjacent top", Rect{10, -50, 50, 60}, true},
		{"disjoint right", Rect{111, 10, 50, 50}, false},
		{"disjoint left", Rect{-100, 10, 50, 50}, false},
		{"disjoint above", Rect{10, -100, 50, 50}, false},
		{"disjoint below", Rect{10, 111, 50, 50}, false},
		{"same rect", Rect{10, 10, 100, 100}, true},
		{"zero-size at corner", Rect{110, 110, 0, 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := base.Intersects(tt.other)
			if got != tt.expect {
				t.Errorf("Rect%v.Intersects(Rect%v) = %v, want %v", base, tt.other, got, tt.expect)
			}
		})
	}
}

// --- ParseColor ---

func TestParseColor(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Color
		ok   bool
	}{
		{"named", "red", Color{1, 0, 0, 1}, true},
		{"mixed case and spaces", "  White ", Color{1, 1, 1, 1}, true},
		{"hex", "#ff8000", Color{1, 128.0 / 255, 0, 1}, true},
		{"hex upper", "#00FF00", Color{0, 1, 0, 1}, true},
		{"short hex", "#fff", Color{}, false},
		{"bad hex", "#zzzzzz", Color{}, false},
		{"unknown", "notacolor", Color{}, false},
		{"empty", "", Color{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseColor(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseColor(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			assertNear(t, "R", got.R, tt.want.R)
			assertNear(t, "G", got.G, tt.want.G)
			assertNear(t, "B", got.B, tt.want.B)
			assertNear(t, "A", got.A, tt.want.A)
		})
	}
}

func TestColorToRGBAPremultiplies(t *testing.T) {
	got := Color{1, 0.5, 0, 0.5}.ToRGBA()
	if got.A != 128 || got.R != 128 || got.G != 64 || got.B != 0 {
		t.Errorf("ToRGBA = %+v, want {128 64 0 128}", got)
	}
	if !(Color{}).IsZero() {
		t.Error("zero Color should report IsZero")
	}
	if ColorWhite.IsZero() {
		t.Error("ColorWhite should not report IsZero")
	}
}

// --- Enum constant values (catch accidental iota drift) ---

func TestEnumValues(t *testing.T) {
	types := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"TypeNone", TypeNone, 0},
		{"TypeDefault", TypeDefault, 1},
		{"TypeParticle", TypeParticle, 2},
		{"TypeActive", TypeActive, 4},
		{"TypeFriendly", TypeFriendly, 8},
		{"TypeEnemy", TypeEnemy, 16},
		{"TypePowerup", TypePowerup, 32},
		{"TypeUI", TypeUI, 64},
		{"TypeAll", TypeAll, 0xFFFF},
	}
	for _, tt := range types {
		if tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
		}
	}

	if FlipNone != 0 || FlipXY != 3 {
		t.Errorf("FlipNone = %d, FlipXY = %d, want 0 and 3", FlipNone, FlipXY)
	}
	if len(flipArgs) != int(FlipXY)+1 {
		t.Errorf("flipArgs has %d entries, want %d", len(flipArgs), FlipXY+1)
	}
}

package core

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestVec2Arithmetic(t *testing.T) {
	a := V(1, 2)
	b := V(3, -4)

	if got := a.Add(b); got != V(4, -2) {
		t.Errorf("Add = %v, expected {4 -2}", got)
	}
	if got := a.Sub(b); got != V(-2, 6) {
		t.Errorf("Sub = %v, expected {-2 6}", got)
	}
	if got := a.Scale(2); got != V(2, 4) {
		t.Errorf("Scale = %v, expected {2 4}", got)
	}
	if got := b.Len(); !approx(got, 5) {
		t.Errorf("Len = %f, expected 5", got)
	}
}

func TestVec2Normalize(t *testing.T) {
	n := V(3, 4).Normalize()
	if !approx(n.Len(), 1) {
		t.Errorf("Normalize should produce unit length, got %f", n.Len())
	}
	if z := V(0, 0).Normalize(); z != V(0, 0) {
		t.Errorf("Normalize of zero vector should stay zero, got %v", z)
	}
}

func TestVec2Rotate(t *testing.T) {
	tests := []struct {
		name  string
		v     Vec2
		angle float64
		want  Vec2
	}{
		{"quarter turn", V(1, 0), math.Pi / 2, V(0, 1)},
		{"half turn", V(1, 0), math.Pi, V(-1, 0)},
		{"no turn", V(2, 3), 0, V(2, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.Rotate(tt.angle)
			if !approx(got.X, tt.want.X) || !approx(got.Y, tt.want.Y) {
				t.Errorf("Rotate(%v, %f) = %v, expected %v", tt.v, tt.angle, got, tt.want)
			}
		})
	}
}

func TestVec2Round(t *testing.T) {
	x, y := V(1.6, -2.4).Round()
	if x != 2 || y != -2 {
		t.Errorf("Round = (%d, %d), expected (2, -2)", x, y)
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 5, 5)

	tests := []struct {
		x, y     int
		expected bool
	}{
		{10, 10, true},
		{14, 14, true},
		{12, 12, true},
		{15, 10, false},
		{10, 15, false},
		{9, 10, false},
	}

	for _, tt := range tests {
		if got := r.Contains(tt.x, tt.y); got != tt.expected {
			t.Errorf("Contains(%d, %d) = %v, expected %v", tt.x, tt.y, got, tt.expected)
		}
	}
}

func TestCenteredRect(t *testing.T) {
	r := CenteredRect(10, 4, 80, 24)
	if r.X != 35 || r.Y != 10 || r.W != 10 || r.H != 4 {
		t.Errorf("CenteredRect = %+v, expected {35 10 10 4}", r)
	}
	cx, cy := r.Center()
	if cx != 40 || cy != 12 {
		t.Errorf("Center = (%d, %d), expected (40, 12)", cx, cy)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, expected int
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
	}

	for _, tt := range tests {
		if got := Clamp(tt.val, tt.min, tt.max); got != tt.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tt.val, tt.min, tt.max, got, tt.expected)
		}
	}
}

func TestWrapAngle(t *testing.T) {
	if got := WrapAngle(-math.Pi / 2); !approx(got, 3*math.Pi/2) {
		t.Errorf("WrapAngle(-π/2) = %f, expected 3π/2", got)
	}
	if got := WrapAngle(5 * math.Pi); !approx(got, math.Pi) {
		t.Errorf("WrapAngle(5π) = %f, expected π", got)
	}
}

func TestMinMax(t *testing.T) {
	if Min(3, 5) != 3 || Max(3, 5) != 5 {
		t.Error("Min/Max returned wrong values")
	}
}

package mapgpu

import (
	"math"
	"testing"

	"golang.org/x/image/math/f32"
)

func nearlyEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestMultiply(t *testing.T) {
	tests := []struct {
		name string
		a, b f32.Mat4
		x, y float32
		want [2]float32
	}{
		{"identity", Identity(), Identity(), 3, 4, [2]float32{3, 4}},
		{"translate", Translate(10, 20, 0), Identity(), 1, 2, [2]float32{11, 22}},
		{"scale then translate", Translate(10, 0, 0), Scale(2, 3, 1), 1, 1, [2]float32{12, 3}},
		{"translate then scale", Scale(2, 3, 1), Translate(10, 0, 0), 1, 1, [2]float32{22, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := TransformPoint(Multiply(tt.a, tt.b), tt.x, tt.y)
			if !nearlyEqual(x, tt.want[0]) || !nearlyEqual(y, tt.want[1]) {
				t.Errorf("got (%v, %v), want %v", x, y, tt.want)
			}
		})
	}
}

func TestMultiplyIdentity(t *testing.T) {
	m := Multiply(Translate(1, 2, 3), Scale(4, 5, 6))
	if got := Multiply(Identity(), m); got != m {
		t.Errorf("I*m = %v, want %v", got, m)
	}
	if got := Multiply(m, Identity()); got != m {
		t.Errorf("m*I = %v, want %v", got, m)
	}
}

func TestTransformPointPerspective(t *testing.T) {
	m := Identity()
	m[15] = 2
	x, y := TransformPoint(m, 4, 6)
	if x != 2 || y != 3 {
		t.Errorf("got (%v, %v), want (2, 3)", x, y)
	}
}

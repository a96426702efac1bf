package mapgpu

import "golang.org/x/image/math/f32"

// Matrices are 4x4, row-major, and transform column vectors:
//
//	| m[0]  m[1]  m[2]  m[3]  |
//	| m[4]  m[5]  m[6]  m[7]  |
//	| m[8]  m[9]  m[10] m[11] |
//	| m[12] m[13] m[14] m[15] |
//
// Shader uniform handles transpose on upload.

// Identity returns the identity matrix.
func Identity() f32.Mat4 {
	return f32.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) f32.Mat4 {
	return f32.Mat4{
		1, 0, 0, x,
		0, 1, 0, y,
		0, 0, 1, z,
		0, 0, 0, 1,
	}
}

// Scale returns a scaling matrix.
func Scale(x, y, z float32) f32.Mat4 {
	return f32.Mat4{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}
}

// Multiply returns a*b, the transform that applies b first.
func Multiply(a, b f32.Mat4) f32.Mat4 {
	var m f32.Mat4
	for r := range 4 {
		for c := range 4 {
			var s float32
			for k := range 4 {
				s += a[r*4+k] * b[k*4+c]
			}
			m[r*4+c] = s
		}
	}
	return m
}

// TransformPoint applies m to the point (x, y, 0, 1) and returns x and y
// after the perspective divide.
func TransformPoint(m f32.Mat4, x, y float32) (float32, float32) {
	tx := m[0]*x + m[1]*y + m[3]
	ty := m[4]*x + m[5]*y + m[7]
	w := m[12]*x + m[13]*y + m[15]
	if w != 0 && w != 1 {
		tx /= w
		ty /= w
	}
	return tx, ty
}

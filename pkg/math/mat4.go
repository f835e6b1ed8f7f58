package math

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Mat4 is a 4x4 matrix in column-major order (OpenGL compatible).
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type Mat4 [16]float32

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) Mat4 {
	m := Identity()
	m[12] = x
	m[13] = y
	m[14] = z
	return m
}

// Scale returns a uniform scale matrix.
func Scale(s float32) Mat4 {
	m := Identity()
	m[0] = s
	m[5] = s
	m[10] = s
	return m
}

// RotateX returns a rotation matrix around the X axis.
// angle is in radians; +Y is carried towards -Z.
func RotateX(angle float32) Mat4 {
	c, s := math32.Cos(angle), math32.Sin(angle)
	m := Identity()
	m[5] = c
	m[6] = -s
	m[9] = s
	m[10] = c
	return m
}

// RotateY returns a rotation matrix around the Y axis.
// angle is in radians; +X is carried towards +Z.
func RotateY(angle float32) Mat4 {
	c, s := math32.Cos(angle), math32.Sin(angle)
	m := Identity()
	m[0] = c
	m[2] = s
	m[8] = -s
	m[10] = c
	return m
}

// Perspective returns a right-handed perspective projection matrix that maps
// [near, far] to clip-space [-1, 1].
// fovY is in radians, aspect is width/height. A zero fov or aspect is not
// rejected and produces infinite terms.
func Perspective(fovY, aspect, near, far float32) Mat4 {
	f := 1 / math32.Tan(fovY/2)
	nf := 1 / (near - far)

	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, -1,
		0, 0, 2 * far * near * nf, 0,
	}
}

// LookAt returns a view matrix looking from eye to center with up direction.
// The result translates by -eye first, then rotates into camera space where
// the camera looks down -Z.
// It fails when eye == center or when the view direction is parallel to up.
func LookAt(eye, center, up Vec3) (Mat4, error) {
	f, err := center.Sub(eye).Normalize()
	if err != nil {
		return Mat4{}, fmt.Errorf("look direction: %w", err)
	}
	side, err := f.Cross(up)
	if err != nil {
		return Mat4{}, fmt.Errorf("side axis: %w", err)
	}
	s, err := side.Normalize()
	if err != nil {
		return Mat4{}, fmt.Errorf("side axis: %w", err)
	}
	u, err := s.Cross(f)
	if err != nil {
		return Mat4{}, fmt.Errorf("up axis: %w", err)
	}

	rot := Identity()
	rot[0], rot[4], rot[8] = s.X, s.Y, s.Z
	rot[1], rot[5], rot[9] = u.X, u.Y, u.Z
	rot[2], rot[6], rot[10] = -f.X, -f.Y, -f.Z

	return rot.Mul(Translate(-eye.X, -eye.Y, -eye.Z)), nil
}

// Mul multiplies this matrix by another (m * other): other is applied first.
func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for i := 0; i < 4; i++ {
				sum += m[row+i*4] * other[i+col*4]
			}
			result[row+col*4] = sum
		}
	}
	return result
}

// TransformPoint transforms a point by this matrix (w=1), applying the
// perspective divide when w is neither 0 nor 1.
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	x := m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12]
	y := m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13]
	z := m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14]
	w := m[3]*p.X + m[7]*p.Y + m[11]*p.Z + m[15]
	if w != 0 && w != 1 {
		return Vec3{x / w, y / w, z / w}
	}
	return Vec3{x, y, z}
}

// TransformDirection transforms a direction vector (ignores translation).
func (m Mat4) TransformDirection(d Vec3) Vec3 {
	return Vec3{
		m[0]*d.X + m[4]*d.Y + m[8]*d.Z,
		m[1]*d.X + m[5]*d.Y + m[9]*d.Z,
		m[2]*d.X + m[6]*d.Y + m[10]*d.Z,
	}
}

// Ptr returns a pointer to the first element (for OpenGL uniform calls).
func (m *Mat4) Ptr() *float32 {
	return &m[0]
}

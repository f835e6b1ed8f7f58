package scene

import "github.com/Faultbox/stlview/pkg/math"

// MeshHandle is a mesh resident on the GPU. The renderer owns the
// underlying buffers; the scene only draws and releases them.
type MeshHandle interface {
	IndexCount() int32
	Release()
}

// Object is one placed instance of a mesh.
type Object struct {
	Name string
	Mesh MeshHandle

	// Base is the fixed placement set at load time.
	Base math.Mat4

	Angle        float32 // radians about the local Y axis
	AngularSpeed float32 // radians per second
	ScaleFactor  float32
}

// NewObject places mesh at position with unit scale and no spin.
func NewObject(name string, mesh MeshHandle, position math.Vec3) *Object {
	return &Object{
		Name:        name,
		Mesh:        mesh,
		Base:        math.Translate(position.X, position.Y, position.Z),
		ScaleFactor: 1,
	}
}

// Advance spins the object for dt seconds.
func (o *Object) Advance(dt float32) {
	o.Angle += o.AngularSpeed * dt
}

// ModelMatrix returns Base * RotateY(Angle) * Scale(ScaleFactor*globalScale).
// Scale and spin act in object space, so the base translation is never
// scaled or rotated by them.
func (o *Object) ModelMatrix(globalScale float32) math.Mat4 {
	return o.Base.
		Mul(math.RotateY(o.Angle)).
		Mul(math.Scale(o.ScaleFactor * globalScale))
}

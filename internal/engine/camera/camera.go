// Package camera provides the fly-through camera used by the viewer.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/stlview/pkg/math"
)

// Movement is a set of active movement directions.
type Movement uint8

// Movement directions. Opposite directions held together cancel out.
const (
	Forward Movement = 1 << iota
	Backward
	Left
	Right
	Up
	Down
)

// Has reports whether all directions in d are active.
func (m Movement) Has(d Movement) bool {
	return m&d == d
}

// worldUp is the fixed vertical axis for movement and the view matrix.
var worldUp = math.UnitY

// FlyCamera is a free-flying first person camera.
type FlyCamera struct {
	Position math.Vec3
	Yaw      float32 // radians, 0 looks down -Z
	Pitch    float32 // radians, positive looks down

	Speed         float32 // units per second along forward/right
	VerticalSpeed float32 // units per second along world up
	Sensitivity   float32 // radians per pointer unit

	MinPitch float32
	MaxPitch float32
}

// NewFlyCamera creates a camera at position with default settings.
func NewFlyCamera(position math.Vec3) *FlyCamera {
	return &FlyCamera{
		Position:      position,
		Speed:         10,
		VerticalSpeed: 10,
		Sensitivity:   0.001,
		MinPitch:      -1.5,
		MaxPitch:      1.5,
	}
}

// Forward returns the unit view direction.
func (c *FlyCamera) Forward() math.Vec3 {
	sy, cy := math32.Sin(c.Yaw), math32.Cos(c.Yaw)
	sp, cp := math32.Sin(c.Pitch), math32.Cos(c.Pitch)
	return math.Vec3{X: -sy * cp, Y: -sp, Z: -cy * cp}
}

// Right returns the horizontal unit vector to the right of the view.
func (c *FlyCamera) Right() math.Vec3 {
	sy, cy := math32.Sin(c.Yaw), math32.Cos(c.Yaw)
	return math.Vec3{X: cy, Y: 0, Z: -sy}
}

// Look turns the camera by a pointer delta.
func (c *FlyCamera) Look(dx, dy float32) {
	c.Yaw += dx * c.Sensitivity
	c.Pitch -= dy * c.Sensitivity

	// Clamp pitch
	if c.Pitch < c.MinPitch {
		c.Pitch = c.MinPitch
	}
	if c.Pitch > c.MaxPitch {
		c.Pitch = c.MaxPitch
	}
}

// Move translates the camera along every active direction for dt seconds.
func (c *FlyCamera) Move(m Movement, dt float32) {
	forward := c.Forward()
	right := c.Right()
	step := c.Speed * dt
	lift := c.VerticalSpeed * dt

	if m.Has(Forward) {
		c.Position = c.Position.Add(forward.Scale(step))
	}
	if m.Has(Backward) {
		c.Position = c.Position.Sub(forward.Scale(step))
	}
	if m.Has(Right) {
		c.Position = c.Position.Add(right.Scale(step))
	}
	if m.Has(Left) {
		c.Position = c.Position.Sub(right.Scale(step))
	}
	if m.Has(Up) {
		c.Position = c.Position.Add(worldUp.Scale(lift))
	}
	if m.Has(Down) {
		c.Position = c.Position.Sub(worldUp.Scale(lift))
	}
}

// ViewMatrix returns the view matrix for the current position and angles.
func (c *FlyCamera) ViewMatrix() (math.Mat4, error) {
	return math.LookAt(c.Position, c.Position.Add(c.Forward()), worldUp)
}

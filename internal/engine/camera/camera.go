// Package camera provides the orbit camera the viewer looks at a model with.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshview/internal/engine/model"
	"github.com/Faultbox/meshview/internal/engine/picking"
	"github.com/Faultbox/meshview/pkg/math"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	// Center point to orbit around
	Center math.Vec3

	// Spherical coordinates
	Distance  float32 // Distance from center
	RotationX float32 // Pitch (vertical angle, radians)
	RotationY float32 // Yaw (horizontal angle, radians)

	// Projection
	FovY      float32 // Vertical field of view, radians
	Near, Far float32

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates an orbit camera framed for a normalized model.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        2.5,
		RotationX:       0.5,
		FovY:            math.DegToRad(45),
		Near:            0.01,
		Far:             100,
		MinDistance:     0.1,
		MaxDistance:     50,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cosX := math32.Cos(c.RotationX)
	offset := math.Vec3{
		X: c.Distance * cosX * math32.Sin(c.RotationY),
		Y: c.Distance * math32.Sin(c.RotationX),
		Z: c.Distance * cosX * math32.Cos(c.RotationY),
	}
	return c.Center.Add(offset)
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Y: 1})
}

// ProjectionMatrix returns the perspective projection for the given aspect ratio.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	return math.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *OrbitCamera) ViewProjection(aspect float32) math.Mat4 {
	return c.ProjectionMatrix(aspect).Mul(c.ViewMatrix())
}

// ScreenRay returns the world-space ray through pixel (x, y) of a viewport.
func (c *OrbitCamera) ScreenRay(x, y, width, height float32) picking.Ray {
	inv := c.ViewProjection(width / height).Inverse()
	return picking.ScreenToRay(x, y, width, height, inv)
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX += deltaY * c.DragSensitivity

	// Clamp pitch
	if c.RotationX < c.MinPitch {
		c.RotationX = c.MinPitch
	}
	if c.RotationX > c.MaxPitch {
		c.RotationX = c.MaxPitch
	}
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}

// FitToBounds centres the camera on box and backs off until the whole box
// fits the vertical field of view. An invalid box leaves the camera alone.
func (c *OrbitCamera) FitToBounds(box model.BoundingBox) {
	if !box.Valid {
		return
	}
	c.Center = box.Center()

	radius := box.Size().Length() / 2
	if radius == 0 {
		radius = 0.5
	}
	c.Distance = radius / math32.Sin(c.FovY/2)
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}

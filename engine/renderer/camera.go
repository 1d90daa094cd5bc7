package renderer

import (
	"github.com/vesta-engine/vesta/engine/math"
)

// Camera is a simple look-from camera producing the view and projection
// matrices for a scene uniform buffer.
type Camera struct {
	position math.Vec3
	rotation math.Vec3

	fovRadians  float32
	aspectRatio float32
	nearClip    float32
	farClip     float32

	view       math.Mat4
	projection math.Mat4
	viewDirty  bool
}

func NewCamera(fovDegrees, aspectRatio, nearClip, farClip float32) *Camera {
	c := &Camera{
		fovRadians:  math.DegToRad(fovDegrees),
		aspectRatio: aspectRatio,
		nearClip:    nearClip,
		farClip:     farClip,
		viewDirty:   true,
	}
	c.projection = math.NewMat4Perspective(c.fovRadians, aspectRatio, nearClip, farClip)
	return c
}

func (c *Camera) SetAspectRatio(aspectRatio float32) {
	if aspectRatio == c.aspectRatio || aspectRatio == 0 {
		return
	}
	c.aspectRatio = aspectRatio
	c.projection = math.NewMat4Perspective(c.fovRadians, aspectRatio, c.nearClip, c.farClip)
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.position = position
	c.viewDirty = true
}

func (c *Camera) Position() math.Vec3 {
	return c.position
}

func (c *Camera) SetRotation(eulerRadians math.Vec3) {
	c.rotation = eulerRadians
	c.viewDirty = true
}

func (c *Camera) Projection() math.Mat4 {
	return c.projection
}

// View lazily rebuilds the view matrix after position or rotation change.
func (c *Camera) View() math.Mat4 {
	if c.viewDirty {
		rotation := math.NewMat4EulerXYZ(c.rotation.X, c.rotation.Y, c.rotation.Z)
		forward := math.NewVec3Forward().Transform(rotation)
		target := c.position.Add(forward)
		c.view = math.NewMat4LookAt(c.position, target, math.NewVec3Up())
		c.viewDirty = false
	}
	return c.view
}

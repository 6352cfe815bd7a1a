/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package sample

import (
	"dirpx.dev/rtti"
)

// DefaultFOV is the field of view of a new camera, in degrees.
const DefaultFOV float32 = 45

// Component is the base of every scene component.
type Component struct {
	Name   string
	Active bool
}

// SetActive toggles the component.
func (c *Component) SetActive(on bool) { c.Active = on }

// SimpleMovement2D oscillates an entity in the plane.
type SimpleMovement2D struct {
	Component
	Offset  [2]float32
	Elapsed float32
	Speed   float32
}

// Update advances the movement by dt seconds.
func (m *SimpleMovement2D) Update(dt float32) {
	m.Elapsed += dt * m.Speed
}

// Reset rewinds the movement.
func (m *SimpleMovement2D) Reset() { m.Elapsed = 0 }

// SimpleMovement3D moves an entity along an offset.
type SimpleMovement3D struct {
	Component
	Offset [4]float32
	Speed  float32
}

// CameraComponent is a fly-through camera.
type CameraComponent struct {
	Component
	FlySpeed float32
	fov      float32
	near     float32
	far      float32
}

// Construct sets the camera defaults.
func (c *CameraComponent) Construct() {
	c.Active = true
	c.FlySpeed = 100
	c.fov = DefaultFOV
	c.near = 0.5
	c.far = 1200
}

// TypeDescription implements apis.Described.
func (CameraComponent) TypeDescription() string { return "fly-through camera" }

// FOV returns the field of view in degrees.
func (c *CameraComponent) FOV() float32 { return c.fov }

// SetPlanes sets both clip planes.
func (c *CameraComponent) SetPlanes(near, far float32) {
	c.near = clampPlane(near)
	c.far = clampPlane(far)
}

func clampPlane(v float32) float32 {
	return max(v, 0.01)
}

var (
	// ComponentType describes Component.
	ComponentType = rtti.MustRegister("Component", func(tb *rtti.TypeBuilder[Component]) {
		rtti.Fields(tb)
		rtti.Action1(tb, "set_active", (*Component).SetActive)
	})

	// SimpleMovement2DType describes SimpleMovement2D.
	SimpleMovement2DType = rtti.MustRegister("SimpleMovement2D", func(tb *rtti.TypeBuilder[SimpleMovement2D]) {
		rtti.Parent(tb, func(m *SimpleMovement2D) *Component { return &m.Component })
		rtti.Fields(tb)
		rtti.Action1(tb, "update", (*SimpleMovement2D).Update)
		rtti.Action0(tb, "reset", (*SimpleMovement2D).Reset)
	})

	// SimpleMovement3DType describes SimpleMovement3D.
	SimpleMovement3DType = rtti.MustRegister("SimpleMovement3D", func(tb *rtti.TypeBuilder[SimpleMovement3D]) {
		rtti.Parent(tb, func(m *SimpleMovement3D) *Component { return &m.Component })
		rtti.Fields(tb)
	})

	// CameraComponentType describes CameraComponent.
	CameraComponentType = rtti.MustRegister("CameraComponent", func(tb *rtti.TypeBuilder[CameraComponent]) {
		rtti.Parent(tb, func(c *CameraComponent) *Component { return &c.Component })
		rtti.Field(tb, "fly_speed", func(c *CameraComponent) *float32 { return &c.FlySpeed })
		rtti.Range(tb, "fov",
			func(c *CameraComponent) float32 { return c.fov },
			func(c *CameraComponent, v float32) { c.fov = v },
			0.01, 180)
		rtti.Accessor(tb, "near_plane",
			func(c *CameraComponent) float32 { return c.near },
			func(c *CameraComponent, v float32) { c.near = clampPlane(v) })
		rtti.Accessor(tb, "far_plane",
			func(c *CameraComponent) float32 { return c.far },
			func(c *CameraComponent, v float32) { c.far = clampPlane(v) })
		rtti.Action2(tb, "set_planes", (*CameraComponent).SetPlanes)
	})
)

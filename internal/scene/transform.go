package scene

import (
	"github.com/chewxy/math32"
)

// Vec3 is a position, euler rotation in degrees, or scale
type Vec3 struct {
	X float32 `json:"x" yaml:"x"`
	Y float32 `json:"y" yaml:"y"`
	Z float32 `json:"z" yaml:"z"`
}

// V3 returns a new Vec3
func V3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Uniform returns a Vec3 with all components set to s
func Uniform(s float32) Vec3 {
	return Vec3{X: s, Y: s, Z: s}
}

// Mul returns the component-wise product
func (v Vec3) Mul(o Vec3) Vec3 {
	return Vec3{X: v.X * o.X, Y: v.Y * o.Y, Z: v.Z * o.Z}
}

// MulScalar returns v scaled by s
func (v Vec3) MulScalar(s float32) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Quat is a rotation quaternion
type Quat struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
	W float32 `json:"w"`
}

// Transform is a fully resolved local transform
type Transform struct {
	Position Vec3 `json:"position"`
	Rotation Vec3 `json:"rotation"` // euler degrees
	Scale    Vec3 `json:"scale"`
}

// IdentityTransform has zero offset, no rotation and unit scale
func IdentityTransform() Transform {
	return Transform{Scale: Uniform(1)}
}

// Quaternion converts the euler rotation (degrees, applied Y then X then Z)
// into a quaternion
func (t Transform) Quaternion() Quat {
	const degToRad = math32.Pi / 180
	hx := t.Rotation.X * degToRad / 2
	hy := t.Rotation.Y * degToRad / 2
	hz := t.Rotation.Z * degToRad / 2

	sx, cx := math32.Sin(hx), math32.Cos(hx)
	sy, cy := math32.Sin(hy), math32.Cos(hy)
	sz, cz := math32.Sin(hz), math32.Cos(hz)

	return Quat{
		X: cy*sx*cz + sy*cx*sz,
		Y: sy*cx*cz - cy*sx*sz,
		Z: cy*cx*sz - sy*sx*cz,
		W: cy*cx*cz + sy*sx*sz,
	}
}

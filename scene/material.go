package scene

import "github.com/vegatrace/vega/types"

// A material consists of a set of vector and scalar parameters that define
// the surface characteristics of the primitives that reference it.
type Material struct {
	Name string

	// Diffuse/albedo color.
	Kd types.Vec3

	// Specular color.
	Ks types.Vec3

	// Emissive color.
	Ke types.Vec3

	// Index of refraction.
	Ni float32

	// Roughness.
	Roughness float32
}

// Returns true if the material emits light.
func (m *Material) IsEmissive() bool {
	return m.Ke.Len() > 0
}

package scene

import (
	"errors"
	"fmt"

	"github.com/vegatrace/vega/types"
)

var (
	ErrMissingCamera    = errors.New("scene: no camera defined")
	ErrMissingGeometry  = errors.New("scene: no triangle geometry defined")
	ErrMissingMaterials = errors.New("scene: no materials defined")
)

// A lat-long environment map used for shading rays that miss all scene
// geometry. Data is stored as packed rgb float32 triplets.
type EnvMap struct {
	Width  uint32
	Height uint32
	Data   []float32
}

// Sample the environment map in the given world-space direction.
func (e *EnvMap) Sample(dir types.Vec3) types.Vec3 {
	u := 0.5 + atan2f(dir[2], dir[0])/(2.0*pi)
	v := 0.5 - asinf(dir[1])/pi

	x := uint32(u * float32(e.Width-1))
	y := uint32(v * float32(e.Height-1))
	offset := (y*e.Width + x) * 3
	return types.Vec3{e.Data[offset], e.Data[offset+1], e.Data[offset+2]}
}

// The scene type aggregates the camera, the compiled triangle geometry with
// its BVH, the material list and the optional environment map. Scenes are
// assembled by the compiler package and can be serialized by the writer
// package.
type Scene struct {
	Camera *Camera

	// Triangles are ordered so that each BVH leaf references a
	// contiguous range.
	Triangles []Triangle
	Nodes     []BvhNode

	Materials []Material

	// Static background color used when no environment map is present.
	BgColor types.Vec3
	Env     *EnvMap

	// Maps instance identifiers to human-readable render node names.
	InstanceNames []string
}

// InstanceName returns the render node name for an instance identifier.
func (s *Scene) InstanceName(instanceID uint32) string {
	if int(instanceID) < len(s.InstanceNames) {
		return s.InstanceNames[instanceID]
	}
	return fmt.Sprintf("instance-%d", instanceID)
}

// Valid performs basic sanity checks on the assembled scene.
func (s *Scene) Valid() error {
	if s.Camera == nil {
		return ErrMissingCamera
	}
	if len(s.Triangles) == 0 || len(s.Nodes) == 0 {
		return ErrMissingGeometry
	}
	if len(s.Materials) == 0 {
		return ErrMissingMaterials
	}
	for index, tri := range s.Triangles {
		if int(tri.MaterialIndex) >= len(s.Materials) {
			return fmt.Errorf("scene: triangle %d references undefined material %d", index, tri.MaterialIndex)
		}
	}
	return nil
}

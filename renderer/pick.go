package renderer

import (
	"github.com/vegatrace/vega/scene"
	"github.com/vegatrace/vega/types"
)

// InstanceID value reported when a pick ray misses all geometry.
const NoInstance = ^uint32(0)

const pickMaxDist float32 = 1e30

// PickResult describes the closest scene intersection under a pixel.
type PickResult struct {
	InstanceID uint32
	Name       string
	TriIndex   uint32
	HitT       float32
	Point      types.Vec3
}

// Hit reports whether the pick ray intersected any geometry.
func (p PickResult) Hit() bool {
	return p.InstanceID != NoInstance
}

// Pick casts a camera ray through the center of the given pixel and
// returns the closest intersection. The call drains in-flight frames
// first so the intersected geometry matches what is on screen.
func (r *defaultRenderer) Pick(x, y uint32) PickResult {
	r.queue.WaitIdle()

	w, h := r.targets.Size()
	if x >= w || y >= h {
		return PickResult{InstanceID: NoInstance, HitT: -1}
	}

	camera := r.sc.Camera
	texelX := (float32(x) + 0.5) / float32(w)
	texelY := (float32(y) + 0.5) / float32(h)

	top := camera.Frustrum[0].Vec3().Mul(1 - texelX).Add(camera.Frustrum[1].Vec3().Mul(texelX))
	bottom := camera.Frustrum[2].Vec3().Mul(1 - texelX).Add(camera.Frustrum[3].Vec3().Mul(texelX))
	dir := top.Mul(1 - texelY).Add(bottom.Mul(texelY)).Normalize()

	hit, found := r.sc.Intersect(scene.Ray{
		Origin: camera.Position,
		Dir:    dir,
		MaxT:   pickMaxDist,
	})
	if !found || hit.HitT <= 0 {
		return PickResult{InstanceID: NoInstance, HitT: -1}
	}

	return PickResult{
		InstanceID: hit.InstanceID,
		Name:       r.sc.InstanceName(hit.InstanceID),
		TriIndex:   hit.TriIndex,
		HitT:       hit.HitT,
		Point:      hit.Point,
	}
}

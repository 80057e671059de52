package tracer

import (
	"github.com/vegatrace/vega/device"
	"github.com/vegatrace/vega/scene"
	"github.com/vegatrace/vega/types"
)

// FrameUniforms mirror the per-frame constants uploaded to the trace
// stages before each frame. They are copied out of the camera when the
// frame is recorded; recorded ops must never chase live scene state,
// which may mutate while the frame is still in flight.
type FrameUniforms struct {
	InvViewProj types.Mat4
	CameraPos   types.Vec3

	// Corner rays for primary ray interpolation.
	Frustrum scene.Frustrum

	// Background color used for rays that miss all geometry when the
	// scene defines no environment map.
	BgColor types.Vec3

	// Environment map rotation around the Y axis in radians.
	EnvRotation float32
}

// PushConstants carry the per-frame scalar state consumed by the trace
// stages.
type PushConstants struct {
	// Number of frames accumulated so far including the current one.
	// Must be >= 1.
	Frame uint32

	MaxDepth   uint32
	MaxSamples uint32

	// Seed for the per-frame random sequences.
	Seed uint32
}

// Context groups the inputs and render targets for recording one frame of
// trace work.
type Context struct {
	Scene *scene.Scene

	Uniforms FrameUniforms
	Push     PushConstants

	// Accumulation target and the guide channels handed to the denoiser.
	Raw    *device.Image
	Albedo *device.Image
	Normal *device.Image

	// Primary hit distances; optional.
	Depth *device.Image

	// Tonemap input and output. Source normally aliases Raw or the
	// denoised image depending on what the caller wants displayed.
	Source  *device.Image
	Display *device.Image

	// HDR to LDR exposure multiplier.
	Exposure float32
}

// A PipelineStage generates an op that performs a subset of the frame work
// when executed by the render queue.
type PipelineStage func(ctx *Context) device.Op

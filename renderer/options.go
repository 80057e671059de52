package renderer

import "github.com/vegatrace/vega/types"

// Options capture the immutable renderer startup parameters.
type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Accelerator device selection; an empty filter matches any device.
	DeviceFilter string

	// Initial runtime settings.
	Settings Settings
}

// Settings hold the runtime-tunable render parameters. They are only read
// at the start of a frame; mutations happen between frames via
// Renderer.ApplySettings.
type Settings struct {
	// Accumulation stops once this many frames have been blended from
	// the current camera pose.
	MaxFrames int64

	// Samples emitted per pixel per frame.
	MaxSamples uint32

	// Maximum path depth for indirect bounces.
	MaxDepth uint32

	// Master switch for the denoising accelerator.
	DenoiseApply bool

	// Run the denoiser on the very first accumulated frame instead of
	// waiting for a full accumulation window.
	DenoiseFirstFrame bool

	// Run the denoiser every N accumulated frames.
	DenoiseEveryNFrames int64

	// Mix factor between the filtered and the unfiltered image;
	// 0 shows the fully filtered output.
	DenoiseBlend float32

	// Exposure for tonemapping.
	Exposure float32

	// Environment map rotation around the Y axis in radians.
	EnvRotation float32

	// Background color for rays that miss all geometry when the scene
	// has no environment map.
	BgColor types.Vec3
}

// DefaultSettings returns the stock render settings.
func DefaultSettings() Settings {
	return Settings{
		MaxFrames:           200000,
		MaxSamples:          1,
		MaxDepth:            5,
		DenoiseApply:        true,
		DenoiseFirstFrame:   false,
		DenoiseEveryNFrames: 100,
		DenoiseBlend:        0,
		Exposure:            1,
		EnvRotation:         0,
		BgColor:             types.Vec3{1, 1, 1},
	}
}

package cmd

import (
	"errors"
	"image"
	"image/png"
	"os"
	"runtime"
	"time"

	"github.com/urfave/cli"
	"github.com/vegatrace/vega/denoiser"
	clDenoiser "github.com/vegatrace/vega/denoiser/opencl"
	"github.com/vegatrace/vega/renderer"
	"github.com/vegatrace/vega/scene"
	"github.com/vegatrace/vega/scene/reader"
)

// Render a still frame to a png file.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, opts, err := setupRender(ctx)
	if err != nil {
		return err
	}

	service := attachDenoiser(ctx)
	r, err := renderer.NewDefault(sc, service, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	frames := int64(ctx.Int("frames"))
	if frames > 0 && frames < opts.Settings.MaxFrames {
		opts.Settings.MaxFrames = frames
		r.ApplySettings(opts.Settings)
	}

	logger.Noticef("accumulating up to %d frames", opts.Settings.MaxFrames)
	start := time.Now()
	for {
		if err = r.Render(); err != nil {
			return err
		}
		if r.Stats().Frozen {
			break
		}
	}
	logger.Noticef("rendered %d frames in %d ms", r.Stats().Frame+1, time.Since(start).Nanoseconds()/1e6)

	return exportPNG(r.Snapshot(), ctx.String("out"))
}

// Use opengl to render a continuously updating view of the display target.
func RenderInteractive(ctx *cli.Context) error {
	setupLogging(ctx)

	// The opengl context and the glfw event loop must stay on one thread.
	runtime.LockOSThread()

	sc, opts, err := setupRender(ctx)
	if err != nil {
		return err
	}

	r, err := renderer.NewInteractive(sc, attachDenoiser(ctx), opts)
	if err != nil {
		return err
	}
	defer r.Close()

	return r.Render()
}

// Parse the shared render flags and load the scene argument.
func setupRender(ctx *cli.Context) (*scene.Scene, renderer.Options, error) {
	var opts renderer.Options

	if ctx.NArg() != 1 {
		return nil, opts, errors.New("missing scene file argument")
	}

	settings := renderer.DefaultSettings()
	settings.MaxSamples = uint32(ctx.Int("spp"))
	settings.MaxDepth = uint32(ctx.Int("max-depth"))
	settings.DenoiseApply = !ctx.Bool("no-denoise")
	settings.DenoiseFirstFrame = ctx.Bool("denoise-first-frame")
	if everyN := int64(ctx.Int("denoise-every")); everyN > 0 {
		settings.DenoiseEveryNFrames = everyN
	}
	settings.DenoiseBlend = float32(ctx.Float64("denoise-blend"))
	settings.Exposure = float32(ctx.Float64("exposure"))
	settings.EnvRotation = float32(ctx.Float64("env-rotation"))

	opts = renderer.Options{
		FrameW:       uint32(ctx.Int("width")),
		FrameH:       uint32(ctx.Int("height")),
		DeviceFilter: ctx.String("device"),
		Settings:     settings,
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return nil, opts, err
	}
	if sc.Env == nil {
		opts.Settings.BgColor = sc.BgColor
	}

	return sc, opts, nil
}

// Set up the denoising accelerator when one is available. A nil service
// degrades the renderer to direct-only submissions.
func attachDenoiser(ctx *cli.Context) denoiser.Service {
	if ctx.Bool("no-denoise") {
		return nil
	}
	if !clDenoiser.Available() {
		logger.Notice("no denoising accelerator available; falling back to direct submissions")
		return nil
	}

	service, err := clDenoiser.NewDenoiser(ctx.String("device"))
	if err != nil {
		logger.Warningf("could not attach denoiser: %v", err)
		return nil
	}
	return service
}

func exportPNG(img *image.RGBA, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	start := time.Now()
	if err = png.Encode(f, img); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s in %d ms", path, time.Since(start).Nanoseconds()/1e6)
	return nil
}

package cmd

import (
	"errors"
	"fmt"
	"image"

	"github.com/urfave/cli"
	"github.com/vegatrace/vega/device"
	"github.com/vegatrace/vega/scene/reader"
	"github.com/vegatrace/vega/tracer"
)

// Trace a single frame and dump the accumulation target plus the albedo
// and normal guide channels to png files.
func Debug(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	frameW := uint32(ctx.Int("width"))
	frameH := uint32(ctx.Int("height"))
	sc.Camera.SetupProjection(float32(frameW) / float32(frameH))

	display, err := device.NewImage(device.FmtRGBA8, frameW, frameH)
	if err != nil {
		return err
	}
	var gbuffer [3]*device.Image
	for i := range gbuffer {
		if gbuffer[i], err = device.NewImage(device.FmtRGBA32F, frameW, frameH); err != nil {
			return err
		}
	}

	tctx := &tracer.Context{
		Scene: sc,
		Push: tracer.PushConstants{
			Frame:      1,
			MaxDepth:   uint32(ctx.Int("max-depth")),
			MaxSamples: uint32(ctx.Int("spp")),
		},
		Raw:      gbuffer[0],
		Albedo:   gbuffer[1],
		Normal:   gbuffer[2],
		Source:   gbuffer[0],
		Display:  display,
		Exposure: float32(ctx.Float64("exposure")),
	}
	if sc.Env == nil {
		tctx.Uniforms.BgColor = sc.BgColor
	}

	pipeline := tracer.DefaultPipeline()
	stream := device.NewCommandStream("debug")
	stream.Reset()
	stream.Begin()
	pipeline.RecordTrace(tctx, stream)
	pipeline.RecordTonemap(tctx, stream)
	stream.End()

	queue := device.NewQueue("debug")
	defer queue.Close()
	if err = queue.SubmitAndWait(device.Submission{Streams: []*device.CommandStream{stream}}); err != nil {
		return err
	}

	outPrefix := ctx.String("out")
	img := image.NewRGBA(image.Rect(0, 0, int(frameW), int(frameH)))
	copy(img.Pix, display.U8)
	if err = exportPNG(img, outPrefix+".png"); err != nil {
		return err
	}

	channels := map[string]*device.Image{
		"albedo": gbuffer[1],
		"normal": gbuffer[2],
	}
	for name, src := range channels {
		if err = exportPNG(f32ToRGBA(src), fmt.Sprintf("%s-%s.png", outPrefix, name)); err != nil {
			return err
		}
	}
	return nil
}

// Clamp a float32 rgba image into an 8-bit one. Negative components
// clamp to zero.
func f32ToRGBA(src *device.Image) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(src.W), int(src.H)))
	for i, v := range src.F32 {
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		img.Pix[i] = uint8(v*255 + 0.5)
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

package tracer

import (
	"math"

	"github.com/vegatrace/vega/device"
)

const invGamma = 1.0 / 2.2

// TonemapFrame returns a stage that maps the HDR source image into the LDR
// display image using simple Reinhard tonemapping followed by gamma
// correction.
func TonemapFrame() PipelineStage {
	return func(ctx *Context) device.Op {
		return func() error {
			source := ctx.Source
			display := ctx.Display

			exposure := ctx.Exposure
			if exposure <= 0 {
				exposure = 1
			}

			numPixels := int(source.W * source.H)
			for pixel := 0; pixel < numPixels; pixel++ {
				offset := pixel * 4
				for channel := 0; channel < 3; channel++ {
					v := source.F32[offset+channel] * exposure
					v = v / (1 + v)
					v = float32(math.Pow(float64(v), invGamma))
					display.U8[offset+channel] = uint8(clampf(v*255+0.5, 0, 255))
				}
				display.U8[offset+3] = 255
			}
			return nil
		}
	}
}

func clampf(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

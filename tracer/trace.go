package tracer

import (
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/vegatrace/vega/device"
	"github.com/vegatrace/vega/scene"
	"github.com/vegatrace/vega/types"
)

const rayMaxDist float32 = 1e30

// TraceFrame returns a stage that path-traces the scene into the raw
// accumulation image and fills the albedo and normal guide channels for
// the primary hits. The frame is split into row blocks distributed over a
// worker pool; block heights are rebalanced between frames using the
// worker timings from the previous frame.
func TraceFrame() PipelineStage {
	numWorkers := runtime.NumCPU()
	scheduler := NewPerfectScheduler()
	stats := make([]WorkerStats, numWorkers)

	return func(ctx *Context) device.Op {
		return func() error {
			frameH := ctx.Raw.H
			assignment := scheduler.Schedule(stats, frameH)

			var wg sync.WaitGroup
			var blockY uint32 = 0
			for workerIdx, blockH := range assignment {
				if blockH == 0 {
					continue
				}
				wg.Add(1)
				go func(workerIdx int, blockY, blockH uint32) {
					defer wg.Done()
					start := time.Now()
					traceBlock(ctx, workerIdx, blockY, blockH)
					stats[workerIdx] = WorkerStats{
						BlockH:    blockH,
						BlockTime: time.Since(start).Nanoseconds(),
					}
				}(workerIdx, blockY, blockH)
				blockY += blockH
			}
			wg.Wait()
			return nil
		}
	}
}

// Trace a block of frame rows and accumulate the results into the context
// render targets.
func traceBlock(ctx *Context, workerIdx int, blockY, blockH uint32) {
	frameW := ctx.Raw.W
	frameH := ctx.Raw.H
	rng := rand.New(rand.NewSource(int64(ctx.Push.Seed) + int64(workerIdx)<<32))

	samples := ctx.Push.MaxSamples
	if samples == 0 {
		samples = 1
	}

	// Progressive average weight for this frame.
	frame := float32(ctx.Push.Frame)
	if frame < 1 {
		frame = 1
	}

	for y := blockY; y < blockY+blockH && y < frameH; y++ {
		for x := uint32(0); x < frameW; x++ {
			var radiance types.Vec3
			var albedo types.Vec3
			var normal types.Vec3
			var hitDist float32
			for sample := uint32(0); sample < samples; sample++ {
				ray := cameraRay(&ctx.Uniforms, x, y, frameW, frameH, rng)
				sampleRadiance, sampleAlbedo, sampleNormal, sampleDist := tracePath(ctx, ray, rng)
				radiance = radiance.Add(sampleRadiance)
				albedo = albedo.Add(sampleAlbedo)
				normal = normal.Add(sampleNormal)
				hitDist += sampleDist
			}
			invSamples := 1.0 / float32(samples)
			radiance = radiance.Mul(invSamples)
			albedo = albedo.Mul(invSamples)
			normal = normal.Mul(invSamples)
			hitDist *= invSamples

			offset := (int(y)*int(frameW) + int(x)) * 4
			accumPixel(ctx.Raw.F32[offset:offset+4], radiance, frame)
			accumPixel(ctx.Albedo.F32[offset:offset+4], albedo, frame)
			accumPixel(ctx.Normal.F32[offset:offset+4], normal, frame)
			if ctx.Depth != nil {
				accumPixel(ctx.Depth.F32[offset:offset+4], types.Vec3{hitDist, hitDist, hitDist}, frame)
			}
		}
	}
}

// Merge a new sample into the progressive pixel average. The first frame
// overwrites whatever the target holds.
func accumPixel(pixel []float32, sample types.Vec3, frame float32) {
	if frame <= 1 {
		pixel[0], pixel[1], pixel[2], pixel[3] = sample[0], sample[1], sample[2], 1
		return
	}
	invFrame := 1.0 / frame
	pixel[0] += (sample[0] - pixel[0]) * invFrame
	pixel[1] += (sample[1] - pixel[1]) * invFrame
	pixel[2] += (sample[2] - pixel[2]) * invFrame
	pixel[3] = 1
}

// Generate a jittered primary ray for a pixel by interpolating the
// frustrum corner rays snapshotted into the frame uniforms.
func cameraRay(uniforms *FrameUniforms, x, y, frameW, frameH uint32, rng *rand.Rand) scene.Ray {
	texelX := (float32(x) + rng.Float32()) / float32(frameW)
	texelY := (float32(y) + rng.Float32()) / float32(frameH)

	top := uniforms.Frustrum[0].Vec3().Mul(1 - texelX).Add(uniforms.Frustrum[1].Vec3().Mul(texelX))
	bottom := uniforms.Frustrum[2].Vec3().Mul(1 - texelX).Add(uniforms.Frustrum[3].Vec3().Mul(texelX))
	dir := top.Mul(1 - texelY).Add(bottom.Mul(texelY)).Normalize()

	return scene.Ray{Origin: uniforms.CameraPos, Dir: dir, MaxT: rayMaxDist}
}

// Trace a single path through the scene and return the gathered radiance
// plus the albedo, shading normal and hit distance of the primary hit. A
// primary miss leaves the hit distance at zero.
func tracePath(ctx *Context, ray scene.Ray, rng *rand.Rand) (radiance, albedo, normal types.Vec3, hitT float32) {
	throughput := types.Vec3{1, 1, 1}

	maxDepth := ctx.Push.MaxDepth
	if maxDepth == 0 {
		maxDepth = 1
	}

	for depth := uint32(0); depth < maxDepth; depth++ {
		hit, found := ctx.Scene.Intersect(ray)
		if !found {
			radiance = radiance.Add(throughput.MulVec(missShading(ctx, ray.Dir)))
			if depth == 0 {
				albedo = missShading(ctx, ray.Dir)
			}
			return radiance, albedo, normal, hitT
		}

		material := &ctx.Scene.Materials[hit.MaterialIndex]
		if depth == 0 {
			albedo = material.Kd
			normal = hit.Normal
			hitT = hit.HitT
		}

		if material.IsEmissive() {
			radiance = radiance.Add(throughput.MulVec(material.Ke))
			return radiance, albedo, normal, hitT
		}

		throughput = throughput.MulVec(material.Kd)

		// Diffuse bounce using cosine weighted hemisphere sampling.
		bounceDir := cosineSampleHemisphere(hit.Normal, rng)
		ray = scene.Ray{
			Origin: hit.Point.Add(hit.Normal.Mul(1e-3)),
			Dir:    bounceDir,
			MaxT:   rayMaxDist,
		}
	}

	return radiance, albedo, normal, hitT
}

// Shade a ray that escaped all scene geometry using the environment map or
// the static background color.
func missShading(ctx *Context, dir types.Vec3) types.Vec3 {
	env := ctx.Scene.Env
	if env == nil {
		return ctx.Uniforms.BgColor
	}

	// Rotate the lookup direction around Y to apply the env rotation.
	if rot := ctx.Uniforms.EnvRotation; rot != 0 {
		sin := float32(math.Sin(float64(rot)))
		cos := float32(math.Cos(float64(rot)))
		dir = types.Vec3{
			dir[0]*cos - dir[2]*sin,
			dir[1],
			dir[0]*sin + dir[2]*cos,
		}
	}
	return env.Sample(dir)
}

// Sample a cosine weighted direction on the hemisphere around the normal.
func cosineSampleHemisphere(normal types.Vec3, rng *rand.Rand) types.Vec3 {
	r1 := rng.Float64()
	r2 := rng.Float64()

	sinTheta := math.Sqrt(1 - r1)
	cosTheta := math.Sqrt(r1)
	phi := 2 * math.Pi * r2

	// Build an orthonormal basis around the normal.
	var tangent types.Vec3
	if math.Abs(float64(normal[0])) > 0.1 {
		tangent = types.Vec3{0, 1, 0}.Cross(normal).Normalize()
	} else {
		tangent = types.Vec3{1, 0, 0}.Cross(normal).Normalize()
	}
	bitangent := normal.Cross(tangent)

	return tangent.Mul(float32(math.Cos(phi) * sinTheta)).
		Add(bitangent.Mul(float32(math.Sin(phi) * sinTheta))).
		Add(normal.Mul(float32(cosTheta))).
		Normalize()
}

// Package renderer orchestrates frame production: it advances the
// accumulation clock, records trace and tonemap work into pooled
// command streams and interlocks the render queue with the denoising
// accelerator timeline.
package renderer

import (
	"image"
	"math/rand"
	"time"

	"github.com/vegatrace/vega/denoiser"
	"github.com/vegatrace/vega/device"
	"github.com/vegatrace/vega/log"
	"github.com/vegatrace/vega/scene"
	"github.com/vegatrace/vega/tracer"
)

// Renderer is implemented by frame orchestrators.
type Renderer interface {
	// Render produces the next frame. Frames for a frozen clock are
	// no-ops.
	Render() error

	// Pick intersects a camera ray through the given pixel with the
	// scene after draining in-flight frames.
	Pick(x, y uint32) PickResult

	// ApplySettings swaps the runtime settings between frames and
	// restarts accumulation.
	ApplySettings(settings Settings)

	// Resize reallocates the render targets and accelerator buffers.
	// On failure the previous targets remain usable.
	Resize(w, h uint32) error

	// Stats returns a snapshot of the orchestrator state after the
	// most recent frame.
	Stats() FrameStats

	// Snapshot drains in-flight frames and returns a copy of the
	// display target.
	Snapshot() *image.RGBA

	// Close drains in-flight work and releases all resources.
	Close()
}

type defaultRenderer struct {
	logger log.Logger

	sc      *scene.Scene
	service denoiser.Service

	capability Capability
	settings   Settings

	targets   *TargetSet
	queue     *device.Queue
	pool      *StreamPool
	clock     *FrameClock
	interlock *Interlock
	pipeline  *tracer.Pipeline

	rng    *rand.Rand
	stats  FrameStats
	closed bool
}

// NewDefault creates a frame orchestrator for the given scene. A nil
// denoiser service degrades the renderer to direct-only submissions.
func NewDefault(sc *scene.Scene, service denoiser.Service, opts Options) (Renderer, error) {
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if sc.Camera == nil {
		return nil, ErrCameraNotDefined
	}

	logger := log.New("renderer")

	capability := DirectOnly
	if service != nil {
		capability = BranchCapable
	}
	logger.Noticef("frame submission capability: %s", capability)

	targets, err := NewTargetSet(opts.FrameW, opts.FrameH)
	if err != nil {
		return nil, err
	}
	if service != nil {
		if err = service.AllocateBuffers(int(opts.FrameW), int(opts.FrameH)); err != nil {
			return nil, err
		}
	}

	sc.Camera.SetupProjection(float32(opts.FrameW) / float32(opts.FrameH))

	queue := device.NewQueue("render")
	r := &defaultRenderer{
		logger:     logger,
		sc:         sc,
		service:    service,
		capability: capability,
		settings:   opts.Settings,
		targets:    targets,
		queue:      queue,
		pool:       NewStreamPool(),
		clock:      NewFrameClock(),
		interlock:  NewInterlock(queue, service),
		pipeline:   tracer.DefaultPipeline(),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	r.stats.Frame = frameNone
	r.stats.DenoisedFrame = frameNone
	return r, nil
}

func (r *defaultRenderer) Render() error {
	if r.closed {
		return ErrRendererClosed
	}

	start := time.Now()
	frame, accumulate := r.clock.Advance(r.sc.Camera.Signature(), r.settings.MaxFrames)
	if !accumulate {
		r.stats.Frozen = true
		return r.queue.Err()
	}
	r.stats.Frozen = false

	plan := PlanFrame(r.capability, r.settings, frame)

	slot, err := r.pool.Acquire()
	if err != nil {
		return err
	}

	ctx := r.frameContext(frame, plan)
	slot.Primary.Begin()
	if frame == 0 {
		// The clear must run on the queue timeline; earlier frames may
		// still be writing these images.
		slot.Primary.Record(func() error {
			r.targets.Clear()
			return nil
		})
	}
	r.pipeline.RecordTrace(ctx, slot.Primary)

	if plan.Mode == SubmitBranched {
		r.service.ImageToBuffer(
			slot.Primary,
			r.targets.Get(RoleRawResult),
			r.targets.Get(RoleAlbedo),
			r.targets.Get(RoleNormal),
		)
		slot.Primary.End()

		slot.Continuation.Begin()
		r.service.BufferToImage(slot.Continuation, r.targets.Get(RoleDenoised))
		r.pipeline.RecordTonemap(ctx, slot.Continuation)
		slot.Continuation.End()

		err = r.interlock.SubmitBranched(slot, plan.Blend)
	} else {
		r.pipeline.RecordTonemap(ctx, slot.Primary)
		slot.Primary.End()

		err = r.interlock.SubmitDirect(slot)
	}
	if err != nil {
		return err
	}

	r.stats.Frame = frame
	r.stats.DenoisedFrame = frameNone
	if plan.ShowDenoised {
		r.stats.DenoisedFrame = DenoisedFrame(r.settings, frame)
	}
	r.stats.TimelineValue = r.interlock.Value()
	r.stats.RenderTime = time.Since(start)
	return r.queue.Err()
}

// frameContext assembles the trace inputs for one frame. The tonemap
// source aliases the denoised target whenever the plan calls for
// presenting it, even on frames that do not themselves denoise.
func (r *defaultRenderer) frameContext(frame int64, plan FramePlan) *tracer.Context {
	source := r.targets.Get(RoleRawResult)
	if plan.ShowDenoised {
		source = r.targets.Get(RoleDenoised)
	}

	return &tracer.Context{
		Scene: r.sc,
		Uniforms: tracer.FrameUniforms{
			InvViewProj: r.sc.Camera.InvViewProjMat(),
			CameraPos:   r.sc.Camera.Position,
			Frustrum:    r.sc.Camera.Frustrum,
			BgColor:     r.settings.BgColor,
			EnvRotation: r.settings.EnvRotation,
		},
		Push: tracer.PushConstants{
			Frame:      uint32(frame) + 1,
			MaxDepth:   r.settings.MaxDepth,
			MaxSamples: r.settings.MaxSamples,
			Seed:       r.rng.Uint32(),
		},
		Raw:      r.targets.Get(RoleRawResult),
		Albedo:   r.targets.Get(RoleAlbedo),
		Normal:   r.targets.Get(RoleNormal),
		Depth:    r.targets.Depth(),
		Source:   source,
		Display:  r.targets.Get(RoleDisplay),
		Exposure: r.settings.Exposure,
	}
}

func (r *defaultRenderer) ApplySettings(settings Settings) {
	r.settings = settings
	r.clock.Reset()
}

func (r *defaultRenderer) Resize(w, h uint32) error {
	if r.closed {
		return ErrRendererClosed
	}

	if err := r.pool.Drain(); err != nil {
		return err
	}
	r.queue.WaitIdle()

	if err := r.targets.Resize(w, h); err != nil {
		r.logger.Errorf("resize to %dx%d failed: %v", w, h, err)
		return err
	}
	if r.service != nil {
		if err := r.service.AllocateBuffers(int(w), int(h)); err != nil {
			return err
		}
	}

	r.sc.Camera.SetupProjection(float32(w) / float32(h))
	r.clock.Reset()
	r.logger.Noticef("resized frame to %dx%d", w, h)
	return nil
}

func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

func (r *defaultRenderer) Snapshot() *image.RGBA {
	r.queue.WaitIdle()

	display := r.targets.Get(RoleDisplay)
	img := image.NewRGBA(image.Rect(0, 0, int(display.W), int(display.H)))
	copy(img.Pix, display.U8)
	return img
}

func (r *defaultRenderer) Close() {
	if r.closed {
		return
	}
	r.closed = true

	r.pool.Drain()
	r.queue.Close()
	if r.service != nil {
		r.service.Destroy()
	}
}

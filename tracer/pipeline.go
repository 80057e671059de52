package tracer

import "github.com/vegatrace/vega/device"

// Pipeline defines the sequence of stages recorded into a command stream
// for each frame.
type Pipeline struct {
	// Trace generates camera rays and accumulates radiance plus the
	// albedo and normal guide channels into the G-buffer images.
	Trace PipelineStage

	// Tonemap maps the selected source image into the display image.
	Tonemap PipelineStage
}

// DefaultPipeline returns a pipeline with the standard trace and tonemap
// stages.
func DefaultPipeline() *Pipeline {
	return &Pipeline{
		Trace:   TraceFrame(),
		Tonemap: TonemapFrame(),
	}
}

// RecordTrace records the trace stage into a command stream.
func (p *Pipeline) RecordTrace(ctx *Context, stream *device.CommandStream) {
	if p.Trace != nil {
		stream.Record(p.Trace(ctx))
	}
}

// RecordTonemap records the tonemap stage into a command stream.
func (p *Pipeline) RecordTonemap(ctx *Context, stream *device.CommandStream) {
	if p.Tonemap != nil {
		stream.Record(p.Tonemap(ctx))
	}
}

package opencl

import (
	"fmt"
	"sync"
	"time"

	"github.com/achilleasa/gopencl/v1.2/cl"

	core "github.com/vegatrace/vega/device"
	"github.com/vegatrace/vega/denoiser"
	"github.com/vegatrace/vega/denoiser/opencl/device"
	"github.com/vegatrace/vega/log"
)

const (
	requestQueueDepth = 16

	// Granularity at which the worker re-checks for shutdown while
	// waiting on the Ready lane.
	readyPollInterval = 100 * time.Millisecond
)

type denoiseRequest struct {
	value uint64
	blend float32
}

type clDenoiser struct {
	logger log.Logger

	sync.Mutex
	wg sync.WaitGroup

	// The accelerator device and the compiled filter kernel.
	device *device.Device
	kernel *device.Kernel

	// The two timeline lanes shared with the render queue.
	ready *core.TimelineSemaphore
	done  *core.TimelineSemaphore

	// A channel for receiving filter requests from the orchestrator.
	reqChan chan denoiseRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	// Staging and output buffers; reallocated on resize.
	frameW    int
	frameH    int
	resultBuf *device.Buffer
	albedoBuf *device.Buffer
	normalBuf *device.Buffer
	outputBuf *device.Buffer
}

// Available returns true if at least one opencl device that can host the
// denoise filter is present.
func Available() bool {
	devList, err := device.SelectDevices(device.AllDevices, "")
	return err == nil && len(devList) > 0
}

// NewDenoiser creates a denoiser service backed by an opencl device. An
// optional name filter selects between multiple devices; GPU devices are
// preferred when several match.
func NewDenoiser(deviceFilter string) (denoiser.Service, error) {
	devList, err := device.SelectDevices(device.AllDevices, deviceFilter)
	if err != nil {
		return nil, err
	}
	if len(devList) == 0 {
		return nil, denoiser.ErrUnavailable
	}

	selected := devList[0]
	for _, dev := range devList {
		if dev.Type == device.GpuDevice {
			selected = dev
			break
		}
	}

	if err = selected.Init(denoiseKernelSource); err != nil {
		return nil, err
	}

	kernel, err := selected.Kernel("denoise_blend")
	if err != nil {
		selected.Close()
		return nil, err
	}

	dn := &clDenoiser{
		logger:    log.New(fmt.Sprintf("denoiser (%s)", selected.Name)),
		device:    selected,
		kernel:    kernel,
		ready:     core.NewTimelineSemaphore("denoiser/ready"),
		done:      core.NewTimelineSemaphore("denoiser/done"),
		reqChan:   make(chan denoiseRequest, requestQueueDepth),
		closeChan: make(chan struct{}, 0),
	}

	dn.wg.Add(1)
	go dn.worker()

	dn.logger.Noticef("using device: %s", selected.Name)
	return dn, nil
}

// AllocateBuffers sizes the staging and output buffers for the given image
// dimensions.
func (dn *clDenoiser) AllocateBuffers(w, h int) error {
	dn.Lock()
	defer dn.Unlock()

	byteSize := w * h * 4 * 4

	dn.releaseBuffers()
	dn.resultBuf = dn.device.Buffer("denoise/result")
	dn.albedoBuf = dn.device.Buffer("denoise/albedo")
	dn.normalBuf = dn.device.Buffer("denoise/normal")
	dn.outputBuf = dn.device.Buffer("denoise/output")

	for _, buf := range []*device.Buffer{dn.resultBuf, dn.albedoBuf, dn.normalBuf, dn.outputBuf} {
		if err := buf.Allocate(byteSize, cl.MEM_READ_WRITE); err != nil {
			dn.releaseBuffers()
			return err
		}
	}

	dn.frameW = w
	dn.frameH = h
	return nil
}

// ImageToBuffer records ops that copy the raw result and the guide
// channels into the accelerator staging buffers.
func (dn *clDenoiser) ImageToBuffer(stream *core.CommandStream, result, albedo, normal *core.Image) {
	stream.Record(func() error {
		dn.Lock()
		defer dn.Unlock()

		if dn.resultBuf == nil {
			return denoiser.ErrNotAllocated
		}
		if int(result.W) != dn.frameW || int(result.H) != dn.frameH {
			return denoiser.ErrInvalidImageDim
		}

		if err := dn.resultBuf.WriteData(result.F32, 0); err != nil {
			return err
		}
		if err := dn.albedoBuf.WriteData(albedo.F32, 0); err != nil {
			return err
		}
		return dn.normalBuf.WriteData(normal.F32, 0)
	})
}

// Denoise asks the worker to filter the staged buffers once Ready reaches
// value. The caller is never blocked waiting for the filter itself.
func (dn *clDenoiser) Denoise(value uint64, blend float32) {
	dn.reqChan <- denoiseRequest{value: value, blend: blend}
}

// BufferToImage records an op that copies the filtered output into the
// target image.
func (dn *clDenoiser) BufferToImage(stream *core.CommandStream, target *core.Image) {
	stream.Record(func() error {
		dn.Lock()
		defer dn.Unlock()

		if dn.outputBuf == nil {
			return denoiser.ErrNotAllocated
		}
		if int(target.W) != dn.frameW || int(target.H) != dn.frameH {
			return denoiser.ErrInvalidImageDim
		}

		return dn.outputBuf.ReadData(0, 0, 0, target.F32)
	})
}

func (dn *clDenoiser) Ready() *core.TimelineSemaphore {
	return dn.ready
}

func (dn *clDenoiser) Done() *core.TimelineSemaphore {
	return dn.done
}

// Destroy stops the worker and releases all device resources.
func (dn *clDenoiser) Destroy() {
	dn.closeChan <- struct{}{}
	dn.wg.Wait()

	dn.Lock()
	defer dn.Unlock()

	dn.releaseBuffers()
	if dn.kernel != nil {
		dn.kernel.Release()
		dn.kernel = nil
	}
	if dn.device != nil {
		dn.device.Close()
		dn.device = nil
	}
}

// Process filter requests until asked to exit.
func (dn *clDenoiser) worker() {
	defer dn.wg.Done()
	for {
		select {
		case <-dn.closeChan:
			return
		case req := <-dn.reqChan:
			// Wait in slices so a close request can still preempt a
			// Ready signal that never arrives.
			for !dn.ready.WaitTimeout(req.value, readyPollInterval) {
				select {
				case <-dn.closeChan:
					return
				default:
				}
			}
			if err := dn.runFilter(req.blend); err != nil {
				dn.logger.Errorf("filter pass for timeline value %d failed: %v", req.value, err)
			}

			// Done must advance even after a failed pass so that
			// continuation submissions waiting on it can drain.
			dn.done.Signal(req.value)
		}
	}
}

// Execute the filter kernel over the staged buffers.
func (dn *clDenoiser) runFilter(blend float32) error {
	dn.Lock()
	defer dn.Unlock()

	if dn.resultBuf == nil {
		return denoiser.ErrNotAllocated
	}

	err := dn.kernel.SetArgs(
		dn.resultBuf,
		dn.albedoBuf,
		dn.normalBuf,
		dn.outputBuf,
		uint32(dn.frameW),
		uint32(dn.frameH),
		blend,
	)
	if err != nil {
		return err
	}

	_, err = dn.kernel.Exec2D(0, 0, dn.frameW, dn.frameH, 0, 0)
	return err
}

// Release allocated buffers. Must be called with the lock held.
func (dn *clDenoiser) releaseBuffers() {
	for _, buf := range []*device.Buffer{dn.resultBuf, dn.albedoBuf, dn.normalBuf, dn.outputBuf} {
		if buf != nil {
			buf.Release()
		}
	}
	dn.resultBuf, dn.albedoBuf, dn.normalBuf, dn.outputBuf = nil, nil, nil, nil
}

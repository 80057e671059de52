package tracer

import "math"

// Per-worker statistics collected after tracing a block of rows.
type WorkerStats struct {
	// The rendered block height.
	BlockH uint32

	// The time for rendering this block (in nanoseconds).
	BlockTime int64
}

// The BlockScheduler interface is implemented by all block scheduling
// algorithms.
type BlockScheduler interface {
	// Split frame into blocks of variable height and assign to the
	// worker pool using feedback collected from previous frames.
	//
	// This function returns the block height assignment for each worker.
	Schedule(stats []WorkerStats, frameH uint32) []uint32
}

// The perfect scheduler assumes that the volume of tracing work between two
// subsequent frames is approximately the same.
type perfectScheduler struct {
	blockAssignment []uint32
}

// Create a new perfect scheduler instance.
func NewPerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// Split frame into blocks of variable height and assign to the worker pool
// using feedback collected from previous frames.
//
// The first invocation splits the frame evenly. Subsequent invocations use
// the following formula for estimating the workload of worker w for frame
// i+1: w_i, f_i+1 = (blockH,w_i / time,w_i) / Sum(blockH_i-1 / time,i-1)
func (sch *perfectScheduler) Schedule(stats []WorkerStats, frameH uint32) []uint32 {
	numWorkers := len(stats)

	// If this is the first time we try to schedule or the worker pool
	// size has changed we need to reset the block assignments
	if len(sch.blockAssignment) != numWorkers {
		sch.blockAssignment = make([]uint32, numWorkers)

		var scheduledRows uint32 = 0
		evenSplit := uint32(math.Max(1.0, math.Floor(float64(frameH)/float64(numWorkers))))
		for idx := range sch.blockAssignment {
			sch.blockAssignment[idx] = evenSplit
			scheduledRows += evenSplit
		}
		if frameH > scheduledRows {
			sch.blockAssignment[0] += frameH - scheduledRows
		}

		return sch.blockAssignment
	}

	// Use last frame statistics
	var total float64 = 0.0
	for _, ws := range stats {
		total += float64(ws.BlockH) / float64(ws.BlockTime)
	}

	scaler := float64(frameH) / total
	var scheduledRows uint32 = 0
	for idx, ws := range stats {
		sch.blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(float64(ws.BlockH)/float64(ws.BlockTime)*scaler)))
		scheduledRows += sch.blockAssignment[idx]
	}

	// In case rows don't add up to the frame height append the missing
	// ones to the first worker
	if frameH > scheduledRows {
		sch.blockAssignment[0] += frameH - scheduledRows
	}

	return sch.blockAssignment
}

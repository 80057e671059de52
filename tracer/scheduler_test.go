package tracer

import "testing"

func TestPerfectScheduler(t *testing.T) {
	type spec struct {
		frameH   uint32
		time1    int64
		time2    int64
		expRows1 uint32
		expRows2 uint32
	}
	specs := []spec{
		// First call always splits the frame evenly
		{10, 1, 5, 5, 5},
		// Second call should use the block timings to assign rows
		{10, 1, 5, 9, 1},
		// This time worker 2 performed much better
		{10, 5, 1, 7, 3},
	}

	stats := make([]WorkerStats, 2)
	sch := NewPerfectScheduler()
	for index, s := range specs {
		stats[0].BlockTime = s.time1
		stats[1].BlockTime = s.time2

		blockAssignment := sch.Schedule(stats, s.frameH)

		if blockAssignment[0] != s.expRows1 {
			t.Fatalf("[spec %d] expected worker 0 to be assigned %d rows; got %d", index, s.expRows1, blockAssignment[0])
		}

		if blockAssignment[1] != s.expRows2 {
			t.Fatalf("[spec %d] expected worker 1 to be assigned %d rows; got %d", index, s.expRows2, blockAssignment[1])
		}

		stats[0].BlockH = blockAssignment[0]
		stats[1].BlockH = blockAssignment[1]
	}
}

func TestPerfectSchedulerResetsOnPoolSizeChange(t *testing.T) {
	sch := NewPerfectScheduler()

	assignment := sch.Schedule(make([]WorkerStats, 4), 100)
	var total uint32
	for _, rows := range assignment {
		total += rows
	}
	if total != 100 {
		t.Fatalf("expected assignments to cover 100 rows; got %d", total)
	}

	// Shrinking the pool must fall back to an even split
	assignment = sch.Schedule(make([]WorkerStats, 2), 100)
	if len(assignment) != 2 || assignment[0] != 50 || assignment[1] != 50 {
		t.Fatalf("expected an even 50/50 split; got %v", assignment)
	}
}

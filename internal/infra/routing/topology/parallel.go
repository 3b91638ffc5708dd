package topology

import (
	"golang.org/x/sync/errgroup"
)

// Step names reported to the progress observer.
const (
	StepDedupRoads     = "dedup-roads"
	StepBuild          = "build"
	StepPrune          = "prune-sensor-distance"
	StepMergeOverlap   = "merge-overlap"
	StepAssignSensors  = "assign-sensors"
	StepConnect        = "connect-disjoint"
	StepRemoveDisjoint = "remove-disjoint"
	StepDedupEdges     = "dedup-edges"
	StepCollapse       = "collapse"
)

// chunked splits [0, n) into at most workers contiguous ranges and runs fn
// on each concurrently. fn must only read shared state and write to the
// slots of its own range.
func chunked(n, workers int, fn func(lo, hi int)) {
	if n == 0 {
		return
	}
	workers = max(1, min(workers, n))
	size := (n + workers - 1) / workers

	var eg errgroup.Group
	eg.SetLimit(workers)
	for lo := 0; lo < n; lo += size {
		hi := min(lo+size, n)
		eg.Go(func() error {
			fn(lo, hi)

			return nil
		})
	}
	_ = eg.Wait()
}

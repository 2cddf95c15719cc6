package pipeline

import (
	"runtime"
	"sync"

	"provenance/internal/chunk"
)

// Worker processes one segment. Workers run concurrently; callers that need
// ordered output should index by Segment.Index.
type Worker func(seg chunk.Segment) error

// ForEachSegment runs fn over every segment with a bounded worker pool and
// returns the errors raised, in no particular order. workers <= 0 means one
// per CPU.
func ForEachSegment(segments []chunk.Segment, workers int, fn Worker) []error {
	if len(segments) == 0 || fn == nil {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers < 1 {
			workers = 1
		}
	}

	jobs := make(chan chunk.Segment)
	errs := make(chan error, len(segments))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for seg := range jobs {
				if err := fn(seg); err != nil {
					errs <- err
				}
			}
		}()
	}

	for _, seg := range segments {
		jobs <- seg
	}
	close(jobs)
	wg.Wait()
	close(errs)

	out := make([]error, 0, len(errs))
	for err := range errs {
		out = append(out, err)
	}
	return out
}

/*
DESCRIPTION
  batch.go implements ParseAll, a bounded worker-pool batch parser over
  many independently-framed RPU buffers: each buffer is parsed fully
  concurrently, with results and errors aligned to the caller's input
  index.

AUTHORS
  Derived for the dovi RPU codec from the bounded-worker-pool pattern in
  github.com/ausocean/av/revid/revid.go's frame-processing pipeline
  (fixed worker count, index-tagged work items, WaitGroup drain), applied
  here to pure CPU-bound bitstream parsing instead of frame I/O.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package rpu

import (
	"runtime"
	"sync"
)

// ParseAll parses every buffer in bufs as an HEVC unspec62 NAL unit,
// concurrently, bounded to runtime.GOMAXPROCS(0) workers. Results and
// errs are index-aligned with bufs: results[i] is nil if errs[i] != nil.
func ParseAll(bufs [][]byte) ([]*DoviRpu, []error) {
	results := make([]*DoviRpu, len(bufs))
	errs := make([]error, len(bufs))

	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	if workers > len(bufs) {
		workers = len(bufs)
	}
	if workers == 0 {
		return results, errs
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				d, err := ParseUnspec62Nalu(bufs[idx])
				results[idx] = d
				errs[idx] = err
			}
		}()
	}
	for i := range bufs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results, errs
}

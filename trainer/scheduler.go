package trainer

import (
	"runtime"
	"sync"
)

// DefaultThreshold is the minimum item count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const DefaultThreshold = 64

// workChunk represents a range of items for a worker to process.
type workChunk struct {
	start, end int
	fn         func(i int) error
}

// Scheduler runs a per-item function over [0, n) on a pool of persistent
// worker goroutines. Each call to ForEach returns only after every chunk has
// finished, so it doubles as the barrier between phases.
type Scheduler struct {
	numWorkers int
	threshold  int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan error     // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// NewScheduler creates a scheduler. workers <= 0 uses GOMAXPROCS and
// threshold <= 0 uses DefaultThreshold.
func NewScheduler(workers, threshold int) *Scheduler {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Scheduler{
		numWorkers: workers,
		threshold:  threshold,
	}
}

// Workers returns the number of worker goroutines.
func (s *Scheduler) Workers() int {
	return s.numWorkers
}

// start launches persistent worker goroutines.
func (s *Scheduler) start() {
	if s.running {
		return
	}

	s.workChan = make(chan workChunk, s.numWorkers)
	s.doneChan = make(chan error, s.numWorkers)
	s.stopChan = make(chan struct{})
	s.running = true

	for i := 0; i < s.numWorkers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

// Close signals all workers to exit and waits for them.
func (s *Scheduler) Close() {
	if !s.running {
		return
	}

	close(s.stopChan)
	s.wg.Wait()
	close(s.workChan)
	close(s.doneChan)
	s.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopChan:
			return
		case chunk, ok := <-s.workChan:
			if !ok {
				return
			}
			s.doneChan <- runChunk(chunk)
		}
	}
}

// runChunk processes every item in the chunk and returns the first error.
// Later items still run so one bad item does not stall the rest.
func runChunk(c workChunk) error {
	var firstErr error
	for i := c.start; i < c.end; i++ {
		if err := c.fn(i); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ForEach calls fn for every index in [0, n) and waits for all calls.
// fn must only touch state owned by index i.
func (s *Scheduler) ForEach(n int, fn func(i int) error) error {
	if n <= 0 {
		return nil
	}

	// Single-threaded for small populations
	if s.numWorkers == 1 || n < s.threshold {
		return runChunk(workChunk{start: 0, end: n, fn: fn})
	}

	if !s.running {
		s.start()
	}

	chunkSize := (n + s.numWorkers - 1) / s.numWorkers

	// Dispatch chunks to workers
	chunksDispatched := 0
	for w := 0; w < s.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}

		s.workChan <- workChunk{start: start, end: end, fn: fn}
		chunksDispatched++
	}

	// Wait for all chunks to complete
	var firstErr error
	for i := 0; i < chunksDispatched; i++ {
		if err := <-s.doneChan; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

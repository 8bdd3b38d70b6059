package match

import (
	"sync"
	"time"
)

// WorkerPool bounds the number of concurrent matching jobs and enforces a
// minimum interval between job starts, keeping external API rate limits
// intact while still overlapping work.
type WorkerPool struct {
	semaphore   chan struct{}
	minInterval time.Duration
	wg          sync.WaitGroup
	mu          sync.Mutex
	lastStart   time.Time
}

func NewWorkerPool(maxWorkers int, minInterval time.Duration) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		semaphore:   make(chan struct{}, maxWorkers),
		minInterval: minInterval,
	}
}

// Submit enqueues a job for execution in the pool.
func (wp *WorkerPool) Submit(job func()) {
	wp.wg.Add(1)
	wp.semaphore <- struct{}{}

	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.semaphore }()

		wp.throttle()
		job()
	}()
}

// Wait blocks until all submitted jobs have completed.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) throttle() {
	if wp.minInterval <= 0 {
		return
	}

	wp.mu.Lock()
	defer wp.mu.Unlock()

	elapsed := time.Since(wp.lastStart)
	if elapsed < wp.minInterval {
		time.Sleep(wp.minInterval - elapsed)
	}
	wp.lastStart = time.Now()
}

package downloader

import (
	"context"
	"fmt"
	"sync"

	"photocrawl/pkg/logger"
	"photocrawl/pkg/ratelimit"
	"photocrawl/pkg/source"
)

// WorkerPool processes records concurrently with a bounded number of
// workers. Results are consumed from the Results channel by a single
// collector, so no counters are shared between workers.
type WorkerPool struct {
	numWorkers  int
	jobQueue    chan source.Record
	resultQueue chan Outcome
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	fetcher     *Fetcher
	rateLimiter ratelimit.Limiter
	logger      logger.Logger
}

// NewWorkerPool creates a new worker pool around a fetcher
func NewWorkerPool(numWorkers int, fetcher *Fetcher, rateLimiter ratelimit.Limiter, log logger.Logger) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	if log == nil {
		log = logger.GetLogger()
	}
	if rateLimiter == nil {
		rateLimiter = ratelimit.NewNop()
	}

	return &WorkerPool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan source.Record, numWorkers*2), // Buffer size = 2x workers
		resultQueue: make(chan Outcome, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		fetcher:     fetcher,
		rateLimiter: rateLimiter,
		logger:      log,
	}
}

// Start initializes and starts all workers
func (wp *WorkerPool) Start() {
	wp.logger.InfoWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop gracefully shuts down the worker pool
func (wp *WorkerPool) Stop() {
	wp.logger.Info("Stopping worker pool...")

	// Close job queue to signal no more jobs will be added
	close(wp.jobQueue)

	// Wait for all workers to finish processing remaining jobs
	wp.wg.Wait()

	// Close result queue
	close(wp.resultQueue)

	// Cancel context
	wp.cancel()

	wp.logger.Info("Worker pool stopped")
}

// Submit adds a record to the queue
func (wp *WorkerPool) Submit(rec source.Record) error {
	select {
	case wp.jobQueue <- rec:
		wp.logger.DebugWithFields("Job submitted to queue", map[string]interface{}{
			"position": rec.Position,
			"photo_id": rec.ID,
		})
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Results returns the result channel for consuming outcomes
func (wp *WorkerPool) Results() <-chan Outcome {
	return wp.resultQueue
}

// worker is the main worker routine
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	wp.logger.DebugWithFields("Worker started", map[string]interface{}{
		"worker_id": id,
	})

	for rec := range wp.jobQueue {
		// Check if context is cancelled
		select {
		case <-wp.ctx.Done():
			wp.logger.DebugWithFields("Worker stopping - context cancelled", map[string]interface{}{
				"worker_id": id,
			})
			return
		default:
		}

		if !wp.rateLimiter.Allow() {
			wp.rateLimiter.Wait()
		}

		wp.logger.DebugWithFields("Worker processing record", map[string]interface{}{
			"worker_id": id,
			"position":  rec.Position,
			"photo_id":  rec.ID,
		})

		outcome := wp.fetcher.Fetch(wp.ctx, rec)

		// Send result
		select {
		case wp.resultQueue <- outcome:
		case <-wp.ctx.Done():
			wp.logger.DebugWithFields("Worker stopping - context cancelled while sending result", map[string]interface{}{
				"worker_id": id,
			})
			return
		}
	}

	wp.logger.DebugWithFields("Worker stopping - job queue closed", map[string]interface{}{
		"worker_id": id,
	})
}

// GetQueueSize returns the current number of jobs in the queue
func (wp *WorkerPool) GetQueueSize() int {
	return len(wp.jobQueue)
}

// GetActiveWorkers returns the number of active workers
func (wp *WorkerPool) GetActiveWorkers() int {
	return wp.numWorkers
}

package execution

import (
	"context"
	"sync"
	"time"

	"caserun/internal/logging"
)

// Progress receives case counts as jobs complete
type Progress interface {
	Update(passed, failed int)
	Finish()
}

// WorkerPool manages a pool of workers for parallel class execution.
// Cases of one class always run sequentially on a single worker.
type WorkerPool struct {
	workers   int
	scheduler Scheduler
	progress  Progress
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(workers int, scheduler Scheduler) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if scheduler == nil {
		scheduler = NewRoundRobinScheduler()
	}
	return &WorkerPool{workers: workers, scheduler: scheduler}
}

// SetProgress sets the progress reporter for the worker pool
func (wp *WorkerPool) SetProgress(progress Progress) {
	wp.progress = progress
}

// Workers returns the number of workers
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// Execute runs every job (no fail-fast).
func (wp *WorkerPool) Execute(ctx context.Context, jobs []Job) ([]JobResult, time.Duration) {
	return wp.ExecuteWithOptions(ctx, jobs, false)
}

// ExecuteWithOptions runs jobs with optional fail-fast: once a job fails no
// further job is started, while jobs already running complete. Results are
// returned in job order; jobs that never started are marked NotRun.
func (wp *WorkerPool) ExecuteWithOptions(ctx context.Context, jobs []Job, failFast bool) ([]JobResult, time.Duration) {
	if len(jobs) == 0 {
		return nil, 0
	}

	stop, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]JobResult, len(jobs))
	started := make([]bool, len(jobs))

	var mu sync.Mutex
	var passedCases, failedCases int
	startTime := time.Now()

	var wg sync.WaitGroup
	for i, assigned := range wp.scheduler.Schedule(len(jobs), wp.workers) {
		wg.Add(1)
		go func(workerID int, assigned []int) {
			defer wg.Done()
			for _, idx := range assigned {
				if stop.Err() != nil {
					return
				}

				job := jobs[idx]
				logging.Debug("Worker", "worker %d starting %s", workerID, job.Name())
				result := job.Run(ctx, workerID)

				mu.Lock()
				results[idx] = result
				started[idx] = true
				passedCases += result.Class.Passed()
				failedCases += result.Class.Failed()
				if wp.progress != nil {
					wp.progress.Update(passedCases, failedCases)
				}
				if failFast && result.Failed() {
					logging.Info("Worker", "%s failed, not starting further classes", job.Name())
					cancel()
				}
				mu.Unlock()
			}
		}(i+1, assigned)
	}
	wg.Wait()

	if wp.progress != nil {
		wp.progress.Finish()
	}

	for i, job := range jobs {
		if !started[i] {
			results[i] = JobResult{Name: job.Name(), NotRun: true}
		}
	}
	return results, time.Since(startTime)
}

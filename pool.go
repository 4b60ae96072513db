// Shortest-job-first worker pool.
// Translated from threadpool.c's ThreadPool_t/Thread_run: pthread_mutex_t
// and two pthread_cond_t become a sync.Mutex and two sync.Cond built on it;
// the fixed pthread_t roster becomes a sync.WaitGroup of worker goroutines.
// Copyright (c) 2011 Damian Gryski <damian@gryski.com>
// License: GPLv3 or, at your option, any later version

package mapreduce

import (
	"sync"

	"go.uber.org/zap"
)

// Pool runs submitted jobs in shortest-job-first order over a fixed set of
// worker goroutines. A Pool is scoped to a single run identified by runID,
// used to label its metrics series and its log lines.
type Pool struct {
	runID string
	log   *zap.Logger

	mu            sync.Mutex
	hasJob        *sync.Cond
	allIdle       *sync.Cond
	queue         jobQueue
	stopping      bool
	activeWorkers int

	wg sync.WaitGroup
}

// NewPool creates a pool of workers goroutines and starts the worker loop
// in each. workers must be >= 1.
func NewPool(runID string, workers int) (*Pool, error) {
	if workers < 1 {
		return nil, ErrInvalidWorkerCount
	}

	p := &Pool{
		runID: runID,
		log:   logger().With(zap.String("run_id", runID)),
	}
	p.hasJob = sync.NewCond(&p.mu)
	p.allIdle = sync.NewCond(&p.mu)

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.workerLoop(i)
	}

	return p, nil
}

// workerLoop is the body of one pool worker goroutine. It mirrors
// Thread_run: wait for a job or a stop signal, dequeue, run outside the
// lock, then rejoin to update bookkeeping and possibly signal allIdle.
func (p *Pool) workerLoop(id int) {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for p.queue.empty() && !p.stopping {
			p.hasJob.Wait()
		}
		if p.stopping && p.queue.empty() {
			p.mu.Unlock()
			return
		}

		j := p.queue.dequeue()
		queueLen := p.queue.n
		p.activeWorkers++
		active := p.activeWorkers
		p.mu.Unlock()

		queueDepthGauge.WithLabelValues(p.runID).Set(float64(queueLen))
		activeWorkersGauge.WithLabelValues(p.runID).Set(float64(active))

		p.runJob(id, j)

		p.mu.Lock()
		p.activeWorkers--
		active = p.activeWorkers
		idle := p.queue.empty() && p.activeWorkers == 0
		if idle {
			p.allIdle.Broadcast()
		}
		p.mu.Unlock()

		activeWorkersGauge.WithLabelValues(p.runID).Set(float64(active))
		jobsCompletedCounter.WithLabelValues(p.runID).Inc()
	}
}

// runJob executes a job function outside the pool lock, recovering from a
// panic so a misbehaving job can never wedge the barrier by leaving
// activeWorkers permanently elevated.
func (p *Pool) runJob(workerID int, j *job) {
	defer func() {
		if r := recover(); r != nil {
			jobsPanickedCounter.WithLabelValues(p.runID).Inc()
			p.log.Error("job panicked",
				zap.Int("worker_id", workerID),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
	}()
	j.fn()
}

// Submit enqueues fn with the given size hint and wakes one idle worker.
// Returns ErrPoolStopped if Destroy has already begun.
func (p *Pool) Submit(fn func(), size uint64) error {
	p.mu.Lock()
	if p.stopping {
		p.mu.Unlock()
		return ErrPoolStopped
	}
	p.queue.enqueue(&job{fn: fn, size: size})
	queueLen := p.queue.n
	p.hasJob.Signal()
	p.mu.Unlock()

	queueDepthGauge.WithLabelValues(p.runID).Set(float64(queueLen))
	jobsSubmittedCounter.WithLabelValues(p.runID).Inc()
	return nil
}

// WaitIdle blocks until the queue is empty and no worker is executing a
// job. Safe to call even if the predicate already holds, and safe to call
// more than once over the pool's lifetime.
func (p *Pool) WaitIdle() {
	p.mu.Lock()
	for !p.queue.empty() || p.activeWorkers > 0 {
		p.allIdle.Wait()
	}
	p.mu.Unlock()
}

// Destroy stops accepting new jobs, joins every worker goroutine (workers
// run any jobs still queued before they exit), and removes the pool's
// queue-depth and active-worker series; the per-run job counters are left
// for unregisterRunMetrics. Safe to call after a preceding
// WaitIdle, though it does not require one.
func (p *Pool) Destroy() {
	p.mu.Lock()
	p.stopping = true
	p.hasJob.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()

	queueDepthGauge.DeleteLabelValues(p.runID)
	activeWorkersGauge.DeleteLabelValues(p.runID)
}

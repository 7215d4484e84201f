package pool

import (
	"container/heap"
	"errors"
	"sync"
)

var (
	ErrPoolStarted = errors.New("thread pool has already been started")
	ErrQueueClosed = errors.New("thread pool queue is closed")
)

type job[P any] struct {
	priority P
	sequence uint64
	run      func()
}

type jobQueue[P any] struct {
	jobs    []job[P]
	compare func(a, b P) int
}

func (queue *jobQueue[P]) Len() int { return len(queue.jobs) }

// Less orders by priority, breaking ties by insertion order
func (queue *jobQueue[P]) Less(i, j int) bool {
	if c := queue.compare(queue.jobs[i].priority, queue.jobs[j].priority); c != 0 {
		return c < 0
	}
	return queue.jobs[i].sequence < queue.jobs[j].sequence
}

func (queue *jobQueue[P]) Swap(i, j int) { queue.jobs[i], queue.jobs[j] = queue.jobs[j], queue.jobs[i] }

func (queue *jobQueue[P]) Push(x any) { queue.jobs = append(queue.jobs, x.(job[P])) }

func (queue *jobQueue[P]) Pop() any {
	last := queue.jobs[len(queue.jobs)-1]
	queue.jobs = queue.jobs[:len(queue.jobs)-1]
	return last
}

// ThreadPool runs jobs on a fixed number of workers. Jobs with a smaller priority (according to
// compare) run first, jobs with equal priority run in insertion order
type ThreadPool[P any] struct {
	size     int
	mutex    sync.Mutex
	changed  *sync.Cond
	queue    *jobQueue[P]
	sequence uint64
	started  bool
	stopping bool
	closed   bool
	running  int
	workers  sync.WaitGroup
}

func NewThreadPool[P any](size int, compare func(a, b P) int) *ThreadPool[P] {
	pool := &ThreadPool[P]{
		size:  max(size, 1),
		queue: &jobQueue[P]{compare: compare},
	}
	pool.changed = sync.NewCond(&pool.mutex)
	return pool
}

// Start launches the workers
func (pool *ThreadPool[P]) Start() error {
	pool.mutex.Lock()
	defer pool.mutex.Unlock()
	if pool.started {
		return ErrPoolStarted
	}
	pool.started = true
	for range pool.size {
		pool.workers.Add(1)
		go pool.work()
	}
	return nil
}

func (pool *ThreadPool[P]) AddJob(priority P, run func()) error {
	pool.mutex.Lock()
	defer pool.mutex.Unlock()
	if pool.closed {
		return ErrQueueClosed
	}
	heap.Push(pool.queue, job[P]{priority: priority, sequence: pool.sequence, run: run})
	pool.sequence++
	pool.changed.Broadcast()
	return nil
}

// Cancel stops the workers from picking up further jobs and drops the queued ones. Running
// jobs are not interrupted. Cancel does not wait for the workers, so it may be called from
// inside a job
func (pool *ThreadPool[P]) Cancel() {
	pool.mutex.Lock()
	defer pool.mutex.Unlock()
	pool.stopping = true
	pool.closed = true
	pool.queue.jobs = nil
	pool.changed.Broadcast()
}

// CloseQueue rejects further jobs, queued jobs are still processed
func (pool *ThreadPool[P]) CloseQueue() {
	pool.mutex.Lock()
	defer pool.mutex.Unlock()
	pool.closed = true
	pool.changed.Broadcast()
}

// Wait blocks until no job is running and no job is queued (or the pool was cancelled). It
// returns immediately if the pool has not been started
func (pool *ThreadPool[P]) Wait() {
	pool.mutex.Lock()
	defer pool.mutex.Unlock()
	if !pool.started {
		return
	}
	for pool.running > 0 || (pool.queue.Len() > 0 && !pool.stopping) {
		pool.changed.Wait()
	}
}

// Finish closes the queue, lets the workers drain it and joins them
func (pool *ThreadPool[P]) Finish() {
	pool.CloseQueue()
	pool.workers.Wait()
}

// Size returns the number of queued jobs
func (pool *ThreadPool[P]) Size() int {
	pool.mutex.Lock()
	defer pool.mutex.Unlock()
	return pool.queue.Len()
}

// Pop removes the job with the highest precedence so it can be run synchronously. It is only
// available while the workers have not been started
func (pool *ThreadPool[P]) Pop() (priority P, run func(), ok bool, err error) {
	pool.mutex.Lock()
	defer pool.mutex.Unlock()
	if pool.started {
		return priority, nil, false, ErrPoolStarted
	}
	if pool.queue.Len() == 0 {
		return priority, nil, false, nil
	}
	next := heap.Pop(pool.queue).(job[P])
	return next.priority, next.run, true, nil
}

func (pool *ThreadPool[P]) work() {
	defer pool.workers.Done()
	pool.mutex.Lock()
	defer pool.mutex.Unlock()
	for {
		for !pool.stopping && !pool.closed && pool.queue.Len() == 0 {
			pool.changed.Wait()
		}
		if pool.stopping || pool.queue.Len() == 0 {
			return
		}

		next := heap.Pop(pool.queue).(job[P])
		pool.running++
		pool.mutex.Unlock()
		next.run()
		pool.mutex.Lock()
		pool.running--
		pool.changed.Broadcast()
	}
}

package bot

import (
	"context"
	"errors"
	"sync"

	"github.com/rohits-web03/sitedrop/internal/observability"
)

// ErrDispatcherClosed is returned for jobs submitted after Shutdown.
var ErrDispatcherClosed = errors.New("dispatcher is shut down")

// Dispatcher runs jobs for the same chat one at a time in arrival order, and
// jobs for different chats in parallel. A chat's worker goroutine exits as
// soon as its queue is empty.
type Dispatcher struct {
	mu     sync.Mutex
	queues map[int64]*chatQueue
	closed bool
	wg     sync.WaitGroup
}

type chatQueue struct {
	jobs []func()
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{queues: make(map[int64]*chatQueue)}
}

// Dispatch queues job for chatID and returns immediately.
func (d *Dispatcher) Dispatch(chatID int64, job func()) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDispatcherClosed
	}
	q, ok := d.queues[chatID]
	if !ok {
		q = &chatQueue{}
		d.queues[chatID] = q
		d.wg.Add(1)
		go d.run(chatID, q)
	}
	q.jobs = append(q.jobs, job)
	return nil
}

// Do queues job and waits for it to finish. If ctx ends first the job still
// runs later in order, but Do returns ctx.Err().
func (d *Dispatcher) Do(ctx context.Context, chatID int64, job func()) error {
	done := make(chan struct{})
	err := d.Dispatch(chatID, func() {
		defer close(done)
		job()
	})
	if err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run(chatID int64, q *chatQueue) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		if len(q.jobs) == 0 {
			delete(d.queues, chatID)
			d.mu.Unlock()
			return
		}
		job := q.jobs[0]
		q.jobs[0] = nil
		q.jobs = q.jobs[1:]
		d.mu.Unlock()

		d.safeRun(chatID, job)
	}
}

func (d *Dispatcher) safeRun(chatID int64, job func()) {
	defer func() {
		if rec := recover(); rec != nil {
			observability.WithFields("chat_id", chatID).Error("chat job panicked", "panic", rec)
		}
	}()
	job()
}

// Shutdown stops accepting jobs and waits for queued ones to drain.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Active returns the number of chats with queued or running jobs.
func (d *Dispatcher) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queues)
}

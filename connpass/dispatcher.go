package connpass

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ErrDispatcherClosed is returned by Submit after Close.
var ErrDispatcherClosed = errors.New("connpass: dispatcher closed")

// Dispatcher runs units of work one at a time, in submission order, leaving
// at least the configured delay between the end of one unit and the start of
// the next. A failing or panicking unit delays its successors exactly as a
// successful one does.
//
// With a zero delay units run as soon as the previous one has finished.
type Dispatcher struct {
	delay time.Duration

	mu      sync.Mutex
	queue   []*dispatchUnit
	started bool
	closed  bool
	wake    chan struct{}
	done    chan struct{}

	// serial guards unit execution when delay is zero; inflight counts
	// the units started in that mode.
	serial   sync.Mutex
	inflight sync.WaitGroup

	completed atomic.Int64
	failed    atomic.Int64
}

type dispatchUnit struct {
	ctx  context.Context
	fn   func(context.Context) error
	err  error
	done chan struct{}
}

// DispatcherStats is a point-in-time view of a Dispatcher.
type DispatcherStats struct {
	Queued    int
	Completed int64
	Failed    int64
}

// NewDispatcher returns a Dispatcher pacing units delay apart. A delay of
// zero or less disables pacing.
func NewDispatcher(delay time.Duration) *Dispatcher {
	if delay < 0 {
		delay = 0
	}
	return &Dispatcher{
		delay: delay,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Delay reports the configured gap between units.
func (d *Dispatcher) Delay() time.Duration { return d.delay }

// Submit enqueues fn and waits for it to run, returning its error. fn
// receives ctx.
//
// If ctx ends first, Submit returns ctx.Err() without waiting; fn keeps its
// place in the queue and still runs, so the pacing of later units is
// unaffected. fn is then called with the abandoned ctx; callers that need the
// work to complete pass it a context of their own.
func (d *Dispatcher) Submit(ctx context.Context, fn func(context.Context) error) error {
	if d.delay == 0 {
		return d.runSerial(ctx, fn)
	}

	u := &dispatchUnit{ctx: ctx, fn: fn, done: make(chan struct{})}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.queue = append(d.queue, u)
	if !d.started {
		d.started = true
		go d.loop()
	}
	d.mu.Unlock()
	d.signal()

	select {
	case <-u.done:
		return u.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) runSerial(ctx context.Context, fn func(context.Context) error) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.inflight.Add(1)
	d.mu.Unlock()

	errc := make(chan error, 1)
	go func() {
		defer d.inflight.Done()
		d.serial.Lock()
		defer d.serial.Unlock()
		errc <- d.run(ctx, fn)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// loop is the only reader of nextAvailable.
func (d *Dispatcher) loop() {
	defer close(d.done)

	var nextAvailable time.Time
	for {
		u, ok := d.next()
		if !ok {
			return
		}
		if wait := time.Until(nextAvailable); wait > 0 {
			timer := time.NewTimer(wait)
			<-timer.C
		}
		u.err = d.run(u.ctx, u.fn)
		nextAvailable = time.Now().Add(d.delay)
		close(u.done)
	}
}

// next blocks until a unit is queued, or reports false once the dispatcher
// is closed and drained.
func (d *Dispatcher) next() (*dispatchUnit, bool) {
	for {
		d.mu.Lock()
		if len(d.queue) > 0 {
			u := d.queue[0]
			d.queue[0] = nil
			d.queue = d.queue[1:]
			d.mu.Unlock()
			return u, true
		}
		if d.closed {
			d.mu.Unlock()
			return nil, false
		}
		d.mu.Unlock()
		<-d.wake
	}
}

func (d *Dispatcher) run(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("connpass: dispatched unit panicked: %v", r)
		}
		if err != nil {
			d.failed.Add(1)
		} else {
			d.completed.Add(1)
		}
	}()
	return fn(ctx)
}

// Close stops accepting units and waits for the queued ones to finish.
// It is safe to call more than once.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	started := d.started
	d.mu.Unlock()

	if started {
		d.signal()
		<-d.done
	}
	d.inflight.Wait()
	return nil
}

// Stats returns the current queue depth and unit counters.
func (d *Dispatcher) Stats() DispatcherStats {
	d.mu.Lock()
	queued := len(d.queue)
	d.mu.Unlock()
	return DispatcherStats{
		Queued:    queued,
		Completed: d.completed.Load(),
		Failed:    d.failed.Load(),
	}
}

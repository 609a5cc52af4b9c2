package main

import "sync"

const uiQueueSize = 64

// uiQueue hands closures from worker goroutines to the UI thread in order.
// push never blocks: when the queue is full or closed the closure is
// dropped, since every queued update is superseded by the next one.
type uiQueue struct {
	ops  chan func()
	done chan struct{}
	once sync.Once
}

func newUIQueue(size int) *uiQueue {
	if size <= 0 {
		size = uiQueueSize
	}
	return &uiQueue{
		ops:  make(chan func(), size),
		done: make(chan struct{}),
	}
}

// push reports whether fn was queued.
func (q *uiQueue) push(fn func()) bool {
	select {
	case <-q.done:
		return false
	default:
	}
	select {
	case q.ops <- fn:
		return true
	default:
		return false
	}
}

// drain runs every queued closure. A panicking closure is passed to
// onPanic and the rest still run.
func (q *uiQueue) drain(onPanic func(r any)) {
	for {
		select {
		case fn := <-q.ops:
			q.run(fn, onPanic)
		default:
			return
		}
	}
}

func (q *uiQueue) run(fn func(), onPanic func(r any)) {
	defer func() {
		if r := recover(); r != nil && onPanic != nil {
			onPanic(r)
		}
	}()
	fn()
}

// close stops accepting closures. Pending ones are discarded.
func (q *uiQueue) close() {
	q.once.Do(func() { close(q.done) })
}

package service

import (
	"sync"
	"sync/atomic"
)

// Flight tracks whether a controller has a backend call outstanding.
// Every acquisition hands back a release func; callers defer it so the flag
// is cleared on every exit path.
type Flight struct {
	active atomic.Int32
}

// TryAcquire claims the flight only if nothing is in progress.
// ok=false means the caller must not start its request.
func (f *Flight) TryAcquire() (release func(), ok bool) {
	if !f.active.CompareAndSwap(0, 1) {
		return func() {}, false
	}
	return f.releaser(), true
}

// Acquire always succeeds and counts overlapping holders; Busy stays true
// until the last one releases.
func (f *Flight) Acquire() (release func()) {
	f.active.Add(1)
	return f.releaser()
}

func (f *Flight) Busy() bool {
	return f.active.Load() > 0
}

func (f *Flight) releaser() func() {
	var once sync.Once
	return func() {
		once.Do(func() { f.active.Add(-1) })
	}
}

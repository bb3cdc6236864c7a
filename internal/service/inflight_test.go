package service

import "testing"

func TestFlightTryAcquire(t *testing.T) {
	var f Flight

	release, ok := f.TryAcquire()
	if !ok || !f.Busy() {
		t.Fatalf("TryAcquire() ok = %v, Busy() = %v", ok, f.Busy())
	}
	if _, ok := f.TryAcquire(); ok {
		t.Error("second TryAcquire() ok = true")
	}

	release()
	release()
	if f.Busy() {
		t.Error("Busy() = true after release")
	}
	if _, ok := f.TryAcquire(); !ok {
		t.Error("TryAcquire() after release ok = false")
	}
}

func TestFlightAcquireCounts(t *testing.T) {
	var f Flight

	r1 := f.Acquire()
	r2 := f.Acquire()
	r1()
	r1()
	if !f.Busy() {
		t.Error("Busy() = false with one holder left")
	}
	r2()
	if f.Busy() {
		t.Error("Busy() = true after all releases")
	}
}

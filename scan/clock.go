package scan

import (
	"sync"
	"time"
)

// Clock provides an abstraction over time operations to enable testing
// without real time delays.
type Clock interface {
	// Now returns the current time
	Now() time.Time

	// Sleep pauses execution for the given duration
	Sleep(d time.Duration)

	// After returns a channel that will receive a value after the duration
	After(d time.Duration) <-chan time.Time
}

// RealClock implements Clock using actual time operations
type RealClock struct{}

// NewRealClock creates a new RealClock
func NewRealClock() Clock {
	return &RealClock{}
}

func (rc *RealClock) Now() time.Time {
	return time.Now()
}

func (rc *RealClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

func (rc *RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// FakeClock implements Clock for testing. Sleeps and waits complete
// immediately while advancing the fake time, and every requested duration is
// recorded so tests can assert on the waits a component performed.
type FakeClock struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

// NewFakeClock creates a new FakeClock starting at the given time
func NewFakeClock(startTime time.Time) *FakeClock {
	return &FakeClock{now: startTime}
}

func (fc *FakeClock) Now() time.Time {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.now
}

func (fc *FakeClock) Sleep(d time.Duration) {
	fc.advance(d)
}

func (fc *FakeClock) After(d time.Duration) <-chan time.Time {
	now := fc.advance(d)
	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

// Waits returns every duration that has been slept or waited on so far.
func (fc *FakeClock) Waits() []time.Duration {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	waits := make([]time.Duration, len(fc.waits))
	copy(waits, fc.waits)
	return waits
}

func (fc *FakeClock) advance(d time.Duration) time.Time {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.now = fc.now.Add(d)
	fc.waits = append(fc.waits, d)
	return fc.now
}

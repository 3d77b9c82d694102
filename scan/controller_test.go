package scan

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
	"time"
)

func quietLogger() *log.Logger {
	return log.New(&strings.Builder{}, "", 0)
}

func newTestConfig() Config {
	return Config{
		Wifi:      &MockWifiScanner{},
		Bluetooth: &MockBluetoothScanner{},
		Tags:      &MockTagReader{Tag: TagObservation{Payload: "no tag detected"}},
		Indicator: &MockIndicator{},
		Display:   &MockDisplay{},
		Clock:     NewFakeClock(time.Unix(0, 0)),
		Logger:    quietLogger(),
	}
}

func TestNewController_RequiredCollaborators(t *testing.T) {
	cfg := newTestConfig()
	cfg.Wifi = nil
	if _, err := NewController(cfg); err == nil {
		t.Error("expected error for nil wifi scanner")
	}

	cfg = newTestConfig()
	cfg.Bluetooth = nil
	if _, err := NewController(cfg); err == nil {
		t.Error("expected error for nil bluetooth scanner")
	}

	cfg = newTestConfig()
	cfg.Indicator = nil
	if _, err := NewController(cfg); err == nil {
		t.Error("expected error for nil indicator")
	}
}

func TestRunCycle_WifiFailureStillScansBluetooth(t *testing.T) {
	cfg := newTestConfig()
	wifi := &MockWifiScanner{Err: errors.New("iwlist missing")}
	bt := &MockBluetoothScanner{Devices: []DeviceObservation{
		{Address: "AA:BB", Name: "Phone", Services: []string{}},
	}}
	cfg.Wifi = wifi
	cfg.Bluetooth = bt

	c, err := NewController(cfg)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}

	if err := c.runCycle(); err != nil {
		t.Fatalf("runCycle returned error for an absorbed scan failure: %v", err)
	}
	if bt.Calls() != 1 {
		t.Errorf("expected bluetooth scan to run after wifi failure, got %d calls", bt.Calls())
	}

	latest := c.Latest()
	if latest == nil {
		t.Fatal("expected a cycle result to be published")
	}
	if len(latest.Networks) != 0 {
		t.Errorf("expected empty network list after wifi failure, got %v", latest.Networks)
	}
	if len(latest.Devices) != 1 || latest.Devices[0].Address != "AA:BB" {
		t.Errorf("unexpected devices: %v", latest.Devices)
	}
}

// recordingIndicator and the recording scanners below share one event log so
// the cycle's step order can be asserted.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(event string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	events := make([]string, len(l.events))
	copy(events, l.events)
	return events
}

type recordingIndicator struct{ log *eventLog }

func (r *recordingIndicator) SetActive() error { r.log.add("active"); return nil }
func (r *recordingIndicator) SetIdle() error   { r.log.add("idle"); return nil }
func (r *recordingIndicator) Halt() error      { r.log.add("halt"); return nil }

type recordingDisplay struct{ log *eventLog }

func (r *recordingDisplay) ShowCounts(networks, devices int) error {
	r.log.add("display")
	return nil
}

func TestRunCycle_StepOrder(t *testing.T) {
	events := &eventLog{}

	cfg := newTestConfig()
	cfg.Indicator = &recordingIndicator{log: events}
	cfg.Display = &recordingDisplay{log: events}
	cfg.Wifi = &MockWifiScanner{ScanFunc: func(ctx context.Context) ([]NetworkObservation, error) {
		events.add("wifi")
		return nil, errors.New("scan tool exited 1")
	}}
	cfg.Bluetooth = &MockBluetoothScanner{ScanFunc: func(ctx context.Context, d time.Duration) ([]DeviceObservation, error) {
		events.add("bluetooth")
		return nil, nil
	}}

	c, err := NewController(cfg)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	if err := c.runCycle(); err != nil {
		t.Fatalf("runCycle: %v", err)
	}

	want := []string{"active", "wifi", "bluetooth", "display", "idle"}
	got := events.all()
	if len(got) != len(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, got)
		}
	}
}

func TestRunCycle_IndicatorExactlyOncePerCycle(t *testing.T) {
	cfg := newTestConfig()
	cfg.Wifi = &MockWifiScanner{Err: errors.New("wifi down")}
	cfg.Bluetooth = &MockBluetoothScanner{Err: errors.New("bluetooth down")}
	indicator := &MockIndicator{}
	cfg.Indicator = indicator

	c, err := NewController(cfg)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := c.runCycle(); err != nil {
			t.Fatalf("runCycle %d: %v", i, err)
		}
	}

	want := []string{"active", "idle", "active", "idle", "active", "idle"}
	got := indicator.Log()
	if len(got) != len(want) {
		t.Fatalf("expected transitions %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected transitions %v, got %v", want, got)
		}
	}
}

func TestRunCycle_DisplayFailureDoesNotAbort(t *testing.T) {
	cfg := newTestConfig()
	display := &MockDisplay{Err: errors.New("display not connected")}
	indicator := &MockIndicator{}
	cfg.Display = display
	cfg.Indicator = indicator

	c, err := NewController(cfg)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}

	if err := c.runCycle(); err != nil {
		t.Fatalf("runCycle returned error for a failing display: %v", err)
	}
	// The next cycle still executes its indicator logic.
	if err := c.runCycle(); err != nil {
		t.Fatalf("second runCycle: %v", err)
	}
	if got := indicator.Log(); len(got) != 4 {
		t.Errorf("expected 4 indicator transitions across 2 cycles, got %v", got)
	}
	if got := display.Rendered(); len(got) != 2 {
		t.Errorf("expected 2 display updates, got %v", got)
	}
}

func TestRunCycle_DisplayReceivesCounts(t *testing.T) {
	cfg := newTestConfig()
	cfg.Wifi = &MockWifiScanner{Networks: []NetworkObservation{{SSID: "Home"}, {SSID: "Cafe"}}}
	cfg.Bluetooth = &MockBluetoothScanner{Devices: []DeviceObservation{
		{Address: "AA:BB", Name: "Phone", Services: []string{}},
	}}
	display := &MockDisplay{}
	cfg.Display = display

	c, err := NewController(cfg)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	if err := c.runCycle(); err != nil {
		t.Fatalf("runCycle: %v", err)
	}

	rendered := display.Rendered()
	if len(rendered) != 1 || rendered[0] != [2]int{2, 1} {
		t.Errorf("expected rendered counts [2 1], got %v", rendered)
	}
}

func TestRunCycle_PanicRecovered(t *testing.T) {
	cfg := newTestConfig()
	indicator := &MockIndicator{}
	cfg.Indicator = indicator
	cfg.Wifi = &MockWifiScanner{ScanFunc: func(ctx context.Context) ([]NetworkObservation, error) {
		panic("wifi driver bug")
	}}

	c, err := NewController(cfg)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}

	cycleErr := c.runCycle()
	if cycleErr == nil {
		t.Fatal("expected runCycle to report the recovered panic")
	}
	if !strings.Contains(cycleErr.Error(), "wifi driver bug") {
		t.Errorf("unexpected error: %v", cycleErr)
	}

	// The indicator must not be left active after the failed cycle.
	got := indicator.Log()
	if len(got) == 0 || got[len(got)-1] != "idle" {
		t.Errorf("expected indicator to end idle, got %v", got)
	}
}

func TestRunCycle_DwellAndCooldownWaits(t *testing.T) {
	cfg := newTestConfig()
	clock := NewFakeClock(time.Unix(0, 0))
	cfg.Clock = clock
	cfg.Dwell = 10 * time.Second
	cfg.Cooldown = 2 * time.Second

	c, err := NewController(cfg)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	if err := c.runCycle(); err != nil {
		t.Fatalf("runCycle: %v", err)
	}

	waits := clock.Waits()
	if len(waits) != 2 || waits[0] != 10*time.Second || waits[1] != 2*time.Second {
		t.Errorf("expected waits [10s 2s], got %v", waits)
	}
}

func TestController_BackoffAfterPanic(t *testing.T) {
	var (
		mu    sync.Mutex
		times []time.Time
	)

	cfg := newTestConfig()
	cfg.Clock = NewRealClock()
	cfg.Dwell = time.Millisecond
	cfg.Cooldown = time.Millisecond
	cfg.ErrorBackoff = 50 * time.Millisecond
	cfg.Wifi = &MockWifiScanner{ScanFunc: func(ctx context.Context) ([]NetworkObservation, error) {
		mu.Lock()
		times = append(times, time.Now())
		mu.Unlock()
		panic("boom")
	}}

	c, err := NewController(cfg)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	c.Start()
	defer c.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(times)
		mu.Unlock()
		if n >= 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timeout waiting for second cycle attempt")
		}
		time.Sleep(5 * time.Millisecond)
	}

	mu.Lock()
	gap := times[1].Sub(times[0])
	mu.Unlock()
	if gap < cfg.ErrorBackoff {
		t.Errorf("second cycle started %v after the first, want at least %v", gap, cfg.ErrorBackoff)
	}
}

func TestController_StopDuringDwell(t *testing.T) {
	cfg := newTestConfig()
	cfg.Clock = NewRealClock()
	cfg.Dwell = time.Minute
	cfg.Cooldown = time.Minute

	c, err := NewController(cfg)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	c.Start()

	select {
	case <-c.Results():
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for first cycle result")
	}

	done := make(chan struct{})
	go func() {
		c.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return while the worker was dwelling")
	}
}

func TestController_TriggerCutsCooldownShort(t *testing.T) {
	cfg := newTestConfig()
	cfg.Clock = NewRealClock()
	cfg.Dwell = time.Millisecond
	cfg.Cooldown = time.Minute

	c, err := NewController(cfg)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	c.Start()
	defer c.Stop()

	select {
	case <-c.Results():
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for first cycle result")
	}

	c.Trigger()

	select {
	case <-c.Results():
	case <-time.After(2 * time.Second):
		t.Fatal("trigger did not start the next cycle")
	}
}

func TestController_LatestReturnsCopy(t *testing.T) {
	cfg := newTestConfig()
	c, err := NewController(cfg)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	if c.Latest() != nil {
		t.Error("expected nil latest before any cycle")
	}

	if err := c.runCycle(); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	first := c.Latest()
	if first == nil {
		t.Fatal("expected a latest result after a cycle")
	}
	first.ID = "mutated"
	if c.Latest().ID == "mutated" {
		t.Error("Latest must return a copy")
	}
}

package scan

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// Cycle timings. Values mirror the hardware prototype: the indicator dwells
// active for 10s per cycle, idles for 2s, and an unexpected in-cycle error
// pauses the loop for 5s before the next attempt.
const (
	DefaultDwellTime     = 10 * time.Second
	DefaultCooldownTime  = 2 * time.Second
	DefaultErrorBackoff  = 5 * time.Second
	DefaultBluetoothScan = 8 * time.Second
)

// Config holds the collaborators and timings for a Controller.
// Wifi, Bluetooth and Indicator are required; Tags and Display are optional
// and skipped when nil.
type Config struct {
	Wifi      WifiScanner
	Bluetooth BluetoothScanner
	Tags      TagReader
	Indicator Indicator
	Display   Display

	Dwell         time.Duration
	Cooldown      time.Duration
	ErrorBackoff  time.Duration
	BluetoothScan time.Duration

	Clock  Clock
	Logger *log.Logger
}

// Controller runs the continuous scan loop: one full pass of Wi-Fi,
// Bluetooth and NFC per cycle, driving the status indicator and the display.
// Any single collaborator failure is absorbed; the loop only stops via Stop.
type Controller struct {
	cfg    Config
	clock  Clock
	logger *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	resultChan chan CycleResult
	trigger    chan struct{}
	stopChan   chan struct{}
	stopOnce   sync.Once
	workerWg   sync.WaitGroup

	mu     sync.RWMutex
	latest *CycleResult
}

// NewController creates a Controller, filling in default timings, clock and
// logger for any zero-valued Config fields.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Wifi == nil {
		return nil, fmt.Errorf("wifi scanner cannot be nil")
	}
	if cfg.Bluetooth == nil {
		return nil, fmt.Errorf("bluetooth scanner cannot be nil")
	}
	if cfg.Indicator == nil {
		return nil, fmt.Errorf("indicator cannot be nil")
	}
	if cfg.Dwell <= 0 {
		cfg.Dwell = DefaultDwellTime
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldownTime
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = DefaultErrorBackoff
	}
	if cfg.BluetoothScan <= 0 {
		cfg.BluetoothScan = DefaultBluetoothScan
	}
	if cfg.Clock == nil {
		cfg.Clock = NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[scan] ", log.LstdFlags)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Controller{
		cfg:        cfg,
		clock:      cfg.Clock,
		logger:     cfg.Logger,
		ctx:        ctx,
		cancel:     cancel,
		resultChan: make(chan CycleResult, 1), // Buffered to prevent blocking on send if no listener
		trigger:    make(chan struct{}, 1),
		stopChan:   make(chan struct{}),
	}, nil
}

// Start begins the scan loop in a separate goroutine.
func (c *Controller) Start() {
	c.workerWg.Add(1)
	go c.worker()
}

// Stop gracefully shuts down the scan loop and waits for it to complete.
// Safe to call more than once.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		c.logger.Println("Stopping scan controller...")
		close(c.stopChan)
		c.cancel()
	})
	c.workerWg.Wait()
}

// Trigger requests that the next cycle start immediately, cutting the current
// idle cooldown short. Used by the hardware buttons.
func (c *Controller) Trigger() {
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

// Results returns a channel that provides each CycleResult as cycles complete.
func (c *Controller) Results() <-chan CycleResult {
	return c.resultChan
}

// Latest returns a copy of the most recent completed cycle, or nil if no
// cycle has completed yet.
func (c *Controller) Latest() *CycleResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.latest == nil {
		return nil
	}
	result := *c.latest
	return &result
}

func (c *Controller) worker() {
	c.logger.Println("scan worker started")
	defer func() {
		// The worker may exit mid-dwell; make sure the indicator is not
		// left in the active state.
		if err := c.cfg.Indicator.SetIdle(); err != nil {
			c.logger.Printf("indicator idle on shutdown: %v", err)
		}
		c.logger.Println("scan worker stopped")
		c.workerWg.Done()
	}()

	for {
		select {
		case <-c.stopChan:
			return
		default:
		}

		if err := c.runCycle(); err != nil {
			c.logger.Printf("scan cycle error: %v", err)
			if !c.wait(c.cfg.ErrorBackoff) {
				return
			}
		}
	}
}

// runCycle executes one full scan cycle in fixed order: indicator active,
// Wi-Fi, Bluetooth, NFC, log counts, display, dwell, indicator idle,
// cooldown. A panic escaping any step is recovered and returned as an error
// so the worker can back off.
func (c *Controller) runCycle() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected cycle error: %v", r)
			if idleErr := c.cfg.Indicator.SetIdle(); idleErr != nil {
				c.logger.Printf("indicator idle after cycle error: %v", idleErr)
			}
		}
	}()

	started := c.clock.Now()
	result := CycleResult{
		ID:        NewCycleID(started),
		StartedAt: started,
		Tag:       TagObservation{},
	}

	if indErr := c.cfg.Indicator.SetActive(); indErr != nil {
		c.logger.Printf("indicator active: %v", indErr)
	}

	networks, scanErr := c.cfg.Wifi.Scan(c.ctx)
	if scanErr != nil {
		c.logger.Printf("wifi scan failed: %v", scanErr)
		networks = nil
	}
	result.Networks = networks

	devices, scanErr := c.cfg.Bluetooth.Scan(c.ctx, c.cfg.BluetoothScan)
	if scanErr != nil {
		c.logger.Printf("bluetooth scan failed: %v", scanErr)
		devices = nil
	}
	result.Devices = devices

	if c.cfg.Tags != nil {
		tag, readErr := c.cfg.Tags.Read(c.ctx)
		if readErr != nil {
			c.logger.Printf("tag read failed: %v", readErr)
		} else {
			result.Tag = tag
		}
	}

	c.logger.Printf("cycle %s: %d networks, %d devices", result.ID, len(result.Networks), len(result.Devices))

	if c.cfg.Display != nil {
		if dispErr := c.cfg.Display.ShowCounts(len(result.Networks), len(result.Devices)); dispErr != nil {
			c.logger.Printf("display update failed: %v", dispErr)
		}
	}

	c.publish(result)

	if !c.wait(c.cfg.Dwell) {
		return nil
	}
	if indErr := c.cfg.Indicator.SetIdle(); indErr != nil {
		c.logger.Printf("indicator idle: %v", indErr)
	}
	c.waitCooldown(c.cfg.Cooldown)
	return nil
}

// publish stores the result as the latest and broadcasts it without blocking.
func (c *Controller) publish(result CycleResult) {
	c.mu.Lock()
	c.latest = &result
	c.mu.Unlock()

	select {
	case c.resultChan <- result:
	default:
		// No listener, or the previous result was not drained yet. The
		// latest result is still available via Latest().
	}
}

// wait blocks for d or until Stop is called. It reports whether the
// controller should keep running.
func (c *Controller) wait(d time.Duration) bool {
	select {
	case <-c.stopChan:
		return false
	case <-c.clock.After(d):
		return true
	}
}

// waitCooldown is like wait but can also be cut short by Trigger.
func (c *Controller) waitCooldown(d time.Duration) bool {
	select {
	case <-c.stopChan:
		return false
	case <-c.trigger:
		c.logger.Println("manual trigger, starting next cycle")
		return true
	case <-c.clock.After(d):
		return true
	}
}

package hw

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// edgePollTimeout bounds each WaitForEdge call so watcher goroutines can
// notice a stop request.
const edgePollTimeout = 500 * time.Millisecond

// Button abstracts a single edge-triggered input pin.
type Button interface {
	// WaitForEdge blocks until the button is pressed or the timeout elapses,
	// reporting whether an edge was seen.
	WaitForEdge(timeout time.Duration) bool
	Name() string
	Halt() error
}

// gpioButton is a Button backed by a periph GPIO pin with a pull-up, firing
// on the falling edge.
type gpioButton struct {
	pin gpio.PinIO
}

// NewButton configures pinNum as a pulled-up input watching falling edges.
func NewButton(pinNum int) (Button, error) {
	pin, err := resolvePin(pinNum)
	if err != nil {
		return nil, err
	}
	if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return nil, fmt.Errorf("set pin %d to input: %w", pinNum, err)
	}
	return &gpioButton{pin: pin}, nil
}

func (b *gpioButton) WaitForEdge(timeout time.Duration) bool {
	return b.pin.WaitForEdge(timeout)
}

func (b *gpioButton) Name() string {
	return b.pin.Name()
}

func (b *gpioButton) Halt() error {
	return b.pin.Halt()
}

// ButtonWatcher waits for presses on a set of buttons and reports them on a
// channel. Presses arriving while the channel is full are dropped.
type ButtonWatcher struct {
	buttons []Button
	presses chan string

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	logger   *log.Logger
}

// NewButtonWatcher creates a watcher for the given buttons.
func NewButtonWatcher(buttons ...Button) *ButtonWatcher {
	return &ButtonWatcher{
		buttons:  buttons,
		presses:  make(chan string, 1),
		stopChan: make(chan struct{}),
		logger:   log.New(os.Stderr, "[hw] ", log.LstdFlags),
	}
}

// Start begins one watch goroutine per button.
func (w *ButtonWatcher) Start() {
	for _, b := range w.buttons {
		w.wg.Add(1)
		go w.watch(b)
	}
}

// Presses returns the channel on which button names are delivered.
func (w *ButtonWatcher) Presses() <-chan string {
	return w.presses
}

// Stop halts all buttons and waits for the watch goroutines to finish.
// Safe to call more than once.
func (w *ButtonWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
	})
	w.wg.Wait()
	for _, b := range w.buttons {
		if err := b.Halt(); err != nil {
			w.logger.Printf("halt button %s: %v", b.Name(), err)
		}
	}
}

func (w *ButtonWatcher) watch(b Button) {
	defer w.wg.Done()
	for {
		select {
		case <-w.stopChan:
			return
		default:
		}
		if !b.WaitForEdge(edgePollTimeout) {
			continue
		}
		w.logger.Printf("button %s pressed", b.Name())
		select {
		case w.presses <- b.Name():
		default:
		}
	}
}

// Package hw provides the GPIO-backed collaborators: the status LED driven
// by the scan controller and the edge-triggered buttons.
package hw

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Default pin assignments, matching the prototype wiring.
const DefaultLEDPin = 18

// DefaultButtonPins are the input pins wired to the three panel buttons.
var DefaultButtonPins = []int{17, 22, 27}

// resolvePin initializes the periph host and looks up a GPIO pin by number.
func resolvePin(pinNum int) (gpio.PinIO, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	name := fmt.Sprintf("GPIO%d", pinNum)
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("pin %d (%s) not found in hardware", pinNum, name)
	}
	return pin, nil
}

// StatusLED drives a single GPIO output pin as the scan activity indicator.
// It implements scan.Indicator.
type StatusLED struct {
	pin gpio.PinIO
}

// NewStatusLED configures pinNum as an output, initially low.
func NewStatusLED(pinNum int) (*StatusLED, error) {
	pin, err := resolvePin(pinNum)
	if err != nil {
		return nil, err
	}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("set pin %d to output: %w", pinNum, err)
	}
	return &StatusLED{pin: pin}, nil
}

// SetActive turns the LED on.
func (l *StatusLED) SetActive() error {
	return l.pin.Out(gpio.High)
}

// SetIdle turns the LED off.
func (l *StatusLED) SetIdle() error {
	return l.pin.Out(gpio.Low)
}

// Halt turns the LED off and releases the pin.
func (l *StatusLED) Halt() error {
	if err := l.pin.Out(gpio.Low); err != nil {
		return err
	}
	return l.pin.Halt()
}

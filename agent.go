package main

import (
	"log"
	"os"
	"sync"

	"github.com/pi-gadgets/flipperpi-agent/btscan"
	"github.com/pi-gadgets/flipperpi-agent/config"
	"github.com/pi-gadgets/flipperpi-agent/display"
	"github.com/pi-gadgets/flipperpi-agent/hw"
	"github.com/pi-gadgets/flipperpi-agent/nfctag"
	"github.com/pi-gadgets/flipperpi-agent/scan"
	"github.com/pi-gadgets/flipperpi-agent/server"
	"github.com/pi-gadgets/flipperpi-agent/wifi"
)

// Agent wires the scan controller to its hardware collaborators and the
// optional telemetry server. Missing hardware degrades to no-op
// collaborators with a logged warning; startup never aborts because of a
// peripheral.
type Agent struct {
	Logger     *log.Logger
	Controller *scan.Controller
	Server     *server.Server

	led     *hw.StatusLED
	oled    *display.OLED
	buttons *hw.ButtonWatcher

	stopChan chan struct{}
	stopOnce sync.Once
	bridgeWg sync.WaitGroup
}

// NewAgent builds the agent from the loaded configuration.
func NewAgent(cfg config.Config) (*Agent, error) {
	logger := log.New(os.Stderr, "[agent] ", log.LstdFlags)

	a := &Agent{
		Logger:   logger,
		stopChan: make(chan struct{}),
	}

	var indicator scan.Indicator = scan.NopIndicator{}
	led, err := hw.NewStatusLED(cfg.Hardware.LEDPin)
	if err != nil {
		logger.Printf("Warning: status LED unavailable: %v", err)
	} else {
		a.led = led
		indicator = led
	}

	var disp scan.Display = scan.NopDisplay{}
	if cfg.Hardware.DisplayEnabled {
		oled, err := display.NewOLED(cfg.Hardware.I2CBus)
		if err != nil {
			logger.Printf("Warning: display unavailable: %v", err)
		} else {
			a.oled = oled
			disp = oled
		}
	}

	tags, err := nfctag.NewReader(cfg.Hardware.NFCDevice)
	if err != nil {
		logger.Printf("Warning: NFC reader unavailable: %v", err)
		tags = nfctag.StubReader{}
	}

	discoverer := btscan.NewAdapterDiscoverer()

	controller, err := scan.NewController(scan.Config{
		Wifi:          wifi.NewIWListScanner(cfg.Scan.WifiInterface),
		Bluetooth:     btscan.NewScanner(discoverer, discoverer),
		Tags:          tags,
		Indicator:     indicator,
		Display:       disp,
		Dwell:         cfg.Scan.DwellDuration(),
		Cooldown:      cfg.Scan.CooldownDuration(),
		ErrorBackoff:  cfg.Scan.ErrorBackoffDuration(),
		BluetoothScan: cfg.Scan.BluetoothScanDuration(),
	})
	if err != nil {
		return nil, err
	}
	a.Controller = controller

	var buttons []hw.Button
	for _, pin := range cfg.Hardware.ButtonPins {
		b, err := hw.NewButton(pin)
		if err != nil {
			logger.Printf("Warning: button on pin %d unavailable: %v", pin, err)
			continue
		}
		buttons = append(buttons, b)
	}
	if len(buttons) > 0 {
		a.buttons = hw.NewButtonWatcher(buttons...)
	}

	if cfg.Server.Port > 0 {
		a.Server = server.New(server.Config{
			Source: controller,
			Port:   cfg.Server.Port,
		})
	}

	return a, nil
}

// Start launches the scan loop, the button watcher and the telemetry server.
func (a *Agent) Start() {
	a.Controller.Start()

	if a.buttons != nil {
		a.buttons.Start()
		a.bridgeWg.Add(1)
		go a.bridgeButtons()
	}

	if a.Server != nil {
		go func() {
			if err := a.Server.Start(); err != nil {
				a.Logger.Printf("server stopped: %v", err)
			}
		}()
	}
}

// Stop shuts everything down in reverse order and releases the hardware.
func (a *Agent) Stop() {
	a.Logger.Println("Stopping agent...")

	if a.Server != nil {
		a.Server.Stop()
	}

	a.stopOnce.Do(func() {
		close(a.stopChan)
	})
	if a.buttons != nil {
		a.buttons.Stop()
	}
	a.bridgeWg.Wait()

	a.Controller.Stop()

	if a.oled != nil {
		if err := a.oled.Halt(); err != nil {
			a.Logger.Printf("display halt: %v", err)
		}
	}
	if a.led != nil {
		if err := a.led.Halt(); err != nil {
			a.Logger.Printf("status LED halt: %v", err)
		}
	}

	a.Logger.Println("Agent stopped successfully")
}

// bridgeButtons turns every button press into an immediate scan trigger.
func (a *Agent) bridgeButtons() {
	defer a.bridgeWg.Done()
	for {
		select {
		case <-a.stopChan:
			return
		case name := <-a.buttons.Presses():
			a.Logger.Printf("button %s pressed, triggering scan", name)
			a.Controller.Trigger()
		}
	}
}

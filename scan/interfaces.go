package scan

import (
	"context"
	"time"
)

// WifiScanner discovers nearby Wi-Fi networks.
//
// Implementations report failures via the returned error; the controller
// absorbs the error and substitutes an empty result, so a failed scan never
// stops the loop.
type WifiScanner interface {
	Scan(ctx context.Context) ([]NetworkObservation, error)
}

// BluetoothScanner discovers nearby Bluetooth devices for the given duration
// and resolves each device's services. A failed service lookup for one device
// must not drop that device from the result.
type BluetoothScanner interface {
	Scan(ctx context.Context, duration time.Duration) ([]DeviceObservation, error)
}

// TagReader reads the currently presented NFC tag, if any.
type TagReader interface {
	Read(ctx context.Context) (TagObservation, error)
}

// Indicator is a binary status output, an LED on real hardware.
// Halt releases the underlying pin.
type Indicator interface {
	SetActive() error
	SetIdle() error
	Halt() error
}

// Display renders the per-cycle summary counts. Implementations are
// best-effort: the controller logs and continues on error.
type Display interface {
	ShowCounts(networks, devices int) error
}

// NopIndicator is the degraded-mode Indicator used when no GPIO hardware is
// available at startup.
type NopIndicator struct{}

func (NopIndicator) SetActive() error { return nil }
func (NopIndicator) SetIdle() error   { return nil }
func (NopIndicator) Halt() error      { return nil }

// NopDisplay is the degraded-mode Display used when no display hardware is
// available at startup.
type NopDisplay struct{}

func (NopDisplay) ShowCounts(networks, devices int) error { return nil }

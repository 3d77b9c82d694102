package btscan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"
)

// AdapterDiscoverer discovers devices using the host's default BLE adapter.
// It also implements ServiceResolver by answering lookups from the service
// UUIDs advertised during the most recent discovery pass, so enrichment does
// not require connecting to every device.
type AdapterDiscoverer struct {
	adapter *bluetooth.Adapter

	enableOnce sync.Once
	enableErr  error

	mu         sync.Mutex
	advertised map[string][]string
}

// NewAdapterDiscoverer creates a discoverer backed by bluetooth.DefaultAdapter.
func NewAdapterDiscoverer() *AdapterDiscoverer {
	return &AdapterDiscoverer{
		adapter:    bluetooth.DefaultAdapter,
		advertised: make(map[string][]string),
	}
}

// Discover enables the adapter on first use and collects unique devices until
// the duration elapses or ctx is cancelled.
func (a *AdapterDiscoverer) Discover(ctx context.Context, duration time.Duration) ([]DiscoveredDevice, error) {
	a.enableOnce.Do(func() {
		a.enableErr = a.adapter.Enable()
	})
	if a.enableErr != nil {
		return nil, fmt.Errorf("enable BLE adapter: %w", a.enableErr)
	}

	var (
		mu         sync.Mutex
		seen       = make(map[string]bool)
		found      []DiscoveredDevice
		advertised = make(map[string][]string)
	)

	scanDone := make(chan error, 1)
	go func() {
		scanDone <- a.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
			mu.Lock()
			defer mu.Unlock()

			addr := result.Address.String()
			if seen[addr] {
				return
			}
			seen[addr] = true
			found = append(found, DiscoveredDevice{
				Address: addr,
				Name:    result.LocalName(),
			})

			var uuids []string
			for _, u := range result.AdvertisementPayload.ServiceUUIDs() {
				uuids = append(uuids, u.String())
			}
			advertised[addr] = uuids
		})
	}()

	select {
	case err := <-scanDone:
		// Scan returned before the window elapsed; that only happens on error.
		if err != nil {
			return nil, fmt.Errorf("BLE scan: %w", err)
		}
	case <-ctx.Done():
	case <-time.After(duration):
	}
	if err := a.adapter.StopScan(); err != nil {
		return nil, fmt.Errorf("stop BLE scan: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	a.mu.Lock()
	a.advertised = advertised
	a.mu.Unlock()
	devices := make([]DiscoveredDevice, len(found))
	copy(devices, found)
	return devices, nil
}

// Services returns the service UUIDs the device advertised during the most
// recent discovery pass.
func (a *AdapterDiscoverer) Services(ctx context.Context, address string) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	uuids, ok := a.advertised[address]
	if !ok {
		return nil, fmt.Errorf("no advertisement data for %s", address)
	}
	services := make([]string, len(uuids))
	copy(services, uuids)
	return services, nil
}

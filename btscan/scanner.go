// Package btscan implements the Bluetooth scan collaborator on top of the
// host's BLE adapter.
package btscan

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/pi-gadgets/flipperpi-agent/scan"
)

// DiscoveredDevice is a raw discovery record before service enrichment.
type DiscoveredDevice struct {
	Address string
	Name    string
}

// Discoverer performs raw device discovery for a bounded duration.
type Discoverer interface {
	Discover(ctx context.Context, duration time.Duration) ([]DiscoveredDevice, error)
}

// ServiceResolver resolves the service identifiers for one device address.
type ServiceResolver interface {
	Services(ctx context.Context, address string) ([]string, error)
}

// Scanner pairs a Discoverer with a ServiceResolver to produce enriched
// DeviceObservations. A failed service lookup for one device yields that
// device with an empty service list; it never drops the device or aborts
// the scan.
type Scanner struct {
	discoverer Discoverer
	resolver   ServiceResolver
	logger     *log.Logger
}

// NewScanner creates a Scanner. resolver may be nil, in which case every
// device is reported with an empty service list.
func NewScanner(discoverer Discoverer, resolver ServiceResolver) *Scanner {
	return &Scanner{
		discoverer: discoverer,
		resolver:   resolver,
		logger:     log.New(os.Stderr, "[btscan] ", log.LstdFlags),
	}
}

// Scan discovers devices for the given duration and enriches each with its
// resolved services.
func (s *Scanner) Scan(ctx context.Context, duration time.Duration) ([]scan.DeviceObservation, error) {
	found, err := s.discoverer.Discover(ctx, duration)
	if err != nil {
		return nil, scan.NewBluetoothDiscoveryError("discover", err)
	}

	devices := make([]scan.DeviceObservation, 0, len(found))
	for _, d := range found {
		obs := scan.DeviceObservation{
			Address:  d.Address,
			Name:     d.Name,
			Services: []string{},
		}
		if s.resolver != nil {
			services, lookupErr := s.resolver.Services(ctx, d.Address)
			if lookupErr != nil {
				s.logger.Printf("service lookup failed for %s: %v", d.Address, lookupErr)
			} else if services != nil {
				obs.Services = services
			}
		}
		devices = append(devices, obs)
	}
	return devices, nil
}

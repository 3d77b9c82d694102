// Package wifi implements the Wi-Fi scan collaborator by shelling out to the
// system iwlist utility and parsing its textual output.
package wifi

import (
	"context"
	"os/exec"
	"strings"

	"github.com/pi-gadgets/flipperpi-agent/scan"
)

// DefaultInterface is the wireless interface scanned when none is configured.
const DefaultInterface = "wlan0"

// runner executes a command and returns its standard output. It is a seam so
// parsing can be tested without the scan utility installed.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// IWListScanner discovers Wi-Fi networks via `iwlist <iface> scan`.
type IWListScanner struct {
	iface string
	run   runner
}

// NewIWListScanner creates a scanner for the given wireless interface.
// An empty iface falls back to DefaultInterface.
func NewIWListScanner(iface string) *IWListScanner {
	if iface == "" {
		iface = DefaultInterface
	}
	return &IWListScanner{iface: iface, run: execRunner}
}

// Interface returns the wireless interface this scanner queries.
func (s *IWListScanner) Interface() string {
	return s.iface
}

// Scan runs the scan utility once and extracts one NetworkObservation per
// ESSID line found in its output. Any subprocess failure is returned as an
// error; the caller decides what to substitute.
func (s *IWListScanner) Scan(ctx context.Context) ([]scan.NetworkObservation, error) {
	out, err := s.run(ctx, "iwlist", s.iface, "scan")
	if err != nil {
		return nil, scan.NewWifiScanError("iwlist "+s.iface, err)
	}
	return parseESSIDs(string(out)), nil
}

// parseESSIDs extracts the quoted identifier from every line carrying an
// ESSID marker. Hidden networks advertising an empty identifier are skipped.
func parseESSIDs(out string) []scan.NetworkObservation {
	var networks []scan.NetworkObservation
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "ESSID") {
			continue
		}
		parts := strings.SplitN(line, `"`, 3)
		if len(parts) < 3 {
			continue
		}
		if parts[1] == "" {
			continue
		}
		networks = append(networks, scan.NetworkObservation{SSID: parts[1]})
	}
	return networks
}

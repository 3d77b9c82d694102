//go:build !libnfc

package nfctag

import "github.com/pi-gadgets/flipperpi-agent/scan"

// NewReader returns the stub reader. Builds tagged "libnfc" replace this with
// a reader backed by real hardware.
func NewReader(devicePath string) (scan.TagReader, error) {
	return StubReader{}, nil
}

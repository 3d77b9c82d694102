//go:build libnfc

package nfctag

import (
	"context"
	"encoding/hex"
	"fmt"

	nfclib "github.com/clausecker/nfc/v2"

	"github.com/pi-gadgets/flipperpi-agent/scan"
)

// libnfcReader implements scan.TagReader using an actual NFC device from
// libnfc. An empty devicePath lets libnfc pick the first available device.
type libnfcReader struct {
	dev nfclib.Device
}

// NewReader opens the NFC device at devicePath and prepares it for polling.
func NewReader(devicePath string) (scan.TagReader, error) {
	dev, err := nfclib.Open(devicePath)
	if err != nil {
		return nil, fmt.Errorf("open NFC device %q: %w", devicePath, err)
	}
	if err := dev.InitiatorInit(); err != nil {
		dev.Close()
		return nil, fmt.Errorf("initiator init: %w", err)
	}
	return &libnfcReader{dev: dev}, nil
}

// Read polls once for ISO14443A passive targets and reports the first UID
// found, or NoTagPayload when the field is empty.
func (r *libnfcReader) Read(ctx context.Context) (scan.TagObservation, error) {
	modulation := nfclib.Modulation{Type: nfclib.ISO14443a, BaudRate: nfclib.Nbr106}
	targets, err := r.dev.InitiatorListPassiveTargets(modulation)
	if err != nil {
		return scan.TagObservation{}, scan.NewTagReadError("list passive targets", err)
	}
	if len(targets) == 0 {
		return scan.TagObservation{Payload: NoTagPayload}, nil
	}

	if target, ok := targets[0].(*nfclib.ISO14443aTarget); ok {
		uid := hex.EncodeToString(target.UID[:target.UIDLen])
		return scan.TagObservation{Payload: "tag " + uid}, nil
	}
	return scan.TagObservation{Payload: "tag detected"}, nil
}

// Close releases the underlying device.
func (r *libnfcReader) Close() error {
	return r.dev.Close()
}

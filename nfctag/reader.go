// Package nfctag implements the NFC collaborator. The default reader is a
// stub that always reports no tag; a libnfc-backed reader is available behind
// the "libnfc" build tag.
package nfctag

import (
	"context"
	"log"
	"os"

	"github.com/pi-gadgets/flipperpi-agent/scan"
)

// NoTagPayload is the payload reported when no tag is present on the reader.
const NoTagPayload = "no tag detected"

// StubReader is the hardware-free TagReader. Every read reports NoTagPayload.
type StubReader struct{}

func (StubReader) Read(ctx context.Context) (scan.TagObservation, error) {
	return scan.TagObservation{Payload: NoTagPayload}, nil
}

// Emulator presents a tag payload to nearby readers. Radio-level emulation is
// not implemented; the payload is only logged.
//
// Tag emulation may be regulated; check local rules before wiring this to a
// real transmitter.
type Emulator struct {
	logger *log.Logger
}

// NewEmulator creates an Emulator.
func NewEmulator() *Emulator {
	return &Emulator{logger: log.New(os.Stderr, "[nfctag] ", log.LstdFlags)}
}

// Emulate logs the payload that would be presented.
func (e *Emulator) Emulate(payload string) {
	e.logger.Printf("emulating tag payload: %q", payload)
}

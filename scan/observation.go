package scan

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NetworkObservation is a single Wi-Fi network seen during one scan cycle.
type NetworkObservation struct {
	SSID string `json:"ssid"`
}

// DeviceObservation is a single Bluetooth device seen during one scan cycle.
// Services holds the resolved service identifiers for the device; it is empty
// (never nil) when the per-device service lookup failed or returned nothing.
type DeviceObservation struct {
	Address  string   `json:"address"`
	Name     string   `json:"name"`
	Services []string `json:"services"`
}

// TagObservation is the result of one NFC read attempt.
type TagObservation struct {
	Payload string `json:"payload"`
}

// CycleResult aggregates everything observed during one scan cycle.
// Results are ephemeral: only the most recent one is retained by the
// controller for status surfaces, no history is kept.
type CycleResult struct {
	ID        string               `json:"id"`
	StartedAt time.Time            `json:"startedAt"`
	Networks  []NetworkObservation `json:"networks"`
	Devices   []DeviceObservation  `json:"devices"`
	Tag       TagObservation       `json:"tag"`
}

// NewCycleID returns a lexicographically sortable identifier for a scan cycle.
func NewCycleID(t time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

package scan

import (
	"context"
	"sync"
	"time"
)

// MockWifiScanner is a test implementation of WifiScanner.
//
// If ScanFunc is set it takes precedence; otherwise Scan returns Networks or
// Err. All calls are tracked in CallLog.
type MockWifiScanner struct {
	Networks []NetworkObservation
	Err      error
	ScanFunc func(ctx context.Context) ([]NetworkObservation, error)

	CallLog []string
	mu      sync.Mutex
}

func (m *MockWifiScanner) Scan(ctx context.Context) ([]NetworkObservation, error) {
	m.mu.Lock()
	m.CallLog = append(m.CallLog, "Scan")
	fn := m.ScanFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	networks := make([]NetworkObservation, len(m.Networks))
	copy(networks, m.Networks)
	return networks, nil
}

// Calls returns the number of Scan calls made so far.
func (m *MockWifiScanner) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CallLog)
}

// MockBluetoothScanner is a test implementation of BluetoothScanner.
type MockBluetoothScanner struct {
	Devices  []DeviceObservation
	Err      error
	ScanFunc func(ctx context.Context, duration time.Duration) ([]DeviceObservation, error)

	CallLog []string
	mu      sync.Mutex
}

func (m *MockBluetoothScanner) Scan(ctx context.Context, duration time.Duration) ([]DeviceObservation, error) {
	m.mu.Lock()
	m.CallLog = append(m.CallLog, "Scan")
	fn := m.ScanFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, duration)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	devices := make([]DeviceObservation, len(m.Devices))
	copy(devices, m.Devices)
	return devices, nil
}

// Calls returns the number of Scan calls made so far.
func (m *MockBluetoothScanner) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CallLog)
}

// MockTagReader is a test implementation of TagReader.
type MockTagReader struct {
	Tag TagObservation
	Err error

	CallLog []string
	mu      sync.Mutex
}

func (m *MockTagReader) Read(ctx context.Context) (TagObservation, error) {
	m.mu.Lock()
	m.CallLog = append(m.CallLog, "Read")
	m.mu.Unlock()

	if m.Err != nil {
		return TagObservation{}, m.Err
	}
	return m.Tag, nil
}

// MockIndicator records every state transition for verification in tests.
type MockIndicator struct {
	ActiveErr error
	IdleErr   error

	Transitions []string
	mu          sync.Mutex
}

func (m *MockIndicator) SetActive() error {
	m.record("active")
	return m.ActiveErr
}

func (m *MockIndicator) SetIdle() error {
	m.record("idle")
	return m.IdleErr
}

func (m *MockIndicator) Halt() error {
	m.record("halt")
	return nil
}

func (m *MockIndicator) record(state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Transitions = append(m.Transitions, state)
}

// Log returns a copy of the recorded transitions.
func (m *MockIndicator) Log() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	transitions := make([]string, len(m.Transitions))
	copy(transitions, m.Transitions)
	return transitions
}

// MockDisplay records every rendered count pair and can simulate a broken
// display via Err.
type MockDisplay struct {
	Err error

	Counts [][2]int
	mu     sync.Mutex
}

func (m *MockDisplay) ShowCounts(networks, devices int) error {
	m.mu.Lock()
	m.Counts = append(m.Counts, [2]int{networks, devices})
	m.mu.Unlock()
	return m.Err
}

// Rendered returns a copy of the recorded count pairs.
func (m *MockDisplay) Rendered() [][2]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make([][2]int, len(m.Counts))
	copy(counts, m.Counts)
	return counts
}

package wifi

import (
	"context"
	"errors"
	"testing"

	"github.com/pi-gadgets/flipperpi-agent/scan"
)

const sampleIWListOutput = `wlan0     Scan completed :
          Cell 01 - Address: 11:22:33:44:55:66
                    Channel:6
                    Quality=58/70  Signal level=-52 dBm
                    ESSID:"Home"
                    Mode:Master
          Cell 02 - Address: AA:BB:CC:DD:EE:FF
                    Channel:11
                    Quality=40/70  Signal level=-70 dBm
                    ESSID:"Cafe"
                    Mode:Master
          Cell 03 - Address: 00:11:22:33:44:55
                    Channel:1
                    ESSID:""
                    Mode:Master
`

func TestParseESSIDs(t *testing.T) {
	networks := parseESSIDs(sampleIWListOutput)

	want := []scan.NetworkObservation{{SSID: "Home"}, {SSID: "Cafe"}}
	if len(networks) != len(want) {
		t.Fatalf("expected %d networks, got %v", len(want), networks)
	}
	for i := range want {
		if networks[i] != want[i] {
			t.Errorf("network %d = %v, want %v", i, networks[i], want[i])
		}
	}
}

func TestParseESSIDs_Empty(t *testing.T) {
	if networks := parseESSIDs(""); len(networks) != 0 {
		t.Errorf("expected no networks from empty output, got %v", networks)
	}
	// A marker line without a quoted identifier is skipped, not a failure.
	if networks := parseESSIDs("ESSID\n"); len(networks) != 0 {
		t.Errorf("expected no networks from malformed output, got %v", networks)
	}
}

func TestScan_UsesRunnerOutput(t *testing.T) {
	s := NewIWListScanner("wlan1")
	var gotName string
	var gotArgs []string
	s.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotName = name
		gotArgs = args
		return []byte(sampleIWListOutput), nil
	}

	networks, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if gotName != "iwlist" || len(gotArgs) != 2 || gotArgs[0] != "wlan1" || gotArgs[1] != "scan" {
		t.Errorf("unexpected command: %s %v", gotName, gotArgs)
	}
	if len(networks) != 2 {
		t.Errorf("expected 2 networks, got %v", networks)
	}
}

func TestScan_ToolFailure(t *testing.T) {
	s := NewIWListScanner("")
	s.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, errors.New("executable file not found")
	}

	networks, err := s.Scan(context.Background())
	if err == nil {
		t.Fatal("expected an error when the scan tool fails")
	}
	if !scan.IsCode(err, scan.ErrCodeWifiScan) {
		t.Errorf("expected ErrCodeWifiScan, got %v", err)
	}
	if networks != nil {
		t.Errorf("expected nil networks on failure, got %v", networks)
	}
}

func TestNewIWListScanner_DefaultInterface(t *testing.T) {
	if s := NewIWListScanner(""); s.Interface() != DefaultInterface {
		t.Errorf("expected default interface %q, got %q", DefaultInterface, s.Interface())
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scan.WifiInterface != "wlan0" {
		t.Errorf("wifi interface = %q, want wlan0", cfg.Scan.WifiInterface)
	}
	if cfg.Hardware.LEDPin != 18 {
		t.Errorf("led pin = %d, want 18", cfg.Hardware.LEDPin)
	}
	if cfg.Server.Port != 0 {
		t.Errorf("server port = %d, want 0 (disabled)", cfg.Server.Port)
	}
	if got := cfg.Scan.DwellDuration(); got != 10*time.Second {
		t.Errorf("dwell = %v, want 10s", got)
	}
	if got := cfg.Scan.CooldownDuration(); got != 2*time.Second {
		t.Errorf("cooldown = %v, want 2s", got)
	}
	if got := cfg.Scan.ErrorBackoffDuration(); got != 5*time.Second {
		t.Errorf("error backoff = %v, want 5s", got)
	}
	if got := cfg.Scan.BluetoothScanDuration(); got != 8*time.Second {
		t.Errorf("bluetooth scan = %v, want 8s", got)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
scan:
  wifi_interface: wlan1
  dwell: 30s
hardware:
  led_pin: 23
server:
  port: 18080
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scan.WifiInterface != "wlan1" {
		t.Errorf("wifi interface = %q, want wlan1", cfg.Scan.WifiInterface)
	}
	if got := cfg.Scan.DwellDuration(); got != 30*time.Second {
		t.Errorf("dwell = %v, want 30s", got)
	}
	// Fields missing from the file keep their defaults.
	if got := cfg.Scan.CooldownDuration(); got != 2*time.Second {
		t.Errorf("cooldown = %v, want default 2s", got)
	}
	if cfg.Hardware.LEDPin != 23 {
		t.Errorf("led pin = %d, want 23", cfg.Hardware.LEDPin)
	}
	if cfg.Server.Port != 18080 {
		t.Errorf("server port = %d, want 18080", cfg.Server.Port)
	}
}

func TestLoad_BadDuration(t *testing.T) {
	path := writeConfig(t, `
scan:
  dwell: soon
`)
	if _, err := Load(path); err == nil {
		t.Error("expected an error for an unparseable duration")
	}
}

func TestLoad_BadPort(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 99999
`)
	if _, err := Load(path); err == nil {
		t.Error("expected an error for an out-of-range port")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

// Package config loads the agent's on-disk configuration. Every field has a
// working default, so the agent runs with no config file at all.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ScanConfig holds the scan cadence and collaborator settings. Durations are
// strings ("10s", "500ms") so the file stays human-editable.
type ScanConfig struct {
	WifiInterface string `yaml:"wifi_interface"`
	BluetoothScan string `yaml:"bluetooth_scan"`
	Dwell         string `yaml:"dwell"`
	Cooldown      string `yaml:"cooldown"`
	ErrorBackoff  string `yaml:"error_backoff"`
}

// HardwareConfig holds the pin and bus assignments.
type HardwareConfig struct {
	LEDPin         int    `yaml:"led_pin"`
	ButtonPins     []int  `yaml:"button_pins"`
	I2CBus         string `yaml:"i2c_bus"`
	DisplayEnabled bool   `yaml:"display_enabled"`
	NFCDevice      string `yaml:"nfc_device"`
}

// ServerConfig holds the optional telemetry server settings. Port 0 disables
// the server entirely, which is the default.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Config is the top-level agent configuration.
type Config struct {
	Scan     ScanConfig     `yaml:"scan"`
	Hardware HardwareConfig `yaml:"hardware"`
	Server   ServerConfig   `yaml:"server"`
}

// Default returns the configuration matching the prototype wiring.
func Default() Config {
	return Config{
		Scan: ScanConfig{
			WifiInterface: "wlan0",
			BluetoothScan: "8s",
			Dwell:         "10s",
			Cooldown:      "2s",
			ErrorBackoff:  "5s",
		},
		Hardware: HardwareConfig{
			LEDPin:         18,
			ButtonPins:     []int{17, 22, 27},
			I2CBus:         "",
			DisplayEnabled: true,
		},
		Server: ServerConfig{
			Port: 0,
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	for name, value := range map[string]string{
		"scan.bluetooth_scan": c.Scan.BluetoothScan,
		"scan.dwell":          c.Scan.Dwell,
		"scan.cooldown":       c.Scan.Cooldown,
		"scan.error_backoff":  c.Scan.ErrorBackoff,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: %d out of range", c.Server.Port)
	}
	return nil
}

// BluetoothScanDuration returns the parsed Bluetooth scan window.
func (c ScanConfig) BluetoothScanDuration() time.Duration {
	return parseDuration(c.BluetoothScan, 8*time.Second)
}

// DwellDuration returns the parsed indicator dwell time.
func (c ScanConfig) DwellDuration() time.Duration {
	return parseDuration(c.Dwell, 10*time.Second)
}

// CooldownDuration returns the parsed indicator cooldown time.
func (c ScanConfig) CooldownDuration() time.Duration {
	return parseDuration(c.Cooldown, 2*time.Second)
}

// ErrorBackoffDuration returns the parsed post-error pause.
func (c ScanConfig) ErrorBackoffDuration() time.Duration {
	return parseDuration(c.ErrorBackoff, 5*time.Second)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

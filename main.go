// Package main runs a handheld multi-radio reconnaissance agent. It polls
// Wi-Fi networks, Bluetooth devices and NFC tags in a fixed loop, drives a
// status LED and an OLED counts display, and optionally broadcasts cycle
// results to connected WebSocket clients.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pi-gadgets/flipperpi-agent/buildinfo"
	"github.com/pi-gadgets/flipperpi-agent/config"
	"github.com/pi-gadgets/flipperpi-agent/nfctag"
)

var (
	configFlag    string
	portFlag      int
	wifiIfaceFlag string
	nfcDeviceFlag string
	emulateFlag   string
	versionFlag   bool
)

func main() {
	flag.StringVar(&configFlag, "config", "", "Path to YAML config file (optional)")
	flag.IntVar(&portFlag, "port", -1, "Port for the telemetry server, 0 disables it (overrides config)")
	flag.StringVar(&wifiIfaceFlag, "wifi-iface", "", "Wireless interface to scan (overrides config)")
	flag.StringVar(&nfcDeviceFlag, "nfc-device", "", "Path to NFC device (overrides config)")
	flag.StringVar(&emulateFlag, "emulate", "", "Emulate a tag with the given payload instead of scanning")
	flag.BoolVar(&versionFlag, "version", false, "Print version information and exit")
	flag.Parse()

	if versionFlag {
		fmt.Println(buildinfo.BuildInfo())
		return
	}

	if emulateFlag != "" {
		nfctag.NewEmulator().Emulate(emulateFlag)
		return
	}

	cfg := config.Default()
	if configFlag != "" {
		loaded, err := config.Load(configFlag)
		if err != nil {
			log.Fatalf("Failed to load config %s: %v", configFlag, err)
		}
		cfg = loaded
	}
	if portFlag >= 0 {
		cfg.Server.Port = portFlag
	}
	if wifiIfaceFlag != "" {
		cfg.Scan.WifiInterface = wifiIfaceFlag
	}
	if nfcDeviceFlag != "" {
		cfg.Hardware.NFCDevice = nfcDeviceFlag
	}

	agent, err := NewAgent(cfg)
	if err != nil {
		log.Fatalf("Failed to start agent: %v", err)
	}

	log.Printf("%s %s scanning on %s", buildinfo.DisplayName, buildinfo.FullVersion(), cfg.Scan.WifiInterface)
	agent.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, stopping agent...")
	agent.Stop()
}

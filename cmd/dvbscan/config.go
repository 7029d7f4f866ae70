//go:build linux

package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dvbtk/dvbscan/bands"
	"github.com/dvbtk/dvbscan/frontend"
)

// Config is the scan configuration loaded from YAML.
type Config struct {
	// Adapters lists the DVB adapters to scan with. Several adapters split
	// the band between them and scan in parallel.
	Adapters []AdapterConfig `yaml:"adapters"`
	// Band selects the frequency plan: "france-uhf", "europe-uhf" or
	// "europe-vhf".
	Band string `yaml:"band"`
	// System is the delivery system to tune: "dvbt" or "dvbt2".
	System string `yaml:"system"`
	// Output is the channels.conf path; "-" or empty writes to stdout.
	Output string `yaml:"output"`

	LockTimeout     time.Duration `yaml:"lock_timeout"`
	PATTimeout      time.Duration `yaml:"pat_timeout"`
	TableTimeout    time.Duration `yaml:"table_timeout"`
	AbortOnTableErr bool          `yaml:"abort_on_table_error"`
}

// AdapterConfig names the device nodes of one DVB adapter.
type AdapterConfig struct {
	Frontend string `yaml:"frontend"`
	Demux    string `yaml:"demux"`
}

func defaultConfig() Config {
	return Config{
		Adapters: []AdapterConfig{{
			Frontend: "/dev/dvb/adapter0/frontend0",
			Demux:    "/dev/dvb/adapter0/demux0",
		}},
		Band:   "france-uhf",
		System: "dvbt",
		Output: "-",
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if len(cfg.Adapters) == 0 {
		return Config{}, fmt.Errorf("config names no adapters")
	}
	return cfg, nil
}

func (c Config) band() (bands.BroadcastBand, error) {
	switch c.Band {
	case "france-uhf":
		return bands.FranceUHF, nil
	case "europe-uhf":
		return bands.EuropeUHFBandIVV, nil
	case "europe-vhf":
		return bands.EuropeVHFBandIII, nil
	}
	return bands.BroadcastBand{}, fmt.Errorf("unknown band %q", c.Band)
}

func (c Config) deliverySystem() (frontend.DeliverySystem, error) {
	switch c.System {
	case "dvbt":
		return frontend.SystemDVBT, nil
	case "dvbt2":
		return frontend.SystemDVBT2, nil
	}
	return frontend.SystemUndefined, fmt.Errorf("unknown delivery system %q", c.System)
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"

	proto "github.com/ystepanoff/otradio/protocol"
)

// Config represents the complete configuration for the radio tools
type Config struct {
	Radio RadioConfig `yaml:"radio"`
	Sim   SimConfig   `yaml:"sim"`
}

// RadioConfig holds the generic 802.15.4 radio settings
type RadioConfig struct {
	Channel     int       `yaml:"channel"`
	Power       int       `yaml:"power"` // dBm
	Cca         CcaConfig `yaml:"cca"`
	PanID       uint16    `yaml:"panId"`
	ShortAddr   uint16    `yaml:"shortAddr"`
	ExtAddr     uint64    `yaml:"extAddr"`
	Promiscuous bool      `yaml:"promiscuous"`
	RxWhenIdle  bool      `yaml:"rxWhenIdle"`
}

// CcaConfig holds clear channel assessment settings
type CcaConfig struct {
	Mode      string `yaml:"mode"`      // carrier, ed, carrier-and-ed, carrier-or-ed
	Threshold int    `yaml:"threshold"` // dBm, ignored for carrier
}

// SimConfig holds settings of the simulated medium
type SimConfig struct {
	RSSI       int    `yaml:"rssi"`     // RSSI reported to the local node
	PeerRSSI   int    `yaml:"peerRssi"` // RSSI reported to the simulated peer
	PeerAddr   uint16 `yaml:"peerAddr"`
	Frames     int    `yaml:"frames"`
	IntervalMs int    `yaml:"intervalMs"`
}

// Load loads configuration from filename, when not empty, and environment variables
func Load(filename string) (*Config, error) {
	cfg := getDefaultConfig()

	if filename != "" {
		if err := loadFromFile(cfg, filename); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", filename, err)
		}
	}

	// OTRADIO_CONFIG is applied on top of the named file
	if path := os.Getenv("OTRADIO_CONFIG"); path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	def := proto.DefaultConfig()
	return &Config{
		Radio: RadioConfig{
			Channel:   int(def.Channel),
			Power:     int(def.Power),
			Cca:       CcaConfig{Mode: def.Cca.Mode.String()},
			PanID:     def.PanID,
			ShortAddr: def.ShortAddr,
			ExtAddr:   def.ExtAddr,
		},
		Sim: SimConfig{
			RSSI:       -45,
			PeerRSSI:   -50,
			PeerAddr:   0x0002,
			Frames:     5,
			IntervalMs: 100,
		},
	}
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides applies environment variable overrides
func applyEnvOverrides(cfg *Config) {
	if channel := os.Getenv("OTRADIO_CHANNEL"); channel != "" {
		if ch, err := strconv.Atoi(channel); err == nil {
			cfg.Radio.Channel = ch
		}
	}

	if power := os.Getenv("OTRADIO_POWER"); power != "" {
		if dbm, err := strconv.Atoi(power); err == nil {
			cfg.Radio.Power = dbm
		}
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Radio.Channel < proto.MinChannel || cfg.Radio.Channel > proto.MaxChannel {
		return fmt.Errorf("invalid channel %d (must be %d-%d)", cfg.Radio.Channel, proto.MinChannel, proto.MaxChannel)
	}

	if cfg.Radio.Power < -40 || cfg.Radio.Power > 20 {
		return fmt.Errorf("invalid power %d dBm (must be -40-20)", cfg.Radio.Power)
	}

	if _, err := proto.ParseCcaMode(cfg.Radio.Cca.Mode); err != nil {
		return err
	}

	if cfg.Radio.Cca.Threshold < -128 || cfg.Radio.Cca.Threshold > 0 {
		return fmt.Errorf("invalid CCA threshold %d dBm (must be -128-0)", cfg.Radio.Cca.Threshold)
	}

	if cfg.Sim.RSSI < -128 || cfg.Sim.RSSI > 0 || cfg.Sim.PeerRSSI < -128 || cfg.Sim.PeerRSSI > 0 {
		return fmt.Errorf("invalid simulated RSSI %d/%d dBm", cfg.Sim.RSSI, cfg.Sim.PeerRSSI)
	}

	if cfg.Sim.Frames < 0 || cfg.Sim.IntervalMs < 0 {
		return fmt.Errorf("frames and interval must not be negative")
	}

	return nil
}

// ToRadio converts the radio section to the adapter configuration.
// The section must have been validated.
func (c *RadioConfig) ToRadio() proto.Config {
	cfg := proto.Config{
		Channel:     uint8(c.Channel),
		Power:       int8(c.Power),
		PanID:       c.PanID,
		ShortAddr:   c.ShortAddr,
		ExtAddr:     c.ExtAddr,
		Promiscuous: c.Promiscuous,
		RxWhenIdle:  c.RxWhenIdle,
	}

	mode, _ := proto.ParseCcaMode(c.Cca.Mode)
	threshold := int8(c.Cca.Threshold)
	switch mode {
	case proto.CcaModeEd:
		cfg.Cca = proto.CcaEd(threshold)
	case proto.CcaModeCarrierAndEd:
		cfg.Cca = proto.CcaCarrierAndEd(threshold)
	case proto.CcaModeCarrierOrEd:
		cfg.Cca = proto.CcaCarrierOrEd(threshold)
	default:
		cfg.Cca = proto.CcaCarrier()
	}

	return cfg
}

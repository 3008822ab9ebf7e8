package config

import (
	"os"
	"path/filepath"
	"testing"

	proto "github.com/ystepanoff/otradio/protocol"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "otradio.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := getDefaultConfig()

	if cfg.Radio.Channel != 15 || cfg.Radio.Power != 8 {
		t.Errorf("Expected channel 15 at 8 dBm, got %d at %d dBm", cfg.Radio.Channel, cfg.Radio.Power)
	}
	if cfg.Radio.Cca.Mode != "carrier" {
		t.Errorf("Expected carrier CCA, got %s", cfg.Radio.Cca.Mode)
	}
	if got := cfg.Radio.ToRadio(); got != proto.DefaultConfig() {
		t.Errorf("Expected default radio config, got %v", got)
	}
	if err := validateConfig(cfg); err != nil {
		t.Errorf("Default config does not validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
radio:
  channel: 20
  power: -4
  cca:
    mode: carrier-or-ed
    threshold: -75
  panId: 0xABCD
  shortAddr: 0x0001
  extAddr: 0x1122334455667788
  promiscuous: true
sim:
  frames: 3
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := proto.Config{
		Channel:     20,
		Power:       -4,
		Cca:         proto.CcaCarrierOrEd(-75),
		PanID:       0xABCD,
		ShortAddr:   0x0001,
		ExtAddr:     0x1122334455667788,
		Promiscuous: true,
	}
	if got := cfg.Radio.ToRadio(); got != want {
		t.Errorf("ToRadio() = %v, want %v", got, want)
	}

	// Values absent from the file keep their defaults
	if cfg.Sim.Frames != 3 || cfg.Sim.IntervalMs != 100 || cfg.Sim.RSSI != -45 {
		t.Errorf("Unexpected sim section %+v", cfg.Sim)
	}
}

func TestLoadFromNonExistentFile(t *testing.T) {
	if _, err := Load("non-existent-file.yaml"); err == nil {
		t.Error("Expected error when loading non-existent file")
	}
}

func TestConfigEnvFile(t *testing.T) {
	base := writeConfig(t, "radio:\n  channel: 12\n  power: 0\n")
	override := writeConfig(t, "radio:\n  channel: 25\n")
	t.Setenv("OTRADIO_CONFIG", override)

	cfg, err := Load(base)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Radio.Channel != 25 || cfg.Radio.Power != 0 {
		t.Errorf("Expected channel 25 at 0 dBm, got %d at %d dBm", cfg.Radio.Channel, cfg.Radio.Power)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := getDefaultConfig()

	t.Setenv("OTRADIO_CHANNEL", "26")
	t.Setenv("OTRADIO_POWER", "-10")
	applyEnvOverrides(cfg)

	if cfg.Radio.Channel != 26 {
		t.Errorf("Expected channel 26, got %d", cfg.Radio.Channel)
	}
	if cfg.Radio.Power != -10 {
		t.Errorf("Expected power -10, got %d", cfg.Radio.Power)
	}

	// Unparseable values are ignored
	t.Setenv("OTRADIO_CHANNEL", "eleven")
	applyEnvOverrides(cfg)
	if cfg.Radio.Channel != 26 {
		t.Errorf("Expected channel to stay 26, got %d", cfg.Radio.Channel)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"lowest channel", func(c *Config) { c.Radio.Channel = 11 }, false},
		{"channel too low", func(c *Config) { c.Radio.Channel = 10 }, true},
		{"channel too high", func(c *Config) { c.Radio.Channel = 27 }, true},
		{"power too high", func(c *Config) { c.Radio.Power = 21 }, true},
		{"power too low", func(c *Config) { c.Radio.Power = -41 }, true},
		{"unknown cca", func(c *Config) { c.Radio.Cca.Mode = "aloha" }, true},
		{"ed threshold", func(c *Config) { c.Radio.Cca = CcaConfig{Mode: "ed", Threshold: -70} }, false},
		{"threshold out of range", func(c *Config) { c.Radio.Cca.Threshold = -200 }, true},
		{"bad rssi", func(c *Config) { c.Sim.PeerRSSI = 5 }, true},
		{"negative frames", func(c *Config) { c.Sim.Frames = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := getDefaultConfig()
			tt.modify(cfg)
			if err := validateConfig(cfg); (err != nil) != tt.wantErr {
				t.Errorf("validateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, "radio:\n  channel: 5\n")
	if _, err := Load(path); err == nil {
		t.Error("Expected validation error for channel 5")
	}
}

func TestToRadioCca(t *testing.T) {
	tests := []struct {
		cca  CcaConfig
		want proto.Cca
	}{
		{CcaConfig{Mode: "carrier", Threshold: -70}, proto.CcaCarrier()},
		{CcaConfig{Mode: "ed", Threshold: -70}, proto.CcaEd(-70)},
		{CcaConfig{Mode: "carrier-and-ed", Threshold: -65}, proto.CcaCarrierAndEd(-65)},
		{CcaConfig{Mode: "carrier-or-ed", Threshold: -80}, proto.CcaCarrierOrEd(-80)},
	}

	for _, tt := range tests {
		rc := getDefaultConfig().Radio
		rc.Cca = tt.cca
		if got := rc.ToRadio().Cca; got != tt.want {
			t.Errorf("ToRadio(%+v).Cca = %v, want %v", tt.cca, got, tt.want)
		}
	}
}

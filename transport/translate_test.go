package transport

import (
	"testing"

	proto "github.com/ystepanoff/otradio/protocol"
)

func TestTranslateConfigCca(t *testing.T) {
	tests := []struct {
		name          string
		cca           proto.Cca
		wantMode      CcaMode
		wantThreshold int8
	}{
		{"carrier", proto.CcaCarrier(), CcaCarrier, 0},
		{"ed", proto.CcaEd(-75), CcaEd, -75},
		{"carrier and ed", proto.CcaCarrierAndEd(-60), CcaCarrierAndEd, -60},
		{"carrier or ed", proto.CcaCarrierOrEd(-82), CcaCarrierOrEd, -82},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := proto.DefaultConfig()
			cfg.Cca = tt.cca

			dc := TranslateConfig(&cfg)
			if dc.CcaMode != tt.wantMode || dc.CcaThreshold != tt.wantThreshold {
				t.Errorf("TranslateConfig() cca = (%d, %d), want (%d, %d)",
					dc.CcaThreshold, dc.CcaMode, tt.wantThreshold, tt.wantMode)
			}
		})
	}
}

func TestTranslateConfigFields(t *testing.T) {
	cfg := proto.Config{
		Channel:     26,
		Power:       -4,
		Cca:         proto.CcaCarrier(),
		PanID:       0x1234,
		ShortAddr:   0x0042,
		ExtAddr:     0x0102030405060708,
		Promiscuous: true,
		RxWhenIdle:  true,
	}

	want := DriverConfig{
		AutoAckTx:    true,
		AutoAckRx:    true,
		EnhanceAckTx: true,
		Promiscuous:  true,
		Coordinator:  false,
		RxWhenIdle:   true,
		TxPower:      -4,
		Channel:      26,
		CcaThreshold: 0,
		CcaMode:      CcaCarrier,
		PanID:        0x1234,
		ShortAddr:    0x0042,
		ExtAddr:      0x0102030405060708,
		RxQueueSize:  50,
	}

	if got := TranslateConfig(&cfg); got != want {
		t.Errorf("TranslateConfig() = %+v, want %+v", got, want)
	}

	// Acknowledgment policy does not follow the generic config.
	cfg.Promiscuous, cfg.RxWhenIdle = false, false
	got := TranslateConfig(&cfg)
	if !got.AutoAckTx || !got.AutoAckRx || !got.EnhanceAckTx || got.Coordinator || got.RxQueueSize != proto.RxQueueSize {
		t.Errorf("fixed policy changed: %+v", got)
	}
}

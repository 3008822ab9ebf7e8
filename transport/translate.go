package transport

import proto "github.com/ystepanoff/otradio/protocol"

// TranslateConfig maps a generic radio configuration onto the driver record.
// Acknowledgment handling, the coordinator role and the receive queue depth
// are fixed regardless of cfg.
func TranslateConfig(cfg *proto.Config) DriverConfig {
	dc := DriverConfig{
		AutoAckTx:    true,
		AutoAckRx:    true,
		EnhanceAckTx: true,
		Coordinator:  false,
		RxQueueSize:  proto.RxQueueSize,

		Promiscuous: cfg.Promiscuous,
		RxWhenIdle:  cfg.RxWhenIdle,
		TxPower:     cfg.Power,
		Channel:     cfg.Channel,
		PanID:       cfg.PanID,
		ShortAddr:   cfg.ShortAddr,
		ExtAddr:     cfg.ExtAddr,
	}

	switch cfg.Cca.Mode {
	case proto.CcaModeEd:
		dc.CcaMode, dc.CcaThreshold = CcaEd, cfg.Cca.EdThreshold
	case proto.CcaModeCarrierAndEd:
		dc.CcaMode, dc.CcaThreshold = CcaCarrierAndEd, cfg.Cca.EdThreshold
	case proto.CcaModeCarrierOrEd:
		dc.CcaMode, dc.CcaThreshold = CcaCarrierOrEd, cfg.Cca.EdThreshold
	default:
		dc.CcaMode, dc.CcaThreshold = CcaCarrier, 0
	}

	return dc
}

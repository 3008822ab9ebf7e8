package protocol

import "fmt"

// CcaMode selects the clear channel assessment strategy.
type CcaMode uint8

const (
	CcaModeCarrier CcaMode = iota
	CcaModeEd
	CcaModeCarrierAndEd
	CcaModeCarrierOrEd
)

func (m CcaMode) String() string {
	switch m {
	case CcaModeCarrier:
		return "carrier"
	case CcaModeEd:
		return "ed"
	case CcaModeCarrierAndEd:
		return "carrier-and-ed"
	case CcaModeCarrierOrEd:
		return "carrier-or-ed"
	default:
		return "INVALID"
	}
}

// ParseCcaMode is the inverse of CcaMode.String.
func ParseCcaMode(name string) (CcaMode, error) {
	for _, m := range []CcaMode{CcaModeCarrier, CcaModeEd, CcaModeCarrierAndEd, CcaModeCarrierOrEd} {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown CCA mode %q", name)
}

// Cca is a clear channel assessment setting. Build it with one of the Cca*
// constructors so that a carrier-sense setting never carries a threshold and
// two equal settings compare equal.
type Cca struct {
	Mode        CcaMode
	EdThreshold int8 // dBm, unused for CcaModeCarrier
}

func CcaCarrier() Cca { return Cca{Mode: CcaModeCarrier} }
func CcaEd(threshold int8) Cca { return Cca{Mode: CcaModeEd, EdThreshold: threshold} }
func CcaCarrierAndEd(threshold int8) Cca { return Cca{Mode: CcaModeCarrierAndEd, EdThreshold: threshold} }
func CcaCarrierOrEd(threshold int8) Cca { return Cca{Mode: CcaModeCarrierOrEd, EdThreshold: threshold} }

func (c Cca) String() string {
	if c.Mode == CcaModeCarrier {
		return c.Mode.String()
	}
	return fmt.Sprintf("%s(%ddBm)", c.Mode, c.EdThreshold)
}

// Config is the generic radio configuration requested by the MAC layer.
// It is a plain value: two configs are equal iff every field is equal.
type Config struct {
	Channel     uint8
	Power       int8 // dBm
	Cca         Cca
	PanID       uint16 // BroadcastPanID when unassigned
	ShortAddr   uint16 // BroadcastShort when unassigned
	ExtAddr     uint64 // NoExtAddr when unassigned
	Promiscuous bool
	RxWhenIdle  bool
}

// DefaultConfig returns the configuration a radio starts with.
func DefaultConfig() Config {
	return Config{
		Channel:   DefaultChannel,
		Power:     DefaultPower,
		Cca:       CcaCarrier(),
		PanID:     BroadcastPanID,
		ShortAddr: BroadcastShort,
		ExtAddr:   NoExtAddr,
	}
}

// Validate checks the fields a driver cannot represent.
func (c *Config) Validate() error {
	if c.Channel < MinChannel || c.Channel > MaxChannel {
		return ErrInvalidChannel
	}
	if c.Cca.Mode > CcaModeCarrierOrEd {
		return fmt.Errorf("invalid CCA mode %d", c.Cca.Mode)
	}
	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("ch%d %ddBm cca=%s pan=%#04x short=%#04x ext=%#016x promisc=%t rxidle=%t",
		c.Channel, c.Power, c.Cca, c.PanID, c.ShortAddr, c.ExtAddr, c.Promiscuous, c.RxWhenIdle)
}

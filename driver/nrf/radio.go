//go:build tinygo || baremetal

package nrf

import (
	proto "github.com/ystepanoff/otradio/protocol"
	"github.com/ystepanoff/otradio/transport"

	"device/nrf"
)

// ED_RSSIOFFS: an energy level of 0 corresponds to -92 dBm.
const edRSSIOffset = -92

// Output levels supported by the nRF52840, highest first.
var txPowers = []int8{8, 7, 6, 5, 4, 3, 2, 0, -4, -8, -12, -16, -20, -40}

// StartHFCLK starts the high-frequency clock required by the radio.
func StartHFCLK() {
	nrf.CLOCK.EVENTS_HFCLKSTARTED.Set(0)
	nrf.CLOCK.TASKS_HFCLKSTART.Set(1)
	for nrf.CLOCK.EVENTS_HFCLKSTARTED.Get() == 0 {
	}
}

// configureRadio puts the peripheral in IEEE 802.15.4 mode. Frame length is
// the PHR, the FCS is computed by the hardware over the PSDU.
func configureRadio() {
	nrf.RADIO.POWER.Set(1)
	nrf.RADIO.MODE.Set(nrf.RADIO_MODE_MODE_Ieee802154_250Kbit)

	nrf.RADIO.PCNF0.Set(
		(8 << nrf.RADIO_PCNF0_LFLEN_Pos) |
			(nrf.RADIO_PCNF0_PLEN_32bitZero << nrf.RADIO_PCNF0_PLEN_Pos) |
			(nrf.RADIO_PCNF0_CRCINC_Include << nrf.RADIO_PCNF0_CRCINC_Pos))

	nrf.RADIO.PCNF1.Set(proto.MaxPSDUSize << nrf.RADIO_PCNF1_MAXLEN_Pos)

	nrf.RADIO.CRCCNF.Set(
		(nrf.RADIO_CRCCNF_LEN_Two << nrf.RADIO_CRCCNF_LEN_Pos) |
			(nrf.RADIO_CRCCNF_SKIPADDR_Ieee802154 << nrf.RADIO_CRCCNF_SKIPADDR_Pos))
	nrf.RADIO.CRCPOLY.Set(0x11021)
	nrf.RADIO.CRCINIT.Set(0)
}

// setChannel tunes to an 802.15.4 channel in the 2.4 GHz band.
func setChannel(ch uint8) error {
	if ch < proto.MinChannel || ch > proto.MaxChannel {
		return proto.ErrInvalidChannel
	}
	// 2405 MHz + 5 MHz * (ch - 11), relative to 2400 MHz
	nrf.RADIO.FREQUENCY.Set(uint32(5 + 5*(ch-proto.MinChannel)))
	return nil
}

// setTxPower selects the highest supported level not above dBm.
func setTxPower(dBm int8) {
	level := txPowers[len(txPowers)-1]
	for _, p := range txPowers {
		if p <= dBm {
			level = p
			break
		}
	}
	nrf.RADIO.TXPOWER.Set(uint32(uint8(level)))
}

func setCca(mode transport.CcaMode, threshold int8) {
	var ccaMode uint32
	switch mode {
	case transport.CcaEd:
		ccaMode = nrf.RADIO_CCACTRL_CCAMODE_EdMode
	case transport.CcaCarrierAndEd:
		ccaMode = nrf.RADIO_CCACTRL_CCAMODE_CarrierAndEdMode
	case transport.CcaCarrierOrEd:
		ccaMode = nrf.RADIO_CCACTRL_CCAMODE_CarrierOrEdMode
	default:
		ccaMode = nrf.RADIO_CCACTRL_CCAMODE_CarrierMode
	}

	ed := int(threshold) - edRSSIOffset
	if ed < 0 {
		ed = 0
	}
	if ed > 0xFF {
		ed = 0xFF
	}

	nrf.RADIO.CCACTRL.Set(
		(ccaMode << nrf.RADIO_CCACTRL_CCAMODE_Pos) |
			(uint32(ed) << nrf.RADIO_CCACTRL_CCAEDTHRES_Pos))
}

// disable stops any ongoing operation and waits for the radio to settle.
func disable() {
	nrf.RADIO.SHORTS.Set(0)
	nrf.RADIO.EVENTS_DISABLED.Set(0)
	nrf.RADIO.TASKS_DISABLE.Set(1)
	for nrf.RADIO.STATE.Get() != nrf.RADIO_STATE_STATE_Disabled {
	}
	nrf.RADIO.EVENTS_DISABLED.Set(0)
}

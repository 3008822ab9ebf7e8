package protocol

import "strings"

// Capabilities is the set of features a radio implements in hardware or in its
// driver. Values follow the OpenThread radio capability bits.
type Capabilities uint16

const (
	CapAckTimeout Capabilities = 1 << iota
	CapEnergyScan
	CapTxRetries
	CapCsmaBackoff
	CapSleepToTx
	CapTxSecurity
	CapTxTiming
	CapRxTiming
	CapRxOnWhenIdle
)

var capNames = []string{
	"ack-timeout", "energy-scan", "tx-retries", "csma-backoff", "sleep-to-tx",
	"tx-security", "tx-timing", "rx-timing", "rx-on-when-idle",
}

// Union returns the capabilities present in either set.
func (c Capabilities) Union(other Capabilities) Capabilities { return c | other }

// Contains reports whether every capability in other is in c.
func (c Capabilities) Contains(other Capabilities) bool { return c&other == other }

func (c Capabilities) String() string { return bitNames(uint16(c), capNames) }

// MacCapabilities is the set of features the MAC layer may provide in software
// on top of the radio.
type MacCapabilities uint8

const (
	MacCapAckTimeout MacCapabilities = 1 << iota
	MacCapRetransmit
	MacCapCsmaBackoff
	MacCapEnergyScan
	MacCapTxSecurity

	MacCapsAll = MacCapAckTimeout | MacCapRetransmit | MacCapCsmaBackoff | MacCapEnergyScan | MacCapTxSecurity
)

var macCapNames = []string{"ack-timeout", "retransmit", "csma-backoff", "energy-scan", "tx-security"}

func (c MacCapabilities) Union(other MacCapabilities) MacCapabilities { return c | other }

func (c MacCapabilities) Contains(other MacCapabilities) bool { return c&other == other }

func (c MacCapabilities) String() string { return bitNames(uint16(c), macCapNames) }

func bitNames(bits uint16, names []string) string {
	if bits == 0 {
		return "none"
	}
	var parts []string
	for i, name := range names {
		if bits&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}

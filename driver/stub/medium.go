//go:build !tinygo && !baremetal

package stub

import (
	"sync"
	"time"

	"github.com/ystepanoff/otradio/transport"
)

// Noise floor reported for channels without a configured energy level.
const noiseFloor int8 = -100

// 250 kbit/s O-QPSK: one octet every 32us, plus preamble, SFD and PHR.
const (
	octetTime   = 32 * time.Microsecond
	phyOverhead = 6
)

// Medium simulates the 2.4 GHz band shared by several drivers.
type Medium struct {
	mu      sync.Mutex
	drivers []*Driver
	energy  map[uint8]int8
	carrier map[uint8]int
}

func NewMedium() *Medium {
	return &Medium{
		energy:  make(map[uint8]int8),
		carrier: make(map[uint8]int),
	}
}

// SetChannelEnergy sets the background energy seen by energy-detect CCA on ch.
func (m *Medium) SetChannelEnergy(ch uint8, dBm int8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.energy[ch] = dBm
}

// SetChannelBusy occupies ch with a foreign carrier, or frees it.
func (m *Medium) SetChannelBusy(ch uint8, busy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if busy {
		m.carrier[ch]++
	} else if m.carrier[ch] > 0 {
		m.carrier[ch]--
	}
}

func (m *Medium) attach(d *Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers = append(m.drivers, d)
}

func (m *Medium) detach(d *Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, other := range m.drivers {
		if other == d {
			m.drivers = append(m.drivers[:i], m.drivers[i+1:]...)
			return
		}
	}
}

// clear reports whether a CCA on ch passes for the given mode and threshold.
func (m *Medium) clear(ch uint8, mode transport.CcaMode, threshold int8) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	level, ok := m.energy[ch]
	if !ok {
		level = noiseFloor
	}
	carrier := m.carrier[ch] > 0
	energy := level >= threshold

	switch mode {
	case transport.CcaEd:
		return !energy
	case transport.CcaCarrierAndEd:
		return !(carrier && energy)
	case transport.CcaCarrierOrEd:
		return !(carrier || energy)
	default:
		return !carrier
	}
}

// broadcast puts psdu on the air and returns the acknowledgments generated by
// the receivers, in attach order.
func (m *Medium) broadcast(from *Driver, psdu []byte, ch uint8) [][]byte {
	m.mu.Lock()
	m.carrier[ch]++
	peers := make([]*Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		if d != from {
			peers = append(peers, d)
		}
	}
	m.mu.Unlock()

	time.Sleep(airtime(len(psdu)))

	var acks [][]byte
	for _, d := range peers {
		if ack := d.receive(psdu, ch); ack != nil {
			acks = append(acks, ack)
		}
	}

	m.mu.Lock()
	m.carrier[ch]--
	m.mu.Unlock()

	return acks
}

func airtime(n int) time.Duration {
	return time.Duration(phyOverhead+n) * octetTime
}

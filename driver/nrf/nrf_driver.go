//go:build tinygo || baremetal

package nrf

import (
	"errors"
	"runtime/interrupt"
	"time"
	"unsafe"

	proto "github.com/ystepanoff/otradio/protocol"
	"github.com/ystepanoff/otradio/transport"

	"device/nrf"
)

// macAckWaitDuration for the 2.4 GHz PHY: 54 symbols of 16us.
const ackWait = 864 * time.Microsecond

const maxRxQueue = proto.RxQueueSize

var (
	ErrBusy          = errors.New("nrf: radio busy")
	ErrInvalidLength = errors.New("nrf: invalid PSDU length")
)

type state uint8

const (
	stateIdle state = iota
	stateRx
	stateTx
	stateWaitAck
	// sending an automatic acknowledgment
	stateTxAck
)

// Driver provides a transport.Driver backed by the nRF52840 RADIO peripheral.
// There is one peripheral, so New always returns the same Driver.
type Driver struct {
	cfg   transport.DriverConfig
	state state

	txBuf  [1 + proto.MaxPSDUSize]byte
	rxBuf  [1 + proto.MaxPSDUSize]byte
	ackBuf [1 + proto.MaxPSDUSize]byte

	txSeq        uint8
	txNeedsAck   bool
	ackDeadline  time.Time
	rxAfterTx    bool
	ackCaptured  bool
	ackFrame     transport.RawFrame
	ackFrameData [proto.MaxRawFrameSize]byte

	// receive ring, filled from the interrupt handler
	rxSlots [maxRxQueue][proto.MaxRawFrameSize]byte
	rxLens  [maxRxQueue]uint8
	rxChans [maxRxQueue]uint8
	rxHead  int
	rxCount int
	rxFrame transport.RawFrame
	rxOut   [proto.MaxRawFrameSize]byte
	dropped int

	rxAvailable func()
	txDone      func()
	txFailed    func()
}

var radio = &Driver{
	rxAvailable: func() {},
	txDone:      func() {},
	txFailed:    func() {},
}

var _ transport.Driver = (*Driver)(nil)

// New powers up the radio and returns the driver.
func New() *Driver {
	StartHFCLK()
	configureRadio()

	radio.cfg = transport.DriverConfig{Channel: proto.DefaultChannel, RxQueueSize: 10}
	radio.apply()

	intr := interrupt.New(nrf.IRQ_RADIO, func(interrupt.Interrupt) {
		radio.handleInterrupt()
	})
	intr.SetPriority(0xC0)
	intr.Enable()

	nrf.RADIO.INTENSET.Set(nrf.RADIO_INTENSET_END_Msk |
		nrf.RADIO_INTENSET_CCABUSY_Msk |
		nrf.RADIO_INTENSET_DISABLED_Msk)

	go radio.watchAck()
	return radio
}

func (d *Driver) apply() {
	_ = setChannel(d.cfg.Channel)
	setTxPower(d.cfg.TxPower)
	setCca(d.cfg.CcaMode, d.cfg.CcaThreshold)
}

func (d *Driver) TransmitRaw(psdu []byte, cca bool) error {
	if len(psdu) < proto.FCSSize || len(psdu) > proto.MaxPSDUSize {
		return ErrInvalidLength
	}

	mask := interrupt.Disable()
	defer interrupt.Restore(mask)

	if d.state == stateTx || d.state == stateWaitAck || d.state == stateTxAck {
		return ErrBusy
	}

	d.rxAfterTx = d.state == stateRx || d.cfg.RxWhenIdle
	d.ackCaptured = false
	d.txNeedsAck = false
	if h, err := proto.ParseHeader(psdu); err == nil {
		d.txSeq = h.Seq
		d.txNeedsAck = d.cfg.AutoAckTx && h.AckRequest && !h.IsBroadcast()
	}

	d.txBuf[0] = byte(len(psdu))
	copy(d.txBuf[1:], psdu)

	disable()
	d.state = stateTx
	nrf.RADIO.PACKETPTR.Set(uint32(uintptr(unsafe.Pointer(&d.txBuf[0]))))
	nrf.RADIO.EVENTS_END.Set(0)
	nrf.RADIO.EVENTS_CCABUSY.Set(0)

	if cca {
		// RXEN, CCA, then TXEN as soon as the channel is idle
		nrf.RADIO.SHORTS.Set(nrf.RADIO_SHORTS_RXREADY_CCASTART_Msk |
			nrf.RADIO_SHORTS_CCAIDLE_TXEN_Msk |
			nrf.RADIO_SHORTS_TXREADY_START_Msk |
			nrf.RADIO_SHORTS_CCABUSY_DISABLE_Msk |
			nrf.RADIO_SHORTS_END_DISABLE_Msk)
		nrf.RADIO.TASKS_RXEN.Set(1)
	} else {
		nrf.RADIO.SHORTS.Set(nrf.RADIO_SHORTS_TXREADY_START_Msk |
			nrf.RADIO_SHORTS_END_DISABLE_Msk)
		nrf.RADIO.TASKS_TXEN.Set(1)
	}

	return nil
}

func (d *Driver) StartReceive() {
	mask := interrupt.Disable()
	defer interrupt.Restore(mask)

	switch d.state {
	case stateTx, stateWaitAck, stateTxAck:
		d.rxAfterTx = true
	case stateRx:
	default:
		d.startRx()
	}
}

// startRx enters receive mode. Called with interrupts disabled.
func (d *Driver) startRx() {
	disable()
	d.state = stateRx
	nrf.RADIO.PACKETPTR.Set(uint32(uintptr(unsafe.Pointer(&d.rxBuf[0]))))
	nrf.RADIO.EVENTS_END.Set(0)
	nrf.RADIO.SHORTS.Set(nrf.RADIO_SHORTS_RXREADY_START_Msk |
		nrf.RADIO_SHORTS_ADDRESS_RSSISTART_Msk |
		nrf.RADIO_SHORTS_DISABLED_RSSISTOP_Msk)
	nrf.RADIO.TASKS_RXEN.Set(1)
}

func (d *Driver) RawReceived() *transport.RawFrame {
	mask := interrupt.Disable()
	defer interrupt.Restore(mask)

	if d.rxCount == 0 {
		return nil
	}

	n := int(d.rxLens[d.rxHead])
	copy(d.rxOut[:n], d.rxSlots[d.rxHead][:n])
	d.rxFrame = transport.RawFrame{Data: d.rxOut[:n], Channel: d.rxChans[d.rxHead]}
	d.rxHead = (d.rxHead + 1) % maxRxQueue
	d.rxCount--

	return &d.rxFrame
}

func (d *Driver) AckFrame() *transport.RawFrame {
	mask := interrupt.Disable()
	defer interrupt.Restore(mask)

	if !d.ackCaptured {
		return nil
	}
	return &d.ackFrame
}

func (d *Driver) SetConfig(cfg transport.DriverConfig) {
	if cfg.RxQueueSize <= 0 || cfg.RxQueueSize > maxRxQueue {
		cfg.RxQueueSize = maxRxQueue
	}

	mask := interrupt.Disable()
	d.cfg = cfg
	d.apply()
	interrupt.Restore(mask)
}

func (d *Driver) SetRxAvailableCallback(cb func()) {
	mask := interrupt.Disable()
	d.rxAvailable = cb
	interrupt.Restore(mask)
}

func (d *Driver) SetTxDoneCallback(cb func()) {
	mask := interrupt.Disable()
	d.txDone = cb
	interrupt.Restore(mask)
}

func (d *Driver) SetTxFailedCallback(cb func()) {
	mask := interrupt.Disable()
	d.txFailed = cb
	interrupt.Restore(mask)
}

// Dropped returns the number of frames lost to a full receive queue.
func (d *Driver) Dropped() int {
	mask := interrupt.Disable()
	defer interrupt.Restore(mask)
	return d.dropped
}

func (d *Driver) handleInterrupt() {
	if nrf.RADIO.EVENTS_CCABUSY.Get() != 0 {
		nrf.RADIO.EVENTS_CCABUSY.Set(0)
		if d.state == stateTx {
			d.finishTx(false)
		}
	}

	if nrf.RADIO.EVENTS_END.Get() != 0 {
		nrf.RADIO.EVENTS_END.Set(0)
		switch d.state {
		case stateTx:
			if d.txNeedsAck {
				d.ackDeadline = time.Now().Add(ackWait)
				d.startRx()
				d.state = stateWaitAck
			} else {
				d.finishTx(true)
			}
		case stateWaitAck:
			d.handleAck()
		case stateRx:
			d.handleFrame()
		}
	}

	if nrf.RADIO.EVENTS_DISABLED.Get() != 0 {
		nrf.RADIO.EVENTS_DISABLED.Set(0)
		if d.state == stateTxAck {
			d.startRx()
		}
	}
}

func (d *Driver) finishTx(ok bool) {
	if d.rxAfterTx {
		d.startRx()
	} else {
		disable()
		d.state = stateIdle
	}

	if ok {
		d.txDone()
	} else {
		d.txFailed()
	}
}

func (d *Driver) handleAck() {
	n := int(d.rxBuf[0] & proto.LengthMask)
	psdu := d.rxBuf[1 : 1+n]
	h, err := proto.ParseHeader(psdu)
	if nrf.RADIO.CRCSTATUS.Get() == 0 || err != nil || h.Type != proto.FrameTypeAck || h.Seq != d.txSeq {
		// Not our acknowledgment, keep listening until the deadline.
		nrf.RADIO.TASKS_START.Set(1)
		return
	}

	d.ackFrameData[0] = byte(n)
	copy(d.ackFrameData[1:], psdu)
	d.ackFrameData[1+n] = byte(rssi())
	d.ackFrame = transport.RawFrame{Data: d.ackFrameData[:n+2], Channel: d.cfg.Channel}
	d.ackCaptured = true

	d.finishTx(true)
}

func (d *Driver) handleFrame() {
	n := int(d.rxBuf[0] & proto.LengthMask)
	psdu := d.rxBuf[1 : 1+n]

	if nrf.RADIO.CRCSTATUS.Get() == 0 {
		nrf.RADIO.TASKS_START.Set(1)
		return
	}

	h, err := proto.ParseHeader(psdu)
	if err != nil || (!d.cfg.Promiscuous && !d.accepts(h)) {
		nrf.RADIO.TASKS_START.Set(1)
		return
	}

	if d.rxCount >= d.cfg.RxQueueSize {
		d.dropped++
	} else {
		slot := (d.rxHead + d.rxCount) % maxRxQueue
		d.rxSlots[slot][0] = byte(n)
		copy(d.rxSlots[slot][1:], psdu)
		d.rxSlots[slot][1+n] = byte(rssi())
		d.rxLens[slot] = uint8(n + 2)
		d.rxChans[slot] = d.cfg.Channel
		d.rxCount++
	}

	if d.cfg.AutoAckRx && h.AckRequest && !h.IsBroadcast() {
		// FCF, sequence number and room for the FCS filled in by the CRC unit
		d.ackBuf[0] = 3 + proto.FCSSize
		d.ackBuf[1] = byte(proto.FrameTypeAck)
		d.ackBuf[2] = 0
		if d.cfg.EnhanceAckTx && h.Version == proto.FrameVersion2015 {
			d.ackBuf[2] = proto.FrameVersion2015 << 4
		}
		d.ackBuf[3] = h.Seq

		d.state = stateTxAck
		nrf.RADIO.SHORTS.Set(0)
		nrf.RADIO.TASKS_DISABLE.Set(1)
		for nrf.RADIO.STATE.Get() != nrf.RADIO_STATE_STATE_Disabled {
		}
		nrf.RADIO.EVENTS_DISABLED.Set(0)
		nrf.RADIO.PACKETPTR.Set(uint32(uintptr(unsafe.Pointer(&d.ackBuf[0]))))
		nrf.RADIO.SHORTS.Set(nrf.RADIO_SHORTS_TXREADY_START_Msk |
			nrf.RADIO_SHORTS_END_DISABLE_Msk)
		nrf.RADIO.TASKS_TXEN.Set(1)
	} else {
		nrf.RADIO.TASKS_START.Set(1)
	}

	d.rxAvailable()
}

// accepts applies the destination address filter.
func (d *Driver) accepts(h *proto.Header) bool {
	if h.Type == proto.FrameTypeAck {
		return false
	}

	switch h.DstAddrMode {
	case proto.AddrModeNone:
		return true
	case proto.AddrModeShort:
		if h.DstShort != proto.BroadcastShort && h.DstShort != d.cfg.ShortAddr {
			return false
		}
	case proto.AddrModeExt:
		if h.DstExt != d.cfg.ExtAddr {
			return false
		}
	}

	return h.DstPanID == proto.BroadcastPanID || h.DstPanID == d.cfg.PanID
}

// watchAck fails a transmission whose acknowledgment did not arrive in time.
func (d *Driver) watchAck() {
	for {
		time.Sleep(250 * time.Microsecond)

		mask := interrupt.Disable()
		if d.state == stateWaitAck && time.Now().After(d.ackDeadline) {
			d.finishTx(false)
		}
		interrupt.Restore(mask)
	}
}

// rssi returns the last RSSI sample in dBm.
func rssi() int8 {
	return -int8(nrf.RADIO.RSSISAMPLE.Get() & 0x7F)
}

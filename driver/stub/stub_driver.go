//go:build !tinygo && !baremetal

package stub

import (
	"errors"
	"sync"

	"github.com/Workiva/go-datastructures/queue"

	proto "github.com/ystepanoff/otradio/protocol"
	"github.com/ystepanoff/otradio/transport"
)

// Receive queue depth used until the first SetConfig.
const defaultRxQueueSize = 10

var (
	ErrBusy          = errors.New("stub: transmission in progress")
	ErrInvalidLength = errors.New("stub: invalid PSDU length")
)

type state uint8

const (
	stateIdle state = iota
	stateRx
	stateTx
)

var _ transport.Driver = (*Driver)(nil)

// Opts configures a simulated transceiver.
type Opts struct {
	RSSI int8 // signal strength at which this driver hears its peers
}

// Driver simulates an interrupt-driven 802.15.4 transceiver on a Medium.
// Callbacks run on the medium's goroutines, never on the caller's.
type Driver struct {
	mu       sync.Mutex
	medium   *Medium
	opts     Opts
	cfg      transport.DriverConfig
	configs  []transport.DriverConfig
	state    state
	rxAfter  bool
	rxQueue  *queue.Queue
	dropped  int
	ack      *transport.RawFrame
	failNext error
	txLog    [][]byte

	rxAvailable func()
	txDone      func()
	txFailed    func()
}

// New returns a driver attached to m.
func New(m *Medium, opts Opts) *Driver {
	d := &Driver{
		medium:      m,
		opts:        opts,
		cfg:         transport.DriverConfig{RxQueueSize: defaultRxQueueSize},
		rxQueue:     queue.New(defaultRxQueueSize),
		rxAvailable: func() {},
		txDone:      func() {},
		txFailed:    func() {},
	}
	m.attach(d)
	return d
}

// Detach removes the driver from its medium.
func (d *Driver) Detach() {
	d.medium.detach(d)
}

func (d *Driver) TransmitRaw(psdu []byte, cca bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.failNext; err != nil {
		d.failNext = nil
		return err
	}
	if d.state == stateTx {
		return ErrBusy
	}
	if len(psdu) < proto.FCSSize || len(psdu) > proto.MaxPSDUSize {
		return ErrInvalidLength
	}

	frame := make([]byte, len(psdu))
	copy(frame, psdu)
	proto.FillFCS(frame)
	d.txLog = append(d.txLog, frame)

	d.rxAfter = d.state == stateRx || d.cfg.RxWhenIdle
	d.state = stateTx
	d.ack = nil

	go d.transmit(frame, cca, d.cfg)
	return nil
}

func (d *Driver) transmit(frame []byte, cca bool, cfg transport.DriverConfig) {
	if cca && !d.medium.clear(cfg.Channel, cfg.CcaMode, cfg.CcaThreshold) {
		d.finishTx(false, nil)
		return
	}

	acks := d.medium.broadcast(d, frame, cfg.Channel)

	h, err := proto.ParseHeader(frame)
	if err != nil || !h.AckRequest || h.IsBroadcast() {
		d.finishTx(true, nil)
		return
	}
	if len(acks) == 0 {
		// No acknowledgment within the ack wait period.
		d.finishTx(false, nil)
		return
	}

	raw := &transport.RawFrame{
		Data:    proto.EncodeFrame(&proto.Frame{PSDU: acks[0], RSSI: d.opts.RSSI, HasRSSI: true}),
		Channel: cfg.Channel,
	}
	d.finishTx(true, raw)
}

func (d *Driver) finishTx(ok bool, ack *transport.RawFrame) {
	d.mu.Lock()
	d.ack = ack
	if d.rxAfter {
		d.state = stateRx
	} else {
		d.state = stateIdle
	}
	cb := d.txFailed
	if ok {
		cb = d.txDone
	}
	d.mu.Unlock()

	cb()
}

// receive handles a frame heard on ch and returns the acknowledgment PSDU to
// send back, if any.
func (d *Driver) receive(psdu []byte, ch uint8) []byte {
	d.mu.Lock()

	if d.state != stateRx || d.cfg.Channel != ch || !proto.CheckFCS(psdu) {
		d.mu.Unlock()
		return nil
	}

	h, err := proto.ParseHeader(psdu)
	if err != nil || (!d.cfg.Promiscuous && !d.accepts(h)) {
		d.mu.Unlock()
		return nil
	}

	data := make([]byte, len(psdu))
	copy(data, psdu)
	if !d.enqueue(&transport.RawFrame{
		Data:    proto.EncodeFrame(&proto.Frame{PSDU: data, RSSI: d.opts.RSSI, HasRSSI: true}),
		Channel: ch,
	}) {
		d.mu.Unlock()
		return nil
	}

	var ack []byte
	if d.cfg.AutoAckRx && h.AckRequest && !h.IsBroadcast() && h.Type != proto.FrameTypeAck {
		enhanced := d.cfg.EnhanceAckTx && h.Version == proto.FrameVersion2015
		ack = proto.BuildAck(h.Seq, false, enhanced)
	}

	cb := d.rxAvailable
	d.mu.Unlock()

	cb()
	return ack
}

// enqueue adds f to the receive queue, or counts it as dropped when the queue
// is full. Called with d.mu held.
func (d *Driver) enqueue(f *transport.RawFrame) bool {
	if d.rxQueue.Len() >= int64(d.cfg.RxQueueSize) {
		d.dropped++
		return false
	}
	if err := d.rxQueue.Put(f); err != nil {
		d.dropped++
		return false
	}
	return true
}

// accepts applies the destination address filter. Called with d.mu held.
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

func (d *Driver) StartReceive() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == stateTx {
		d.rxAfter = true
		return
	}
	d.state = stateRx
}

func (d *Driver) RawReceived() *transport.RawFrame {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.rxQueue.Empty() {
		return nil
	}
	items, err := d.rxQueue.Get(1)
	if err != nil || len(items) == 0 {
		return nil
	}
	return items[0].(*transport.RawFrame)
}

func (d *Driver) AckFrame() *transport.RawFrame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ack
}

func (d *Driver) SetConfig(cfg transport.DriverConfig) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cfg = cfg
	d.configs = append(d.configs, cfg)
}

func (d *Driver) SetRxAvailableCallback(cb func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rxAvailable = cb
}

func (d *Driver) SetTxDoneCallback(cb func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.txDone = cb
}

func (d *Driver) SetTxFailedCallback(cb func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.txFailed = cb
}

// InjectRx queues a raw driver frame as if it had been received and raises
// the rx-available interrupt. The frame is subject to the receive queue
// limit; InjectRx reports false when it was dropped.
func (d *Driver) InjectRx(data []byte, channel uint8) bool {
	frame := make([]byte, len(data))
	copy(frame, data)

	d.mu.Lock()
	if !d.enqueue(&transport.RawFrame{Data: frame, Channel: channel}) {
		d.mu.Unlock()
		return false
	}
	cb := d.rxAvailable
	d.mu.Unlock()

	go cb()
	return true
}

// FailNextSubmit makes the next TransmitRaw return err.
func (d *Driver) FailNextSubmit(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failNext = err
}

// Configs returns every configuration pushed with SetConfig.
func (d *Driver) Configs() []transport.DriverConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]transport.DriverConfig, len(d.configs))
	copy(out, d.configs)
	return out
}

// Dropped returns the number of frames lost to a full receive queue.
func (d *Driver) Dropped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

// TxLog returns the PSDUs put on the air, FCS included.
func (d *Driver) TxLog() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]byte, len(d.txLog))
	for i, p := range d.txLog {
		out[i] = append([]byte(nil), p...)
	}
	return out
}

// Pending returns the number of frames waiting in the receive queue.
func (d *Driver) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int(d.rxQueue.Len())
}

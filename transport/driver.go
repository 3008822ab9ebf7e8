package transport

// RawFrame is a frame owned by the driver.
// Data is Length(1) | PSDU | optional RSSI(1), see protocol.DecodeFrame.
type RawFrame struct {
	Data    []byte
	Channel uint8
}

// CcaMode is the driver's native clear channel assessment mode.
type CcaMode uint8

const (
	CcaCarrier CcaMode = iota
	CcaEd
	CcaCarrierAndEd
	CcaCarrierOrEd
)

// DriverConfig is the driver's native configuration record.
type DriverConfig struct {
	AutoAckTx    bool
	AutoAckRx    bool
	EnhanceAckTx bool
	Promiscuous  bool
	Coordinator  bool
	RxWhenIdle   bool
	TxPower      int8
	Channel      uint8
	CcaThreshold int8
	CcaMode      CcaMode
	PanID        uint16
	ShortAddr    uint16
	ExtAddr      uint64
	RxQueueSize  int
}

// Driver is the interface that wraps an interrupt-driven 802.15.4 transceiver.
//
// The three callbacks are invoked from interrupt context: they must not block
// and may run concurrently with any other method.
type Driver interface {
	// TransmitRaw starts transmitting psdu, optionally after a CCA. The outcome
	// is reported later through the tx-done or tx-failed callback.
	TransmitRaw(psdu []byte, cca bool) error
	// StartReceive puts the radio in receive mode.
	StartReceive()
	// RawReceived pops the oldest buffered frame, or returns nil.
	RawReceived() *RawFrame
	// AckFrame returns the acknowledgment captured for the last transmission, or nil.
	AckFrame() *RawFrame
	SetConfig(cfg DriverConfig)

	SetRxAvailableCallback(cb func())
	SetTxDoneCallback(cb func())
	SetTxFailedCallback(cb func())
}

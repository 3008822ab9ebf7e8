package protocol

// Generic IEEE 802.15.4 constants (platform independent). All higher layers should depend on this file.
const (
	// Raw frame envelope handed over by the driver:
	//   Length (1 byte) | PSDU (0-127) | RSSI (optional, 1 byte, signed)
	// Only the low 7 bits of the length byte carry the PSDU length, the top bit is reserved.
	LengthFieldSize = 1
	RSSIFieldSize   = 1
	LengthMask      = 0x7F

	// MaxPSDUSize is aMaxPhyPacketSize for the 2.4 GHz O-QPSK PHY.
	MaxPSDUSize = 127

	// MaxRawFrameSize is the largest raw frame a driver can hand over.
	MaxRawFrameSize = LengthFieldSize + MaxPSDUSize + RSSIFieldSize

	// FCSSize is the length of the frame check sequence closing every PSDU.
	FCSSize = 2

	// 2.4 GHz channel page 0
	MinChannel = 11
	MaxChannel = 26

	// RF defaults (can be overridden via Config)
	DefaultChannel = 15
	DefaultPower   = 8 // dBm

	// Unassigned addressing values
	BroadcastPanID = 0xFFFF
	BroadcastShort = 0xFFFF
	NoExtAddr      = 0

	// RxQueueSize is the depth of the driver receive queue requested by the adapter.
	// The driver default of 10 is too small for the bursts of inbound frames a Thread
	// network produces.
	RxQueueSize = 50
)

package protocol

import (
	"encoding/binary"
	"fmt"
)

// FrameType is the MAC frame type carried in the frame control field.
type FrameType uint8

const (
	FrameTypeBeacon  FrameType = 0
	FrameTypeData    FrameType = 1
	FrameTypeAck     FrameType = 2
	FrameTypeCommand FrameType = 3
)

// AddrMode is a MAC addressing mode.
type AddrMode uint8

const (
	AddrModeNone  AddrMode = 0
	AddrModeShort AddrMode = 2
	AddrModeExt   AddrMode = 3
)

// Frame versions
const (
	FrameVersion2003 = 0
	FrameVersion2006 = 1
	FrameVersion2015 = 2
)

// Frame control field bits
const (
	fcfTypeMask       = 0x0007
	fcfSecurity       = 1 << 3
	fcfFramePending   = 1 << 4
	fcfAckRequest     = 1 << 5
	fcfPanIDCompress  = 1 << 6
	fcfSeqSuppression = 1 << 8
	fcfDstModeShift   = 10
	fcfVersionShift   = 12
	fcfSrcModeShift   = 14

	fcfSize = 2
)

var ErrShortHeader = fmt.Errorf("%w: truncated MAC header", ErrOther)

// Header holds the MAC header fields a transceiver looks at for filtering and
// acknowledgment. Source addressing is not decoded.
type Header struct {
	Type             FrameType
	Security         bool
	FramePending     bool
	AckRequest       bool
	PanIDCompression bool
	SeqSuppressed    bool
	Version          uint8
	DstAddrMode      AddrMode
	SrcAddrMode      AddrMode
	Seq              uint8
	DstPanID         uint16
	DstShort         uint16
	DstExt           uint64
}

// ParseHeader decodes the frame control field, sequence number and destination
// addressing of a PSDU. A destination PAN ID is assumed present whenever a
// destination address is.
func ParseHeader(psdu []byte) (*Header, error) {
	if len(psdu) < fcfSize {
		return nil, ErrShortHeader
	}

	fcf := binary.LittleEndian.Uint16(psdu)
	h := &Header{
		Type:             FrameType(fcf & fcfTypeMask),
		Security:         fcf&fcfSecurity != 0,
		FramePending:     fcf&fcfFramePending != 0,
		AckRequest:       fcf&fcfAckRequest != 0,
		PanIDCompression: fcf&fcfPanIDCompress != 0,
		Version:          uint8(fcf>>fcfVersionShift) & 0x3,
		DstAddrMode:      AddrMode(fcf>>fcfDstModeShift) & 0x3,
		SrcAddrMode:      AddrMode(fcf>>fcfSrcModeShift) & 0x3,
	}
	// Sequence number suppression only exists from the 2015 revision on.
	h.SeqSuppressed = h.Version == FrameVersion2015 && fcf&fcfSeqSuppression != 0

	off := fcfSize
	if !h.SeqSuppressed {
		if len(psdu) < off+1 {
			return nil, ErrShortHeader
		}
		h.Seq = psdu[off]
		off++
	}

	if h.DstAddrMode == AddrModeNone {
		return h, nil
	}

	if len(psdu) < off+2 {
		return nil, ErrShortHeader
	}
	h.DstPanID = binary.LittleEndian.Uint16(psdu[off:])
	off += 2

	switch h.DstAddrMode {
	case AddrModeShort:
		if len(psdu) < off+2 {
			return nil, ErrShortHeader
		}
		h.DstShort = binary.LittleEndian.Uint16(psdu[off:])
	case AddrModeExt:
		if len(psdu) < off+8 {
			return nil, ErrShortHeader
		}
		h.DstExt = binary.LittleEndian.Uint64(psdu[off:])
	default:
		return nil, fmt.Errorf("%w: reserved destination address mode", ErrOther)
	}

	return h, nil
}

// IsBroadcast reports whether the frame is addressed to every device.
func (h *Header) IsBroadcast() bool {
	return h.DstAddrMode == AddrModeShort && h.DstShort == BroadcastShort
}

// BuildAck returns the PSDU of an acknowledgment for the frame numbered seq,
// FCS included. An enhanced acknowledgment carries frame version 2015 and no
// information elements.
func BuildAck(seq uint8, framePending, enhanced bool) []byte {
	fcf := uint16(FrameTypeAck)
	if framePending {
		fcf |= fcfFramePending
	}
	if enhanced {
		fcf |= FrameVersion2015 << fcfVersionShift
	}

	ack := make([]byte, 0, fcfSize+1+FCSSize)
	ack = binary.LittleEndian.AppendUint16(ack, fcf)
	ack = append(ack, seq)
	return AppendFCS(ack)
}

// BuildDataFrame returns a data frame PSDU addressed to a short address,
// with room reserved for the FCS. The source is addressed by short address
// within the same PAN.
func BuildDataFrame(seq uint8, panID, dst, src uint16, ackRequest bool, payload []byte) []byte {
	fcf := uint16(FrameTypeData) | fcfPanIDCompress |
		uint16(AddrModeShort)<<fcfDstModeShift |
		FrameVersion2006<<fcfVersionShift |
		uint16(AddrModeShort)<<fcfSrcModeShift
	if ackRequest {
		fcf |= fcfAckRequest
	}

	psdu := make([]byte, 0, 9+len(payload)+FCSSize)
	psdu = binary.LittleEndian.AppendUint16(psdu, fcf)
	psdu = append(psdu, seq)
	psdu = binary.LittleEndian.AppendUint16(psdu, panID)
	psdu = binary.LittleEndian.AppendUint16(psdu, dst)
	psdu = binary.LittleEndian.AppendUint16(psdu, src)
	psdu = append(psdu, payload...)
	return append(psdu, 0, 0)
}

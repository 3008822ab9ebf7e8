package protocol

import (
	"encoding/binary"

	"github.com/sigurn/crc16"
)

// The 802.15.4 FCS is the ITU-T CRC-16 (CRC-16/KERMIT), sent low byte first.
var fcsTable = crc16.MakeTable(crc16.CRC16_KERMIT)

// ComputeFCS returns the FCS over the MAC header and payload.
func ComputeFCS(data []byte) uint16 {
	return crc16.Checksum(data, fcsTable)
}

// AppendFCS appends the FCS of data to data.
func AppendFCS(data []byte) []byte {
	return binary.LittleEndian.AppendUint16(data, ComputeFCS(data))
}

// FillFCS overwrites the last two bytes of psdu with the FCS of the rest,
// the way a transceiver does on transmit.
func FillFCS(psdu []byte) {
	if len(psdu) < FCSSize {
		return
	}
	n := len(psdu) - FCSSize
	binary.LittleEndian.PutUint16(psdu[n:], ComputeFCS(psdu[:n]))
}

// CheckFCS reports whether the trailing FCS of psdu is valid.
func CheckFCS(psdu []byte) bool {
	if len(psdu) < FCSSize {
		return false
	}
	n := len(psdu) - FCSSize
	return binary.LittleEndian.Uint16(psdu[n:]) == ComputeFCS(psdu[:n])
}

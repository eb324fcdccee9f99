// Package netflow implements the NetFlow v9 wire format consumed by the
// collector: the packet header, template FlowSets, and template-driven
// decoding of data FlowSets into flow records. All multi-byte fields on the
// wire are big-endian; every read is bounds-checked because the bytes come
// from an untrusted network peer.
package netflow

import (
	"encoding/binary"
	"fmt"
)

// Protocol versions found in the first two bytes of an export packet.
const (
	Version9     = 9
	VersionIPFIX = 10
)

const (
	headerLength        = 20
	flowSetHeaderLength = 4
	fieldSpecifierLen   = 4

	// FlowSet IDs 1-255 are reserved. A data FlowSet reuses the ID space
	// above 255 as the ID of the template it was encoded with.
	maxReservedFlowSetID = 255
)

// Well-known NetFlow v9 field types the decoder maps onto FlowRecord
// attributes. Other types are skipped, their bytes still advancing the
// record offset.
const (
	FieldInBytes       = 1
	FieldInPackets     = 2
	FieldProtocol      = 4
	FieldL4SrcPort     = 7
	FieldIPv4SrcAddr   = 8
	FieldL4DstPort     = 11
	FieldIPv4DstAddr   = 12
	FieldLastSwitched  = 21
	FieldFirstSwitched = 22
)

// Header is the 20-byte NetFlow v9 packet header.
type Header struct {
	Version   uint16
	Count     uint16
	SysUptime uint32
	UnixSecs  uint32
	Sequence  uint32
	SourceID  uint32
}

// PeekVersion reads the protocol version from the first two bytes of a
// datagram, before any version-specific parsing is chosen.
func PeekVersion(buf []byte) (uint16, error) {
	if len(buf) < 2 {
		return 0, fmt.Errorf("packet too short for version field: %d bytes", len(buf))
	}
	return binary.BigEndian.Uint16(buf), nil
}

func parseHeader(buf []byte) (Header, error) {
	if len(buf) < headerLength {
		return Header{}, fmt.Errorf("packet too short for v9 header: %d bytes", len(buf))
	}
	return Header{
		Version:   binary.BigEndian.Uint16(buf[0:2]),
		Count:     binary.BigEndian.Uint16(buf[2:4]),
		SysUptime: binary.BigEndian.Uint32(buf[4:8]),
		UnixSecs:  binary.BigEndian.Uint32(buf[8:12]),
		Sequence:  binary.BigEndian.Uint32(buf[12:16]),
		SourceID:  binary.BigEndian.Uint32(buf[16:20]),
	}, nil
}

package netflow

import (
	"net"

	"NetFlowSond/internal/model"
)

// recordLength is the fixed byte length of one data record under the given
// layout: the sum of all declared field lengths.
func recordLength(fields []FieldSpecifier) int {
	total := 0
	for _, f := range fields {
		total += int(f.Length)
	}
	return total
}

// decodeRecords walks a data FlowSet body record by record, handing each
// decoded record to emit. Trailing bytes shorter than one full record are
// padding and are discarded; there is no partial-record buffering across
// packets. Returns the number of records emitted.
func decodeRecords(body []byte, fields []FieldSpecifier, probe string, emit func(*model.FlowRecord)) int {
	recordLen := recordLength(fields)
	if recordLen == 0 {
		return 0
	}
	decoded := 0
	for off := 0; off+recordLen <= len(body); off += recordLen {
		record := decodeOne(body[off:off+recordLen], fields)
		record.ProbeName = probe
		emit(record)
		decoded++
	}
	return decoded
}

// decodeOne decodes a single record. Fields sit back to back at increasing
// offsets; the offset always advances by the declared field length, even for
// types we do not interpret, so later fields stay aligned.
func decodeOne(buf []byte, fields []FieldSpecifier) *model.FlowRecord {
	record := &model.FlowRecord{}
	offset := 0
	for _, f := range fields {
		value := buf[offset : offset+int(f.Length)]
		switch f.Type {
		case FieldInBytes:
			record.ByteCount = beUint32(value)
		case FieldInPackets:
			record.PacketCount = beUint32(value)
		case FieldProtocol:
			if len(value) >= 1 {
				record.Protocol = value[0]
			}
		case FieldL4SrcPort:
			record.SourcePort = beUint16(value)
		case FieldIPv4SrcAddr:
			record.SourceIP = ipv4String(value)
		case FieldL4DstPort:
			record.DestinationPort = beUint16(value)
		case FieldIPv4DstAddr:
			record.DestinationIP = ipv4String(value)
		case FieldLastSwitched, FieldFirstSwitched:
			// SysUptime timestamps are recognized but not converted;
			// FlowStart and FlowEnd stay empty.
		}
		offset += int(f.Length)
	}
	return record
}

// beUint16 reads a big-endian unsigned value of up to two bytes. Exporters
// occasionally declare a wider field than the canonical size; the leading
// two bytes are taken in that case.
func beUint16(b []byte) uint16 {
	if len(b) > 2 {
		b = b[:2]
	}
	var v uint16
	for _, octet := range b {
		v = v<<8 | uint16(octet)
	}
	return v
}

// beUint32 reads a big-endian unsigned value of up to four bytes, tolerating
// shorter declared lengths.
func beUint32(b []byte) uint32 {
	if len(b) > 4 {
		b = b[:4]
	}
	var v uint32
	for _, octet := range b {
		v = v<<8 | uint32(octet)
	}
	return v
}

// ipv4String renders the first four bytes as a dotted-decimal address.
func ipv4String(b []byte) string {
	if len(b) < 4 {
		return ""
	}
	return net.IPv4(b[0], b[1], b[2], b[3]).String()
}

package netflow

import (
	"encoding/binary"
	"fmt"
	"log"

	"NetFlowSond/internal/model"
)

// ProcessPacket parses one NetFlow v9 export packet: the header first, then
// every FlowSet in sequence. Template FlowSets update the store, data
// FlowSets are decoded against it, and every resulting record is passed to
// emit with the probe name attached.
//
// Malformed framing aborts the remainder of the packet only; FlowSets
// already processed keep their effects. A data FlowSet that references an
// unknown template skips just its own byte span. The cursor always advances
// by a FlowSet's declared length, so one bad FlowSet never desynchronizes
// the ones after it.
//
// Returns the number of records emitted.
func ProcessPacket(buf []byte, store *TemplateStore, probe string, emit func(*model.FlowRecord)) (int, error) {
	header, err := parseHeader(buf)
	if err != nil {
		return 0, err
	}
	if header.Version != Version9 {
		return 0, fmt.Errorf("unexpected version %d in v9 packet", header.Version)
	}

	decoded := 0
	rest := buf[headerLength:]
	for len(rest) > 0 {
		if len(rest) < flowSetHeaderLength {
			return decoded, fmt.Errorf("incomplete FlowSet header: %d bytes left", len(rest))
		}
		flowSetID := binary.BigEndian.Uint16(rest[0:2])
		length := int(binary.BigEndian.Uint16(rest[2:4]))
		if length < flowSetHeaderLength {
			return decoded, fmt.Errorf("FlowSet %d announces length %d, below the 4-byte minimum", flowSetID, length)
		}
		if length > len(rest) {
			return decoded, fmt.Errorf("FlowSet %d announces length %d with only %d bytes left in packet", flowSetID, length, len(rest))
		}
		body := rest[flowSetHeaderLength:length]

		switch {
		case flowSetID == 0:
			if err := parseTemplateFlowSet(body, store); err != nil {
				return decoded, fmt.Errorf("template FlowSet: %w", err)
			}
		case flowSetID > maxReservedFlowSetID:
			// The FlowSet ID is the template ID the data was encoded with.
			fields, ok := store.Lookup(flowSetID)
			if !ok {
				log.Printf("probe %s: data FlowSet references unknown template %d, skipping", probe, flowSetID)
				break
			}
			decoded += decodeRecords(body, fields, probe, emit)
		default:
			// Reserved FlowSet IDs 1-255 carry nothing we consume.
		}

		rest = rest[length:]
	}
	return decoded, nil
}

// parseTemplateFlowSet reads template records back to back until the FlowSet
// body is consumed. Trailing bytes shorter than a record header are padding.
func parseTemplateFlowSet(body []byte, store *TemplateStore) error {
	for len(body) >= flowSetHeaderLength {
		templateID := binary.BigEndian.Uint16(body[0:2])
		fieldCount := int(binary.BigEndian.Uint16(body[2:4]))
		body = body[4:]

		if len(body) < fieldCount*fieldSpecifierLen {
			return fmt.Errorf("template %d announces %d fields with only %d bytes left", templateID, fieldCount, len(body))
		}
		fields := make([]FieldSpecifier, 0, fieldCount)
		for i := 0; i < fieldCount; i++ {
			fields = append(fields, FieldSpecifier{
				Type:   binary.BigEndian.Uint16(body[i*fieldSpecifierLen : i*fieldSpecifierLen+2]),
				Length: binary.BigEndian.Uint16(body[i*fieldSpecifierLen+2 : i*fieldSpecifierLen+4]),
			})
		}
		store.Upsert(templateID, fields)
		body = body[fieldCount*fieldSpecifierLen:]
	}
	return nil
}

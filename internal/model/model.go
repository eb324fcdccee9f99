package model

// FlowRecord is one decoded NetFlow v9 data record. Records are transient:
// the decoder creates them, the sink consumes them, nothing retains them.
// FlowStart and FlowEnd stay empty strings; the exporter's SysUptime
// timestamps (field types 21/22) are recognized but not converted to
// wall-clock time.
type FlowRecord struct {
	SourceIP        string `json:"source_ip"`
	DestinationIP   string `json:"destination_ip"`
	SourcePort      uint16 `json:"source_port"`
	DestinationPort uint16 `json:"destination_port"`
	Protocol        uint8  `json:"protocol"`
	PacketCount     uint32 `json:"packet_count"`
	ByteCount       uint32 `json:"byte_count"`
	FlowStart       string `json:"flow_start"`
	FlowEnd         string `json:"flow_end"`
	ProbeName       string `json:"probe_name"`
}

package model

// ProbeStats is a point-in-time snapshot of one probe listener's counters,
// served by the status API.
type ProbeStats struct {
	Probe           string `json:"probe"`
	Port            int    `json:"port"`
	PacketsReceived uint64 `json:"packets_received"`
	PacketsAccepted uint64 `json:"packets_accepted"`
	PacketsRejected uint64 `json:"packets_rejected"`
	RecordsDecoded  uint64 `json:"records_decoded"`
	RecordsDropped  uint64 `json:"records_dropped"`
	Templates       int    `json:"templates"`
}

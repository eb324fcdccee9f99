// Package diag implements the diagnostic capture side-channel: an
// append-only file receiving a hex dump of every datagram a probe listener
// receives, accepted or not.
package diag

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Recorder serializes packet dumps from all probe listeners into one file.
// The file is opened, appended and closed per packet; the mutex is the only
// piece of state shared between probe workers, and it keeps dumps from
// different probes from interleaving.
type Recorder struct {
	mu   sync.Mutex
	path string
}

// NewRecorder verifies the capture file can be appended to and returns a
// recorder bound to it. An unopenable file is a startup failure when
// diagnostics were explicitly requested.
func NewRecorder(path string) (*Recorder, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("cannot open diagnostic file %s: %w", path, err)
	}
	file.Close()
	return &Recorder{path: path}, nil
}

// Capture appends one packet dump: the probe name, the raw bytes in hex, and
// a blank separator line. Failures are returned for the caller to log;
// capture never stops the ingestion path.
func (r *Recorder) Capture(probe string, data []byte) error {
	var b strings.Builder
	b.WriteString("Probe: ")
	b.WriteString(probe)
	b.WriteString("\nData: ")
	for _, octet := range data {
		fmt.Fprintf(&b, "%02x ", octet)
	}
	b.WriteString("\n\n")

	r.mu.Lock()
	defer r.mu.Unlock()
	file, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot open diagnostic file %s: %w", r.path, err)
	}
	defer file.Close()
	if _, err := file.WriteString(b.String()); err != nil {
		return fmt.Errorf("cannot write diagnostic dump: %w", err)
	}
	return nil
}

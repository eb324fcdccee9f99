// Package collector runs the flow-ingestion pipeline: one UDP listener per
// configured probe, each feeding the NetFlow walker and its own storage sink.
package collector

import (
	"errors"
	"fmt"
	"log"
	"net"
	"sync/atomic"

	"NetFlowSond/internal/config"
	"NetFlowSond/internal/diag"
	"NetFlowSond/internal/model"
	"NetFlowSond/internal/netflow"
)

// maxDatagramSize bounds a single NetFlow export packet.
const maxDatagramSize = 65536

// Listener owns everything belonging to one probe: its socket, template
// store and sink. Nothing is shared with other probes except the diagnostic
// recorder, which serializes itself.
type Listener struct {
	probe     config.ProbeConfig
	conn      *net.UDPConn
	sink      model.Sink
	templates *netflow.TemplateStore
	recorder  *diag.Recorder
	display   bool

	packetsReceived atomic.Uint64
	packetsAccepted atomic.Uint64
	packetsRejected atomic.Uint64
	recordsDecoded  atomic.Uint64
	recordsDropped  atomic.Uint64
	// templateCount mirrors the store's size so the status API can read it
	// without touching the store, which only the receive goroutine owns.
	templateCount atomic.Int64
}

// NewListener binds the probe's UDP port. A bind failure is returned to the
// caller, which treats it as fatal for the whole process.
func NewListener(probe config.ProbeConfig, sink model.Sink, recorder *diag.Recorder, display bool) (*Listener, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: probe.Port})
	if err != nil {
		return nil, fmt.Errorf("cannot bind UDP port %d for probe %s: %w", probe.Port, probe.Name, err)
	}
	return &Listener{
		probe:     probe,
		conn:      conn,
		sink:      sink,
		templates: netflow.NewTemplateStore(),
		recorder:  recorder,
		display:   display,
	}, nil
}

// Addr returns the bound address, for callers that configured port 0.
func (l *Listener) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// Run receives datagrams until Stop closes the socket. A receive error is
// logged and the loop continues; only a closed socket ends it.
func (l *Listener) Run() {
	buf := make([]byte, maxDatagramSize)
	for {
		n, remote, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Printf("probe %s: receive error: %v", l.probe.Name, err)
			continue
		}
		l.handlePacket(buf[:n], remote.IP)
	}
}

// Stop closes the socket, which unblocks Run.
func (l *Listener) Stop() {
	l.conn.Close()
}

func (l *Listener) handlePacket(data []byte, source net.IP) {
	l.packetsReceived.Add(1)
	sourceIP := source.String()

	accepted := l.probe.FilterAddress == "" || l.probe.FilterAddress == sourceIP
	if l.display {
		if accepted {
			log.Printf("Received packet from %s on port %d [ACCEPTED]", sourceIP, l.probe.Port)
		} else {
			log.Printf("Received packet from %s on port %d [REJECTED] (Expected source IP: %s)",
				sourceIP, l.probe.Port, l.probe.FilterAddress)
		}
	}

	// Forensic capture sees every packet, rejected ones included.
	if l.recorder != nil {
		if err := l.recorder.Capture(l.probe.Name, data); err != nil {
			log.Printf("probe %s: %v", l.probe.Name, err)
		}
	}

	if !accepted {
		l.packetsRejected.Add(1)
		return
	}
	l.packetsAccepted.Add(1)

	version, err := netflow.PeekVersion(data)
	if err != nil {
		log.Printf("probe %s: %v", l.probe.Name, err)
		return
	}
	switch version {
	case netflow.Version9:
		if _, err := netflow.ProcessPacket(data, l.templates, l.probe.Name, l.emit); err != nil {
			log.Printf("probe %s: %v", l.probe.Name, err)
		}
		l.templateCount.Store(int64(l.templates.Len()))
	case netflow.VersionIPFIX:
		// IPFIX export is recognized but not decoded yet.
	default:
		log.Printf("probe %s: unknown NetFlow version %d from %s", l.probe.Name, version, sourceIP)
	}
}

// emit hands one decoded record to the sink. An insert failure drops that
// record; there is no retry or buffering.
func (l *Listener) emit(record *model.FlowRecord) {
	l.recordsDecoded.Add(1)
	if err := l.sink.Insert(record); err != nil {
		l.recordsDropped.Add(1)
		log.Printf("probe %s: failed to insert flow record: %v", l.probe.Name, err)
	}
}

// Stats returns a point-in-time snapshot of the listener's counters.
func (l *Listener) Stats() model.ProbeStats {
	return model.ProbeStats{
		Probe:           l.probe.Name,
		Port:            l.probe.Port,
		PacketsReceived: l.packetsReceived.Load(),
		PacketsAccepted: l.packetsAccepted.Load(),
		PacketsRejected: l.packetsRejected.Load(),
		RecordsDecoded:  l.recordsDecoded.Load(),
		RecordsDropped:  l.recordsDropped.Load(),
		Templates:       int(l.templateCount.Load()),
	}
}

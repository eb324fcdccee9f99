// Package natspub implements a sink that publishes decoded flow records to a
// NATS subject as JSON instead of persisting them locally, for downstream
// consumers to pick up.
package natspub

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"NetFlowSond/internal/config"
	"NetFlowSond/internal/factory"
	"NetFlowSond/internal/model"
)

func init() {
	factory.RegisterSink("nats", func(cfg *config.StorageConfig) (model.Sink, error) {
		if cfg.NATS.URL == "" || cfg.NATS.Subject == "" {
			return nil, fmt.Errorf("nats backend requires storage.nats.url and storage.nats.subject")
		}
		return NewSink(cfg.NATS), nil
	})
}

// Sink publishes each flow record as one JSON message.
type Sink struct {
	cfg config.NATSConfig
	nc  *nats.Conn
}

// NewSink returns a sink bound to the given NATS server and subject.
func NewSink(cfg config.NATSConfig) *Sink {
	return &Sink{cfg: cfg}
}

// Connect establishes the NATS connection. Subjects need no provisioning, so
// InitSchema is a formality here.
func (s *Sink) Connect() error {
	nc, err := nats.Connect(s.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", s.cfg.URL, err)
	}
	s.nc = nc
	log.Printf("Connected to NATS server at %s", s.cfg.URL)
	return s.InitSchema()
}

// InitSchema is a no-op: NATS subjects exist implicitly.
func (s *Sink) InitSchema() error {
	return nil
}

// Insert serializes the record to JSON and publishes it.
func (s *Sink) Insert(record *model.FlowRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal flow record: %w", err)
	}
	if err := s.nc.Publish(s.cfg.Subject, data); err != nil {
		return fmt.Errorf("failed to publish flow record: %w", err)
	}
	return nil
}

// Ping performs a connect-and-flush round-trip against the server.
func (s *Sink) Ping() error {
	nc, err := nats.Connect(s.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", s.cfg.URL, err)
	}
	defer nc.Close()
	if err := nc.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("NATS flush failed: %w", err)
	}
	return nil
}

// Close drains and closes the NATS connection.
func (s *Sink) Close() error {
	if s.nc == nil {
		return nil
	}
	if err := s.nc.Drain(); err != nil {
		return err
	}
	log.Println("NATS connection drained and closed.")
	return nil
}

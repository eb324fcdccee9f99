// Package clickhouse implements the ClickHouse storage sink.
package clickhouse

import (
	"context"
	"fmt"
	"log"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"NetFlowSond/internal/config"
	"NetFlowSond/internal/factory"
	"NetFlowSond/internal/model"
)

func init() {
	factory.RegisterSink("clickhouse", func(cfg *config.StorageConfig) (model.Sink, error) {
		if cfg.ClickHouse.Host == "" {
			return nil, fmt.Errorf("clickhouse backend requires storage.clickhouse.host")
		}
		return NewSink(cfg.ClickHouse), nil
	})
}

const createTableStatement = `
CREATE TABLE IF NOT EXISTS netflow_records (
    SourceIP        String,
    DestinationIP   String,
    SourcePort      UInt16,
    DestinationPort UInt16,
    Protocol        UInt8,
    PacketCount     UInt32,
    ByteCount       UInt32,
    FlowStart       String,
    FlowEnd         String,
    ProbeName       String,
    InsertedAt      DateTime DEFAULT now()
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(InsertedAt)
ORDER BY (ProbeName, InsertedAt);
`

const insertStatement = `INSERT INTO netflow_records (SourceIP, DestinationIP, SourcePort, DestinationPort, Protocol, PacketCount, ByteCount, FlowStart, FlowEnd, ProbeName)`

// Sink writes flow records into a ClickHouse table.
type Sink struct {
	cfg  config.ClickHouseConfig
	conn driver.Conn
}

// NewSink returns a sink bound to the given ClickHouse server.
func NewSink(cfg config.ClickHouseConfig) *Sink {
	return &Sink{cfg: cfg}
}

func (s *Sink) open() (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: s.cfg.Database,
			Username: s.cfg.Username,
			Password: s.cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

// Connect opens the connection and ensures the table exists.
func (s *Sink) Connect() error {
	conn, err := s.open()
	if err != nil {
		return fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	s.conn = conn
	if err := s.InitSchema(); err != nil {
		return err
	}
	log.Println("Successfully connected to ClickHouse and ensured table exists.")
	return nil
}

// InitSchema creates the records table if it does not exist.
func (s *Sink) InitSchema() error {
	if err := s.conn.Exec(context.Background(), createTableStatement); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Insert sends one record as a single-row batch. The pipeline is synchronous
// per probe, so there is no cross-record buffering here.
func (s *Sink) Insert(record *model.FlowRecord) error {
	batch, err := s.conn.PrepareBatch(context.Background(), insertStatement)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}
	err = batch.Append(
		record.SourceIP,
		record.DestinationIP,
		record.SourcePort,
		record.DestinationPort,
		record.Protocol,
		record.PacketCount,
		record.ByteCount,
		record.FlowStart,
		record.FlowEnd,
		record.ProbeName,
	)
	if err != nil {
		return fmt.Errorf("failed to append record to batch: %w", err)
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	return nil
}

// Ping opens and closes a throwaway connection to verify reachability.
func (s *Sink) Ping() error {
	conn, err := s.open()
	if err != nil {
		return err
	}
	return conn.Close()
}

// Close releases the connection.
func (s *Sink) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

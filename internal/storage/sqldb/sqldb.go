// Package sqldb implements the relational storage sinks. SQLite and MySQL
// share one gorm-backed store; only the dialector differs.
package sqldb

import (
	"fmt"
	"log"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"NetFlowSond/internal/config"
	"NetFlowSond/internal/factory"
	"NetFlowSond/internal/model"
)

func init() {
	factory.RegisterSink("sqlite", func(cfg *config.StorageConfig) (model.Sink, error) {
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("sqlite backend requires storage.sqlite_path")
		}
		return NewSQLiteStore(cfg.SQLitePath), nil
	})
	factory.RegisterSink("mysql", func(cfg *config.StorageConfig) (model.Sink, error) {
		if cfg.MySQL.Database == "" {
			return nil, fmt.Errorf("mysql backend requires storage.mysql.database")
		}
		return NewMySQLStore(cfg.MySQL), nil
	})
}

// FlowRow is the relational shape of one decoded flow record.
type FlowRow struct {
	ID              uint `gorm:"primaryKey"`
	SourceIP        string
	DestinationIP   string
	SourcePort      uint16
	DestinationPort uint16
	Protocol        uint8
	PacketCount     uint32
	ByteCount       uint32
	FlowStart       string
	FlowEnd         string
	ProbeName       string
}

// TableName keeps both relational backends on the same table name.
func (FlowRow) TableName() string { return "netflow_records" }

// Store is a gorm-backed sink. The dialector decides whether it talks to
// SQLite or MySQL; everything else is shared.
type Store struct {
	open   func() gorm.Dialector
	target string
	db     *gorm.DB
}

// NewSQLiteStore returns a store backed by a SQLite database file.
func NewSQLiteStore(path string) *Store {
	return &Store{
		open:   func() gorm.Dialector { return sqlite.Open(path) },
		target: path,
	}
}

// NewMySQLStore returns a store backed by a MySQL database.
func NewMySQLStore(cfg config.MySQLConfig) *Store {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
	return &Store{
		open:   func() gorm.Dialector { return mysql.Open(dsn) },
		target: fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.Database),
	}
}

// Connect opens the database and provisions the schema. Safe to call against
// a target that already carries the table.
func (s *Store) Connect() error {
	db, err := gorm.Open(s.open(), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("cannot open database %s: %w", s.target, err)
	}
	s.db = db
	if err := s.InitSchema(); err != nil {
		return err
	}
	log.Printf("Connected to database: %s", s.target)
	return nil
}

// InitSchema creates or migrates the records table. AutoMigrate is a no-op
// when the table already matches, so repeated calls are harmless.
func (s *Store) InitSchema() error {
	if err := s.db.AutoMigrate(&FlowRow{}); err != nil {
		return fmt.Errorf("cannot provision schema for %s: %w", s.target, err)
	}
	return nil
}

// Insert persists one record as a new row.
func (s *Store) Insert(record *model.FlowRecord) error {
	row := FlowRow{
		SourceIP:        record.SourceIP,
		DestinationIP:   record.DestinationIP,
		SourcePort:      record.SourcePort,
		DestinationPort: record.DestinationPort,
		Protocol:        record.Protocol,
		PacketCount:     record.PacketCount,
		ByteCount:       record.ByteCount,
		FlowStart:       record.FlowStart,
		FlowEnd:         record.FlowEnd,
		ProbeName:       record.ProbeName,
	}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("insert into %s failed: %w", s.target, err)
	}
	return nil
}

// Ping opens a throwaway connection to check the target is reachable,
// without touching the schema.
func (s *Store) Ping() error {
	db, err := gorm.Open(s.open(), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("cannot reach database %s: %w", s.target, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("cannot reach database %s: %w", s.target, err)
	}
	return nil
}

// Recent returns the latest n rows, newest first. Used by tests and offline
// inspection, not by the ingestion path.
func (s *Store) Recent(n int) ([]FlowRow, error) {
	var rows []FlowRow
	if err := s.db.Order("id desc").Limit(n).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

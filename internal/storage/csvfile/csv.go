// Package csvfile implements the flat-file storage sink: one CSV row per
// decoded flow record.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"

	"NetFlowSond/internal/config"
	"NetFlowSond/internal/factory"
	"NetFlowSond/internal/model"
)

func init() {
	factory.RegisterSink("csv", func(cfg *config.StorageConfig) (model.Sink, error) {
		if cfg.CSVPath == "" {
			return nil, fmt.Errorf("csv backend requires storage.csv_path")
		}
		return NewSink(cfg.CSVPath), nil
	})
}

var header = []string{
	"SourceIP", "DestinationIP", "SourcePort", "DestinationPort", "Protocol",
	"PacketCount", "ByteCount", "FlowStart", "FlowEnd", "ProbeName",
}

// Sink appends records to a CSV file, writing the header row only when it
// creates the file.
type Sink struct {
	path string
	file *os.File
	w    *csv.Writer
}

// NewSink returns a sink bound to the given file path.
func NewSink(path string) *Sink {
	return &Sink{path: path}
}

// Connect provisions the file and opens it for appending. An existing file
// is reused as is, so reconnecting never duplicates the header.
func (s *Sink) Connect() error {
	if err := s.InitSchema(); err != nil {
		return err
	}
	file, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot open CSV file %s: %w", s.path, err)
	}
	s.file = file
	s.w = csv.NewWriter(file)
	log.Printf("CSV file is ready: %s", s.path)
	return nil
}

// InitSchema creates the file with a header row if it does not exist yet.
func (s *Sink) InitSchema() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("cannot stat CSV file %s: %w", s.path, err)
	}
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot create CSV file %s: %w", s.path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("cannot write CSV header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("cannot write CSV header: %w", err)
	}
	log.Printf("CSV file created: %s", s.path)
	return nil
}

// Insert appends one record and flushes it, so a crash loses at most the row
// being written.
func (s *Sink) Insert(record *model.FlowRecord) error {
	row := []string{
		record.SourceIP,
		record.DestinationIP,
		strconv.Itoa(int(record.SourcePort)),
		strconv.Itoa(int(record.DestinationPort)),
		strconv.Itoa(int(record.Protocol)),
		strconv.FormatUint(uint64(record.PacketCount), 10),
		strconv.FormatUint(uint64(record.ByteCount), 10),
		record.FlowStart,
		record.FlowEnd,
		record.ProbeName,
	}
	if err := s.w.Write(row); err != nil {
		return fmt.Errorf("cannot append CSV row: %w", err)
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("cannot append CSV row: %w", err)
	}
	return nil
}

// Ping checks the file can be opened for appending.
func (s *Sink) Ping() error {
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("CSV file %s is not writable: %w", s.path, err)
	}
	return file.Close()
}

// ReadAll parses the file back into flow records, header excluded. Used by
// tests and offline inspection, not by the ingestion path.
func (s *Sink) ReadAll() ([]model.FlowRecord, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("cannot open CSV file %s: %w", s.path, err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot parse CSV file %s: %w", s.path, err)
	}

	records := make([]model.FlowRecord, 0, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) != len(header) {
			continue
		}
		srcPort, _ := strconv.ParseUint(row[2], 10, 16)
		dstPort, _ := strconv.ParseUint(row[3], 10, 16)
		proto, _ := strconv.ParseUint(row[4], 10, 8)
		packets, _ := strconv.ParseUint(row[5], 10, 32)
		bytes, _ := strconv.ParseUint(row[6], 10, 32)
		records = append(records, model.FlowRecord{
			SourceIP:        row[0],
			DestinationIP:   row[1],
			SourcePort:      uint16(srcPort),
			DestinationPort: uint16(dstPort),
			Protocol:        uint8(proto),
			PacketCount:     uint32(packets),
			ByteCount:       uint32(bytes),
			FlowStart:       row[7],
			FlowEnd:         row[8],
			ProbeName:       row[9],
		})
	}
	return records, nil
}

// Close flushes pending rows and closes the file.
func (s *Sink) Close() error {
	if s.file == nil {
		return nil
	}
	s.w.Flush()
	return s.file.Close()
}

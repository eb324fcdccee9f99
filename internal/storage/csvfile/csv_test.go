package csvfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"NetFlowSond/internal/model"
)

var sampleRecord = model.FlowRecord{
	SourceIP:        "192.168.1.1",
	DestinationIP:   "10.0.0.1",
	SourcePort:      5000,
	DestinationPort: 443,
	Protocol:        6,
	PacketCount:     10,
	ByteCount:       1500,
	ProbeName:       "sonda1",
}

func TestConnectCreatesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flows.csv")
	sink := NewSink(path)
	if err := sink.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer sink.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read CSV file: %v", err)
	}
	if !strings.HasPrefix(string(data), "SourceIP,DestinationIP,") {
		t.Errorf("header row missing, file starts with %q", string(data))
	}
}

func TestInsertRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flows.csv")
	sink := NewSink(path)
	if err := sink.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	if err := sink.Insert(&sampleRecord); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	records, err := sink.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0] != sampleRecord {
		t.Errorf("round-trip mismatch:\ngot  %+v\nwant %+v", records[0], sampleRecord)
	}
}

func TestConnectIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flows.csv")

	first := NewSink(path)
	if err := first.Connect(); err != nil {
		t.Fatalf("first Connect failed: %v", err)
	}
	if err := first.Insert(&sampleRecord); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	first.Close()

	// Reconnecting to an existing file must not rewrite the header or lose
	// existing rows.
	second := NewSink(path)
	if err := second.Connect(); err != nil {
		t.Fatalf("second Connect failed: %v", err)
	}
	if err := second.Insert(&sampleRecord); err != nil {
		t.Fatalf("Insert after reconnect failed: %v", err)
	}
	second.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read CSV file: %v", err)
	}
	if got := strings.Count(string(data), "SourceIP,"); got != 1 {
		t.Errorf("expected the header exactly once, found it %d times", got)
	}
	records, err := second.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records after reconnect, got %d", len(records))
	}
}

func TestPing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flows.csv")
	sink := NewSink(path)
	if err := sink.Ping(); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if err := NewSink(filepath.Join(t.TempDir(), "missing", "flows.csv")).Ping(); err == nil {
		t.Fatal("expected Ping to fail for an unwritable path")
	}
}

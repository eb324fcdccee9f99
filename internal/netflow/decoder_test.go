package netflow

import (
	"testing"

	"NetFlowSond/internal/model"
)

func TestDecodeRecordsNonCanonicalFieldLengths(t *testing.T) {
	// Some exporters declare counters narrower than 4 bytes and ports wider
	// than 2. Narrow values widen, wide values use their leading bytes.
	layout := []FieldSpecifier{
		{Type: FieldInBytes, Length: 2},
		{Type: FieldL4SrcPort, Length: 4},
	}
	body := []byte{
		0x01, 0xf4, // 500 bytes
		0x00, 0x50, 0x00, 0x00, // port 80 in the leading two bytes
	}

	var records []model.FlowRecord
	n := decodeRecords(body, layout, "sonda1", func(r *model.FlowRecord) {
		records = append(records, *r)
	})
	if n != 1 || len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", n)
	}
	if records[0].ByteCount != 500 {
		t.Errorf("expected byte count 500, got %d", records[0].ByteCount)
	}
	if records[0].SourcePort != 80 {
		t.Errorf("expected source port 80, got %d", records[0].SourcePort)
	}
}

func TestDecodeRecordsZeroLengthLayout(t *testing.T) {
	// A template whose fields sum to zero can never frame a record; the
	// decoder must not loop.
	layout := []FieldSpecifier{{Type: FieldProtocol, Length: 0}}
	n := decodeRecords([]byte{1, 2, 3}, layout, "sonda1", func(*model.FlowRecord) {
		t.Fatal("no record should be emitted for a zero-length layout")
	})
	if n != 0 {
		t.Fatalf("expected 0 records, got %d", n)
	}
}

func TestRecordLength(t *testing.T) {
	if got := recordLength(standardLayout); got != 21 {
		t.Fatalf("expected record length 21, got %d", got)
	}
}

package diag

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestCaptureFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diag.log")
	recorder, err := NewRecorder(path)
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}

	if err := recorder.Capture("sonda1", []byte{0x00, 0x09, 0xff}); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read diagnostic file: %v", err)
	}
	expected := "Probe: sonda1\nData: 00 09 ff \n\n"
	if string(data) != expected {
		t.Errorf("unexpected dump:\n%q\nwant:\n%q", string(data), expected)
	}
}

func TestCaptureAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diag.log")
	recorder, err := NewRecorder(path)
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}

	recorder.Capture("sonda1", []byte{0x01})
	recorder.Capture("sonda1", []byte{0x02})

	data, _ := os.ReadFile(path)
	if got := bytes.Count(data, []byte("Probe: sonda1")); got != 2 {
		t.Errorf("expected 2 dumps, found %d", got)
	}
}

func TestCaptureDoesNotInterleaveAcrossProbes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diag.log")
	recorder, err := NewRecorder(path)
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}

	// Two probes hammer the recorder concurrently with distinctive payloads.
	// Every dump block must pair the right probe with the right bytes.
	const packets = 50
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		payload := bytes.Repeat([]byte{0xaa}, 32)
		for i := 0; i < packets; i++ {
			recorder.Capture("sondaA", payload)
		}
	}()
	go func() {
		defer wg.Done()
		payload := bytes.Repeat([]byte{0xbb}, 32)
		for i := 0; i < packets; i++ {
			recorder.Capture("sondaB", payload)
		}
	}()
	wg.Wait()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read diagnostic file: %v", err)
	}
	blocks := strings.Split(strings.TrimRight(string(data), "\n"), "\n\n")
	if len(blocks) != 2*packets {
		t.Fatalf("expected %d dump blocks, found %d", 2*packets, len(blocks))
	}
	for _, block := range blocks {
		lines := strings.Split(block, "\n")
		if len(lines) != 2 {
			t.Fatalf("malformed dump block:\n%q", block)
		}
		var want string
		switch lines[0] {
		case "Probe: sondaA":
			want = strings.Repeat("aa ", 32)
		case "Probe: sondaB":
			want = strings.Repeat("bb ", 32)
		default:
			t.Fatalf("unexpected probe line %q", lines[0])
		}
		if lines[1] != "Data: "+want {
			t.Errorf("dump for %q carries wrong bytes: %q", lines[0], lines[1])
		}
	}
}

func TestNewRecorderUnwritablePath(t *testing.T) {
	if _, err := NewRecorder(filepath.Join(t.TempDir(), "missing", "diag.log")); err == nil {
		t.Fatal("expected an error for an unwritable diagnostic path")
	}
}

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"NetFlowSond/internal/model"
)

type staticStats []model.ProbeStats

func (s staticStats) Stats() []model.ProbeStats { return s }

func TestProbesEndpoint(t *testing.T) {
	source := staticStats{
		{Probe: "sonda1", Port: 2055, PacketsReceived: 42, RecordsDecoded: 12, Templates: 3},
	}
	server := NewServer(":0", source)

	req := httptest.NewRequest("GET", "/api/v1/probes", nil)
	rec := httptest.NewRecorder()
	server.http.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var stats []model.ProbeStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(stats) != 1 || stats[0].Probe != "sonda1" || stats[0].PacketsReceived != 42 {
		t.Errorf("unexpected stats payload: %+v", stats)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := NewServer(":0", staticStats{})

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	server.http.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if payload["status"] != "ok" {
		t.Errorf("unexpected health payload: %+v", payload)
	}
}

func TestProbesEndpointMethodNotAllowed(t *testing.T) {
	server := NewServer(":0", staticStats{})

	req := httptest.NewRequest("POST", "/api/v1/probes", nil)
	rec := httptest.NewRecorder()
	server.http.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for POST, got %d", rec.Code)
	}
}

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NVIDIA/machinestate/pkg/infogroup"
	"github.com/NVIDIA/machinestate/pkg/server"
	"github.com/NVIDIA/machinestate/pkg/snapshotter"
)

func TestHandlers(t *testing.T) {
	r := Handlers(&snapshotter.NodeSnapshotter{})

	if _, exists := r[StatePath]; !exists {
		t.Errorf("expected %s route to exist", StatePath)
	}
}

func TestStateEndpoint(t *testing.T) {
	n := &snapshotter.NodeSnapshotter{
		Version: "test",
		Groups:  []string{"host"},
		Options: []infogroup.Option{infogroup.WithRegistry(nil)},
	}

	s := server.New(server.WithHandler(Handlers(n)))

	req := httptest.NewRequest(http.MethodGet, StatePath, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d: %s", w.Code, w.Body.String())
	}

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var snap snapshotter.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if snap.Kind != snapshotter.Kind {
		t.Errorf("expected kind %s, got %s", snapshotter.Kind, snap.Kind)
	}
	if _, ok := snap.State["host"]; !ok {
		t.Errorf("expected host group in state, got %v", snap.State)
	}
}

func TestStateEndpointMethodNotAllowed(t *testing.T) {
	s := server.New(server.WithHandler(Handlers(&snapshotter.NodeSnapshotter{})))

	req := httptest.NewRequest(http.MethodPost, StatePath, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, w.Code)
	}

	if allow := w.Header().Get("Allow"); allow != http.MethodGet {
		t.Errorf("expected Allow header %s, got %s", http.MethodGet, allow)
	}
}

func TestStateEndpointUnknownGroup(t *testing.T) {
	s := server.New(server.WithHandler(Handlers(&snapshotter.NodeSnapshotter{})))

	req := httptest.NewRequest(http.MethodGet, StatePath+"?group=gpu", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

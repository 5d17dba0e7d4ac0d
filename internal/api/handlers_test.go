package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vrppd/internal/auth"
	"vrppd/internal/config"
	"vrppd/internal/store"
	"vrppd/internal/webhooks"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := store.NewMemory()
	return &Server{
		Store:   s,
		Pub:     webhooks.NewPublisher(s),
		Auth:    auth.NewVerifierFromEnv(),
		Broker:  NewBroker(),
		Cfg:     config.Default(),
		limiter: newTenantLimiters(1000, 1000),
	}
}

func samplePayload() []byte {
	return []byte(`{
		"vehicles":[{"id":1,"startLocation":{"latitude":0,"longitude":0},"priceKm":1}],
		"orders":[{"id":1,"pickupLocation":{"latitude":0,"longitude":0},"deliveryLocation":{"latitude":0,"longitude":0.03},"loadFactor":1}],
		"constraints":{"maxTotalDistance":1000}
	}`)
}

func TestHealthReady(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != 200 {
		t.Fatalf("health: got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	s.ReadyHandler(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != 200 {
		t.Fatalf("ready: got %d", rr.Code)
	}
}

func TestCreateAndGetProblem(t *testing.T) {
	s := newTestServer(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/problems", bytes.NewReader(samplePayload()))
	s.ProblemsHandler(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create problem: got %d body=%s", rr.Code, rr.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected non-empty id")
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/problems/"+created.ID, nil)
	s.ProblemByIDHandler(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("get problem: got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateProblemRejectsEmptyVehicles(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/problems", bytes.NewReader([]byte(`{"vehicles":[],"orders":[]}`)))
	s.ProblemsHandler(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
}

func TestSolveExactSynchronous(t *testing.T) {
	s := newTestServer(t)

	rr := httptest.NewRecorder()
	s.ProblemsHandler(rr, httptest.NewRequest(http.MethodPost, "/v1/problems", bytes.NewReader(samplePayload())))
	var created struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &created)

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/problems/"+created.ID+"/solve/exact?distance=euclidean", nil)
	s.ProblemByIDHandler(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("solve exact: got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSolveHeuristicAsyncThenPoll(t *testing.T) {
	s := newTestServer(t)
	s.Cfg.SAConfig.MaxIterations = 100
	s.Cfg.SAConfig.BatchSize = 10
	s.Cfg.SAConfig.SyncInterval = 10

	rr := httptest.NewRecorder()
	s.ProblemsHandler(rr, httptest.NewRequest(http.MethodPost, "/v1/problems", bytes.NewReader(samplePayload())))
	var created struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &created)

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/problems/"+created.ID+"/solve/heuristic", bytes.NewReader([]byte(`{"objective":"DISTANCE"}`)))
	s.ProblemByIDHandler(rr, req)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("solve heuristic: got %d body=%s", rr.Code, rr.Body.String())
	}
	var accepted struct {
		RunID string `json:"runId"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decode: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rr = httptest.NewRecorder()
		s.RunByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/runs/"+accepted.RunID, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("get run: got %d", rr.Code)
		}
		var got struct {
			Status string `json:"status"`
		}
		_ = json.Unmarshal(rr.Body.Bytes(), &got)
		if got.Status == "completed" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("run never completed")
}

func TestGetProblemNotFound(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.ProblemByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/problems/does-not-exist", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

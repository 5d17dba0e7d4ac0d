package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"vrppd/internal/vrp/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu sync.Mutex

	problems map[string]model.Problem

	exactSolutions map[string]ExactSolution

	runs    map[string]HeuristicRun
	history map[string][]model.ConvergencePoint

	deliveries    map[string]*memDelivery
	subsByEvent   map[string][]Subscription
}

func NewMemory() *Memory {
	return &Memory{
		problems:       map[string]model.Problem{},
		exactSolutions: map[string]ExactSolution{},
		runs:           map[string]HeuristicRun{},
		history:        map[string][]model.ConvergencePoint{},
		deliveries:     map[string]*memDelivery{},
		subsByEvent:    map[string][]Subscription{},
	}
}

// memDelivery augments WebhookDelivery with scheduling/outcome state.
type memDelivery struct {
	WebhookDelivery
	NextAttemptAt time.Time
	LastError     string
	ResponseCode  int
	LatencyMs     int
}

func (m *Memory) CreateProblem(ctx context.Context, p model.Problem) (string, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := fmt.Sprintf("prob_%s", uuid.New())
	m.problems[id] = p
	return id, time.Now().UTC(), nil
}

func (m *Memory) GetProblem(ctx context.Context, id string) (model.Problem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.problems[id]
	if !ok {
		return model.Problem{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) SaveExactSolution(ctx context.Context, problemID string, sol model.AlgorithmSolution) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := fmt.Sprintf("exact_%s", uuid.New())
	m.exactSolutions[id] = ExactSolution{ID: id, ProblemID: problemID, Solution: sol, CreatedAt: time.Now().UTC()}
	return id, nil
}

func (m *Memory) GetExactSolution(ctx context.Context, id string) (ExactSolution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.exactSolutions[id]
	if !ok {
		return ExactSolution{}, ErrNotFound
	}
	return s, nil
}

func (m *Memory) CreateHeuristicRun(ctx context.Context, problemID string, objective model.Objective, cfg model.SAConfig) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := fmt.Sprintf("run_%s", uuid.New())
	now := time.Now().UTC()
	m.runs[id] = HeuristicRun{
		ID: id, ProblemID: problemID, Objective: objective, Config: cfg,
		Status: RunPending, CreatedAt: now, UpdatedAt: now,
	}
	return id, nil
}

func (m *Memory) UpdateHeuristicRunStatus(ctx context.Context, id string, status RunStatus, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return ErrNotFound
	}
	run.Status = status
	run.Error = errMsg
	run.UpdatedAt = time.Now().UTC()
	m.runs[id] = run
	return nil
}

func (m *Memory) SetHeuristicRunResult(ctx context.Context, id string, best model.ProblemSolution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return ErrNotFound
	}
	run.Best = best
	run.UpdatedAt = time.Now().UTC()
	m.runs[id] = run
	return nil
}

func (m *Memory) GetHeuristicRun(ctx context.Context, id string) (HeuristicRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return HeuristicRun{}, ErrNotFound
	}
	return run, nil
}

func (m *Memory) AppendHistoryPoint(ctx context.Context, runID string, pt model.ConvergencePoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[runID]; !ok {
		return ErrNotFound
	}
	m.history[runID] = append(m.history[runID], pt)
	return nil
}

func (m *Memory) ListHistoryPoints(ctx context.Context, runID string) ([]model.ConvergencePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[runID]; !ok {
		return nil, ErrNotFound
	}
	out := make([]model.ConvergencePoint, len(m.history[runID]))
	copy(out, m.history[runID])
	return out, nil
}

func (m *Memory) EnqueueWebhook(ctx context.Context, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := fmt.Sprintf("whd_%s", uuid.New())
	m.deliveries[id] = &memDelivery{
		WebhookDelivery: WebhookDelivery{
			ID: id, SubscriptionID: subscriptionID, EventType: eventType,
			URL: url, Secret: secret, Payload: payload, Status: "pending",
		},
		NextAttemptAt: time.Now(),
	}
	return id, nil
}

func (m *Memory) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var out []WebhookDelivery
	for _, d := range m.deliveries {
		if d.Status != "pending" || d.NextAttemptAt.After(now) {
			continue
		}
		out = append(out, d.WebhookDelivery)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok {
		return ErrNotFound
	}
	d.LastError, d.ResponseCode, d.LatencyMs = lastError, responseCode, latencyMs
	d.WebhookDelivery.Attempts++
	if success {
		d.Status = "delivered"
	} else if nextAttemptAt != nil {
		d.NextAttemptAt = *nextAttemptAt
	}
	return nil
}

func (m *Memory) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok {
		return ErrNotFound
	}
	d.Status = "failed"
	d.LastError, d.ResponseCode, d.LatencyMs = lastError, responseCode, latencyMs
	d.WebhookDelivery.Attempts++
	return nil
}

func (m *Memory) CreateSubscription(ctx context.Context, eventType, url, secret string) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub := Subscription{ID: fmt.Sprintf("sub_%s", uuid.New()), EventType: eventType, URL: url, Secret: secret}
	m.subsByEvent[eventType] = append(m.subsByEvent[eventType], sub)
	return sub, nil
}

func (m *Memory) GetSubscriptionsForEvent(ctx context.Context, eventType string) ([]Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Subscription, len(m.subsByEvent[eventType]))
	copy(out, m.subsByEvent[eventType])
	return out, nil
}

// Package store persists VRPPD problems, exact-solver solutions, and
// heuristic runs (with their convergence history) so a client can submit
// a problem, kick off a solve, and retrieve or replay the result after
// the originating HTTP request returns.
package store

import (
	"context"
	"errors"
	"time"

	"vrppd/internal/vrp/model"
)

// ErrNotFound is returned by any lookup that finds nothing for the given
// ID, mirroring the teacher's store-wide sentinel.
var ErrNotFound = errors.New("not found")

// RunStatus is a heuristic run's lifecycle stage.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// HeuristicRun is a persisted PSA run: its configuration, current status,
// best solution found so far, and (loaded separately) convergence history.
type HeuristicRun struct {
	ID        string
	ProblemID string
	Objective model.Objective
	Config    model.SAConfig
	Status    RunStatus
	Best      model.ProblemSolution
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ExactSolution is a persisted result of one exact-solver run.
type ExactSolution struct {
	ID        string
	ProblemID string
	Solution  model.AlgorithmSolution
	CreatedAt time.Time
}

// Store is the persistence interface used by the API server.
type Store interface {
	CreateProblem(ctx context.Context, p model.Problem) (id string, createdAt time.Time, err error)
	GetProblem(ctx context.Context, id string) (model.Problem, error)

	SaveExactSolution(ctx context.Context, problemID string, sol model.AlgorithmSolution) (id string, err error)
	GetExactSolution(ctx context.Context, id string) (ExactSolution, error)

	CreateHeuristicRun(ctx context.Context, problemID string, objective model.Objective, cfg model.SAConfig) (id string, err error)
	UpdateHeuristicRunStatus(ctx context.Context, id string, status RunStatus, errMsg string) error
	SetHeuristicRunResult(ctx context.Context, id string, best model.ProblemSolution) error
	GetHeuristicRun(ctx context.Context, id string) (HeuristicRun, error)

	AppendHistoryPoint(ctx context.Context, runID string, pt model.ConvergencePoint) error
	ListHistoryPoints(ctx context.Context, runID string) ([]model.ConvergencePoint, error)

	// Webhook deliveries, notified on run completion (internal/webhooks).
	EnqueueWebhook(ctx context.Context, subscriptionID, eventType, url, secret string, payload []byte) (string, error)
	FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error)
	MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error
	FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error

	CreateSubscription(ctx context.Context, eventType, url, secret string) (Subscription, error)
	GetSubscriptionsForEvent(ctx context.Context, eventType string) ([]Subscription, error)
}

// Subscription is a webhook subscriber for a given event type
// ("run.completed" is currently the only event this service emits).
type Subscription struct {
	ID        string
	EventType string
	URL       string
	Secret    string
}

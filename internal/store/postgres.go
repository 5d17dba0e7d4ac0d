package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/google/uuid"

	"vrppd/internal/vrp/model"
)

// Postgres is the durable Store backend, wrapping database/sql with the
// pgx stdlib driver exactly as the teacher does.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("store: ping postgres: %w", err)
	}
	return &Postgres{db: db}, nil
}

// Ping verifies connectivity, used by health checks and integration tests.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// MigrateDir executes every *.sql file in dir in lexical order, each as a
// single Exec with no enclosing transaction. It is idempotent as long as
// the migration files themselves use `IF NOT EXISTS` guards, which
// db/migrations does.
func (p *Postgres) MigrateDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("store: read migrations dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("store: read migration %s: %w", name, err)
		}
		if _, err := p.db.Exec(string(body)); err != nil {
			return fmt.Errorf("store: apply migration %s: %w", name, err)
		}
	}
	return nil
}

func (p *Postgres) CreateProblem(ctx context.Context, prob model.Problem) (string, time.Time, error) {
	id := fmt.Sprintf("prob_%s", uuid.New())
	payload, err := json.Marshal(prob)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("store: marshal problem: %w", err)
	}
	now := time.Now().UTC()
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO problems (id, payload, created_at) VALUES ($1, $2, $3)`,
		id, payload, now)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("store: insert problem: %w", err)
	}
	return id, now, nil
}

func (p *Postgres) GetProblem(ctx context.Context, id string) (model.Problem, error) {
	var payload []byte
	err := p.db.QueryRowContext(ctx, `SELECT payload FROM problems WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Problem{}, ErrNotFound
	}
	if err != nil {
		return model.Problem{}, fmt.Errorf("store: select problem: %w", err)
	}
	var prob model.Problem
	if err := json.Unmarshal(payload, &prob); err != nil {
		return model.Problem{}, fmt.Errorf("store: unmarshal problem: %w", err)
	}
	return prob, nil
}

func (p *Postgres) SaveExactSolution(ctx context.Context, problemID string, sol model.AlgorithmSolution) (string, error) {
	id := fmt.Sprintf("exact_%s", uuid.New())
	payload, err := json.Marshal(sol)
	if err != nil {
		return "", fmt.Errorf("store: marshal exact solution: %w", err)
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO exact_solutions (id, problem_id, payload, created_at) VALUES ($1, $2, $3, $4)`,
		id, problemID, payload, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("store: insert exact solution: %w", err)
	}
	return id, nil
}

func (p *Postgres) GetExactSolution(ctx context.Context, id string) (ExactSolution, error) {
	var problemID string
	var payload []byte
	var createdAt time.Time
	err := p.db.QueryRowContext(ctx,
		`SELECT problem_id, payload, created_at FROM exact_solutions WHERE id = $1`, id,
	).Scan(&problemID, &payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ExactSolution{}, ErrNotFound
	}
	if err != nil {
		return ExactSolution{}, fmt.Errorf("store: select exact solution: %w", err)
	}
	var sol model.AlgorithmSolution
	if err := json.Unmarshal(payload, &sol); err != nil {
		return ExactSolution{}, fmt.Errorf("store: unmarshal exact solution: %w", err)
	}
	return ExactSolution{ID: id, ProblemID: problemID, Solution: sol, CreatedAt: createdAt}, nil
}

func (p *Postgres) CreateHeuristicRun(ctx context.Context, problemID string, objective model.Objective, cfg model.SAConfig) (string, error) {
	id := fmt.Sprintf("run_%s", uuid.New())
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("store: marshal sa config: %w", err)
	}
	now := time.Now().UTC()
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO heuristic_runs (id, problem_id, objective, config, status, best, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		id, problemID, string(objective), cfgJSON, string(RunPending), []byte("null"), now)
	if err != nil {
		return "", fmt.Errorf("store: insert heuristic run: %w", err)
	}
	return id, nil
}

func (p *Postgres) UpdateHeuristicRunStatus(ctx context.Context, id string, status RunStatus, errMsg string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE heuristic_runs SET status=$1, error=$2, updated_at=$3 WHERE id=$4`,
		string(status), errMsg, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("store: update heuristic run status: %w", err)
	}
	return checkAffected(res)
}

func (p *Postgres) SetHeuristicRunResult(ctx context.Context, id string, best model.ProblemSolution) error {
	payload, err := json.Marshal(best)
	if err != nil {
		return fmt.Errorf("store: marshal heuristic result: %w", err)
	}
	res, err := p.db.ExecContext(ctx,
		`UPDATE heuristic_runs SET best=$1, updated_at=$2 WHERE id=$3`,
		payload, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("store: update heuristic run result: %w", err)
	}
	return checkAffected(res)
}

func (p *Postgres) GetHeuristicRun(ctx context.Context, id string) (HeuristicRun, error) {
	var run HeuristicRun
	var objective, status, errMsg string
	var cfgJSON, bestJSON []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT problem_id, objective, config, status, best, COALESCE(error,''), created_at, updated_at
		 FROM heuristic_runs WHERE id = $1`, id,
	).Scan(&run.ProblemID, &objective, &cfgJSON, &status, &bestJSON, &errMsg, &run.CreatedAt, &run.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return HeuristicRun{}, ErrNotFound
	}
	if err != nil {
		return HeuristicRun{}, fmt.Errorf("store: select heuristic run: %w", err)
	}
	run.ID = id
	run.Objective = model.Objective(objective)
	run.Status = RunStatus(status)
	run.Error = errMsg
	if err := json.Unmarshal(cfgJSON, &run.Config); err != nil {
		return HeuristicRun{}, fmt.Errorf("store: unmarshal sa config: %w", err)
	}
	if len(bestJSON) > 0 && string(bestJSON) != "null" {
		if err := json.Unmarshal(bestJSON, &run.Best); err != nil {
			return HeuristicRun{}, fmt.Errorf("store: unmarshal heuristic result: %w", err)
		}
	}
	return run, nil
}

func (p *Postgres) AppendHistoryPoint(ctx context.Context, runID string, pt model.ConvergencePoint) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO heuristic_history_points (run_id, elapsed_ms, iteration, total_distance, total_price, empty_distance)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		runID, pt.ElapsedMs, pt.Iteration, pt.TotalDistance, pt.TotalPrice, pt.EmptyDistance)
	if err != nil {
		return fmt.Errorf("store: insert history point: %w", err)
	}
	return nil
}

func (p *Postgres) ListHistoryPoints(ctx context.Context, runID string) ([]model.ConvergencePoint, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT elapsed_ms, iteration, total_distance, total_price, empty_distance
		 FROM heuristic_history_points WHERE run_id = $1 ORDER BY id ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("store: select history points: %w", err)
	}
	defer rows.Close()

	var out []model.ConvergencePoint
	for rows.Next() {
		var pt model.ConvergencePoint
		if err := rows.Scan(&pt.ElapsedMs, &pt.Iteration, &pt.TotalDistance, &pt.TotalPrice, &pt.EmptyDistance); err != nil {
			return nil, fmt.Errorf("store: scan history point: %w", err)
		}
		out = append(out, pt)
	}
	return out, rows.Err()
}

func (p *Postgres) EnqueueWebhook(ctx context.Context, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
	id := fmt.Sprintf("whd_%s", uuid.New())
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO webhook_deliveries (id, subscription_id, event_type, url, secret, payload, status, attempts, next_attempt_at)
		 VALUES ($1, $2, $3, $4, $5, $6, 'pending', 0, $7)`,
		id, subscriptionID, eventType, url, secret, payload, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("store: enqueue webhook: %w", err)
	}
	return id, nil
}

func (p *Postgres) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, subscription_id, event_type, url, secret, payload, status, attempts
		 FROM webhook_deliveries WHERE status = 'pending' AND next_attempt_at <= $1
		 ORDER BY next_attempt_at ASC LIMIT $2`, time.Now().UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("store: select due deliveries: %w", err)
	}
	defer rows.Close()

	var out []WebhookDelivery
	for rows.Next() {
		var d WebhookDelivery
		if err := rows.Scan(&d.ID, &d.SubscriptionID, &d.EventType, &d.URL, &d.Secret, &d.Payload, &d.Status, &d.Attempts); err != nil {
			return nil, fmt.Errorf("store: scan delivery: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *Postgres) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
	status := "pending"
	if success {
		status = "delivered"
	}
	_, err := p.db.ExecContext(ctx,
		`UPDATE webhook_deliveries SET status=$1, attempts=attempts+1, last_error=$2, response_code=$3, latency_ms=$4, next_attempt_at=COALESCE($5, next_attempt_at)
		 WHERE id=$6`,
		status, lastError, responseCode, latencyMs, nextAttemptAt, id)
	if err != nil {
		return fmt.Errorf("store: mark delivery: %w", err)
	}
	return nil
}

func (p *Postgres) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE webhook_deliveries SET status='failed', attempts=attempts+1, last_error=$1, response_code=$2, latency_ms=$3 WHERE id=$4`,
		lastError, responseCode, latencyMs, id)
	if err != nil {
		return fmt.Errorf("store: fail delivery: %w", err)
	}
	return nil
}

func (p *Postgres) CreateSubscription(ctx context.Context, eventType, url, secret string) (Subscription, error) {
	sub := Subscription{ID: fmt.Sprintf("sub_%s", uuid.New()), EventType: eventType, URL: url, Secret: secret}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO webhook_subscriptions (id, event_type, url, secret) VALUES ($1, $2, $3, $4)`,
		sub.ID, sub.EventType, sub.URL, sub.Secret)
	if err != nil {
		return Subscription{}, fmt.Errorf("store: insert subscription: %w", err)
	}
	return sub, nil
}

func (p *Postgres) GetSubscriptionsForEvent(ctx context.Context, eventType string) ([]Subscription, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, event_type, url, secret FROM webhook_subscriptions WHERE event_type = $1`, eventType)
	if err != nil {
		return nil, fmt.Errorf("store: select subscriptions: %w", err)
	}
	defer rows.Close()

	var out []Subscription
	for rows.Next() {
		var s Subscription
		if err := rows.Scan(&s.ID, &s.EventType, &s.URL, &s.Secret); err != nil {
			return nil, fmt.Errorf("store: scan subscription: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

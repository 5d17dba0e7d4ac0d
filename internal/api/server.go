// Package api implements the VRPPD HTTP surface: submitting problems,
// running the exact and heuristic solvers, and streaming convergence
// progress over SSE and websockets.
package api

import (
	"context"
	"net/http"
	"runtime"
	"strings"

	"vrppd/internal/auth"
	"vrppd/internal/config"
	"vrppd/internal/store"
	"vrppd/internal/webhooks"

	"golang.org/x/time/rate"
)

// Server holds every dependency an HTTP handler needs.
type Server struct {
	Store     store.Store
	Pub       *webhooks.Publisher
	Auth      *auth.Verifier
	Broker    EventBroker
	Cfg       config.Config
	DistCache *store.RedisDistanceCache
	limiter   *tenantLimiters
}

// NewServer builds a Server from config.Load, selecting Postgres over the
// in-memory store when a DSN is configured, and the Redis broker over the
// in-process one when a Redis URL is configured.
func NewServer() (*Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	var s store.Store
	if strings.TrimSpace(cfg.DatabaseDSN) == "" {
		s = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		_ = sp.MigrateDir("db/migrations")
		s = sp
	}

	var broker EventBroker
	var distCache *store.RedisDistanceCache
	if strings.TrimSpace(cfg.RedisURL) != "" {
		if rb, err := NewRedisBroker(cfg.RedisURL); err == nil {
			broker = rb
		} else {
			broker = NewBroker()
		}
		if dc, err := store.NewRedisDistanceCache(cfg.RedisURL); err == nil {
			distCache = dc
		}
	} else {
		broker = NewBroker()
	}

	return &Server{
		Store:     s,
		Pub:       webhooks.NewPublisher(s),
		Auth:      auth.NewVerifierFromEnv(),
		Broker:    broker,
		Cfg:       cfg,
		DistCache: distCache,
		limiter:   newTenantLimiters(rate.Limit(1), 3),
	}, nil
}

func (s *Server) withTenant(r *http.Request) (context.Context, string) {
	p := s.getPrincipal(r)
	ctx := context.WithValue(r.Context(), ctxKeyTenant{}, p.Tenant)
	return ctx, p.Tenant
}

type ctxKeyTenant struct{}

// NewWebhookWorker creates a background worker for webhook deliveries.
func (s *Server) NewWebhookWorker() *webhooks.Worker {
	return webhooks.NewWorker(s.Store)
}

// solverWorkerCount reports how many PSA ring workers a heuristic solve
// should launch: W = max(2, availableParallelism) (spec.md §4.3 item 3),
// with config.WorkerCount overriding the availableParallelism default when
// set, but never below the floor of 2.
func (s *Server) solverWorkerCount() int {
	w := s.Cfg.WorkerCount
	if w <= 0 {
		w = runtime.NumCPU()
	}
	if w < 2 {
		w = 2
	}
	return w
}

package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"vrppd/internal/metrics"
	"vrppd/internal/store"
	"vrppd/internal/vrp/distance"
	"vrppd/internal/vrp/exact"
	"vrppd/internal/vrp/model"
	"vrppd/internal/vrp/psa"
)

// distanceFunc resolves the "distance" query parameter to a distance.Func,
// defaulting to great-circle since Location carries lat/lng, not planar
// coordinates.
func distanceFunc(r *http.Request) distance.Func {
	switch strings.ToLower(r.URL.Query().Get("distance")) {
	case "euclidean":
		return distance.Euclidean
	default:
		return distance.GreatCircle
	}
}

// distanceName labels a distance.Func for distance-matrix cache keys; it must
// stay in sync with distanceFunc's own switch.
func distanceName(r *http.Request) string {
	if strings.ToLower(r.URL.Query().Get("distance")) == "euclidean" {
		return "euclidean"
	}
	return "haversine"
}

// matricesFor resolves p's distance matrices, consulting the Redis
// distance-matrix cache first when one is configured so repeated solves of
// the same problem skip the O(orders^2) rebuild. A cache miss (or no cache
// configured) falls back to building the matrices directly and, on a miss,
// populates the cache for next time.
func (s *Server) matricesFor(ctx context.Context, p model.Problem, dist distance.Func, distName string) distance.Matrices {
	if s.DistCache == nil {
		return distance.Build(p, dist)
	}
	key := store.Key(p, distName)
	if m, ok, err := s.DistCache.Get(ctx, key); err == nil && ok {
		return m
	}
	m := distance.Build(p, dist)
	_ = s.DistCache.Set(ctx, key, m)
	return m
}

// ProblemsHandler handles POST /v1/problems.
func (s *Server) ProblemsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeProblem(w, http.StatusMethodNotAllowed, "Method not allowed", "", r.URL.Path)
		return
	}
	var p model.Problem
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateProblem(&p); err != nil {
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid problem", err.Error(), r.URL.Path)
		return
	}
	id, createdAt, err := s.Store.CreateProblem(r.Context(), p)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Create problem failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "createdAt": createdAt.UTC().Format(time.RFC3339)})
}

// ProblemByIDHandler handles GET /v1/problems/{id} and the two solve
// sub-routes, dispatching on the trailing path segments the way the
// teacher's RouteByIDHandler dispatches /assign, /advance, /events/stream.
func (s *Server) ProblemByIDHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/problems/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	id := parts[0]
	if id == "" {
		writeProblem(w, http.StatusNotFound, "Not found", "", r.URL.Path)
		return
	}

	switch {
	case len(parts) == 1:
		s.getProblem(w, r, id)
	case len(parts) == 3 && parts[1] == "solve" && parts[2] == "exact":
		s.solveExact(w, r, id)
	case len(parts) == 3 && parts[1] == "solve" && parts[2] == "heuristic":
		s.solveHeuristic(w, r, id)
	default:
		writeProblem(w, http.StatusNotFound, "Not found", "", r.URL.Path)
	}
}

func (s *Server) getProblem(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeProblem(w, http.StatusMethodNotAllowed, "Method not allowed", "", r.URL.Path)
		return
	}
	p, err := s.Store.GetProblem(r.Context(), id)
	if err != nil {
		s.writeStoreErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) solveExact(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeProblem(w, http.StatusMethodNotAllowed, "Method not allowed", "", r.URL.Path)
		return
	}
	p, err := s.Store.GetProblem(r.Context(), id)
	if err != nil {
		s.writeStoreErr(w, r, err)
		return
	}

	requested := r.URL.Query().Get("objective")
	if requested != "" {
		if err := validateObjective(model.Objective(strings.ToUpper(requested))); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid objective", err.Error(), r.URL.Path)
			return
		}
	}

	start := time.Now()
	m := s.matricesFor(r.Context(), p, distanceFunc(r), distanceName(r))
	sol, err := exact.SolveWithMatrices(p, m)
	metrics.SolveDuration.WithLabelValues("exact", strings.ToLower(requested)).Observe(time.Since(start).Seconds())
	if err != nil {
		if _, ok := err.(*exact.ProblemTooLarge); ok {
			writeProblem(w, http.StatusUnprocessableEntity, "Problem too large for exact solver", err.Error(), r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Exact solve failed", err.Error(), r.URL.Path)
		return
	}

	solID, err := s.Store.SaveExactSolution(r.Context(), id, sol)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Persist solution failed", err.Error(), r.URL.Path)
		return
	}

	if requested == "" {
		writeJSON(w, http.StatusOK, map[string]any{"id": solID, "solution": sol})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": solID, "objective": strings.ToUpper(requested), "solution": objectiveSolution(sol, model.Objective(strings.ToUpper(requested)))})
}

func objectiveSolution(sol model.AlgorithmSolution, o model.Objective) model.ProblemSolution {
	switch o {
	case model.ObjectivePrice:
		return sol.BestPriceSolution
	case model.ObjectiveEmpty:
		return sol.BestEmptySolution
	default:
		return sol.BestDistanceSolution
	}
}

type solveHeuristicRequest struct {
	Objective model.Objective `json:"objective"`
	SAConfig  *model.SAConfig `json:"saConfig"`
}

func (s *Server) solveHeuristic(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeProblem(w, http.StatusMethodNotAllowed, "Method not allowed", "", r.URL.Path)
		return
	}
	_, tenant := s.withTenant(r)
	if !s.limiter.Allow(tenant) {
		writeProblem(w, http.StatusTooManyRequests, "Rate limit exceeded", "too many heuristic solve requests", r.URL.Path)
		return
	}

	p, err := s.Store.GetProblem(r.Context(), id)
	if err != nil {
		s.writeStoreErr(w, r, err)
		return
	}

	var req solveHeuristicRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Objective == "" {
		req.Objective = model.ObjectiveDistance
	}
	if err := validateObjective(req.Objective); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid objective", err.Error(), r.URL.Path)
		return
	}
	cfg := s.Cfg.SAConfig
	if req.SAConfig != nil {
		cfg = *req.SAConfig
	}
	if err := validateSAConfig(&cfg); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid saConfig", err.Error(), r.URL.Path)
		return
	}

	runID, err := s.Store.CreateHeuristicRun(r.Context(), id, req.Objective, cfg)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Create run failed", err.Error(), r.URL.Path)
		return
	}

	dist := distanceFunc(r)
	distName := distanceName(r)
	workers := s.solverWorkerCount()
	go s.runHeuristic(runID, id, p, dist, distName, req.Objective, cfg, workers)

	writeJSON(w, http.StatusAccepted, map[string]any{"runId": runID, "status": string(store.RunRunning)})
}

// runHeuristic drives one PSA coordinator run to completion, streaming
// convergence points to the broker and appending them to the store as they
// arrive, then persisting the final result and firing the run.completed
// webhook.
func (s *Server) runHeuristic(runID, problemID string, p model.Problem, dist distance.Func, distName string, objective model.Objective, cfg model.SAConfig, workers int) {
	ctx := context.Background()
	_ = s.Store.UpdateHeuristicRunStatus(ctx, runID, store.RunRunning, "")

	start := time.Now()
	seed := start.UnixNano()
	m := s.matricesFor(ctx, p, dist, distName)
	result, err := psa.RunWithMatrices(ctx, p, m, objective, cfg, workers, seed, func(pt model.ConvergencePoint) {
		_ = s.Store.AppendHistoryPoint(ctx, runID, pt)
		metrics.HeuristicIterationsTotal.WithLabelValues(runID).Inc()
		s.Broker.Publish(runID, SSEEvent{Type: "convergence", Data: map[string]any{
			"timeMs":        pt.ElapsedMs,
			"iteration":     pt.Iteration,
			"totalDistance": pt.TotalDistance,
			"totalPrice":    pt.TotalPrice,
			"emptyDistance": pt.EmptyDistance,
		}})
	})
	metrics.SolveDuration.WithLabelValues("heuristic", strings.ToLower(string(objective))).Observe(time.Since(start).Seconds())

	if err != nil {
		_ = s.Store.UpdateHeuristicRunStatus(ctx, runID, store.RunFailed, err.Error())
		s.Broker.Publish(runID, SSEEvent{Type: "run.failed", Data: map[string]any{"error": err.Error()}})
		return
	}

	_ = s.Store.SetHeuristicRunResult(ctx, runID, result.Best)
	_ = s.Store.UpdateHeuristicRunStatus(ctx, runID, store.RunCompleted, "")
	s.Broker.Publish(runID, SSEEvent{Type: "run.completed", Data: map[string]any{
		"runId":         runID,
		"totalDistance": result.Best.TotalDistance,
		"totalPrice":    result.Best.TotalPrice,
		"emptyDistance": result.Best.EmptyDistance,
	}})
	if s.Pub != nil {
		s.Pub.Emit(ctx, "run.completed", map[string]any{"runId": runID, "problemId": problemID})
	}
}

// RunByIDHandler handles GET /v1/runs/{id} and its two event-stream
// sub-routes.
func (s *Server) RunByIDHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/runs/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	id := parts[0]
	if id == "" {
		writeProblem(w, http.StatusNotFound, "Not found", "", r.URL.Path)
		return
	}

	switch {
	case len(parts) == 1:
		s.getRun(w, r, id)
	case len(parts) == 3 && parts[1] == "events" && parts[2] == "stream":
		s.streamRunEventsSSE(w, r, id)
	case len(parts) == 3 && parts[1] == "events" && parts[2] == "ws":
		s.RunEventsWSHandler(w, r, id)
	default:
		writeProblem(w, http.StatusNotFound, "Not found", "", r.URL.Path)
	}
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeProblem(w, http.StatusMethodNotAllowed, "Method not allowed", "", r.URL.Path)
		return
	}
	run, err := s.Store.GetHeuristicRun(r.Context(), id)
	if err != nil {
		s.writeStoreErr(w, r, err)
		return
	}
	history, err := s.Store.ListHistoryPoints(r.Context(), id)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List history failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":        run.ID,
		"problemId": run.ProblemID,
		"objective": run.Objective,
		"status":    run.Status,
		"solution":  run.Best,
		"history":   history,
		"error":     run.Error,
	})
}

func (s *Server) streamRunEventsSSE(w http.ResponseWriter, r *http.Request, id string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "Streaming unsupported", "", r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := s.Broker.Subscribe(id)
	defer s.Broker.Unsubscribe(id, ch)

	bw := bufio.NewWriter(w)
	for {
		select {
		case <-r.Context().Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(evt.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(bw, "event: %s\ndata: %s\n\n", evt.Type, data)
			bw.Flush()
			flusher.Flush()
			if evt.Type == "run.completed" || evt.Type == "run.failed" {
				return
			}
		}
	}
}

func (s *Server) writeStoreErr(w http.ResponseWriter, r *http.Request, err error) {
	if err == store.ErrNotFound {
		writeProblem(w, http.StatusNotFound, "Not found", "", r.URL.Path)
		return
	}
	writeProblem(w, http.StatusInternalServerError, "Store error", err.Error(), r.URL.Path)
}

// HealthHandler answers GET /healthz.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// ReadyHandler answers GET /readyz: ok once the store responds.
func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	type pinger interface{ Ping(context.Context) error }
	if p, ok := s.Store.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			writeProblem(w, http.StatusServiceUnavailable, "Not ready", err.Error(), r.URL.Path)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

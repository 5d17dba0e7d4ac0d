// Package psa implements the Parallel Simulated Annealing heuristic
// engine (spec.md §5): a ring of independently annealing workers seeded
// by RCRS, exchanging beneficial solutions with their ring successor and
// periodically reporting to a coordinator that owns the global best and
// the run's convergence history.
package psa

import (
	"context"
	"math"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"vrppd/internal/vrp/distance"
	"vrppd/internal/vrp/model"
	"vrppd/internal/vrp/rcrs"
)

// Result is the outcome of a full PSA run: the best solution found across
// every worker plus the convergence history sampled at each worker's
// sync interval, in the order reports were received.
type Result struct {
	Best    model.ProblemSolution
	History []model.ConvergencePoint
}

// ProgressFunc is invoked once per SYNC_REPORT or DONE message the
// coordinator receives, letting callers (e.g. the HTTP layer's SSE
// broker) stream convergence points live rather than waiting for Run to
// return.
type ProgressFunc func(model.ConvergencePoint)

// Run seeds workerCount workers with independent RCRS constructions,
// arranges them in a ring (worker i forwards improvements to i+1; the
// last worker does not forward), and drives them to completion. It
// returns the best solution any worker found, plus the ordered
// convergence history. If ctx is cancelled, or any worker's goroutine
// panics via a returned error, Run returns that error and stops every
// worker.
func Run(ctx context.Context, p model.Problem, dist distance.Func, objective model.Objective, cfg model.SAConfig, workerCount int, seed int64, onProgress ProgressFunc) (Result, error) {
	return RunWithMatrices(ctx, p, distance.Build(p, dist), objective, cfg, workerCount, seed, onProgress)
}

// RunWithMatrices is Run for a caller that already has the problem's
// distance matrices on hand (e.g. internal/store.RedisDistanceCache),
// skipping the O(orders^2) rebuild Run would otherwise do.
func RunWithMatrices(ctx context.Context, p model.Problem, m distance.Matrices, objective model.Objective, cfg model.SAConfig, workerCount int, seed int64, onProgress ProgressFunc) (Result, error) {
	if workerCount < 2 {
		workerCount = 2
	}

	inboxes := make([]chan WorkerMessage, workerCount)
	for i := range inboxes {
		inboxes[i] = make(chan WorkerMessage, workerCount)
	}
	syncCh := make(chan WorkerMessage, workerCount*4)

	workers := make([]*worker, workerCount)
	for i := 0; i < workerCount; i++ {
		rng := rand.New(rand.NewSource(seed + int64(i)))
		initial := rcrs.Build(p, m, objective, rng)

		var next chan<- WorkerMessage
		if i < workerCount-1 {
			next = inboxes[i+1]
		}
		workers[i] = newWorker(i, p, m, objective, cfg, seed+int64(i)*7919, initial, inboxes[i], next, syncCh)
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range workers {
		w := w
		g.Go(func() error { return w.run(gctx) })
	}

	result := Result{Best: model.ProblemSolution{Routes: map[int]model.VehicleRoute{}}}
	bestE := math.Inf(1)
	remaining := workerCount

	for remaining > 0 {
		msg := <-syncCh
		if len(msg.Solution.Routes) > 0 {
			point := model.ConvergencePoint{
				ElapsedMs:     time.Since(start).Milliseconds(),
				Iteration:     msg.Iteration,
				TotalDistance: msg.Solution.TotalDistance,
				TotalPrice:    msg.Solution.TotalPrice,
				EmptyDistance: msg.Solution.EmptyDistance,
			}
			result.History = append(result.History, point)
			if onProgress != nil {
				onProgress(point)
			}
			if msg.Energy < bestE {
				bestE = msg.Energy
				result.Best = msg.Solution
			}
		}
		if msg.Type == Done {
			remaining--
		}
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}

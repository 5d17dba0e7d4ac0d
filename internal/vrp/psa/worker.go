package psa

import (
	"context"
	"math"
	"math/rand"

	vrpconstraint "vrppd/internal/vrp/constraint"
	"vrppd/internal/vrp/distance"
	"vrppd/internal/vrp/model"
)

// workerState is a PSA worker's lifecycle stage (spec.md §5.2).
type workerState int

const (
	stateUninitialized workerState = iota
	stateRunning
	stateTerminated
)

// reheatFloor is the minimum temperature a worker reheats to on adopting
// a beneficial influence from its ring predecessor (spec.md §5.4).
const reheatFloor = 50.0

// worker runs one independent simulated-annealing search over batches of
// iterations, periodically reporting to the coordinator and exchanging
// influence with its ring neighbor.
type worker struct {
	id         int
	problem    model.Problem
	m          distance.Matrices
	idx        vrpconstraint.OrderIndex
	objective  model.Objective
	cfg        model.SAConfig
	rng        *rand.Rand
	state      workerState

	current     model.ProblemSolution
	currentE    float64
	best        model.ProblemSolution
	bestE       float64
	temperature float64

	// forwardedE is the energy of the best solution last offered to the
	// next ring member; improvedSinceLastForward compares against it so
	// the same improvement is never forwarded twice.
	forwardedE float64

	inbox chan WorkerMessage // influence offered by the previous ring member
	next  chan<- WorkerMessage // forwarding channel to the next ring member (nil for the last worker)
	sync  chan<- WorkerMessage // reports to the coordinator
}

func newWorker(id int, p model.Problem, m distance.Matrices, objective model.Objective, cfg model.SAConfig, seed int64, initial model.ProblemSolution, inbox chan WorkerMessage, next, sync chan<- WorkerMessage) *worker {
	e, _ := objective.Metric(initial.TotalDistance, initial.EmptyDistance, initial.TotalPrice)
	return &worker{
		id:          id,
		problem:     p,
		m:           m,
		idx:         vrpconstraint.BuildOrderIndex(p),
		objective:   objective,
		cfg:         cfg,
		rng:         rand.New(rand.NewSource(seed)),
		state:       stateUninitialized,
		current:     initial,
		currentE:    e,
		best:        initial,
		bestE:       e,
		temperature: cfg.InitialTemp,
		forwardedE:  math.Inf(1),
		inbox:       inbox,
		next:        next,
		sync:        sync,
	}
}

// run executes the worker's full search: batches of BatchSize iterations,
// each followed by draining any pending influence from the ring and, on
// the SyncInterval cadence described below, sending a SYNC_REPORT to the
// coordinator, until MaxIterations is
// reached, the temperature cools below MinTemp, or ctx is cancelled
// (spec.md §4.4's "while iterationCount < maxIterations AND temperature
// >= minTemp"). Cooling is unconditional every iteration; the loop, not
// the multiplication, is what stops the temperature going lower.
func (w *worker) run(ctx context.Context) error {
	w.state = stateRunning
	iteration := 0

	for iteration < w.cfg.MaxIterations && w.temperature >= w.cfg.MinTemp {
		select {
		case <-ctx.Done():
			w.state = stateTerminated
			w.sync <- WorkerMessage{Type: Done, WorkerID: w.id, Iteration: iteration}
			return ctx.Err()
		default:
		}

		batchEnd := iteration + w.cfg.BatchSize
		if batchEnd > w.cfg.MaxIterations {
			batchEnd = w.cfg.MaxIterations
		}
		for ; iteration < batchEnd && w.temperature >= w.cfg.MinTemp; iteration++ {
			w.step()
			w.temperature *= w.cfg.CoolingRate
		}

		w.drainInfluence()

		if w.next != nil && w.improvedSinceLastForward() {
			// Best-effort: a full inbox means the downstream worker has
			// already terminated and stopped draining it, so dropping the
			// influence (rather than blocking forever) is spec-legal.
			select {
			case w.next <- WorkerMessage{
				Type:        InfluenceUpdate,
				WorkerID:    w.id,
				Iteration:   iteration,
				Solution:    w.best,
				Energy:      w.bestE,
				Temperature: w.temperature,
			}:
			default:
			}
		}

		// SyncInterval counts iterations, not batches (spec.md §4.4's
		// wording notwithstanding); the two only coincide by convention
		// because the default config makes SyncInterval a multiple of
		// BatchSize. The temperature check guarantees a final report is
		// sent even when the anneal cools out mid-batch, off that cadence.
		if iteration%w.cfg.SyncInterval == 0 || iteration >= w.cfg.MaxIterations || w.temperature < w.cfg.MinTemp {
			w.sync <- WorkerMessage{
				Type:        SyncReport,
				WorkerID:    w.id,
				Iteration:   iteration,
				Solution:    w.best,
				Energy:      w.bestE,
				Temperature: w.temperature,
			}
		}
	}

	w.state = stateTerminated
	w.sync <- WorkerMessage{Type: Done, WorkerID: w.id, Iteration: iteration, Solution: w.best, Energy: w.bestE}
	return nil
}

// improvedSinceLastForward reports whether the worker's best has improved
// since the last solution it offered to the next ring member.
func (w *worker) improvedSinceLastForward() bool {
	if w.bestE < w.forwardedE {
		w.forwardedE = w.bestE
		return true
	}
	return false
}

// step proposes one neighbor via a weighted-random operator and applies
// the Metropolis acceptance criterion, updating current/best state.
// Acceptance is judged purely on the run's objective metric; a route
// that pushes total distance past Constraints.MaxTotalDistance is not
// separately penalized here (only capacity is enforced, via
// constraint.Simulate inside each operator).
func (w *worker) step() {
	op := pickOperator(w.cfg.Weights, w.rng)
	candidate, ok := op(w.problem, w.current, w.m, w.idx, w.rng)
	if !ok {
		return
	}
	e, err := w.objective.Metric(candidate.TotalDistance, candidate.EmptyDistance, candidate.TotalPrice)
	if err != nil {
		return
	}

	if w.accept(e) {
		w.current = candidate
		w.currentE = e
		if e < w.bestE {
			w.best = candidate
			w.bestE = e
		}
	}
}

// accept applies the Metropolis criterion: always accept an improving
// move, otherwise accept with probability exp(-(e-current)/T).
func (w *worker) accept(candidateE float64) bool {
	if candidateE <= w.currentE {
		return true
	}
	if w.temperature <= 0 {
		return false
	}
	delta := candidateE - w.currentE
	p := math.Exp(-delta / w.temperature)
	return w.rng.Float64() < p
}

// drainInfluence consumes every pending influence message from the ring
// predecessor without blocking, adopting one if it beats this worker's
// current solution and reheating to counter the temperature having
// already cooled (spec.md §5.4). An adopted solution is immediately
// perturbed by one operator mutation before it can become the worker's
// best, so identical solutions don't clone unmutated around the ring;
// if the drawn operator finds no applicable move, the adopted solution is
// kept unmutated.
func (w *worker) drainInfluence() {
	for {
		select {
		case msg := <-w.inbox:
			if msg.Energy < w.currentE {
				w.current = msg.Solution
				w.currentE = msg.Energy
				w.temperature = math.Max(w.temperature, reheatFloor)

				if mutated, ok := pickOperator(w.cfg.Weights, w.rng)(w.problem, w.current, w.m, w.idx, w.rng); ok {
					if e, err := w.objective.Metric(mutated.TotalDistance, mutated.EmptyDistance, mutated.TotalPrice); err == nil {
						w.current = mutated
						w.currentE = e
					}
				}
				if w.currentE < w.bestE {
					w.best = w.current
					w.bestE = w.currentE
				}
			}
		default:
			return
		}
	}
}

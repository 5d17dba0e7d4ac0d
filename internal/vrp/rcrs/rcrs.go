// Package rcrs implements the Residual-Capacity/Radial-Surcharge greedy
// constructive initializer (spec.md §4.2): a randomized cheapest-insertion
// heuristic used to seed the PSA engine.
package rcrs

import (
	"math/rand"

	"vrppd/internal/vrp/constraint"
	"vrppd/internal/vrp/distance"
	"vrppd/internal/vrp/model"
	"vrppd/internal/vrp/routeops"
)

// emptyBiasWeight is the fixed empirical bias favoring vehicles near the
// pickup when the objective is EMPTY (spec.md §4.2).
const emptyBiasWeight = 0.4

// slot is one candidate insertion point for an order.
type slot struct {
	vehicleIdx int
	pickupPos  int
	deliverPos int
	cost       float64
	route      model.VehicleRoute
}

// Build runs one randomized cheapest-insertion pass over problem's orders
// and returns a feasible (possibly partial, if some orders could not be
// inserted anywhere) ProblemSolution for the given objective. rng governs
// both the shuffle and is the sole source of randomness, so callers
// control determinism and diversity across parallel seeds.
func Build(p model.Problem, m distance.Matrices, objective model.Objective, rng *rand.Rand) model.ProblemSolution {
	sol := model.NewProblemSolution(p)
	idx := constraint.BuildOrderIndex(p)

	order := rng.Perm(len(p.Orders))

	for _, oi := range order {
		o := p.Orders[oi]
		best, ok := bestInsertion(p, sol, m, idx, o, objective)
		if !ok {
			continue // order remains unassigned; solution is still returned.
		}
		vehicle := p.Vehicles[best.vehicleIdx]
		sol.Routes[vehicle.ID] = best.route
	}

	sol.Recompute()
	return sol
}

// bestInsertion evaluates every (vehicle, pickup index, delivery index)
// slot for order o and returns the minimum-cost feasible one.
func bestInsertion(p model.Problem, sol model.ProblemSolution, m distance.Matrices, idx constraint.OrderIndex, o model.Order, objective model.Objective) (slot, bool) {
	var best slot
	found := false

	for vIdx, vehicle := range p.Vehicles {
		current := sol.Routes[vehicle.ID]
		n := len(current.Stops)

		for i := 0; i <= n; i++ {
			for j := i + 1; j <= n+1; j++ {
				candidate := routeops.InsertPickupDelivery(current.Stops, o.ID, i, j)
				route, err := constraint.Simulate(vehicle, vIdx, candidate, p.Orders, idx, m, p.Constraints.MaxTotalDistance)
				if err != nil {
					continue
				}

				cost := insertionCost(current, route, m, vIdx, idx[o.ID], objective)
				if !found || cost < best.cost {
					found = true
					best = slot{vehicleIdx: vIdx, pickupPos: i, deliverPos: j, cost: cost, route: route}
				}
			}
		}
	}

	return best, found
}

// insertionCost scores a candidate insertion for the given objective:
// marginal distance for DISTANCE, marginal price for PRICE, or marginal
// empty distance plus a bias toward vehicles near the pickup for EMPTY.
func insertionCost(before, after model.VehicleRoute, m distance.Matrices, vehicleIdx, orderIdx int, objective model.Objective) float64 {
	switch objective {
	case model.ObjectivePrice:
		return after.TotalPrice - before.TotalPrice
	case model.ObjectiveEmpty:
		deltaEmpty := after.EmptyDistance - before.EmptyDistance
		return deltaEmpty + emptyBiasWeight*m.S[vehicleIdx][orderIdx]
	default:
		return after.TotalDistance - before.TotalDistance
	}
}

// Package exact implements the branch-and-bound vehicle-assignment search
// combined with a memoized held-Karp-style TSP subsolver (spec.md §4.1).
// It produces provably optimal routes for all three objectives
// (distance, price, empty distance) in a single pass over instances of up
// to 7 vehicles by 7 orders.
package exact

import (
	"errors"
	"math"

	"vrppd/internal/vrp/distance"
	"vrppd/internal/vrp/model"
)

var errNoVehicles = errors.New("exact: problem has no vehicles")

// Solve runs the exact branch-and-bound search and returns the optimal
// route set for each of the three objectives simultaneously. It fails
// with *ProblemTooLarge if the instance exceeds the solver's size guard.
func Solve(p model.Problem, dist distance.Func) (model.AlgorithmSolution, error) {
	return SolveWithMatrices(p, distance.Build(p, dist))
}

// SolveWithMatrices is Solve for a caller that already has the problem's
// distance matrices on hand (e.g. internal/store.RedisDistanceCache),
// skipping the O(orders^2) rebuild Solve would otherwise do.
func SolveWithMatrices(p model.Problem, m distance.Matrices) (model.AlgorithmSolution, error) {
	if len(p.Vehicles) > maxVehicles || len(p.Orders) > maxOrders {
		return model.AlgorithmSolution{}, &ProblemTooLarge{Vehicles: len(p.Vehicles), Orders: len(p.Orders)}
	}
	if len(p.Vehicles) == 0 {
		return model.AlgorithmSolution{}, errNoVehicles
	}

	c := newContext(p, m)
	assignments := make([]int, len(p.Vehicles))

	c.solveRecursive(0, 0, 0, 0, 0, assignments)

	return model.AlgorithmSolution{
		BestDistanceSolution: c.reconstruct(c.bestDist, c.bestDistAssign, model.ObjectiveDistance),
		BestPriceSolution:    c.reconstruct(c.bestPrice, c.bestPriceAssign, model.ObjectivePrice),
		BestEmptySolution:    c.reconstruct(c.bestEmpty, c.bestEmptyAssign, model.ObjectiveEmpty),
	}, nil
}

// solveRecursive is the outer vehicle-assignment search: at each vehicle
// it enumerates every nonempty subset of the still-unassigned orders
// (via the sub = (sub-1) & remaining identity) plus the option of
// assigning nothing to this vehicle, recursing until every order has
// been assigned to exactly one vehicle.
func (c *context) solveRecursive(vehicleIdx, assignedMask int, curDist, curPrice, curEmpty float64, assignments []int) {
	if curDist >= c.bestDist && curPrice >= c.bestPrice && curEmpty >= c.bestEmpty {
		return
	}

	if assignedMask == c.fullMask {
		if curDist < c.bestDist {
			c.bestDist = curDist
			copy(c.bestDistAssign, assignments)
		}
		if curPrice < c.bestPrice {
			c.bestPrice = curPrice
			copy(c.bestPriceAssign, assignments)
		}
		if curEmpty < c.bestEmpty {
			c.bestEmpty = curEmpty
			copy(c.bestEmptyAssign, assignments)
		}
		return
	}

	if vehicleIdx >= len(c.problem.Vehicles) {
		return
	}

	remaining := c.fullMask ^ assignedMask
	for submask := remaining; submask != 0; submask = (submask - 1) & remaining {
		res := c.solveTSP(vehicleIdx, submask)
		if res.Valid {
			assignments[vehicleIdx] = submask
			c.solveRecursive(vehicleIdx+1, assignedMask|submask,
				curDist+res.MinDistance.TotalDistance,
				curPrice+res.MinPrice.TotalPrice,
				curEmpty+res.MinEmpty.EmptyDistance,
				assignments)
			assignments[vehicleIdx] = 0
		}
	}

	// This vehicle takes no orders.
	c.solveRecursive(vehicleIdx+1, assignedMask, curDist, curPrice, curEmpty, assignments)
}

// reconstruct rebuilds a ProblemSolution from a vehicle-assignment vector
// and the objective whose winning leg should be used for each vehicle's
// route. If bestVal is still infinite, no feasible global assignment
// exists and the sentinel solution (spec.md §8) is returned.
func (c *context) reconstruct(bestVal float64, assignments []int, objective model.Objective) model.ProblemSolution {
	if bestVal >= infinity {
		return model.ProblemSolution{
			Routes:        map[int]model.VehicleRoute{},
			TotalDistance: math.Inf(1),
			EmptyDistance: math.Inf(1),
			TotalPrice:    math.Inf(1),
		}
	}

	sol := model.NewProblemSolution(c.problem)
	for vIdx, mask := range assignments {
		if mask == 0 {
			continue
		}
		res := c.solveTSP(vIdx, mask)
		if !res.Valid {
			continue
		}
		leg := res.legFor(objective)
		vehicle := c.problem.Vehicles[vIdx]
		sol.Routes[vehicle.ID] = model.VehicleRoute{
			Stops:         leg.Stops,
			TotalDistance: leg.TotalDistance,
			EmptyDistance: leg.EmptyDistance,
			TotalPrice:    leg.TotalPrice,
		}
	}
	sol.Recompute()
	return sol
}

func (r tspResult) legFor(objective model.Objective) tspLeg {
	switch objective {
	case model.ObjectivePrice:
		return r.MinPrice
	case model.ObjectiveEmpty:
		return r.MinEmpty
	default:
		return r.MinDistance
	}
}

// Context wraps a standalone solver context whose Reconstruct method
// answers a single (vehicle, order-subset, objective) route lookup
// without running the full branch-and-bound search. It does not share a
// memo with Solve: each Context starts empty and memoizes only the
// subsets it is asked about. It serves callers that need one vehicle's
// route under one objective, such as tests exercising the TSP subsolver
// directly.
type Context struct{ c *context }

// NewContext builds distance matrices and a fresh solver context for p,
// without running the search. Useful for tests and for Reconstruct.
func NewContext(p model.Problem, dist distance.Func) Context {
	return Context{c: newContext(p, distance.Build(p, dist))}
}

// Reconstruct returns vehicleIdx's best route over orderMask under
// objective, computing (and memoizing) it if not already cached. The
// returned bool is false if no feasible ordering of those orders exists.
func (ctx Context) Reconstruct(vehicleIdx, orderMask int, objective model.Objective) (model.VehicleRoute, bool) {
	res := ctx.c.solveTSP(vehicleIdx, orderMask)
	if !res.Valid {
		return model.VehicleRoute{}, false
	}
	leg := res.legFor(objective)
	return model.VehicleRoute{
		Stops:         leg.Stops,
		TotalDistance: leg.TotalDistance,
		EmptyDistance: leg.EmptyDistance,
		TotalPrice:    leg.TotalPrice,
	}, true
}

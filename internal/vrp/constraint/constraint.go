// Package constraint validates candidate routes against the load-capacity
// invariant and computes the aggregate statistics (distance/empty/price)
// for a stop sequence, shared by RCRS and the PSA heuristic's neighborhood
// operators. The exact solver's TSP subsolver does its own load and
// distance bookkeeping and does not use this package.
package constraint

import (
	"errors"
	"fmt"

	"vrppd/internal/vrp/distance"
	"vrppd/internal/vrp/model"
)

// LoadEpsilon is the tolerance used for the "running load <= 1.0"
// feasibility check (spec.md §6).
const LoadEpsilon = 1e-6

// EmptyThreshold is the tolerance below which a vehicle is considered to
// be carrying nothing when deciding whether a leg counts as empty
// distance (spec.md §6). Simulate uses the exact pickedUp==delivered
// bookkeeping instead of this threshold; it is exposed for callers that
// reconstruct emptiness from a running load float rather than from
// stop-set membership. No package in this module currently reads it.
const EmptyThreshold = 0.001

// ErrCapacityExceeded is returned when a prefix of the route would carry
// more than 1.0+LoadEpsilon of normalized load.
var ErrCapacityExceeded = errors.New("constraint: capacity exceeded")

// ErrUnbalancedStops is returned when a stop sequence delivers an order
// that was never picked up, delivers the same order twice, or leaves an
// order picked up but never delivered.
var ErrUnbalancedStops = errors.New("constraint: unbalanced pickup/delivery")

// ErrMaxDistanceExceeded is returned when the route's total distance
// exceeds the problem's maxTotalDistance constraint.
var ErrMaxDistanceExceeded = errors.New("constraint: max total distance exceeded")

// OrderIndex maps order IDs to their index within Problem.Orders, needed
// to look up D/S matrix rows and load factors.
type OrderIndex map[int]int

// BuildOrderIndex indexes a problem's orders by ID.
func BuildOrderIndex(p model.Problem) OrderIndex {
	idx := make(OrderIndex, len(p.Orders))
	for i, o := range p.Orders {
		idx[o.ID] = i
	}
	return idx
}

// Simulate walks a stop sequence for one vehicle and computes its
// aggregate statistics, checking every invariant in spec.md §3 along the
// way. vehicleIdx is the vehicle's position in Problem.Vehicles (its row
// in m.S), not its ID. orders is the problem's full order slice; idx maps
// order IDs to positions in that slice.
func Simulate(vehicle model.Vehicle, vehicleIdx int, stops []model.RouteStop, orders []model.Order, idx OrderIndex, m distance.Matrices, maxTotalDistance float64) (model.VehicleRoute, error) {
	route := model.VehicleRoute{Stops: stops}
	if len(stops) == 0 {
		return route, nil
	}

	load := 0.0
	pickedUp := make(map[int]bool, len(stops)/2)
	delivered := make(map[int]bool, len(stops)/2)
	lastNode := -1

	for _, stop := range stops {
		oIdx, ok := idx[stop.OrderID]
		if !ok {
			return model.VehicleRoute{}, fmt.Errorf("constraint: order %d not present in problem", stop.OrderID)
		}
		orderLoad := orders[oIdx].Load()

		switch stop.Type {
		case model.StopPickup:
			if pickedUp[stop.OrderID] {
				return model.VehicleRoute{}, fmt.Errorf("%w: order %d picked up twice", ErrUnbalancedStops, stop.OrderID)
			}
			var leg float64
			if lastNode < 0 {
				leg = m.S[vehicleIdx][oIdx]
			} else {
				leg = m.D[lastNode][distance.PickupNode(oIdx)]
			}
			wasEmpty := len(pickedUp) == len(delivered)
			if wasEmpty {
				route.EmptyDistance += leg
			}
			route.TotalDistance += leg
			route.TotalPrice += leg * vehicle.PriceKm

			load += orderLoad
			if load > 1+LoadEpsilon {
				return model.VehicleRoute{}, fmt.Errorf("%w: order %d pushes load to %.6f", ErrCapacityExceeded, stop.OrderID, load)
			}
			pickedUp[stop.OrderID] = true
			lastNode = distance.PickupNode(oIdx)

		case model.StopDelivery:
			if !pickedUp[stop.OrderID] {
				return model.VehicleRoute{}, fmt.Errorf("%w: order %d delivered before pickup", ErrUnbalancedStops, stop.OrderID)
			}
			if delivered[stop.OrderID] {
				return model.VehicleRoute{}, fmt.Errorf("%w: order %d delivered twice", ErrUnbalancedStops, stop.OrderID)
			}
			leg := m.D[lastNode][distance.DeliveryNode(oIdx)]
			route.TotalDistance += leg
			route.TotalPrice += leg * vehicle.PriceKm

			load -= orderLoad
			delivered[stop.OrderID] = true
			lastNode = distance.DeliveryNode(oIdx)

		default:
			return model.VehicleRoute{}, fmt.Errorf("constraint: unknown stop type %q", stop.Type)
		}
	}

	for id := range pickedUp {
		if !delivered[id] {
			return model.VehicleRoute{}, fmt.Errorf("%w: order %d picked up but never delivered", ErrUnbalancedStops, id)
		}
	}
	if load > LoadEpsilon {
		return model.VehicleRoute{}, fmt.Errorf("%w: route ends with residual load %.6f", ErrUnbalancedStops, load)
	}
	if maxTotalDistance > 0 && route.TotalDistance > maxTotalDistance {
		return model.VehicleRoute{}, fmt.Errorf("%w: %.3f > %.3f", ErrMaxDistanceExceeded, route.TotalDistance, maxTotalDistance)
	}

	return route, nil
}

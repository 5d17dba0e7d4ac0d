package exact

import "vrppd/internal/vrp/model"

// tspBest tracks the best route found so far under each objective during
// one solveTSP DFS.
type tspBest struct {
	distVal float64
	distLeg tspLeg

	emptyVal float64
	emptyLeg tspLeg

	priceVal float64
	priceLeg tspLeg
}

func newTSPBest() *tspBest {
	return &tspBest{distVal: infinity, emptyVal: infinity, priceVal: infinity}
}

// solveTSP returns the best route for vehicleIdx over exactly the orders
// named by targetMask, one route per objective, memoized on
// (vehicleIdx, targetMask). Valid is false if no ordering of targetMask's
// pickups/deliveries is feasible under the load-capacity constraint and,
// when it is set, the problem's maxTotalDistance.
func (c *context) solveTSP(vehicleIdx, targetMask int) tspResult {
	key := memoKey(vehicleIdx, targetMask)
	if cached, ok := c.memo[key]; ok {
		return cached
	}

	vehicle := c.problem.Vehicles[vehicleIdx]
	best := newTSPBest()
	stack := make([]model.RouteStop, 0, 2*len(c.orders))

	c.dfsTSP(vehicleIdx, vehicle, targetMask, -1, 0, 0, 0, 0, stack, 0, 0, best)

	var result tspResult
	if best.distVal < infinity {
		result = tspResult{
			MinDistance: best.distLeg,
			MinEmpty:    best.emptyLeg,
			MinPrice:    best.priceLeg,
			Valid:       true,
		}
	}
	c.memo[key] = result
	return result
}

// dfsTSP explores every pickup-before-delivery, capacity-respecting
// ordering of targetMask's orders, tracking the best route per objective
// in best. It mirrors the original held-Karp-style recursion: at most one
// of "pick up order o" or "deliver order o" is a legal move from a given
// state, and the recursion bottoms out once every order in targetMask has
// been delivered.
func (c *context) dfsTSP(
	vehicleIdx int,
	vehicle model.Vehicle,
	targetMask int,
	lastNode int,
	curDist, curEmpty, curPrice, curLoad float64,
	stops []model.RouteStop,
	pickedMask, deliveredMask int,
	best *tspBest,
) {
	// Branch-and-bound: prune if this partial route is already no better
	// than the current best in all three objectives simultaneously.
	if curDist >= best.distVal && curEmpty >= best.emptyVal && curPrice >= best.priceVal {
		return
	}
	// Prune any partial route that has already broken the problem's
	// maxTotalDistance constraint; a disabled constraint is 0 (spec.md §8).
	if c.maxTotalDistance > 0 && curDist > c.maxTotalDistance {
		return
	}

	if deliveredMask == targetMask {
		snapshot := append([]model.RouteStop(nil), stops...)
		if curDist < best.distVal {
			best.distVal = curDist
			best.distLeg = tspLeg{Stops: snapshot, TotalDistance: curDist, EmptyDistance: curEmpty, TotalPrice: curPrice}
		}
		if curEmpty < best.emptyVal {
			best.emptyVal = curEmpty
			best.emptyLeg = tspLeg{Stops: snapshot, TotalDistance: curDist, EmptyDistance: curEmpty, TotalPrice: curPrice}
		}
		if curPrice < best.priceVal {
			best.priceVal = curPrice
			best.priceLeg = tspLeg{Stops: snapshot, TotalDistance: curDist, EmptyDistance: curEmpty, TotalPrice: curPrice}
		}
		return
	}

	for oIdx := 0; oIdx < len(c.orders); oIdx++ {
		bit := 1 << oIdx
		if targetMask&bit == 0 {
			continue
		}
		order := c.orders[oIdx]

		if pickedMask&bit == 0 {
			// PICKUP
			loadVal := order.Load()
			if curLoad+loadVal > 1+loadEpsilonExact {
				continue
			}
			var leg float64
			if lastNode < 0 {
				leg = c.m.S[vehicleIdx][oIdx]
			} else {
				leg = c.m.D[lastNode][pickupNode(oIdx)]
			}
			isEmptyLeg := pickedMask == deliveredMask
			addEmpty := 0.0
			if isEmptyLeg {
				addEmpty = leg
			}

			stops = append(stops, model.RouteStop{OrderID: order.ID, Type: model.StopPickup})
			c.dfsTSP(vehicleIdx, vehicle, targetMask, pickupNode(oIdx),
				curDist+leg, curEmpty+addEmpty, curPrice+leg*vehicle.PriceKm, curLoad+loadVal,
				stops, pickedMask|bit, deliveredMask, best)
			stops = stops[:len(stops)-1]

		} else if deliveredMask&bit == 0 {
			// DELIVERY
			loadVal := order.Load()
			leg := c.m.D[lastNode][deliveryNode(oIdx)]

			stops = append(stops, model.RouteStop{OrderID: order.ID, Type: model.StopDelivery})
			c.dfsTSP(vehicleIdx, vehicle, targetMask, deliveryNode(oIdx),
				curDist+leg, curEmpty, curPrice+leg*vehicle.PriceKm, curLoad-loadVal,
				stops, pickedMask, deliveredMask|bit, best)
			stops = stops[:len(stops)-1]
		}
	}
}

const loadEpsilonExact = 1e-6

func pickupNode(orderIdx int) int   { return 2 * orderIdx }
func deliveryNode(orderIdx int) int { return 2*orderIdx + 1 }

// Package routeops holds the small, allocation-heavy stop-list edits
// shared by the RCRS constructive initializer and the PSA neighborhood
// operators: inserting, removing, and reordering pickup/delivery pairs.
package routeops

import "vrppd/internal/vrp/model"

// InsertPickupDelivery returns a new stop slice with orderID's pickup
// inserted at index pickupPos and its delivery inserted at index
// deliverPos, counted in the slice that results after the pickup
// insertion (so deliverPos > pickupPos is required for a well-formed
// insertion, per spec.md §4.4's shift operator).
func InsertPickupDelivery(stops []model.RouteStop, orderID, pickupPos, deliverPos int) []model.RouteStop {
	withPickup := make([]model.RouteStop, 0, len(stops)+2)
	withPickup = append(withPickup, stops[:pickupPos]...)
	withPickup = append(withPickup, model.RouteStop{OrderID: orderID, Type: model.StopPickup})
	withPickup = append(withPickup, stops[pickupPos:]...)

	out := make([]model.RouteStop, 0, len(withPickup)+1)
	out = append(out, withPickup[:deliverPos]...)
	out = append(out, model.RouteStop{OrderID: orderID, Type: model.StopDelivery})
	out = append(out, withPickup[deliverPos:]...)
	return out
}

// AppendPickupDelivery appends orderID's pickup and delivery as a
// contiguous pair at the end of stops. Used by the SWAP operator, which
// spec.md §9 flags as almost certainly suboptimal (it discards any
// interleaving the order previously enjoyed) but specifies verbatim.
func AppendPickupDelivery(stops []model.RouteStop, orderID int) []model.RouteStop {
	out := append([]model.RouteStop(nil), stops...)
	out = append(out, model.RouteStop{OrderID: orderID, Type: model.StopPickup})
	out = append(out, model.RouteStop{OrderID: orderID, Type: model.StopDelivery})
	return out
}

// RemoveOrder returns a new stop slice with both of orderID's stops
// (pickup and delivery) removed.
func RemoveOrder(stops []model.RouteStop, orderID int) []model.RouteStop {
	out := make([]model.RouteStop, 0, len(stops))
	for _, s := range stops {
		if s.OrderID != orderID {
			out = append(out, s)
		}
	}
	return out
}

// UniqueOrderIDs returns the distinct order IDs visited by stops, in
// first-occurrence (i.e. pickup) order.
func UniqueOrderIDs(stops []model.RouteStop) []int {
	seen := make(map[int]bool, len(stops)/2)
	out := make([]int, 0, len(stops)/2)
	for _, s := range stops {
		if !seen[s.OrderID] {
			seen[s.OrderID] = true
			out = append(out, s.OrderID)
		}
	}
	return out
}

// PairsInOrder rewrites a list of order IDs as the concatenation of
// (pickup, delivery) stop pairs in that order — used by the INTRA-SHUFFLE
// operator to rebuild a route after reordering its orders.
func PairsInOrder(orderIDs []int) []model.RouteStop {
	out := make([]model.RouteStop, 0, len(orderIDs)*2)
	for _, id := range orderIDs {
		out = append(out, model.RouteStop{OrderID: id, Type: model.StopPickup})
		out = append(out, model.RouteStop{OrderID: id, Type: model.StopDelivery})
	}
	return out
}

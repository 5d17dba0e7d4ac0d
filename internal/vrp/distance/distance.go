// Package distance builds the two matrices the solvers share (order-pair
// distances and vehicle-to-pickup distances) from an injected distance
// function, and provides the two concrete distance functions the service
// ships with.
package distance

import (
	"math"

	"vrppd/internal/vrp/model"
)

// Func is a pure, deterministic distance provider: kilometers between two
// locations. It need not be symmetric, though both providers below are.
type Func func(a, b model.Location) float64

const earthRadiusKm = 6371.0

// GreatCircle returns the haversine (great-circle) distance in
// kilometers, matching the original solver's calculate_distance.
func GreatCircle(a, b model.Location) float64 {
	lat1, lon1 := toRadians(a.Latitude), toRadians(a.Longitude)
	lat2, lon2 := toRadians(b.Latitude), toRadians(b.Longitude)

	val := math.Sin(lat1)*math.Sin(lat2) + math.Cos(lat1)*math.Cos(lat2)*math.Cos(lon1-lon2)
	if val > 1 {
		val = 1
	} else if val < -1 {
		val = -1
	}
	return math.Acos(val) * earthRadiusKm
}

// Euclidean returns planar Euclidean distance, treating latitude/longitude
// as plain Cartesian coordinates. Useful for small synthetic instances and
// the spec's worked examples, which are stated in Euclidean terms.
func Euclidean(a, b model.Location) float64 {
	dLat := a.Latitude - b.Latitude
	dLon := a.Longitude - b.Longitude
	return math.Sqrt(dLat*dLat + dLon*dLon)
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

// Matrices holds the precomputed distance tables for one Problem, built
// once per solve call and never mutated afterward.
type Matrices struct {
	// D is 2N×2N: D[i][j] = dist(node(i), node(j)), where node(2k) is
	// orders[k]'s pickup and node(2k+1) is its delivery.
	D [][]float64
	// S is V×N: S[v][o] = dist(vehicle[v].start, orders[o].pickup).
	S [][]float64
}

// Build constructs the D and S matrices for a problem using the given
// distance function.
func Build(p model.Problem, dist Func) Matrices {
	n := len(p.Orders)
	numNodes := n * 2

	nodeLoc := func(idx int) model.Location {
		order := p.Orders[idx/2]
		if idx%2 == 0 {
			return order.PickupLocation
		}
		return order.DeliveryLocation
	}

	d := make([][]float64, numNodes)
	for i := range d {
		d[i] = make([]float64, numNodes)
		for j := range d[i] {
			if i != j {
				d[i][j] = dist(nodeLoc(i), nodeLoc(j))
			}
		}
	}

	s := make([][]float64, len(p.Vehicles))
	for v, vehicle := range p.Vehicles {
		s[v] = make([]float64, n)
		for o, order := range p.Orders {
			s[v][o] = dist(vehicle.StartLocation, order.PickupLocation)
		}
	}

	return Matrices{D: d, S: s}
}

// PickupNode returns the D/S column index for an order's pickup node.
func PickupNode(orderIdx int) int { return 2 * orderIdx }

// DeliveryNode returns the D/S column index for an order's delivery node.
func DeliveryNode(orderIdx int) int { return 2*orderIdx + 1 }

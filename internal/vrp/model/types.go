// Package model holds the data types shared by every VRPPD solver
// package: the problem definition submitted by callers and the solution
// shapes returned by the exact and heuristic solvers.
package model

import "fmt"

// Location is an immutable geographic point. Hash is a caller-supplied
// stable identifier for the coordinate pair (e.g. a geohash); it is not
// derived here, since the pure distance function is the only thing this
// package requires of a Location.
type Location struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Hash      string  `json:"hash,omitempty" yaml:"hash,omitempty"`
}

// Vehicle is a fleet member available to serve orders.
type Vehicle struct {
	ID            int      `json:"id" yaml:"id"`
	StartLocation Location `json:"startLocation" yaml:"startLocation"`
	PriceKm       float64  `json:"priceKm" yaml:"priceKm"`
}

// Order is a paired pickup/delivery request.
type Order struct {
	ID               int      `json:"id" yaml:"id"`
	PickupLocation   Location `json:"pickupLocation" yaml:"pickupLocation"`
	DeliveryLocation Location `json:"deliveryLocation" yaml:"deliveryLocation"`
	LoadFactor       float64  `json:"loadFactor" yaml:"loadFactor"`
}

// Load returns the normalized load contributed by one unit of this order,
// i.e. 1/LoadFactor.
func (o Order) Load() float64 { return 1 / o.LoadFactor }

// Constraints bounds a Problem beyond load capacity.
type Constraints struct {
	MaxTotalDistance float64 `json:"maxTotalDistance" yaml:"maxTotalDistance"`
}

// Problem is a complete VRPPD instance: a fleet and a set of orders to
// assign and route.
type Problem struct {
	Vehicles    []Vehicle   `json:"vehicles" yaml:"vehicles"`
	Orders      []Order     `json:"orders" yaml:"orders"`
	Constraints Constraints `json:"constraints" yaml:"constraints"`
}

// StopType distinguishes a pickup from a delivery in a RouteStop.
type StopType string

const (
	StopPickup   StopType = "pickup"
	StopDelivery StopType = "delivery"
)

// RouteStop is one leg's destination in a VehicleRoute.
type RouteStop struct {
	OrderID int      `json:"orderId"`
	Type    StopType `json:"type"`
}

// VehicleRoute is the ordered visiting sequence assigned to one vehicle,
// with its cached aggregate statistics.
type VehicleRoute struct {
	Stops          []RouteStop `json:"stops"`
	TotalDistance  float64     `json:"totalDistance"`
	EmptyDistance  float64     `json:"emptyDistance"`
	TotalPrice     float64     `json:"totalPrice"`
}

// ProblemSolution assigns every routed vehicle a VehicleRoute and caches
// the solution-wide aggregates.
type ProblemSolution struct {
	Routes        map[int]VehicleRoute `json:"routes"`
	TotalDistance float64              `json:"totalDistance"`
	EmptyDistance float64              `json:"emptyDistance"`
	TotalPrice    float64              `json:"totalPrice"`
}

// NewProblemSolution returns an empty solution with an initialized route
// map, one empty VehicleRoute per vehicle in the problem.
func NewProblemSolution(p Problem) ProblemSolution {
	routes := make(map[int]VehicleRoute, len(p.Vehicles))
	for _, v := range p.Vehicles {
		routes[v.ID] = VehicleRoute{Stops: []RouteStop{}}
	}
	return ProblemSolution{Routes: routes}
}

// Recompute sums the per-vehicle route fields into the solution
// aggregates. Callers must invoke this after mutating Routes directly.
func (s *ProblemSolution) Recompute() {
	s.TotalDistance, s.EmptyDistance, s.TotalPrice = 0, 0, 0
	for _, r := range s.Routes {
		s.TotalDistance += r.TotalDistance
		s.EmptyDistance += r.EmptyDistance
		s.TotalPrice += r.TotalPrice
	}
}

// AlgorithmSolution bundles the exact solver's three per-objective
// optima, produced by a single branch-and-bound pass.
type AlgorithmSolution struct {
	BestDistanceSolution ProblemSolution `json:"bestDistanceSolution"`
	BestPriceSolution    ProblemSolution `json:"bestPriceSolution"`
	BestEmptySolution    ProblemSolution `json:"bestEmptySolution"`
}

// Objective selects which scalar cost a heuristic run or RCRS insertion
// pass optimizes for.
type Objective string

const (
	ObjectiveDistance Objective = "DISTANCE"
	ObjectivePrice    Objective = "PRICE"
	ObjectiveEmpty    Objective = "EMPTY"
)

// Metric reads the field of a VehicleRoute (or aggregate) corresponding
// to this objective.
func (o Objective) Metric(totalDistance, emptyDistance, totalPrice float64) (float64, error) {
	switch o {
	case ObjectiveDistance:
		return totalDistance, nil
	case ObjectivePrice:
		return totalPrice, nil
	case ObjectiveEmpty:
		return emptyDistance, nil
	default:
		return 0, fmt.Errorf("model: unknown objective %q", o)
	}
}

// OperatorWeights biases the PSA neighborhood operator selection.
type OperatorWeights struct {
	Shift   float64 `json:"shift" yaml:"shift"`
	Swap    float64 `json:"swap" yaml:"swap"`
	Shuffle float64 `json:"shuffle" yaml:"shuffle"`
}

// SAConfig parameterizes the simulated-annealing PSA engine.
type SAConfig struct {
	InitialTemp   float64         `json:"initialTemp" yaml:"initialTemp"`
	CoolingRate   float64         `json:"coolingRate" yaml:"coolingRate"`
	MinTemp       float64         `json:"minTemp" yaml:"minTemp"`
	MaxIterations int             `json:"maxIterations" yaml:"maxIterations"`
	BatchSize     int             `json:"batchSize" yaml:"batchSize"`
	SyncInterval  int             `json:"syncInterval" yaml:"syncInterval"`
	Weights       OperatorWeights `json:"weights" yaml:"weights"`
}

// DefaultSAConfig returns spec-mandated defaults (spec.md §6).
func DefaultSAConfig() SAConfig {
	return SAConfig{
		InitialTemp:   1500,
		CoolingRate:   0.99,
		MinTemp:       0.1,
		MaxIterations: 10000,
		BatchSize:     50,
		SyncInterval:  200,
		Weights:       OperatorWeights{Shift: 0.4, Swap: 0.3, Shuffle: 0.3},
	}
}

// ConvergencePoint is one entry in a heuristic run's convergence history.
type ConvergencePoint struct {
	ElapsedMs      int64   `json:"timeMs"`
	Iteration      int     `json:"iteration"`
	TotalDistance  float64 `json:"totalDistance"`
	TotalPrice     float64 `json:"totalPrice"`
	EmptyDistance  float64 `json:"emptyDistance"`
}

package exact

import (
	"errors"
	"math"
	"testing"

	"vrppd/internal/vrp/distance"
	"vrppd/internal/vrp/model"
)

func twoOrderProblem() model.Problem {
	return model.Problem{
		Vehicles: []model.Vehicle{
			{ID: 1, StartLocation: model.Location{Longitude: 0}, PriceKm: 1},
		},
		Orders: []model.Order{
			{ID: 100, PickupLocation: model.Location{Longitude: 1}, DeliveryLocation: model.Location{Longitude: 2}, LoadFactor: 1},
			{ID: 200, PickupLocation: model.Location{Longitude: 3}, DeliveryLocation: model.Location{Longitude: 4}, LoadFactor: 1},
		},
	}
}

func TestSolveSingleVehicleTwoOrders(t *testing.T) {
	p := twoOrderProblem()
	sol, err := Solve(p, distance.Euclidean)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(sol.BestDistanceSolution.Routes) != 1 {
		t.Fatalf("expected 1 routed vehicle, got %d", len(sol.BestDistanceSolution.Routes))
	}
	route := sol.BestDistanceSolution.Routes[1]
	if len(route.Stops) != 4 {
		t.Fatalf("expected 4 stops (2 pickups + 2 deliveries), got %d", len(route.Stops))
	}
	// The cheapest ordering visits orders in pickup/delivery pairs along
	// the line, i.e. pickup 100, deliver 100, pickup 200, deliver 200.
	want := []int{100, 100, 200, 200}
	for i, stop := range route.Stops {
		if stop.OrderID != want[i] {
			t.Fatalf("stop[%d].OrderID = %d, want %d (full route %+v)", i, stop.OrderID, want[i], route.Stops)
		}
	}
}

func TestSolveProblemTooLarge(t *testing.T) {
	p := model.Problem{
		Vehicles: make([]model.Vehicle, 8),
		Orders:   make([]model.Order, 1),
	}
	for i := range p.Orders {
		p.Orders[i].LoadFactor = 1
	}
	_, err := Solve(p, distance.Euclidean)
	var tooLarge *ProblemTooLarge
	if !errors.As(err, &tooLarge) {
		t.Fatalf("err = %v, want *ProblemTooLarge", err)
	}
}

func TestSolveNoVehicles(t *testing.T) {
	p := model.Problem{Orders: []model.Order{{ID: 1, LoadFactor: 1}}}
	_, err := Solve(p, distance.Euclidean)
	if !errors.Is(err, errNoVehicles) {
		t.Fatalf("err = %v, want errNoVehicles", err)
	}
}

func TestSolveInfeasibleReturnsInfiniteSentinel(t *testing.T) {
	// A single order whose combined load exceeds capacity on its own is
	// infeasible for the lone vehicle in the fleet.
	p := model.Problem{
		Vehicles: []model.Vehicle{{ID: 1}},
		Orders:   []model.Order{{ID: 1, LoadFactor: 0.5}}, // Load() == 2
	}
	sol, err := Solve(p, distance.Euclidean)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !math.IsInf(sol.BestDistanceSolution.TotalDistance, 1) {
		t.Fatalf("TotalDistance = %v, want +Inf", sol.BestDistanceSolution.TotalDistance)
	}
}

func TestReconstructMatchesSolve(t *testing.T) {
	p := twoOrderProblem()
	sol, err := Solve(p, distance.Euclidean)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	ctx := NewContext(p, distance.Euclidean)
	fullMask := (1 << len(p.Orders)) - 1
	route, ok := ctx.Reconstruct(0, fullMask, model.ObjectiveDistance)
	if !ok {
		t.Fatal("Reconstruct: expected a feasible route")
	}
	want := sol.BestDistanceSolution.Routes[p.Vehicles[0].ID]
	if route.TotalDistance != want.TotalDistance {
		t.Fatalf("Reconstruct TotalDistance = %v, want %v", route.TotalDistance, want.TotalDistance)
	}
}

package constraint

import (
	"errors"
	"testing"

	"vrppd/internal/vrp/distance"
	"vrppd/internal/vrp/model"
)

func testProblem() model.Problem {
	return model.Problem{
		Vehicles: []model.Vehicle{{ID: 1, StartLocation: model.Location{}, PriceKm: 2}},
		Orders: []model.Order{
			{ID: 10, PickupLocation: model.Location{Longitude: 1}, DeliveryLocation: model.Location{Longitude: 2}, LoadFactor: 1},
			{ID: 20, PickupLocation: model.Location{Longitude: 3}, DeliveryLocation: model.Location{Longitude: 4}, LoadFactor: 2},
		},
	}
}

func TestSimulateHappyPath(t *testing.T) {
	p := testProblem()
	idx := BuildOrderIndex(p)
	m := distance.Build(p, distance.Euclidean)

	stops := []model.RouteStop{
		{OrderID: 10, Type: model.StopPickup},
		{OrderID: 10, Type: model.StopDelivery},
	}
	route, err := Simulate(p.Vehicles[0], 0, stops, p.Orders, idx, m, 0)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if route.TotalDistance <= 0 {
		t.Fatalf("TotalDistance = %v, want > 0", route.TotalDistance)
	}
	if route.EmptyDistance != m.S[0][0] {
		t.Fatalf("EmptyDistance = %v, want %v (start-to-pickup leg)", route.EmptyDistance, m.S[0][0])
	}
}

func TestSimulateCapacityExceeded(t *testing.T) {
	p := testProblem()
	// LoadFactor 1 => Load() == 1; picking up both without delivering
	// either would push load to 1 + 0.5 = 1.5, over the ceiling.
	p.Orders[1].LoadFactor = 2
	idx := BuildOrderIndex(p)
	m := distance.Build(p, distance.Euclidean)

	stops := []model.RouteStop{
		{OrderID: 10, Type: model.StopPickup},
		{OrderID: 20, Type: model.StopPickup},
		{OrderID: 10, Type: model.StopDelivery},
		{OrderID: 20, Type: model.StopDelivery},
	}
	_, err := Simulate(p.Vehicles[0], 0, stops, p.Orders, idx, m, 0)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}
}

func TestSimulateDeliveryBeforePickup(t *testing.T) {
	p := testProblem()
	idx := BuildOrderIndex(p)
	m := distance.Build(p, distance.Euclidean)

	stops := []model.RouteStop{
		{OrderID: 10, Type: model.StopDelivery},
	}
	_, err := Simulate(p.Vehicles[0], 0, stops, p.Orders, idx, m, 0)
	if !errors.Is(err, ErrUnbalancedStops) {
		t.Fatalf("err = %v, want ErrUnbalancedStops", err)
	}
}

func TestSimulateMaxDistanceExceeded(t *testing.T) {
	p := testProblem()
	idx := BuildOrderIndex(p)
	m := distance.Build(p, distance.Euclidean)

	stops := []model.RouteStop{
		{OrderID: 10, Type: model.StopPickup},
		{OrderID: 10, Type: model.StopDelivery},
	}
	route, err := Simulate(p.Vehicles[0], 0, stops, p.Orders, idx, m, 0)
	if err != nil {
		t.Fatalf("Simulate baseline: %v", err)
	}
	_, err = Simulate(p.Vehicles[0], 0, stops, p.Orders, idx, m, route.TotalDistance/2)
	if !errors.Is(err, ErrMaxDistanceExceeded) {
		t.Fatalf("err = %v, want ErrMaxDistanceExceeded", err)
	}
}

func TestSimulateEmptyStops(t *testing.T) {
	p := testProblem()
	idx := BuildOrderIndex(p)
	m := distance.Build(p, distance.Euclidean)

	route, err := Simulate(p.Vehicles[0], 0, nil, p.Orders, idx, m, 0)
	if err != nil {
		t.Fatalf("Simulate(nil stops): %v", err)
	}
	if route.TotalDistance != 0 {
		t.Fatalf("TotalDistance = %v, want 0", route.TotalDistance)
	}
}

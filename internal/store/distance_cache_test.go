package store

import (
	"testing"

	"vrppd/internal/vrp/model"
)

func TestKeyIsStableAndDistinguishesDistanceFunction(t *testing.T) {
	p := model.Problem{
		Vehicles: []model.Vehicle{{ID: 1, StartLocation: model.Location{Latitude: 1, Longitude: 2}}},
		Orders:   []model.Order{{ID: 1, PickupLocation: model.Location{Latitude: 1, Longitude: 2}, DeliveryLocation: model.Location{Latitude: 3, Longitude: 4}, LoadFactor: 1}},
	}
	k1 := Key(p, "haversine")
	k2 := Key(p, "haversine")
	if k1 != k2 {
		t.Fatalf("Key not stable: %q != %q", k1, k2)
	}
	k3 := Key(p, "euclidean")
	if k1 == k3 {
		t.Fatal("Key should differ by distance function name")
	}
}

func TestKeyDistinguishesProblems(t *testing.T) {
	p1 := model.Problem{Vehicles: []model.Vehicle{{ID: 1}}, Orders: []model.Order{{ID: 1, LoadFactor: 1}}}
	p2 := model.Problem{Vehicles: []model.Vehicle{{ID: 2}}, Orders: []model.Order{{ID: 1, LoadFactor: 1}}}
	if Key(p1, "haversine") == Key(p2, "haversine") {
		t.Fatal("expected different keys for different problems")
	}
}

package distance

import (
	"math"
	"testing"

	"vrppd/internal/vrp/model"
)

func TestGreatCircleZeroForSamePoint(t *testing.T) {
	a := model.Location{Latitude: 40.0, Longitude: -73.0}
	if got := GreatCircle(a, a); got != 0 {
		t.Fatalf("GreatCircle(a, a) = %v, want 0", got)
	}
}

func TestGreatCircleKnownDistance(t *testing.T) {
	// New York to Los Angeles is approximately 3940 km great-circle.
	nyc := model.Location{Latitude: 40.7128, Longitude: -74.0060}
	lax := model.Location{Latitude: 34.0522, Longitude: -118.2437}
	got := GreatCircle(nyc, lax)
	if math.Abs(got-3940) > 50 {
		t.Fatalf("GreatCircle(nyc, lax) = %v, want ~3940", got)
	}
}

func TestEuclidean(t *testing.T) {
	a := model.Location{Latitude: 0, Longitude: 0}
	b := model.Location{Latitude: 3, Longitude: 4}
	if got, want := Euclidean(a, b), 5.0; got != want {
		t.Fatalf("Euclidean = %v, want %v", got, want)
	}
}

func TestBuildMatrixDimensions(t *testing.T) {
	p := model.Problem{
		Vehicles: []model.Vehicle{{ID: 1}, {ID: 2}},
		Orders: []model.Order{
			{ID: 1, PickupLocation: model.Location{Latitude: 0, Longitude: 0}, DeliveryLocation: model.Location{Latitude: 1, Longitude: 1}},
			{ID: 2, PickupLocation: model.Location{Latitude: 2, Longitude: 2}, DeliveryLocation: model.Location{Latitude: 3, Longitude: 3}},
		},
	}
	m := Build(p, Euclidean)
	if len(m.D) != 4 || len(m.D[0]) != 4 {
		t.Fatalf("D dims = %dx%d, want 4x4", len(m.D), len(m.D[0]))
	}
	if len(m.S) != 2 || len(m.S[0]) != 2 {
		t.Fatalf("S dims = %dx%d, want 2x2", len(m.S), len(m.S[0]))
	}
	for i := range m.D {
		if m.D[i][i] != 0 {
			t.Fatalf("D[%d][%d] = %v, want 0", i, i, m.D[i][i])
		}
	}
}

func TestNodeIndexHelpers(t *testing.T) {
	if PickupNode(3) != 6 {
		t.Fatalf("PickupNode(3) = %d, want 6", PickupNode(3))
	}
	if DeliveryNode(3) != 7 {
		t.Fatalf("DeliveryNode(3) = %d, want 7", DeliveryNode(3))
	}
}

package routeops

import (
	"reflect"
	"testing"

	"vrppd/internal/vrp/model"
)

func TestInsertPickupDelivery(t *testing.T) {
	base := []model.RouteStop{
		{OrderID: 1, Type: model.StopPickup},
		{OrderID: 1, Type: model.StopDelivery},
	}
	got := InsertPickupDelivery(base, 2, 1, 2)
	want := []model.RouteStop{
		{OrderID: 1, Type: model.StopPickup},
		{OrderID: 2, Type: model.StopPickup},
		{OrderID: 2, Type: model.StopDelivery},
		{OrderID: 1, Type: model.StopDelivery},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("InsertPickupDelivery = %+v, want %+v", got, want)
	}
}

func TestAppendPickupDelivery(t *testing.T) {
	base := []model.RouteStop{{OrderID: 1, Type: model.StopPickup}, {OrderID: 1, Type: model.StopDelivery}}
	got := AppendPickupDelivery(base, 5)
	if len(got) != 4 || got[2].OrderID != 5 || got[2].Type != model.StopPickup || got[3].OrderID != 5 || got[3].Type != model.StopDelivery {
		t.Fatalf("AppendPickupDelivery = %+v", got)
	}
	// base must be unmutated.
	if len(base) != 2 {
		t.Fatalf("AppendPickupDelivery mutated its input: %+v", base)
	}
}

func TestRemoveOrder(t *testing.T) {
	base := []model.RouteStop{
		{OrderID: 1, Type: model.StopPickup},
		{OrderID: 2, Type: model.StopPickup},
		{OrderID: 1, Type: model.StopDelivery},
		{OrderID: 2, Type: model.StopDelivery},
	}
	got := RemoveOrder(base, 1)
	want := []model.RouteStop{
		{OrderID: 2, Type: model.StopPickup},
		{OrderID: 2, Type: model.StopDelivery},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("RemoveOrder = %+v, want %+v", got, want)
	}
}

func TestUniqueOrderIDs(t *testing.T) {
	stops := []model.RouteStop{
		{OrderID: 3, Type: model.StopPickup},
		{OrderID: 1, Type: model.StopPickup},
		{OrderID: 3, Type: model.StopDelivery},
		{OrderID: 1, Type: model.StopDelivery},
	}
	got := UniqueOrderIDs(stops)
	want := []int{3, 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("UniqueOrderIDs = %v, want %v", got, want)
	}
}

func TestPairsInOrder(t *testing.T) {
	got := PairsInOrder([]int{7, 9})
	want := []model.RouteStop{
		{OrderID: 7, Type: model.StopPickup},
		{OrderID: 7, Type: model.StopDelivery},
		{OrderID: 9, Type: model.StopPickup},
		{OrderID: 9, Type: model.StopDelivery},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("PairsInOrder = %+v, want %+v", got, want)
	}
}

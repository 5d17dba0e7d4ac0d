package psa

import (
	"context"
	"testing"
	"time"

	"vrppd/internal/vrp/distance"
	"vrppd/internal/vrp/model"
)

func sampleProblem() model.Problem {
	return model.Problem{
		Vehicles: []model.Vehicle{
			{ID: 1, StartLocation: model.Location{Longitude: 0}, PriceKm: 1},
			{ID: 2, StartLocation: model.Location{Longitude: 10}, PriceKm: 1},
		},
		Orders: []model.Order{
			{ID: 1, PickupLocation: model.Location{Longitude: 1}, DeliveryLocation: model.Location{Longitude: 2}, LoadFactor: 1},
			{ID: 2, PickupLocation: model.Location{Longitude: 3}, DeliveryLocation: model.Location{Longitude: 4}, LoadFactor: 1},
			{ID: 3, PickupLocation: model.Location{Longitude: 9}, DeliveryLocation: model.Location{Longitude: 11}, LoadFactor: 1},
			{ID: 4, PickupLocation: model.Location{Longitude: 8}, DeliveryLocation: model.Location{Longitude: 12}, LoadFactor: 1},
		},
	}
}

func fastConfig() model.SAConfig {
	cfg := model.DefaultSAConfig()
	cfg.MaxIterations = 200
	cfg.BatchSize = 20
	cfg.SyncInterval = 20
	return cfg
}

func TestRunProducesFeasibleSolution(t *testing.T) {
	p := sampleProblem()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := Run(ctx, p, distance.Euclidean, model.ObjectiveDistance, fastConfig(), 2, 7, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Best.Routes) == 0 {
		t.Fatal("Run returned no routes")
	}
	assigned := 0
	for _, r := range result.Best.Routes {
		assigned += len(r.Stops) / 2
	}
	if assigned != len(p.Orders) {
		t.Fatalf("assigned %d of %d orders in best solution", assigned, len(p.Orders))
	}
	if len(result.History) == 0 {
		t.Fatal("expected at least one convergence point")
	}
}

func TestRunReportsProgress(t *testing.T) {
	p := sampleProblem()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var points []model.ConvergencePoint
	_, err := Run(ctx, p, distance.Euclidean, model.ObjectiveDistance, fastConfig(), 1, 3, func(pt model.ConvergencePoint) {
		points = append(points, pt)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(points) == 0 {
		t.Fatal("onProgress was never called")
	}
}

func TestRunRespectsCancellation(t *testing.T) {
	p := sampleProblem()
	cfg := model.DefaultSAConfig()
	cfg.MaxIterations = 1_000_000
	cfg.BatchSize = 10
	cfg.SyncInterval = 10

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, p, distance.Euclidean, model.ObjectiveDistance, cfg, 2, 1, nil)
	if err == nil {
		t.Fatal("expected an error from a pre-cancelled context")
	}
}

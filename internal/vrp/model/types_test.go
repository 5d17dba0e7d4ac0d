package model

import "testing"

func TestOrderLoad(t *testing.T) {
	o := Order{ID: 1, LoadFactor: 4}
	if got, want := o.Load(), 0.25; got != want {
		t.Fatalf("Load() = %v, want %v", got, want)
	}
}

func TestNewProblemSolutionInitializesEveryVehicle(t *testing.T) {
	p := Problem{Vehicles: []Vehicle{{ID: 1}, {ID: 2}}}
	sol := NewProblemSolution(p)
	if len(sol.Routes) != 2 {
		t.Fatalf("len(Routes) = %d, want 2", len(sol.Routes))
	}
	for _, v := range p.Vehicles {
		route, ok := sol.Routes[v.ID]
		if !ok {
			t.Fatalf("vehicle %d missing from Routes", v.ID)
		}
		if route.Stops == nil {
			t.Fatalf("vehicle %d Stops is nil, want empty slice", v.ID)
		}
	}
}

func TestProblemSolutionRecompute(t *testing.T) {
	sol := ProblemSolution{Routes: map[int]VehicleRoute{
		1: {TotalDistance: 10, EmptyDistance: 2, TotalPrice: 5},
		2: {TotalDistance: 7, EmptyDistance: 1, TotalPrice: 3},
	}}
	sol.Recompute()
	if sol.TotalDistance != 17 {
		t.Fatalf("TotalDistance = %v, want 17", sol.TotalDistance)
	}
	if sol.EmptyDistance != 3 {
		t.Fatalf("EmptyDistance = %v, want 3", sol.EmptyDistance)
	}
	if sol.TotalPrice != 8 {
		t.Fatalf("TotalPrice = %v, want 8", sol.TotalPrice)
	}
}

func TestObjectiveMetric(t *testing.T) {
	cases := []struct {
		objective Objective
		want      float64
	}{
		{ObjectiveDistance, 100},
		{ObjectivePrice, 30},
		{ObjectiveEmpty, 15},
	}
	for _, c := range cases {
		got, err := c.objective.Metric(100, 15, 30)
		if err != nil {
			t.Fatalf("Metric(%s) returned error: %v", c.objective, err)
		}
		if got != c.want {
			t.Fatalf("Metric(%s) = %v, want %v", c.objective, got, c.want)
		}
	}
}

func TestObjectiveMetricUnknown(t *testing.T) {
	if _, err := Objective("BOGUS").Metric(1, 1, 1); err == nil {
		t.Fatal("expected error for unknown objective")
	}
}

func TestDefaultSAConfig(t *testing.T) {
	cfg := DefaultSAConfig()
	if cfg.InitialTemp != 1500 || cfg.CoolingRate != 0.99 || cfg.MinTemp != 0.1 {
		t.Fatalf("unexpected annealing schedule: %+v", cfg)
	}
	if cfg.MaxIterations != 10000 || cfg.BatchSize != 50 || cfg.SyncInterval != 200 {
		t.Fatalf("unexpected iteration parameters: %+v", cfg)
	}
	if cfg.Weights != (OperatorWeights{Shift: 0.4, Swap: 0.3, Shuffle: 0.3}) {
		t.Fatalf("unexpected operator weights: %+v", cfg.Weights)
	}
}

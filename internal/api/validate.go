package api

import (
	"fmt"

	"vrppd/internal/vrp/model"
)

func validateProblem(p *model.Problem) error {
	if len(p.Vehicles) == 0 {
		return fmt.Errorf("vehicles must not be empty")
	}
	if len(p.Orders) == 0 {
		return fmt.Errorf("orders must not be empty")
	}
	seenVehicle := map[int]bool{}
	for _, v := range p.Vehicles {
		if seenVehicle[v.ID] {
			return fmt.Errorf("duplicate vehicle id: %d", v.ID)
		}
		seenVehicle[v.ID] = true
		if v.PriceKm < 0 {
			return fmt.Errorf("vehicle %d: priceKm must be >= 0", v.ID)
		}
	}
	seenOrder := map[int]bool{}
	for _, o := range p.Orders {
		if seenOrder[o.ID] {
			return fmt.Errorf("duplicate order id: %d", o.ID)
		}
		seenOrder[o.ID] = true
		if o.LoadFactor < 0 {
			return fmt.Errorf("order %d: loadFactor must be >= 0", o.ID)
		}
	}
	if p.Constraints.MaxTotalDistance < 0 {
		return fmt.Errorf("constraints.maxTotalDistance must be >= 0")
	}
	return nil
}

func validateObjective(o model.Objective) error {
	switch o {
	case model.ObjectiveDistance, model.ObjectivePrice, model.ObjectiveEmpty, "":
		return nil
	default:
		return fmt.Errorf("invalid objective: %s", o)
	}
}

func validateSAConfig(cfg *model.SAConfig) error {
	if cfg.InitialTemp <= 0 {
		return fmt.Errorf("saConfig.initialTemp must be > 0")
	}
	if cfg.CoolingRate <= 0 || cfg.CoolingRate >= 1 {
		return fmt.Errorf("saConfig.coolingRate must be in (0,1)")
	}
	if cfg.MinTemp < 0 {
		return fmt.Errorf("saConfig.minTemp must be >= 0")
	}
	if cfg.MaxIterations <= 0 {
		return fmt.Errorf("saConfig.maxIterations must be > 0")
	}
	if cfg.BatchSize <= 0 {
		return fmt.Errorf("saConfig.batchSize must be > 0")
	}
	if cfg.SyncInterval <= 0 {
		return fmt.Errorf("saConfig.syncInterval must be > 0")
	}
	w := cfg.Weights
	if w.Shift < 0 || w.Swap < 0 || w.Shuffle < 0 {
		return fmt.Errorf("saConfig.weights must be >= 0")
	}
	if w.Shift+w.Swap+w.Shuffle == 0 {
		return fmt.Errorf("saConfig.weights must not all be zero")
	}
	return nil
}

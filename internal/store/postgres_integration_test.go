//go:build postgres_integration

package store

import (
	"context"
	"os"
	"testing"

	"vrppd/internal/vrp/model"
)

func TestPostgresConnectivityAndMigrate(t *testing.T) {
	dsn := os.Getenv("VRPPD_POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("VRPPD_POSTGRES_TEST_DSN not set; skipping integration test")
	}
	p, err := NewPostgres(dsn)
	if err != nil {
		t.Fatalf("NewPostgres: %v", err)
	}
	ctx := context.Background()
	if err := p.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := p.MigrateDir("../../db/migrations"); err != nil {
		t.Fatalf("MigrateDir: %v", err)
	}

	prob := model.Problem{
		Vehicles: []model.Vehicle{{ID: 1, PriceKm: 1}},
		Orders:   []model.Order{{ID: 1, LoadFactor: 1}},
	}
	id, _, err := p.CreateProblem(ctx, prob)
	if err != nil {
		t.Fatalf("CreateProblem: %v", err)
	}
	got, err := p.GetProblem(ctx, id)
	if err != nil {
		t.Fatalf("GetProblem: %v", err)
	}
	if len(got.Vehicles) != 1 {
		t.Fatalf("round-tripped problem has %d vehicles, want 1", len(got.Vehicles))
	}
}

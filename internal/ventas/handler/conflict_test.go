package handler_test

import (
	"testing"

	"github.com/bitfantasy/nimo-ventas/internal/ventas/entity"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/repository"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/testutil"
)

// When two writers start from the same snapshot, the conditional update lets only one win
func TestConditionalUpdateLosesRace(t *testing.T) {
	env := testutil.NewEnv(t)

	client := testutil.SeedTestClient(t, env.DB, "cli-race", "Cliente Carrera SA")
	order := seedConfirmedOrder(t, env.DB, client.ID)

	repos := repository.NewRepositories(env.DB)

	rows, err := repos.Order.TransitionStatus(env.DB, testutil.TestCompany, order.ID,
		entity.SOStatusConfirmed, entity.SOStatusPreparing)
	if err != nil {
		t.Fatalf("first transition: %v", err)
	}
	if rows != 1 {
		t.Fatalf("first transition rows = %d, want 1", rows)
	}

	// Second writer still expects CONFIRMADA and must miss
	rows, err = repos.Order.TransitionStatus(env.DB, testutil.TestCompany, order.ID,
		entity.SOStatusConfirmed, entity.SOStatusCancelled)
	if err != nil {
		t.Fatalf("second transition: %v", err)
	}
	if rows != 0 {
		t.Fatalf("second transition rows = %d, want 0", rows)
	}

	var got entity.SalesOrder
	env.DB.First(&got, "id = ?", order.ID)
	if got.Status != entity.SOStatusPreparing {
		t.Fatalf("order = %s, want EN_PREPARACION", got.Status)
	}
}

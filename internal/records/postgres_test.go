package records_test

import (
	"context"
	"testing"

	"github.com/solarops/solarops/internal/platform/database"
	"github.com/solarops/solarops/internal/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPool(t *testing.T) *database.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("solarops_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := database.Connect(ctx, connStr, 5)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, records.EnsureSchema(ctx, pool))
	// Second run must be a no-op.
	require.NoError(t, records.EnsureSchema(ctx, pool))
	return pool
}

func TestPostgresRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	pool := setupPool(t)
	projects := records.NewPostgresRepository[records.Project](pool, records.KindProject)
	leads := records.NewPostgresRepository[records.Lead](pool, records.KindLead)

	p := records.Project{ID: "P1", Name: "Mái nhà xưởng", SalesRepID: "U_S1", SurveyorID: "U_TM", Status: records.ProjectSurvey}
	_, err := projects.Create(ctx, p)
	require.NoError(t, err)

	_, err = projects.Create(ctx, p)
	assert.ErrorIs(t, err, records.ErrDuplicate)

	// Same id under another kind does not collide.
	_, err = leads.Create(ctx, records.Lead{ID: "P1", OwnerID: "U_S2"})
	require.NoError(t, err)

	got, err := projects.Get(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = projects.Get(ctx, "nope")
	assert.ErrorIs(t, err, records.ErrNotFound)

	p.Status = records.ProjectDesign
	_, err = projects.Update(ctx, p)
	require.NoError(t, err)

	_, err = projects.Update(ctx, records.Project{ID: "nope"})
	assert.ErrorIs(t, err, records.ErrNotFound)

	all, err := projects.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, records.ProjectDesign, all[0].Status)
}

func TestPostgresRepository_InsideTx(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	pool := setupPool(t)

	err := database.WithTx(ctx, pool, func(ctx context.Context, q database.Querier) error {
		repo := records.NewPostgresRepository[records.InventoryItem](q, records.KindInventory)
		_, err := repo.Create(ctx, records.InventoryItem{ID: "I1", Name: "Panel 550W", Quantity: 40, MinStock: 10})
		return err
	})
	require.NoError(t, err)

	repo := records.NewPostgresRepository[records.InventoryItem](pool, records.KindInventory)
	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Panel 550W", items[0].Name)
}

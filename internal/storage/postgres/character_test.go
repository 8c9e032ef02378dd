package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/arcanum/internal/storage/postgres"
	"github.com/cory-johannsen/arcanum/internal/storage/storagetest"
	"github.com/cory-johannsen/arcanum/internal/testutil"
)

func TestCharacterRepository(t *testing.T) {
	pool := testutil.NewPool(t)
	storagetest.Run(t, func(t *testing.T) storagetest.Store {
		return postgres.NewCharacterRepository(pool)
	})
}

func TestPool_HealthAndApplicationName(t *testing.T) {
	pool := testutil.NewPool(t)
	ctx := context.Background()

	require.NoError(t, pool.Health(ctx, 5*time.Second))

	var name string
	require.NoError(t, pool.DB().QueryRow(ctx, "SELECT current_setting('application_name')").Scan(&name))
	assert.Equal(t, postgres.ApplicationName, name)
}

func TestPool_RequireSchema(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	ctx := context.Background()

	assert.ErrorIs(t, pc.Pool.RequireSchema(ctx), postgres.ErrSchemaNotMigrated)

	pc.ApplyMigrations(t)
	assert.NoError(t, pc.Pool.RequireSchema(ctx))
}

func TestNewCharacterRepository_NilPoolPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	postgres.NewCharacterRepository(nil)
}

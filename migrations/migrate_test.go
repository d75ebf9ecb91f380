package migrations_test

import (
	"context"
	"testing"

	"github.com/adrian-inthe/events7/internal/testutil"
	"github.com/adrian-inthe/events7/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_RecordsMigrationsAndSeeds(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx, `DROP TABLE IF EXISTS schema_migrations, events`)
	require.NoError(t, err)

	applied, err := migrations.Apply(ctx, pool)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_create_events.sql", "0002_seed_events.sql"}, applied)

	var seeded int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&seeded))
	assert.Equal(t, 2, seeded)

	var nextID int
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO events (name, description, type, priority) VALUES ('n', 'd', 'app', 1) RETURNING id`,
	).Scan(&nextID))
	assert.Equal(t, 3, nextID)

	again, err := migrations.Apply(ctx, pool)
	require.NoError(t, err)
	assert.Empty(t, again)

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.Equal(t, 2, count)
}

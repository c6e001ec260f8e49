package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConnectMigratesAndSeedIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chess.db")
	ctx := context.Background()

	conn, err := Connect(path, 5*time.Second)
	require.NoError(t, err)
	defer conn.Close()

	seeded, err := Seed(ctx, conn)
	require.NoError(t, err)
	require.True(t, seeded)

	again, err := Seed(ctx, conn)
	require.NoError(t, err)
	require.False(t, again)

	var players, games int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&players))
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM games`).Scan(&games))
	require.Equal(t, 5, players)
	require.Equal(t, 7, games)
}

func TestConnectReopensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chess.db")

	conn, err := Connect(path, 5*time.Second)
	require.NoError(t, err)
	_, err = Seed(context.Background(), conn)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	conn, err = Connect(path, 5*time.Second)
	require.NoError(t, err)
	defer conn.Close()

	seeded, err := Seed(context.Background(), conn)
	require.NoError(t, err)
	require.False(t, seeded)
}

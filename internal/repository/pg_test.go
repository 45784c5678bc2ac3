package repository

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"pos-billing/internal/common/db"
)

// newTestPG connects to POS_TEST_DATABASE_URL, migrates it and empties every
// table. Tests using it are skipped when the variable is unset.
func newTestPG(t *testing.T) *db.Conn {
	t.Helper()
	dsn := os.Getenv("POS_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("POS_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	conn := &db.Conn{Pool: pool}
	t.Cleanup(conn.Close)

	require.NoError(t, conn.Ping(ctx))
	require.NoError(t, conn.Migrate(ctx))
	_, err = conn.Exec(ctx, `TRUNCATE bill_items, bills, shop_settings, users, menu_items RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return conn
}

func TestBillsPGContract(t *testing.T) {
	billsContract(t, NewBillsPG(newTestPG(t)))
}

func TestUsersPGContract(t *testing.T) {
	repo := NewPG(newTestPG(t))
	usersContract(t, repo.Users, repo.Settings)
}

func TestMenuPGContract(t *testing.T) {
	menuContract(t, NewMenuPG(newTestPG(t)))
}

func TestMigrateIsIdempotent(t *testing.T) {
	conn := newTestPG(t)
	require.NoError(t, conn.Migrate(context.Background()))
}

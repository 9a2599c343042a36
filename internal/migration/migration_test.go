package migration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestApplySQLiteCreatesSchema(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, ApplySQLite(ctx, db))

	for _, table := range []string{"operators", "tariffs", "subscriptions", "tickets", "payments", "ticket_folio_sequence"} {
		var count int64
		err := db.Raw(`SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&count).Error
		require.NoError(t, err)
		assert.Equal(t, int64(1), count, table)
	}

	var lastValue int64
	require.NoError(t, db.Raw(`SELECT last_value FROM ticket_folio_sequence WHERE name = 'ticket'`).Scan(&lastValue).Error)
	assert.Equal(t, int64(0), lastValue)
}

func TestApplySQLiteIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, ApplySQLite(ctx, db))
	require.NoError(t, ApplySQLite(ctx, db))

	var version int64
	require.NoError(t, db.Raw(`SELECT version FROM schema_migrations`).Scan(&version).Error)
	assert.Equal(t, int64(1), version)
}

func TestOpenPlateIndexRejectsSecondOpenTicket(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, ApplySQLite(context.Background(), db))

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.Exec(`INSERT INTO operators (id, name, active) VALUES (1, 'ana', TRUE)`).Error)

	insert := `INSERT INTO tickets (id, folio, plate, entry_kind, entry_at, entry_operator_id, receipt_code, created_at, updated_at)
		VALUES (?, ?, 'ABC123', 'GUEST', ?, 1, 'code', ?, ?)`
	require.NoError(t, db.Exec(insert, 1, "TKT000001", now, now, now).Error)

	err := db.Exec(insert, 2, "TKT000002", now, now, now).Error
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE")

	// Closing the first ticket frees the plate.
	require.NoError(t, db.Exec(`UPDATE tickets SET exit_at = ? WHERE id = 1`, now.Add(time.Hour)).Error)
	require.NoError(t, db.Exec(insert, 3, "TKT000003", now, now, now).Error)
}

func TestSplitStatements(t *testing.T) {
	stmts := SplitStatements("CREATE TABLE a (x INT);\n\n  ;DROP TABLE b;")
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "DROP TABLE b"}, stmts)
}

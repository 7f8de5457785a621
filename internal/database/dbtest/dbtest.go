// Package dbtest opens an in-memory SQLite database with the admission schema.
package dbtest

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"ms-admission/internal/database"
	"ms-admission/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// New returns a bun.DB over a private in-memory SQLite database. The pool is
// capped at one connection so every transaction runs serially, which stands
// in for row locks when tests fire concurrent purchases or redemptions.
func New(t testing.TB) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	_, err = db.ExecContext(ctx, "PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	require.NoError(t, database.CreateSchema(ctx, db))
	return db
}

// SeedTicketType inserts an event owned by organizerID with one ticket type.
func SeedTicketType(t testing.TB, db bun.IDB, organizerID string, stock int, price string) (models.Event, models.TicketType) {
	t.Helper()
	ctx := context.Background()

	event := models.Event{
		ID:          uuid.NewString(),
		Title:       "Event of " + organizerID,
		ScheduledAt: time.Now().Add(72 * time.Hour).UTC(),
		Venue:       "Main Hall",
		OrganizerID: organizerID,
	}
	_, err := db.NewInsert().Model(&event).Exec(ctx)
	require.NoError(t, err)

	tt := models.TicketType{
		ID:      uuid.NewString(),
		EventID: event.ID,
		Name:    "General",
		Price:   decimal.RequireFromString(price),
		Stock:   stock,
	}
	_, err = db.NewInsert().Model(&tt).Exec(ctx)
	require.NoError(t, err)

	return event, tt
}

// Stock reads the persisted stock of a ticket type.
func Stock(t testing.TB, db bun.IDB, ticketTypeID string) int {
	t.Helper()
	var tt models.TicketType
	require.NoError(t, db.NewSelect().Model(&tt).Where("id = ?", ticketTypeID).Scan(context.Background()))
	return tt.Stock
}

// Count returns the row count of model's table.
func Count(t testing.TB, db bun.IDB, model interface{}) int {
	t.Helper()
	n, err := db.NewSelect().Model(model).Count(context.Background())
	require.NoError(t, err)
	return n
}

package db_test

import (
	"context"
	"testing"
	"time"

	"ms-admission/internal/database/dbtest"
	"ms-admission/internal/models"
	"ms-admission/internal/tickets/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	bunDB := dbtest.New(t)
	ctx := context.Background()

	_, err := bunDB.NewInsert().Model(&models.Event{
		ID: "ev-1", Title: "Jazz Night", Venue: "Blue Room", OrganizerID: "org-1", ScheduledAt: time.Now().Add(48 * time.Hour),
	}).Exec(ctx)
	require.NoError(t, err)

	_, err = bunDB.NewInsert().Model(&models.TicketType{
		ID: "tt-vip", EventID: "ev-1", Name: "VIP", Price: decimal.RequireFromString("49.90"), Stock: 10,
	}).Exec(ctx)
	require.NoError(t, err)

	return db.New(bunDB), bunDB
}

func createTicket(t *testing.T, store *db.DB, code string) (*models.Buyer, *models.Ticket) {
	t.Helper()
	ctx := context.Background()

	buyer := &models.Buyer{ID: uuid.NewString(), Name: "Lucia", Email: "lucia@example.com"}
	require.NoError(t, store.CreateBuyer(ctx, buyer))

	ticket := &models.Ticket{ID: uuid.NewString(), BuyerID: buyer.ID, TicketTypeID: "tt-vip", Code: code, PaymentMethod: "card"}
	require.NoError(t, store.CreateTicket(ctx, ticket))
	return buyer, ticket
}

func TestCreateAndGetDetails(t *testing.T) {
	store, _ := setupTestDB(t)
	_, ticket := createTicket(t, store, "code-1")

	details, err := store.GetDetailsByCode(context.Background(), "code-1", true)
	require.NoError(t, err)

	assert.Equal(t, ticket.ID, details.TicketID)
	assert.Equal(t, "Jazz Night", details.EventTitle)
	assert.Equal(t, "org-1", details.OrganizerID)
	assert.Equal(t, "VIP", details.TicketTypeName)
	assert.True(t, decimal.RequireFromString("49.90").Equal(details.Price))
	assert.Equal(t, "Lucia", details.BuyerName)
	assert.Equal(t, "lucia@example.com", details.BuyerEmail)
	assert.False(t, details.Used)
	assert.Nil(t, details.UsedAt)
}

func TestGetDetailsUnknownCode(t *testing.T) {
	store, _ := setupTestDB(t)

	details, err := store.GetDetailsByCode(context.Background(), "nope", false)
	assert.Nil(t, details)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDuplicateCodeRejected(t *testing.T) {
	store, _ := setupTestDB(t)
	buyer, _ := createTicket(t, store, "dup")

	err := store.CreateTicket(context.Background(), &models.Ticket{
		ID: uuid.NewString(), BuyerID: buyer.ID, TicketTypeID: "tt-vip", Code: "dup", PaymentMethod: "cash",
	})
	assert.Error(t, err)
}

func TestMarkUsedOnlyOnce(t *testing.T) {
	store, _ := setupTestDB(t)
	_, ticket := createTicket(t, store, "code-2")
	ctx := context.Background()
	at := time.Now().UTC().Truncate(time.Second)

	flipped, err := store.MarkUsed(ctx, ticket.ID, at)
	require.NoError(t, err)
	assert.True(t, flipped)

	flipped, err = store.MarkUsed(ctx, ticket.ID, at.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, flipped)

	details, err := store.GetDetailsByCode(ctx, "code-2", false)
	require.NoError(t, err)
	assert.True(t, details.Used)
	require.NotNil(t, details.UsedAt)
	assert.True(t, at.Equal(details.UsedAt.UTC()))
}

func TestListByEvent(t *testing.T) {
	store, _ := setupTestDB(t)
	createTicket(t, store, "a")
	createTicket(t, store, "b")
	ctx := context.Background()

	list, err := store.ListByEvent(ctx, "ev-1")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	empty, err := store.ListByEvent(ctx, "ev-other")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

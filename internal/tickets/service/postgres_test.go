package tickets_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"ms-admission/internal/config"
	"ms-admission/internal/database"
	"ms-admission/internal/database/migrations"
	"ms-admission/internal/events"
	"ms-admission/internal/logger"
	"ms-admission/internal/models"
	"ms-admission/internal/redemption"
	tickets "ms-admission/internal/tickets/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
)

// startPostgres runs a throwaway PostgreSQL and applies the embedded migrations.
func startPostgres(t *testing.T) *bun.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping PostgreSQL integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "admission",
				"POSTGRES_PASSWORD": "admission",
				"POSTGRES_DB":       "admission",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432")
	require.NoError(t, err)

	log := logger.NewNop()
	db, err := database.Open(ctx, config.DatabaseConfig{
		DSN:          fmt.Sprintf("postgres://admission:admission@%s:%s/admission?sslmode=disable", host, port.Port()),
		MaxOpenConns: 40,
		MaxIdleConns: 40,
		MaxLifetime:  time.Minute,
	}, log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrations.NewRunner(db, log).MigrateUp())
	return db
}

func seedPostgres(t *testing.T, db *bun.DB, organizerID string, stock int) models.TicketType {
	t.Helper()
	_, types, err := events.NewService(db, database.TxOptions{}, logger.NewNop()).CreateEvent(context.Background(), events.NewEvent{
		Title:       "Integration Night",
		Venue:       "Hall 1",
		OrganizerID: organizerID,
		ScheduledAt: time.Now().Add(24 * time.Hour),
		TicketTypes: []events.NewTicketType{{Name: "General", Price: decimal.RequireFromString("12.50"), Stock: stock}},
	})
	require.NoError(t, err)
	require.Len(t, types, 1)
	return types[0]
}

func stockOf(t *testing.T, db *bun.DB, id string) int {
	t.Helper()
	var tt models.TicketType
	require.NoError(t, db.NewSelect().Model(&tt).Where("id = ?", id).Scan(context.Background()))
	return tt.Stock
}

func TestPostgres(t *testing.T) {
	db := startPostgres(t)
	opts := database.TxOptions{LockTimeout: 5 * time.Second, Timeout: 30 * time.Second}

	t.Run("no oversell under row locks", func(t *testing.T) {
		tt := seedPostgres(t, db, "org-pg", 5)
		svc := tickets.NewTicketService(db, tickets.NewIssuer(10), opts, logger.NewNop())

		const buyers = 30
		var wg sync.WaitGroup
		errs := make([]error, buyers)
		for i := 0; i < buyers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.Purchase(context.Background(), request(tt.ID, 1))
			}(i)
		}
		wg.Wait()

		var ok int
		for _, err := range errs {
			if err == nil {
				ok++
				continue
			}
			assert.ErrorIs(t, err, models.ErrInsufficientStock)
		}
		assert.Equal(t, 5, ok)
		assert.Equal(t, 0, stockOf(t, db, tt.ID))
	})

	t.Run("single redemption under row locks", func(t *testing.T) {
		tt := seedPostgres(t, db, "org-door", 1)
		svc := tickets.NewTicketService(db, tickets.NewIssuer(10), opts, logger.NewNop())
		receipt, err := svc.Purchase(context.Background(), request(tt.ID, 1))
		require.NoError(t, err)
		code := receipt.Tickets[0].Code

		gate := redemption.NewGate(db, opts, logger.NewNop())
		staff := models.Principal{ID: "org-door", Role: models.RoleOrganizer}

		const scanners = 20
		var wg sync.WaitGroup
		errs := make([]error, scanners)
		for i := 0; i < scanners; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = gate.Redeem(context.Background(), code, staff)
			}(i)
		}
		wg.Wait()

		var ok int
		for _, err := range errs {
			if err == nil {
				ok++
				continue
			}
			assert.ErrorIs(t, err, models.ErrAlreadyRedeemed)
		}
		assert.Equal(t, 1, ok)
	})

	t.Run("lock timeout surfaces as busy", func(t *testing.T) {
		tt := seedPostgres(t, db, "org-slow", 3)
		ctx := context.Background()

		holder, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		defer holder.Rollback()

		var locked models.TicketType
		require.NoError(t, holder.NewSelect().Model(&locked).Where("id = ?", tt.ID).For("UPDATE").Scan(ctx))

		svc := tickets.NewTicketService(db, tickets.NewIssuer(10), database.TxOptions{LockTimeout: 200 * time.Millisecond}, logger.NewNop())
		_, err = svc.Purchase(ctx, request(tt.ID, 1))
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrBusy)
		assert.True(t, models.IsRetryable(err))

		require.NoError(t, holder.Rollback())
		assert.Equal(t, 3, stockOf(t, db, tt.ID))

		_, err = svc.Purchase(ctx, request(tt.ID, 1))
		require.NoError(t, err)
		assert.Equal(t, 2, stockOf(t, db, tt.ID))
	})
}

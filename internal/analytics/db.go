package analytics

import (
	"context"
	"fmt"

	"ms-admission/internal/models"

	"github.com/uptrace/bun"
)

// DB reads sales aggregates. Plain statements on the pool only ever see
// committed rows, so in-flight reservations never show up.
type DB struct {
	bun bun.IDB
}

func NewDB(db bun.IDB) *DB {
	return &DB{bun: db}
}

// scope restricts q to events of organizerID; empty means every event.
func scope(q *bun.SelectQuery, organizerID string) *bun.SelectQuery {
	if organizerID == "" {
		return q
	}
	return q.Where("e.organizer_id = ?", organizerID)
}

func (db *DB) GetTotals(ctx context.Context, organizerID string) (*models.Stats, error) {
	var stats models.Stats

	q := db.bun.NewSelect().
		TableExpr("tickets AS t").
		ColumnExpr("COUNT(t.id) AS total_tickets").
		ColumnExpr("COALESCE(SUM(CASE WHEN t.used THEN 1 ELSE 0 END), 0) AS tickets_redeemed").
		ColumnExpr("COALESCE(SUM(tt.price), 0) AS total_revenue").
		Join("JOIN ticket_types AS tt ON tt.id = t.ticket_type_id").
		Join("JOIN events AS e ON e.id = tt.event_id")
	if err := scope(q, organizerID).Scan(ctx, &stats); err != nil {
		return nil, fmt.Errorf("aggregate tickets: %w", err)
	}

	events := db.bun.NewSelect().TableExpr("events AS e").ColumnExpr("COUNT(*)")
	if err := scope(events, organizerID).Scan(ctx, &stats.TotalEvents); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	return &stats, nil
}

func (db *DB) GetSalesByTicketType(ctx context.Context, organizerID string) ([]TicketTypeSales, error) {
	var rows []TicketTypeSales

	q := db.bun.NewSelect().
		TableExpr("ticket_types AS tt").
		ColumnExpr("tt.id AS ticket_type_id, tt.name AS ticket_type_name, tt.stock AS remaining").
		ColumnExpr("e.id AS event_id, e.title AS event_title").
		ColumnExpr("COUNT(t.id) AS tickets_sold").
		ColumnExpr("COALESCE(SUM(CASE WHEN t.used THEN 1 ELSE 0 END), 0) AS tickets_redeemed").
		ColumnExpr("COALESCE(SUM(CASE WHEN t.id IS NOT NULL THEN tt.price ELSE 0 END), 0) AS revenue").
		Join("JOIN events AS e ON e.id = tt.event_id").
		Join("LEFT JOIN tickets AS t ON t.ticket_type_id = tt.id").
		GroupExpr("tt.id, tt.name, tt.stock, e.id, e.title").
		OrderExpr("e.title ASC, tt.name ASC")
	if err := scope(q, organizerID).Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("aggregate ticket types: %w", err)
	}
	return rows, nil
}

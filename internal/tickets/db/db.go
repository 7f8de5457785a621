package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ms-admission/internal/database"
	"ms-admission/internal/models"

	"github.com/uptrace/bun"
)

// DB is the ticket store. Bun may be the pool or an open transaction; the
// purchase and redemption paths always pass a transaction.
type DB struct {
	Bun bun.IDB
}

func New(idb bun.IDB) *DB {
	return &DB{Bun: idb}
}

func (d *DB) CreateBuyer(ctx context.Context, buyer *models.Buyer) error {
	if buyer.CreatedAt.IsZero() {
		buyer.CreatedAt = time.Now().UTC()
	}
	_, err := d.Bun.NewInsert().Model(buyer).Exec(ctx)
	return err
}

func (d *DB) CreateTicket(ctx context.Context, ticket *models.Ticket) error {
	if ticket.IssuedAt.IsZero() {
		ticket.IssuedAt = time.Now().UTC()
	}
	_, err := d.Bun.NewInsert().Model(ticket).Exec(ctx)
	return err
}

func (d *DB) detailsQuery() *bun.SelectQuery {
	return d.Bun.NewSelect().
		TableExpr("tickets AS t").
		ColumnExpr("t.id AS ticket_id").
		ColumnExpr("t.code, t.used, t.used_at, t.payment_method").
		ColumnExpr("e.id AS event_id, e.title AS event_title, e.organizer_id").
		ColumnExpr("tt.id AS ticket_type_id, tt.name AS ticket_type_name, tt.price").
		ColumnExpr("b.name AS buyer_name, b.email AS buyer_email").
		Join("JOIN ticket_types AS tt ON tt.id = t.ticket_type_id").
		Join("JOIN events AS e ON e.id = tt.event_id").
		Join("JOIN buyers AS b ON b.id = t.buyer_id")
}

// GetDetailsByCode looks a ticket up by redemption code. With lock set the
// ticket row stays locked until the surrounding transaction ends.
func (d *DB) GetDetailsByCode(ctx context.Context, code string, lock bool) (*models.TicketDetails, error) {
	q := d.detailsQuery().Where("t.code = ?", code)
	if lock {
		q = database.ForUpdate(d.Bun, q, "t")
	}

	var details models.TicketDetails
	if err := q.Limit(1).Scan(ctx, &details); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NotFound("ticket", "with that code")
		}
		return nil, fmt.Errorf("load ticket by code: %w", err)
	}
	return &details, nil
}

// MarkUsed flips used to true. It reports false when the ticket was already used.
func (d *DB) MarkUsed(ctx context.Context, ticketID string, at time.Time) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("used = ?", true).
		Set("used_at = ?", at).
		Where("id = ?", ticketID).
		Where("used = ?", false).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("mark ticket %s used: %w", ticketID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (d *DB) ListByEvent(ctx context.Context, eventID string) ([]models.TicketDetails, error) {
	var out []models.TicketDetails
	err := d.detailsQuery().
		Where("e.id = ?", eventID).
		OrderExpr("t.issued_at ASC, t.id ASC").
		Scan(ctx, &out)
	if err != nil {
		return nil, fmt.Errorf("list tickets of event %s: %w", eventID, err)
	}
	return out, nil
}

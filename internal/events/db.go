package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ms-admission/internal/database"
	"ms-admission/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun bun.IDB
}

func NewDB(idb bun.IDB) *DB {
	return &DB{Bun: idb}
}

func (d *DB) CreateEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewInsert().Model(event).Exec(ctx)
	return err
}

func (d *DB) CreateTicketType(ctx context.Context, tt *models.TicketType) error {
	_, err := d.Bun.NewInsert().Model(tt).Exec(ctx)
	return err
}

// GetEvent returns nil without error when the event does not exist.
func (d *DB) GetEvent(ctx context.Context, id string, lock bool) (*models.Event, error) {
	var event models.Event
	q := d.Bun.NewSelect().Model(&event).Where("id = ?", id)
	if lock {
		q = database.ForUpdate(d.Bun, q)
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load event %s: %w", id, err)
	}
	return &event, nil
}

// LockTicketTypes locks every ticket type of the event, which waits out
// purchases already holding one of those rows.
func (d *DB) LockTicketTypes(ctx context.Context, eventID string) ([]models.TicketType, error) {
	var types []models.TicketType
	q := d.Bun.NewSelect().Model(&types).Where("event_id = ?", eventID).OrderExpr("id ASC")
	if err := database.ForUpdate(d.Bun, q).Scan(ctx); err != nil {
		return nil, fmt.Errorf("lock ticket types of %s: %w", eventID, err)
	}
	return types, nil
}

func (d *DB) CountIssuedTickets(ctx context.Context, eventID string) (int, error) {
	return d.Bun.NewSelect().
		TableExpr("tickets AS t").
		Join("JOIN ticket_types AS tt ON tt.id = t.ticket_type_id").
		Where("tt.event_id = ?", eventID).
		Count(ctx)
}

func (d *DB) DeleteEvent(ctx context.Context, eventID string) error {
	if _, err := d.Bun.NewDelete().
		Model((*models.TicketType)(nil)).
		Where("event_id = ?", eventID).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete ticket types of %s: %w", eventID, err)
	}

	if _, err := d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("id = ?", eventID).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete event %s: %w", eventID, err)
	}
	return nil
}

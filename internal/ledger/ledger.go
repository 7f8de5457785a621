// Package ledger owns the ticket type stock counter.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ms-admission/internal/database"
	"ms-admission/internal/models"

	"github.com/uptrace/bun"
)

// Reservation is stock taken from a ticket type inside a still-open
// transaction. It becomes durable only when that transaction commits.
type Reservation struct {
	Tx         bun.Tx
	TicketType models.TicketType
	Quantity   int
}

type Ledger struct{}

func New() *Ledger {
	return &Ledger{}
}

// Reserve locks the ticket type row, re-reads its stock under the lock and
// decrements it by quantity. Nothing is mutated when the type does not exist
// or holds fewer than quantity units.
func (l *Ledger) Reserve(ctx context.Context, tx bun.Tx, ticketTypeID string, quantity int) (*Reservation, error) {
	if quantity < 1 {
		return nil, &models.Error{Kind: models.KindInvalidQuantity, Message: fmt.Sprintf("quantity must be at least 1, got %d", quantity)}
	}

	var tt models.TicketType
	q := tx.NewSelect().Model(&tt).Where("id = ?", ticketTypeID)
	if err := database.ForUpdate(tx, q).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NotFound("ticket type", ticketTypeID)
		}
		return nil, fmt.Errorf("lock ticket type %s: %w", ticketTypeID, err)
	}

	if tt.Stock < quantity {
		return nil, models.InsufficientStock(tt.Name, quantity, tt.Stock)
	}

	res, err := tx.NewUpdate().
		Model((*models.TicketType)(nil)).
		Set("stock = stock - ?", quantity).
		Where("id = ?", ticketTypeID).
		Where("stock >= ?", quantity).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("decrement stock of %s: %w", ticketTypeID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("decrement stock of %s: %w", ticketTypeID, err)
	} else if n != 1 {
		// Unreachable while the row lock is held.
		return nil, models.InsufficientStock(tt.Name, quantity, tt.Stock)
	}

	tt.Stock -= quantity
	return &Reservation{Tx: tx, TicketType: tt, Quantity: quantity}, nil
}

package analytics

import (
	"context"

	"ms-admission/internal/database"
	"ms-admission/internal/models"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// TicketTypeSales contains sales metrics for one ticket type.
type TicketTypeSales struct {
	TicketTypeID    string          `bun:"ticket_type_id" json:"ticket_type_id"`
	TicketTypeName  string          `bun:"ticket_type_name" json:"ticket_type_name"`
	EventID         string          `bun:"event_id" json:"event_id"`
	EventTitle      string          `bun:"event_title" json:"event_title"`
	TicketsSold     int             `bun:"tickets_sold" json:"tickets_sold"`
	TicketsRedeemed int             `bun:"tickets_redeemed" json:"tickets_redeemed"`
	Remaining       int             `bun:"remaining" json:"remaining"`
	Revenue         decimal.Decimal `bun:"revenue" json:"revenue"`
}

type Service struct {
	db *DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db: NewDB(db)}
}

// scopeFor returns the organizer filter for principal: none for admins, the
// principal's own id for organizers.
func scopeFor(principal models.Principal) (string, error) {
	switch principal.Role {
	case models.RoleAdmin:
		return "", nil
	case models.RoleOrganizer:
		if principal.ID == "" {
			return "", models.ErrForbidden
		}
		return principal.ID, nil
	}
	return "", models.ErrForbidden
}

// Stats returns tickets sold, redeemed and revenue over the principal's events.
func (s *Service) Stats(ctx context.Context, principal models.Principal) (*models.Stats, error) {
	organizerID, err := scopeFor(principal)
	if err != nil {
		return nil, err
	}
	stats, err := s.db.GetTotals(ctx, organizerID)
	if err != nil {
		return nil, database.Classify(err)
	}
	return stats, nil
}

func (s *Service) SalesByTicketType(ctx context.Context, principal models.Principal) ([]TicketTypeSales, error) {
	organizerID, err := scopeFor(principal)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.GetSalesByTicketType(ctx, organizerID)
	if err != nil {
		return nil, database.Classify(err)
	}
	return rows, nil
}

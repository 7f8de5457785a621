// Package events holds the small amount of event plumbing the admission core
// needs: seeding events with ticket types, listing an event's tickets and
// the deletion policy.
package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ms-admission/internal/database"
	"ms-admission/internal/logger"
	"ms-admission/internal/models"
	ticketdb "ms-admission/internal/tickets/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type NewTicketType struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type NewEvent struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	Venue       string          `json:"venue"`
	OrganizerID string          `json:"organizer_id"`
	TicketTypes []NewTicketType `json:"ticket_types"`
}

type Service struct {
	DB     *bun.DB
	Tx     database.TxOptions
	Logger *logger.Logger
}

func NewService(db *bun.DB, tx database.TxOptions, log *logger.Logger) *Service {
	return &Service{DB: db, Tx: tx, Logger: log}
}

func validate(in NewEvent) error {
	if strings.TrimSpace(in.Title) == "" {
		return models.InvalidInput("event title is required")
	}
	if strings.TrimSpace(in.Venue) == "" {
		return models.InvalidInput("event venue is required")
	}
	if strings.TrimSpace(in.OrganizerID) == "" {
		return models.InvalidInput("event organizer is required")
	}
	for _, tt := range in.TicketTypes {
		if strings.TrimSpace(tt.Name) == "" {
			return models.InvalidInput("ticket type name is required")
		}
		if tt.Price.IsNegative() {
			return models.InvalidInput(fmt.Sprintf("ticket type %q has a negative price", tt.Name))
		}
		if tt.Stock < 0 {
			return models.InvalidInput(fmt.Sprintf("ticket type %q has negative stock", tt.Name))
		}
	}
	return nil
}

// CreateEvent inserts an event with its ticket types in one transaction.
func (s *Service) CreateEvent(ctx context.Context, in NewEvent) (*models.Event, []models.TicketType, error) {
	if err := validate(in); err != nil {
		return nil, nil, err
	}

	event := &models.Event{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		ScheduledAt: in.ScheduledAt.UTC(),
		Venue:       strings.TrimSpace(in.Venue),
		OrganizerID: in.OrganizerID,
		CreatedAt:   time.Now().UTC(),
	}
	types := make([]models.TicketType, 0, len(in.TicketTypes))

	err := database.RunInTx(ctx, s.DB, s.Tx, func(ctx context.Context, tx bun.Tx) error {
		store := NewDB(tx)
		if err := store.CreateEvent(ctx, event); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
		for _, nt := range in.TicketTypes {
			tt := models.TicketType{
				ID:      uuid.NewString(),
				EventID: event.ID,
				Name:    strings.TrimSpace(nt.Name),
				Price:   nt.Price,
				Stock:   nt.Stock,
			}
			if err := store.CreateTicketType(ctx, &tt); err != nil {
				return fmt.Errorf("insert ticket type %q: %w", tt.Name, err)
			}
			types = append(types, tt)
		}
		return nil
	})
	if err != nil {
		return nil, nil, database.Classify(err)
	}

	s.Logger.LogDatabase("INSERT", "events", fmt.Sprintf("event %s with %d ticket type(s)", event.ID, len(types)))
	return event, types, nil
}

// authorize returns Forbidden to non-admins for missing and foreign events alike.
func authorize(event *models.Event, eventID string, principal models.Principal) error {
	if event == nil {
		if principal.IsAdmin() {
			return models.NotFound("event", eventID)
		}
		return models.ErrForbidden
	}
	if !principal.CanManage(event.OrganizerID) {
		return models.ErrForbidden
	}
	return nil
}

// DeleteEvent removes an event and its ticket types. Events with issued
// tickets are never deleted.
func (s *Service) DeleteEvent(ctx context.Context, eventID string, principal models.Principal) error {
	err := database.RunInTx(ctx, s.DB, s.Tx, func(ctx context.Context, tx bun.Tx) error {
		store := NewDB(tx)

		event, err := store.GetEvent(ctx, eventID, true)
		if err != nil {
			return err
		}
		if err := authorize(event, eventID, principal); err != nil {
			return err
		}

		if _, err := store.LockTicketTypes(ctx, eventID); err != nil {
			return err
		}
		issued, err := store.CountIssuedTickets(ctx, eventID)
		if err != nil {
			return fmt.Errorf("count tickets of %s: %w", eventID, err)
		}
		if issued > 0 {
			return &models.Error{
				Kind:    models.KindConflict,
				Message: fmt.Sprintf("event %s has %d issued ticket(s) and cannot be deleted", eventID, issued),
			}
		}

		return store.DeleteEvent(ctx, eventID)
	})
	if err != nil {
		err = database.Classify(err)
		if models.KindOf(err) == models.KindForbidden {
			s.Logger.LogSecurity("DELETE_DENIED", fmt.Sprintf("principal %s may not delete event %s", principal.ID, eventID))
		}
		return err
	}

	s.Logger.LogDatabase("DELETE", "events", fmt.Sprintf("event %s deleted by %s", eventID, principal.ID))
	return nil
}

// ListEventTickets returns the tickets of one event with type and buyer data.
func (s *Service) ListEventTickets(ctx context.Context, eventID string, principal models.Principal) ([]models.TicketDetails, error) {
	event, err := NewDB(s.DB).GetEvent(ctx, eventID, false)
	if err != nil {
		return nil, database.Classify(err)
	}
	if err := authorize(event, eventID, principal); err != nil {
		return nil, err
	}

	list, err := ticketdb.New(s.DB).ListByEvent(ctx, eventID)
	if err != nil {
		return nil, database.Classify(err)
	}
	return list, nil
}

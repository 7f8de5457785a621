// Package redemption consumes tickets at the venue door.
package redemption

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ms-admission/internal/database"
	"ms-admission/internal/logger"
	"ms-admission/internal/metrics"
	"ms-admission/internal/models"
	ticketdb "ms-admission/internal/tickets/db"

	"github.com/uptrace/bun"
)

// RedeemPublisher is notified after a redemption commits.
type RedeemPublisher interface {
	PublishTicketRedeemed(ctx context.Context, details models.TicketDetails, by models.Principal) error
}

type Gate struct {
	DB        *bun.DB
	Tx        database.TxOptions
	Publisher RedeemPublisher
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
	Now       func() time.Time
}

func NewGate(db *bun.DB, tx database.TxOptions, log *logger.Logger) *Gate {
	return &Gate{DB: db, Tx: tx, Logger: log, Now: time.Now}
}

// Redeem checks and flips the ticket's used marker in one transaction while
// holding the ticket row lock. A ticket that was already used yields an
// AlreadyRedeemed error carrying its details.
func (g *Gate) Redeem(ctx context.Context, code string, principal models.Principal) (*models.TicketDetails, error) {
	start := time.Now()

	details, err := g.redeem(ctx, strings.TrimSpace(code), principal)
	took := time.Since(start)
	if err != nil {
		kind := models.KindOf(err)
		g.Metrics.ObserveRedemption(string(kind), took)

		switch kind {
		case models.KindAlreadyRedeemed:
			var typed *models.Error
			if errors.As(err, &typed) && typed.Details != nil {
				g.Logger.Warn("REDEEM", fmt.Sprintf("Ticket %s already redeemed, replay attempt by %s", typed.Details.TicketID, principal.ID))
			}
		case models.KindForbidden:
			g.Logger.LogSecurity("REDEEM_DENIED", fmt.Sprintf("principal %s (%s) may not redeem this code", principal.ID, principal.Role))
		case models.KindNotFound, models.KindBusy, models.KindInvalidInput:
			g.Logger.Warn("REDEEM", fmt.Sprintf("Redemption rejected (%s): %v", kind, err))
		default:
			g.Logger.Error("REDEEM", fmt.Sprintf("Redemption failed: %v", err))
		}
		return nil, err
	}

	g.Metrics.ObserveRedemption(metrics.ResultSuccess, took)
	g.Logger.LogRedemption("USED", details.TicketID, fmt.Sprintf("event %s redeemed by %s", details.EventID, principal.ID))

	if g.Publisher != nil {
		if err := g.Publisher.PublishTicketRedeemed(ctx, *details, principal); err != nil {
			g.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish redemption of %s: %v", details.TicketID, err))
		}
	}
	return details, nil
}

func (g *Gate) redeem(ctx context.Context, code string, principal models.Principal) (*models.TicketDetails, error) {
	if code == "" {
		return nil, models.InvalidInput("redemption code is required")
	}

	var out *models.TicketDetails
	err := database.RunInTx(ctx, g.DB, g.Tx, func(ctx context.Context, tx bun.Tx) error {
		store := ticketdb.New(tx)

		details, err := store.GetDetailsByCode(ctx, code, true)
		if err != nil {
			return err
		}

		// Same error whether the event belongs to someone else or the role is unknown.
		if !principal.CanManage(details.OrganizerID) {
			return models.ErrForbidden
		}

		if details.Used {
			return models.AlreadyRedeemed(details)
		}

		at := g.now()
		flipped, err := store.MarkUsed(ctx, details.TicketID, at)
		if err != nil {
			return err
		}
		if !flipped {
			return models.AlreadyRedeemed(details)
		}

		details.Used = true
		details.UsedAt = &at
		out = details
		return nil
	})
	if err != nil {
		return nil, database.Classify(err)
	}
	return out, nil
}

func (g *Gate) now() time.Time {
	if g.Now == nil {
		return time.Now().UTC()
	}
	return g.Now().UTC()
}

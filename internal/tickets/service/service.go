package tickets

import (
	"context"
	"fmt"
	"time"

	"ms-admission/internal/database"
	"ms-admission/internal/ledger"
	"ms-admission/internal/logger"
	"ms-admission/internal/metrics"
	"ms-admission/internal/models"
	"ms-admission/internal/tickets/idempotency"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// PurchasePublisher is notified after a purchase commits.
type PurchasePublisher interface {
	PublishTicketsPurchased(ctx context.Context, receipt models.PurchaseReceipt) error
}

// ReplayStore backs Idempotency-Key handling.
type ReplayStore interface {
	Claim(ctx context.Context, key, fingerprint string) (bool, error)
	Load(ctx context.Context, key string) (*idempotency.Record, error)
	Save(ctx context.Context, key, fingerprint string, receipt *models.PurchaseReceipt) error
	Hold(ctx context.Context, key string) error
	Release(ctx context.Context, key string) error
}

type TicketService struct {
	DB        *bun.DB
	Ledger    *ledger.Ledger
	Issuer    *Issuer
	Tx        database.TxOptions
	Publisher PurchasePublisher
	Replays   ReplayStore
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
}

func NewTicketService(db *bun.DB, issuer *Issuer, tx database.TxOptions, log *logger.Logger) *TicketService {
	return &TicketService{
		DB:     db,
		Ledger: ledger.New(),
		Issuer: issuer,
		Tx:     tx,
		Logger: log,
	}
}

// Purchase reserves stock and issues tickets in one transaction.
func (s *TicketService) Purchase(ctx context.Context, req models.PurchaseRequest) (*models.PurchaseReceipt, error) {
	start := time.Now()

	receipt, err := s.purchase(ctx, req)
	if err != nil {
		kind := models.KindOf(err)
		s.Metrics.ObservePurchase(string(kind), 0, time.Since(start))
		if kind == models.KindInternal {
			s.Logger.Error("PURCHASE", fmt.Sprintf("Purchase of %s failed: %v", req.TicketTypeID, err))
		} else {
			s.Logger.Warn("PURCHASE", fmt.Sprintf("Purchase of %s rejected (%s): %v", req.TicketTypeID, kind, err))
		}
		return nil, err
	}

	s.Metrics.ObservePurchase(metrics.ResultSuccess, len(receipt.Tickets), time.Since(start))
	s.Logger.LogPurchase("COMMIT", req.TicketTypeID, fmt.Sprintf("%d ticket(s) issued to buyer %s", len(receipt.Tickets), receipt.Buyer.ID))

	if s.Publisher != nil {
		if err := s.Publisher.PublishTicketsPurchased(ctx, *receipt); err != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish purchase of buyer %s: %v", receipt.Buyer.ID, err))
		}
	}
	return receipt, nil
}

func (s *TicketService) purchase(ctx context.Context, req models.PurchaseRequest) (*models.PurchaseReceipt, error) {
	req.Normalize()
	if err := s.validate(req); err != nil {
		return nil, err
	}

	var receipt *models.PurchaseReceipt
	err := database.RunInTx(ctx, s.DB, s.Tx, func(ctx context.Context, tx bun.Tx) error {
		res, err := s.Ledger.Reserve(ctx, tx, req.TicketTypeID, req.Quantity)
		if err != nil {
			return err
		}

		buyer, issued, err := s.Issuer.Issue(ctx, res, BuyerInfo{Name: req.BuyerName, Email: req.BuyerEmail}, req.Quantity, req.PaymentMethod)
		if err != nil {
			return err
		}

		receipt = newReceipt(res, buyer, issued)
		return nil
	})
	if err != nil {
		return nil, database.Classify(err)
	}
	return receipt, nil
}

func (s *TicketService) validate(req models.PurchaseRequest) error {
	switch {
	case req.BuyerName == "":
		return models.InvalidInput("buyer name is required")
	case req.BuyerEmail == "":
		return models.InvalidInput("buyer email is required")
	case req.TicketTypeID == "":
		return models.InvalidInput("ticket type is required")
	case req.PaymentMethod == "":
		return models.InvalidInput("payment method is required")
	}
	return s.Issuer.CheckQuantity(req.Quantity)
}

// PurchaseWithKey replays the stored receipt when key was already used for
// the same request. Reusing a key for a different request is a Conflict.
// Without a key or a replay store it is a plain Purchase.
func (s *TicketService) PurchaseWithKey(ctx context.Context, key string, req models.PurchaseRequest) (*models.PurchaseReceipt, bool, error) {
	if key == "" || s.Replays == nil {
		receipt, err := s.Purchase(ctx, req)
		return receipt, false, err
	}

	fingerprint := req.Fingerprint()

	if prior, err := s.Replays.Load(ctx, key); err != nil {
		return nil, false, models.NewError(models.KindBusy, "idempotency store unavailable", err)
	} else if prior != nil {
		return replay(prior, fingerprint)
	}

	claimed, err := s.Replays.Claim(ctx, key, fingerprint)
	if err != nil {
		return nil, false, models.NewError(models.KindBusy, "idempotency store unavailable", err)
	}
	if !claimed {
		if prior, err := s.Replays.Load(ctx, key); err == nil && prior != nil {
			return replay(prior, fingerprint)
		}
		return nil, false, &models.Error{Kind: models.KindBusy, Message: "a purchase with this idempotency key is in progress"}
	}

	receipt, err := s.Purchase(ctx, req)
	if err != nil {
		if relErr := s.Replays.Release(ctx, key); relErr != nil {
			s.Logger.Warn("REDIS", fmt.Sprintf("Failed to release idempotency key: %v", relErr))
		}
		return nil, false, err
	}

	if err := s.Replays.Save(ctx, key, fingerprint, receipt); err != nil {
		s.Logger.Error("REDIS", fmt.Sprintf("Failed to store receipt for buyer %s: %v", receipt.Buyer.ID, err))
		if holdErr := s.Replays.Hold(ctx, key); holdErr != nil {
			s.Logger.Error("REDIS", fmt.Sprintf("Idempotency key of buyer %s may reopen: %v", receipt.Buyer.ID, holdErr))
		}
	}
	return receipt, false, nil
}

func replay(prior *idempotency.Record, fingerprint string) (*models.PurchaseReceipt, bool, error) {
	if prior.Fingerprint != fingerprint {
		return nil, false, &models.Error{
			Kind:    models.KindConflict,
			Message: "idempotency key was already used for a different purchase request",
		}
	}
	receipt := prior.Receipt
	return &receipt, true, nil
}

func newReceipt(res *ledger.Reservation, buyer *models.Buyer, issued []models.Ticket) *models.PurchaseReceipt {
	out := &models.PurchaseReceipt{
		Buyer:        *buyer,
		TicketTypeID: res.TicketType.ID,
		UnitPrice:    res.TicketType.Price,
		Total:        res.TicketType.Price.Mul(decimal.NewFromInt(int64(len(issued)))),
		Tickets:      make([]models.IssuedTicket, 0, len(issued)),
	}
	for _, t := range issued {
		out.Tickets = append(out.Tickets, models.IssuedTicket{ID: t.ID, Code: t.Code})
	}
	return out
}

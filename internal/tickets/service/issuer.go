package tickets

import (
	"context"
	"fmt"
	"time"

	"ms-admission/internal/ledger"
	"ms-admission/internal/models"
	ticketdb "ms-admission/internal/tickets/db"

	"github.com/google/uuid"
)

const DefaultMaxPerPurchase = 10

// CodeGenerator mints redemption codes.
type CodeGenerator func() (string, error)

// NewRedemptionCode returns a random UUID v4, 122 bits of entropy.
func NewRedemptionCode() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

type BuyerInfo struct {
	Name  string
	Email string
}

// Issuer turns a reservation into tickets inside the reservation's transaction.
type Issuer struct {
	maxPerPurchase int
	newCode        CodeGenerator
	now            func() time.Time
}

type IssuerOption func(*Issuer)

func WithCodeGenerator(gen CodeGenerator) IssuerOption {
	return func(i *Issuer) { i.newCode = gen }
}

func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) { i.now = now }
}

func NewIssuer(maxPerPurchase int, opts ...IssuerOption) *Issuer {
	if maxPerPurchase < 1 {
		maxPerPurchase = DefaultMaxPerPurchase
	}
	i := &Issuer{
		maxPerPurchase: maxPerPurchase,
		newCode:        NewRedemptionCode,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Issuer) CheckQuantity(quantity int) error {
	if quantity < 1 || quantity > i.maxPerPurchase {
		return models.InvalidQuantity(quantity, i.maxPerPurchase)
	}
	return nil
}

// Issue inserts a new buyer and one unused ticket per reserved unit. Any
// error leaves the caller's transaction to be rolled back, which also undoes
// the reservation.
func (i *Issuer) Issue(ctx context.Context, res *ledger.Reservation, buyer BuyerInfo, quantity int, paymentMethod string) (*models.Buyer, []models.Ticket, error) {
	if res == nil {
		return nil, nil, fmt.Errorf("issue without reservation")
	}
	if err := i.CheckQuantity(quantity); err != nil {
		return nil, nil, err
	}
	if quantity != res.Quantity {
		return nil, nil, fmt.Errorf("issue %d tickets against a reservation of %d", quantity, res.Quantity)
	}

	store := ticketdb.New(res.Tx)
	now := i.now().UTC()

	b := &models.Buyer{
		ID:        uuid.NewString(),
		Name:      buyer.Name,
		Email:     buyer.Email,
		CreatedAt: now,
	}
	if err := store.CreateBuyer(ctx, b); err != nil {
		return nil, nil, fmt.Errorf("insert buyer: %w", err)
	}

	issued := make([]models.Ticket, 0, quantity)
	for n := 1; n <= quantity; n++ {
		code, err := i.newCode()
		if err != nil {
			return nil, nil, fmt.Errorf("generate redemption code: %w", err)
		}

		ticket := models.Ticket{
			ID:            uuid.NewString(),
			BuyerID:       b.ID,
			TicketTypeID:  res.TicketType.ID,
			Code:          code,
			PaymentMethod: paymentMethod,
			Used:          false,
			IssuedAt:      now,
		}
		if err := store.CreateTicket(ctx, &ticket); err != nil {
			return nil, nil, fmt.Errorf("insert ticket %d of %d: %w", n, quantity, err)
		}
		issued = append(issued, ticket)
	}

	return b, issued, nil
}

package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type PurchaseRequest struct {
	BuyerName     string `json:"buyer_name"`
	BuyerEmail    string `json:"buyer_email"`
	TicketTypeID  string `json:"ticket_type_id"`
	Quantity      int    `json:"quantity"`
	PaymentMethod string `json:"payment_method"`
}

// Normalize trims surrounding whitespace from the free-text fields.
func (r *PurchaseRequest) Normalize() {
	r.BuyerName = strings.TrimSpace(r.BuyerName)
	r.BuyerEmail = strings.TrimSpace(r.BuyerEmail)
	r.TicketTypeID = strings.TrimSpace(r.TicketTypeID)
	r.PaymentMethod = strings.TrimSpace(r.PaymentMethod)
}

// Fingerprint identifies the purchase a request asks for. Two requests with
// the same fingerprint buy the same thing; emails compare case-insensitively.
func (r PurchaseRequest) Fingerprint() string {
	r.Normalize()
	h := sha256.New()
	for _, part := range []string{
		r.TicketTypeID,
		strconv.Itoa(r.Quantity),
		r.BuyerName,
		strings.ToLower(r.BuyerEmail),
		r.PaymentMethod,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

type IssuedTicket struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

type PurchaseReceipt struct {
	Buyer        Buyer           `json:"buyer"`
	TicketTypeID string          `json:"ticket_type_id"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Total        decimal.Decimal `json:"total"`
	Tickets      []IssuedTicket  `json:"tickets"`
}

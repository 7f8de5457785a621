package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	ID            string     `bun:"id,pk" json:"id"`
	BuyerID       string     `bun:"buyer_id,notnull" json:"buyer_id"`
	TicketTypeID  string     `bun:"ticket_type_id,notnull" json:"ticket_type_id"`
	Code          string     `bun:"code,notnull,unique" json:"code"`
	PaymentMethod string     `bun:"payment_method,notnull" json:"payment_method"`
	Used          bool       `bun:"used,notnull,default:false" json:"used"`
	UsedAt        *time.Time `bun:"used_at,nullzero" json:"used_at,omitempty"`
	IssuedAt      time.Time  `bun:"issued_at,notnull" json:"issued_at"`
}

// TicketDetails is a ticket joined with its type, event and buyer.
// It is the payload of a redemption, successful or not.
type TicketDetails struct {
	TicketID       string          `bun:"ticket_id" json:"ticket_id"`
	Code           string          `bun:"code" json:"code"`
	Used           bool            `bun:"used" json:"used"`
	UsedAt         *time.Time      `bun:"used_at" json:"used_at,omitempty"`
	PaymentMethod  string          `bun:"payment_method" json:"payment_method"`
	EventID        string          `bun:"event_id" json:"event_id"`
	EventTitle     string          `bun:"event_title" json:"event_title"`
	OrganizerID    string          `bun:"organizer_id" json:"-"`
	TicketTypeID   string          `bun:"ticket_type_id" json:"ticket_type_id"`
	TicketTypeName string          `bun:"ticket_type_name" json:"ticket_type_name"`
	Price          decimal.Decimal `bun:"price" json:"price"`
	BuyerName      string          `bun:"buyer_name" json:"buyer_name"`
	BuyerEmail     string          `bun:"buyer_email" json:"buyer_email"`
}

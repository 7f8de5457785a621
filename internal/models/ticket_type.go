package models

import (
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// TicketType is a priced admission category with its own finite stock.
// Stock is only mutated by the inventory ledger inside a purchase transaction.
type TicketType struct {
	bun.BaseModel `bun:"table:ticket_types"`

	ID      string          `bun:"id,pk" json:"id"`
	EventID string          `bun:"event_id,notnull" json:"event_id"`
	Name    string          `bun:"name,notnull" json:"name"`
	Price   decimal.Decimal `bun:"price,type:decimal(12,2),notnull" json:"price"`
	Stock   int             `bun:"stock,notnull" json:"stock"`
}

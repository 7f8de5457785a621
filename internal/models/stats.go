package models

import "github.com/shopspring/decimal"

type Stats struct {
	TotalTickets    int             `bun:"total_tickets" json:"total_tickets"`
	TicketsRedeemed int             `bun:"tickets_redeemed" json:"tickets_redeemed"`
	TotalRevenue    decimal.Decimal `bun:"total_revenue" json:"total_revenue"`
	TotalEvents     int             `bun:"total_events" json:"total_events"`
}

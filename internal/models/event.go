package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          string    `bun:"id,pk" json:"id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Description string    `bun:"description" json:"description,omitempty"`
	ScheduledAt time.Time `bun:"scheduled_at,notnull" json:"scheduled_at"`
	Venue       string    `bun:"venue,notnull" json:"venue"`
	OrganizerID string    `bun:"organizer_id,notnull" json:"organizer_id"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

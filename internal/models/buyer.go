package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Buyer struct {
	bun.BaseModel `bun:"table:buyers"`

	ID        string    `bun:"id,pk" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Email     string    `bun:"email,notnull" json:"email"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

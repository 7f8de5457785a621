package database

import (
	"context"
	"fmt"

	"ms-admission/internal/models"

	"github.com/uptrace/bun"
)

// CreateSchema creates the tables from the bun models. Tests use it on
// SQLite; PostgreSQL deployments go through the migrations package.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	tables := []struct {
		model interface{}
		fks   []string
	}{
		{model: (*models.Event)(nil)},
		{model: (*models.TicketType)(nil), fks: []string{`("event_id") REFERENCES "events" ("id")`}},
		{model: (*models.Buyer)(nil)},
		{model: (*models.Ticket)(nil), fks: []string{
			`("buyer_id") REFERENCES "buyers" ("id")`,
			`("ticket_type_id") REFERENCES "ticket_types" ("id")`,
		}},
	}

	for _, table := range tables {
		q := db.NewCreateTable().Model(table.model).IfNotExists()
		for _, fk := range table.fks {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", table.model, err)
		}
	}
	return nil
}

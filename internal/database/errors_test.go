package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"ms-admission/internal/models"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want models.ErrorKind
	}{
		{"lock timeout", &pq.Error{Code: "55P03"}, models.KindBusy},
		{"serialization", fmt.Errorf("commit: %w", &pq.Error{Code: "40001"}), models.KindBusy},
		{"deadlock", &pq.Error{Code: "40P01"}, models.KindBusy},
		{"unique violation", &pq.Error{Code: "23505"}, models.KindInternal},
		{"syntax", &pq.Error{Code: "42601"}, models.KindInternal},
		{"deadline", fmt.Errorf("scan: %w", context.DeadlineExceeded), models.KindBusy},
		{"no rows", sql.ErrNoRows, models.KindNotFound},
		{"sqlite busy", errors.New("database is locked (5) (SQLITE_BUSY)"), models.KindBusy},
		{"other", errors.New("connection reset"), models.KindInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.err)
			assert.Equal(t, tc.want, models.KindOf(got))
			assert.ErrorIs(t, got, tc.err)
		})
	}
}

func TestClassifyKeepsTypedErrors(t *testing.T) {
	typed := models.InsufficientStock("GA", 1, 0)
	assert.Same(t, typed, Classify(typed))
	assert.Nil(t, Classify(nil))
}

package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ms-admission/internal/config"
	"ms-admission/internal/logger"
	"ms-admission/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

var topics = config.TopicConfig{TicketsPurchased: "purchased", TicketRedeemed: "redeemed"}

func TestPublishTicketsPurchasedOmitsCodes(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, topics: topics, log: logger.NewNop()}

	receipt := models.PurchaseReceipt{
		Buyer:        models.Buyer{ID: "b-1", Email: "ana@example.com"},
		TicketTypeID: "tt-1",
		Total:        decimal.NewFromInt(40),
		Tickets:      []models.IssuedTicket{{ID: "t-1", Code: "secret-1"}, {ID: "t-2", Code: "secret-2"}},
	}
	require.NoError(t, p.PublishTicketsPurchased(context.Background(), receipt))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "purchased", msg.Topic)
	assert.Equal(t, "tt-1", string(msg.Key))
	assert.NotContains(t, string(msg.Value), "secret-")

	var event TicketsPurchased
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, 2, event.Quantity)
	assert.Equal(t, []string{"t-1", "t-2"}, event.TicketIDs)
	assert.True(t, decimal.NewFromInt(40).Equal(event.Total))
}

func TestPublishTicketRedeemed(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, topics: topics, log: logger.NewNop()}
	at := time.Date(2026, 5, 1, 21, 0, 0, 0, time.UTC)

	err := p.PublishTicketRedeemed(context.Background(),
		models.TicketDetails{TicketID: "t-1", EventID: "ev-1", TicketTypeID: "tt-1", UsedAt: &at},
		models.Principal{ID: "org-1", Role: models.RoleOrganizer})
	require.NoError(t, err)

	var event TicketRedeemed
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &event))
	assert.Equal(t, "redeemed", w.messages[0].Topic)
	assert.Equal(t, "org-1", event.RedeemedBy)
	assert.Equal(t, "organizer", event.Role)
	assert.True(t, at.Equal(event.RedeemedAt))
}

func TestPublishPropagatesWriterError(t *testing.T) {
	p := &Producer{writer: &fakeWriter{err: errors.New("no leader")}, topics: topics, log: logger.NewNop()}

	err := p.PublishTicketRedeemed(context.Background(), models.TicketDetails{TicketID: "t-1"}, models.Principal{})
	assert.ErrorContains(t, err, "no leader")
}

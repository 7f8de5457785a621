package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ms-admission/internal/config"
	"ms-admission/internal/logger"
	"ms-admission/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// TicketsPurchased is published once per committed purchase. Redemption
// codes are credentials and never leave the database.
type TicketsPurchased struct {
	BuyerID      string          `json:"buyer_id"`
	BuyerEmail   string          `json:"buyer_email"`
	TicketTypeID string          `json:"ticket_type_id"`
	Quantity     int             `json:"quantity"`
	Total        decimal.Decimal `json:"total"`
	TicketIDs    []string        `json:"ticket_ids"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

type TicketRedeemed struct {
	TicketID     string    `json:"ticket_id"`
	EventID      string    `json:"event_id"`
	TicketTypeID string    `json:"ticket_type_id"`
	RedeemedBy   string    `json:"redeemed_by"`
	Role         string    `json:"role"`
	RedeemedAt   time.Time `json:"redeemed_at"`
}

type Producer struct {
	writer messageWriter
	topics config.TopicConfig
	log    *logger.Logger
}

func NewProducer(brokers []string, topics config.TopicConfig, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
	return &Producer{writer: writer, topics: topics, log: log}
}

func (p *Producer) publish(ctx context.Context, topic, key string, payload interface{}) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", topic, err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{Topic: topic, Key: []byte(key), Value: value}); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	p.log.LogKafka("PUBLISH", topic, key)
	return nil
}

// PublishTicketsPurchased is keyed by ticket type so one type's sales stay ordered.
func (p *Producer) PublishTicketsPurchased(ctx context.Context, receipt models.PurchaseReceipt) error {
	ids := make([]string, 0, len(receipt.Tickets))
	for _, t := range receipt.Tickets {
		ids = append(ids, t.ID)
	}

	return p.publish(ctx, p.topics.TicketsPurchased, receipt.TicketTypeID, TicketsPurchased{
		BuyerID:      receipt.Buyer.ID,
		BuyerEmail:   receipt.Buyer.Email,
		TicketTypeID: receipt.TicketTypeID,
		Quantity:     len(receipt.Tickets),
		Total:        receipt.Total,
		TicketIDs:    ids,
		OccurredAt:   time.Now().UTC(),
	})
}

func (p *Producer) PublishTicketRedeemed(ctx context.Context, details models.TicketDetails, by models.Principal) error {
	redeemedAt := time.Now().UTC()
	if details.UsedAt != nil {
		redeemedAt = details.UsedAt.UTC()
	}

	return p.publish(ctx, p.topics.TicketRedeemed, details.TicketID, TicketRedeemed{
		TicketID:     details.TicketID,
		EventID:      details.EventID,
		TicketTypeID: details.TicketTypeID,
		RedeemedBy:   by.ID,
		Role:         string(by.Role),
		RedeemedAt:   redeemedAt,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MAX_TICKETS_PER_PURCHASE", "")
	t.Setenv("DB_LOCK_TIMEOUT", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := Load()

	assert.Equal(t, 10, cfg.Purchase.MaxPerPurchase)
	assert.Equal(t, 3*time.Second, cfg.Database.LockTimeout)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "admission.tickets.purchased", cfg.Kafka.Topics.TicketsPurchased)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MAX_TICKETS_PER_PURCHASE", "4")
	t.Setenv("DB_LOCK_TIMEOUT", "250ms")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("IDEMPOTENCY_TTL", "not-a-duration")

	cfg := Load()

	assert.Equal(t, 4, cfg.Purchase.MaxPerPurchase)
	assert.Equal(t, 250*time.Millisecond, cfg.Database.LockTimeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Redis.IdempotencyTTL)
}

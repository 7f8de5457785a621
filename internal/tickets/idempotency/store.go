// Package idempotency remembers purchase receipts by Idempotency-Key so a
// retried request replays the original receipt instead of buying again.
// Only receipts are stored; stock and usage state always come from the database.
package idempotency

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ms-admission/internal/models"

	"github.com/go-redis/redis/v8"
)

const (
	keyPrefix = "admission:purchase:"
	// claimTTL bounds how long a crashed purchase can hold a key.
	claimTTL = 30 * time.Second
)

// Record is what a key remembers: the fingerprint of the request that
// claimed it and the receipt that request produced.
type Record struct {
	Fingerprint string                 `json:"fingerprint"`
	Receipt     models.PurchaseReceipt `json:"receipt"`
}

type Store struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{Client: client, TTL: ttl}
}

func resultKey(key string) string { return keyPrefix + key }
func claimKey(key string) string  { return keyPrefix + key + ":claim" }

// Claim marks key as in flight for the request with the given fingerprint.
// It returns false when another request holds it.
func (s *Store) Claim(ctx context.Context, key, fingerprint string) (bool, error) {
	ok, err := s.Client.SetNX(ctx, claimKey(key), fingerprint, claimTTL).Result()
	if err != nil {
		return false, fmt.Errorf("claim idempotency key: %w", err)
	}
	return ok, nil
}

// Load returns the stored record for key, or nil when none was saved.
func (s *Store) Load(ctx context.Context, key string) (*Record, error) {
	raw, err := s.Client.Get(ctx, resultKey(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load idempotency key: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode stored receipt: %w", err)
	}
	return &rec, nil
}

// Save stores the receipt under key and drops the claim in one MULTI.
func (s *Store) Save(ctx context.Context, key, fingerprint string, receipt *models.PurchaseReceipt) error {
	raw, err := json.Marshal(Record{Fingerprint: fingerprint, Receipt: *receipt})
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}

	_, err = s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, resultKey(key), raw, s.TTL)
		pipe.Del(ctx, claimKey(key))
		return nil
	})
	if err != nil {
		return fmt.Errorf("save idempotency key: %w", err)
	}
	return nil
}

// Hold keeps the claim for the full replay window. Used when a purchase
// committed but its receipt could not be saved: the key must not reopen
// and buy a second time once claimTTL runs out.
func (s *Store) Hold(ctx context.Context, key string) error {
	ok, err := s.Client.Expire(ctx, claimKey(key), s.TTL).Result()
	if err != nil {
		return fmt.Errorf("hold idempotency key: %w", err)
	}
	if !ok {
		return fmt.Errorf("hold idempotency key: claim %s expired", key)
	}
	return nil
}

// Release drops a claim after a failed purchase so the client may retry.
func (s *Store) Release(ctx context.Context, key string) error {
	return s.Client.Del(ctx, claimKey(key)).Err()
}

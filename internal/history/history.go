// Package history streams applied game actions to a Redis queue for offline
// analysis. It is strictly best-effort: the authoritative room state never
// depends on it, and a Redis outage only costs the audit trail.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the global Redis client. Connect it once at application startup;
// leaving it nil disables history entirely.
var Rdb *redis.Client

// DefaultQueueName is the Redis list (queue) name for hand action logs.
var DefaultQueueName = "holdem_actions"

// queueName is set at Connect time; falls back to DefaultQueueName.
var queueName = DefaultQueueName

// HandAction holds one applied action of one hand.
type HandAction struct {
	RoomID      string    `json:"room_id"`
	HandID      uuid.UUID `json:"hand_id"`
	ActionIndex int       `json:"action_index"`
	PlayerID    string    `json:"player_id"`
	ActionType  string    `json:"action_type"`
	Amount      int       `json:"amount"`
	Street      string    `json:"street"`
	Timestamp   int64     `json:"timestamp"`
}

// Connect initializes the global Redis client. An empty addr disables history.
func Connect(addr, queue string) error {
	if addr == "" {
		return nil
	}
	if queue != "" {
		queueName = queue
	}
	Rdb = redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		Rdb = nil
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// Enabled reports whether a Redis client is connected.
func Enabled() bool {
	return Rdb != nil
}

// Publish serializes the record to JSON and pushes it to the Redis queue.
// No-op when history is disabled.
func Publish(ctx context.Context, record HandAction) error {
	if Rdb == nil {
		return nil
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal HandAction: %w", err)
	}
	if err := Rdb.RPush(ctx, queueName, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list %q: %w", queueName, err)
	}
	return nil
}

package presence

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Tracker mirrors user presence in Redis. Keys carry a TTL so clients that
// vanish without logging out eventually read as offline. A nil Tracker is a
// no-op, which keeps Redis optional.
type Tracker struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to Redis and verifies the connection.
func New(addr string, ttl time.Duration) (*Tracker, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis at %s: %w", addr, err)
	}
	return &Tracker{rdb: rdb, ttl: ttl}, nil
}

func key(userID int) string {
	return "presence:online:" + strconv.Itoa(userID)
}

// MarkOnline flags a user online until the TTL lapses or MarkOffline runs.
func (t *Tracker) MarkOnline(ctx context.Context, userID int) error {
	if t == nil {
		return nil
	}
	return t.rdb.Set(ctx, key(userID), 1, t.ttl).Err()
}

// MarkOffline clears a user's online flag.
func (t *Tracker) MarkOffline(ctx context.Context, userID int) error {
	if t == nil {
		return nil
	}
	return t.rdb.Del(ctx, key(userID)).Err()
}

// Online reports which of the given users are currently online.
func (t *Tracker) Online(ctx context.Context, userIDs []int) (map[int]bool, error) {
	online := make(map[int]bool, len(userIDs))
	if t == nil || len(userIDs) == 0 {
		return online, nil
	}

	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = key(id)
	}
	vals, err := t.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, val := range vals {
		online[userIDs[i]] = val != nil
	}
	return online, nil
}

// Close releases the Redis connection.
func (t *Tracker) Close() error {
	if t == nil {
		return nil
	}
	return t.rdb.Close()
}

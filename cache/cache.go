package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// KeyType namespaces cached values and selects their default TTL.
type KeyType string

const (
	KeyAIContext    KeyType = "ai:context:"
	KeyRoomSettings KeyType = "room:settings:"
	KeyUserSession  KeyType = "user:session:"
)

var defaultTTL = map[KeyType]time.Duration{
	KeyAIContext:    time.Hour,
	KeyRoomSettings: 30 * time.Minute,
	KeyUserSession:  24 * time.Hour,
}

// Client is a thin typed-key JSON wrapper around redis. Cache failures are
// logged and reported as misses; they never fail the calling operation.
type Client struct {
	rdb *redis.Client
	log *logrus.Entry
}

func New(rdb *redis.Client) *Client {
	return &Client{
		rdb: rdb,
		log: logrus.WithField("component", "CacheService"),
	}
}

func key(keyType KeyType, id string) string {
	return string(keyType) + id
}

// Get unmarshals the cached value into dest. Returns false on a miss.
func (c *Client) Get(ctx context.Context, keyType KeyType, id string, dest interface{}) bool {
	value, err := c.rdb.Get(ctx, key(keyType, id)).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.log.WithError(err).WithField("key", key(keyType, id)).Warn("cache get failed")
		return false
	}
	if err := json.Unmarshal([]byte(value), dest); err != nil {
		c.log.WithError(err).WithField("key", key(keyType, id)).Warn("cache decode failed")
		return false
	}
	return true
}

// Set stores value as JSON. A zero ttl selects the key type's default.
func (c *Client) Set(ctx context.Context, keyType KeyType, id string, value interface{}, ttl time.Duration) {
	if ttl == 0 {
		ttl = defaultTTL[keyType]
	}
	payload, err := json.Marshal(value)
	if err != nil {
		c.log.WithError(err).WithField("key", key(keyType, id)).Warn("cache encode failed")
		return
	}
	if err := c.rdb.Set(ctx, key(keyType, id), payload, ttl).Err(); err != nil {
		c.log.WithError(err).WithField("key", key(keyType, id)).Warn("cache set failed")
	}
}

// Delete drops the cached value, if any.
func (c *Client) Delete(ctx context.Context, keyType KeyType, id string) {
	if err := c.rdb.Del(ctx, key(keyType, id)).Err(); err != nil {
		c.log.WithError(err).WithField("key", key(keyType, id)).Warn("cache delete failed")
	}
}

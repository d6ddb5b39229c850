package statecache

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const stateTTL = time.Hour

// Cache mirrors the last reported state of each device in Redis so the
// management API can read it without touching the devices.
type Cache struct {
	client *redis.Client
}

// NewCache creates a Redis-backed device state cache
func NewCache(addr string) *Cache {
	return &Cache{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// SetState stores the raw state payload reported by a device. Redis being
// unreachable degrades to a logged error.
func (c *Cache) SetState(ctx context.Context, deviceID string, raw []byte) {
	if err := c.client.Set(ctx, "device:"+deviceID, raw, stateTTL).Err(); err != nil {
		log.Printf("STATECACHE: Failed to cache state for device %s: %v", deviceID, err)
	}
}

// GetState returns the last cached state payload for a device.
func (c *Cache) GetState(ctx context.Context, deviceID string) ([]byte, error) {
	return c.client.Get(ctx, "device:"+deviceID).Bytes()
}

// ParseDeviceID extracts the device id from a devices/<id>/state topic
func ParseDeviceID(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) > 1 {
		return parts[1]
	}
	return ""
}

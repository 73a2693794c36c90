package redisx

import (
	"context"
	"log"
	"strconv"

	"github.com/jgdelacruz/washbay/internal/domain"
	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// Cache is a best-effort shortcut in front of the Postgres idempotency
// ledger and order rows. Every operation swallows Redis errors; the
// database stays the source of truth.
type Cache struct {
	rdb    *redis.Client
	logger *log.Logger
}

func NewCache(rdb *redis.Client, logger *log.Logger) *Cache {
	if logger == nil {
		logger = log.Default()
	}
	return &Cache{rdb: rdb, logger: logger}
}

func (c *Cache) GetOrderID(ctx context.Context, key string) (int64, bool) {
	val, err := c.rdb.Get(ctx, KeyIdemOrderCreate(key)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Printf("WARN: redis get idempotency key: %v", err)
		}
		return 0, false
	}
	orderID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return orderID, true
}

func (c *Cache) SetOrderID(ctx context.Context, key string, orderID int64) {
	if err := c.rdb.Set(ctx, KeyIdemOrderCreate(key), orderID, TTLIdempotency).Err(); err != nil {
		c.logger.Printf("WARN: redis set idempotency key: %v", err)
	}
}

func (c *Cache) SetOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) {
	if err := c.rdb.Set(ctx, KeyOrderStatus(orderID), string(status), TTLStatusCache).Err(); err != nil {
		c.logger.Printf("WARN: redis set order status: %v", err)
	}
}

// GetOrderStatus reads the cached status for an order, if any.
func (c *Cache) GetOrderStatus(ctx context.Context, orderID int64) (domain.OrderStatus, bool) {
	val, err := c.rdb.Get(ctx, KeyOrderStatus(orderID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Printf("WARN: redis get order status: %v", err)
		}
		return "", false
	}
	return domain.OrderStatus(val), true
}

package redisx

import (
	"fmt"
	"time"
)

// Key layout: washbay:idem:{key} -> service_order_id,
// washbay:order:{id}:status -> status string.

func KeyIdemOrderCreate(key string) string {
	return fmt.Sprintf("washbay:idem:%s", key)
}

func KeyOrderStatus(orderID int64) string {
	return fmt.Sprintf("washbay:order:%d:status", orderID)
}

var (
	// TTLIdempotency bounds how long the fast path remembers a key; after
	// expiry retries fall through to the ledger table.
	TTLIdempotency = 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
)

package balance

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// Cache memoizes resolved balances in redis. It is invalidate-on-write:
// each successful posting bumps a per-company version counter and cached
// entries embed that version in their key, so stale values simply stop
// being addressable. The cache is never a second source of truth; a cold
// or unreachable redis degrades to recompute-on-read.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps the redis client. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

func versionKey(companyID int64) string {
	return fmt.Sprintf("acct:co:%d:balver", companyID)
}

func balanceKey(companyID, version, ledgerID int64, date time.Time) string {
	return fmt.Sprintf("acct:co:%d:v%d:led:%d:asof:%s", companyID, version, ledgerID, date.Format("2006-01-02"))
}

// Get returns a cached balance, reporting a miss on any redis error.
func (c *Cache) Get(ctx context.Context, companyID, ledgerID int64, date time.Time) (decimal.Decimal, bool) {
	if c == nil || c.client == nil {
		return decimal.Zero, false
	}
	version, err := c.version(ctx, companyID)
	if err != nil {
		return decimal.Zero, false
	}
	raw, err := c.client.Get(ctx, balanceKey(companyID, version, ledgerID, date)).Result()
	if err != nil {
		return decimal.Zero, false
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}

// Set stores a resolved balance under the current company version.
func (c *Cache) Set(ctx context.Context, companyID, ledgerID int64, date time.Time, value decimal.Decimal) {
	if c == nil || c.client == nil {
		return
	}
	version, err := c.version(ctx, companyID)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, balanceKey(companyID, version, ledgerID, date), value.String(), c.ttl).Err()
}

// InvalidateCompany drops every cached balance of the company by bumping
// its version counter. Called by the posting engine after each commit.
func (c *Cache) InvalidateCompany(ctx context.Context, companyID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, versionKey(companyID)).Err()
}

func (c *Cache) version(ctx context.Context, companyID int64) (int64, error) {
	version, err := c.client.Get(ctx, versionKey(companyID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return version, err
}

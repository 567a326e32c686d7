package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/medrent/backend/internal/domain/derivation"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/domain/shared/valueobject"
)

// RedisExchangeRateCache caches conversion rates in Redis in front of a
// slower upstream source. Suitable for distributed deployments where
// multiple instances share the rate table.
type RedisExchangeRateCache struct {
	client    *redis.Client
	source    derivation.ExchangeRateProvider
	ttl       time.Duration
	keyPrefix string
}

// NewRedisExchangeRateCache creates a cache in front of the given source
func NewRedisExchangeRateCache(client *redis.Client, source derivation.ExchangeRateProvider, ttl time.Duration) *RedisExchangeRateCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisExchangeRateCache{
		client:    client,
		source:    source,
		ttl:       ttl,
		keyPrefix: "fx:rate:",
	}
}

// Rate returns the conversion rate between two currencies, consulting the
// cache first. A cache failure falls through to the source.
func (c *RedisExchangeRateCache) Rate(ctx context.Context, from, to valueobject.Currency) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	key := fmt.Sprintf("%s%s:%s", c.keyPrefix, from, to)

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		if rate, parseErr := decimal.NewFromString(cached); parseErr == nil {
			return rate, nil
		}
	} else if !errors.Is(err, redis.Nil) && ctx.Err() != nil {
		return decimal.Zero, ctx.Err()
	}

	rate, err := c.source.Rate(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	// best effort; a write failure only costs the next lookup
	c.client.Set(ctx, key, rate.String(), c.ttl)
	return rate, nil
}

// Close closes the underlying Redis client
func (c *RedisExchangeRateCache) Close() error {
	return c.client.Close()
}

var _ derivation.ExchangeRateProvider = (*RedisExchangeRateCache)(nil)

// StaticExchangeRateProvider serves rates from a fixed table, keyed as
// "FROM:TO". Used as the upstream source when no external rate feed is
// configured.
type StaticExchangeRateProvider struct {
	rates map[string]decimal.Decimal
}

// NewStaticExchangeRateProvider creates a provider over a fixed rate table
func NewStaticExchangeRateProvider(rates map[string]decimal.Decimal) *StaticExchangeRateProvider {
	if rates == nil {
		rates = make(map[string]decimal.Decimal)
	}
	return &StaticExchangeRateProvider{rates: rates}
}

// Rate looks up the conversion rate for the currency pair
func (p *StaticExchangeRateProvider) Rate(_ context.Context, from, to valueobject.Currency) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	if rate, ok := p.rates[fmt.Sprintf("%s:%s", from, to)]; ok {
		return rate, nil
	}
	return decimal.Zero, shared.NewDomainError("RATE_NOT_FOUND",
		fmt.Sprintf("no exchange rate configured for %s to %s", from, to))
}

var _ derivation.ExchangeRateProvider = (*StaticExchangeRateProvider)(nil)

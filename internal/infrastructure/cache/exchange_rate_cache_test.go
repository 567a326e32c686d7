package cache

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medrent/backend/internal/domain/shared/valueobject"
)

func TestStaticExchangeRateProvider(t *testing.T) {
	provider := NewStaticExchangeRateProvider(map[string]decimal.Decimal{
		"USD:INR": decimal.NewFromFloat(83.20),
	})
	ctx := context.Background()

	t.Run("returns configured rate", func(t *testing.T) {
		rate, err := provider.Rate(ctx, "USD", "INR")
		require.NoError(t, err)
		assert.True(t, rate.Equal(decimal.NewFromFloat(83.20)))
	})

	t.Run("identity rate for same currency", func(t *testing.T) {
		rate, err := provider.Rate(ctx, valueobject.DefaultCurrency, valueobject.DefaultCurrency)
		require.NoError(t, err)
		assert.True(t, rate.Equal(decimal.NewFromInt(1)))
	})

	t.Run("fails for unknown pair", func(t *testing.T) {
		_, err := provider.Rate(ctx, "EUR", "INR")
		assert.Error(t, err)
	})
}

func TestRedisExchangeRateCache_IdentityShortCircuit(t *testing.T) {
	// same-currency lookups never touch the client or the source
	cache := NewRedisExchangeRateCache(nil, NewStaticExchangeRateProvider(nil), 0)

	rate, err := cache.Rate(context.Background(), "INR", "INR")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))
}

package quote

import (
	"context"
	"errors"
	"testing"
	"time"

	"studiobook/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, time.Hour), mr
}

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	store, mr := setupTestRedis(t)
	return NewService(NewBuilder(testCatalog(t)), store, "gbp", zap.NewNop()), mr
}

func TestService_QuoteSessionFlow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	started, err := svc.Start(ctx, nil)
	require.NoError(t, err)
	require.NotEmpty(t, started.ID)
	assert.Empty(t, started.Lines)

	priced, err := svc.Toggle(ctx, started.ID, "recording/studio")
	require.NoError(t, err)
	require.Len(t, priced.Lines, 1)

	priced, err = svc.SetMultiplier(ctx, started.ID, "recording/studio", 2)
	require.NoError(t, err)
	assert.True(t, priced.Totals.Subtotal.Equal(decimal.NewFromInt(600)))
	assert.True(t, priced.Totals.DepositDue.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, "gbp", priced.Currency)

	got, err := svc.Get(ctx, started.ID)
	require.NoError(t, err)
	assert.Equal(t, priced, got)

	require.NoError(t, svc.Discard(ctx, started.ID))
	_, err = svc.Get(ctx, started.ID)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestService_QuoteExpires(t *testing.T) {
	ctx := context.Background()
	svc, mr := newTestService(t)

	started, err := svc.Start(ctx, []Selection{{Key: "mixing/tuning", Multiplier: 2}})
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)
	_, err = svc.Get(ctx, started.ID)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestService_Calculate(t *testing.T) {
	svc, _ := newTestService(t)

	priced, err := svc.Calculate([]Selection{
		{Key: "mixing/standard", Multiplier: 1},
		{Key: "recording/lockout", Multiplier: 9},
		{Key: "mixing/tuning", Multiplier: 0},
	})
	require.NoError(t, err)
	require.Len(t, priced.Lines, 3)
	assert.Equal(t, 1, priced.Lines[1].Multiplier)
	assert.Equal(t, 1, priced.Lines[2].Multiplier)
	assert.True(t, priced.Totals.Subtotal.Equal(decimal.RequireFromString("650.50")))
	assert.True(t, priced.Totals.DepositDue.Equal(decimal.RequireFromString("325.25")))

	_, err = svc.Calculate([]Selection{{Key: "nope/nothing"}})
	assert.True(t, errors.Is(err, models.ErrUnknownService))
}

func TestService_UnknownQuote(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Toggle(context.Background(), "missing", "mixing/tuning")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

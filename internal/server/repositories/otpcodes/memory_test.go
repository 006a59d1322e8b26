package otpcodes

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	exp := time.Now().Add(time.Minute)

	require.NoError(t, r.Upsert(ctx, "a@x.com", "111111", exp))
	require.NoError(t, r.Upsert(ctx, "a@x.com", "222222", exp))

	c, err := r.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "222222", c.Code)
}

func TestMemoryRepository_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	require.NoError(t, r.Upsert(ctx, "a@x.com", "111111", time.Now().Add(time.Minute)))
	require.NoError(t, r.DeleteByEmail(ctx, "a@x.com"))
	require.NoError(t, r.DeleteByEmail(ctx, "a@x.com"))

	_, err := r.FindByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	now := time.Now()

	require.NoError(t, r.Upsert(ctx, "old@x.com", "111111", now.Add(-time.Second)))
	require.NoError(t, r.Upsert(ctx, "edge@x.com", "222222", now))
	require.NoError(t, r.Upsert(ctx, "new@x.com", "333333", now.Add(time.Minute)))

	n, err := r.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = r.FindByEmail(ctx, "new@x.com")
	assert.NoError(t, err)
}

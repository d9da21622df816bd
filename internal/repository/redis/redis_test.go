package redis

import (
	"context"
	"testing"
	"time"

	"Blog_Community/internal/cache"
	"Blog_Community/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRepository(t *testing.T) {
	ctx := context.Background()
	mr, rdb := testutil.NewRedis(t)
	repo := &TokenRepository{RDB: rdb}

	_, err := repo.GetUserToken(ctx, 1)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, repo.AddUserToken(ctx, 1, "tok"))
	got, err := repo.GetUserToken(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "tok", got)

	mr.FastForward(UserTokenExpire - time.Minute)
	require.NoError(t, repo.ExtendUserToken(ctx, 1))
	mr.FastForward(2 * time.Minute)
	_, err = repo.GetUserToken(ctx, 1)
	assert.NoError(t, err)

	require.NoError(t, repo.DeleteUserToken(ctx, 1))
	_, err = repo.GetUserToken(ctx, 1)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestEmailRepository_ResetFlow(t *testing.T) {
	ctx := context.Background()
	mr, rdb := testutil.NewRedis(t)
	repo := &EmailRepository{RDB: rdb}
	email := "ann@example.com"

	require.NoError(t, repo.SaveResetPending(ctx, email, "123456"))
	// 发信前不能取到验证码
	_, err := repo.GetResetCode(ctx, email)
	assert.ErrorIs(t, err, ErrEmailCodeNotFound)

	require.NoError(t, repo.ConfirmReset(ctx, email))
	code, err := repo.GetResetCode(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, "123456", code)
	assert.False(t, mr.Exists(resetKey(PendingSuffix, email)))

	mr.FastForward(DefaultEmailCodeTTL + time.Second)
	_, err = repo.GetResetCode(ctx, email)
	assert.ErrorIs(t, err, ErrEmailCodeNotFound)
}

func TestEmailRepository_ConfirmWithoutPending(t *testing.T) {
	_, rdb := testutil.NewRedis(t)
	repo := &EmailRepository{RDB: rdb}
	assert.ErrorIs(t, repo.ConfirmReset(context.Background(), "nobody@example.com"), ErrCodeConfirmedFailed)
}

func TestPageCache(t *testing.T) {
	ctx := context.Background()
	mr, rdb := testutil.NewRedis(t)
	pc := NewPageCache(rdb, 20*time.Second)
	key := cache.Key{Scope: "index", Page: "1", Viewer: cache.ViewerAnonymous}

	miss, err := pc.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, miss.Hit)
	assert.Zero(t, miss.Gen)

	require.NoError(t, pc.Set(ctx, key, miss.Gen, []byte(`{"page":1}`)))
	got, err := pc.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, got.Hit)
	assert.JSONEq(t, `{"page":1}`, string(got.Value))

	mr.FastForward(21 * time.Second)
	got, err = pc.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, got.Hit)
}

func TestPageCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	_, rdb := testutil.NewRedis(t)
	pc := NewPageCache(rdb, time.Minute)
	key := cache.Key{Scope: "index", Page: "2", Viewer: cache.ViewerAuthenticated}

	require.NoError(t, pc.Set(ctx, key, 0, []byte("stale")))
	require.NoError(t, pc.Invalidate(ctx))

	got, err := pc.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, got.Hit)
	assert.Equal(t, uint64(1), got.Gen)

	require.NoError(t, pc.Set(ctx, key, got.Gen, []byte("fresh")))
	got, err = pc.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, got.Hit)
	assert.Equal(t, "fresh", string(got.Value))
}

// 未命中后发生失效，按旧代数写入的页面读不到
func TestPageCache_WriteAfterInvalidateIsHidden(t *testing.T) {
	ctx := context.Background()
	_, rdb := testutil.NewRedis(t)
	pc := NewPageCache(rdb, time.Minute)
	key := cache.Key{Scope: "index", Page: "1", Viewer: cache.ViewerAnonymous}

	miss, err := pc.Get(ctx, key)
	require.NoError(t, err)
	require.NoError(t, pc.Invalidate(ctx))
	require.NoError(t, pc.Set(ctx, key, miss.Gen, []byte("stale")))

	got, err := pc.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, got.Hit)
}

func TestPageCache_RedisDown(t *testing.T) {
	mr, rdb := testutil.NewRedis(t)
	pc := NewPageCache(rdb, time.Minute)
	mr.Close()

	got, err := pc.Get(context.Background(), cache.Key{Scope: "index"})
	assert.Error(t, err)
	assert.False(t, got.Hit)
}

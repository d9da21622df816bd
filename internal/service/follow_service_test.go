package service

import (
	"context"
	"errors"
	"testing"

	"Blog_Community/internal/model"
	"Blog_Community/internal/pkg"
	"Blog_Community/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowService_ExistsTransitions(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewFollowService(db)
	ctx := context.Background()
	ann := testutil.CreateUser(t, db, "ann")
	bob := testutil.CreateUser(t, db, "bob")

	ok, err := svc.Exists(ctx, ann.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Follow(ctx, ann.ID, bob.ID)
	require.NoError(t, err)
	ok, err = svc.Exists(ctx, ann.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// 关系有方向
	ok, err = svc.Exists(ctx, bob.ID, ann.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Unfollow(ctx, ann.ID, bob.ID)
	require.NoError(t, err)
	ok, err = svc.Exists(ctx, ann.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Exists(ctx, 0, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollowService_FollowTwiceKeepsOneEdge(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewFollowService(db)
	ctx := context.Background()
	ann := testutil.CreateUser(t, db, "ann")
	bob := testutil.CreateUser(t, db, "bob")

	changed, err := svc.Follow(ctx, ann.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = svc.Follow(ctx, ann.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	authors, err := svc.FollowedAuthors(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{bob.ID}, authors)
}

func TestFollowService_UnfollowWithoutEdge(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewFollowService(db)
	ann := testutil.CreateUser(t, db, "ann")
	bob := testutil.CreateUser(t, db, "bob")

	changed, err := svc.Unfollow(context.Background(), ann.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestFollowService_SelfFollow(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewFollowService(db)
	ctx := context.Background()
	ann := testutil.CreateUser(t, db, "ann")

	_, err := svc.Follow(ctx, ann.ID, ann.ID)
	assert.ErrorIs(t, err, pkg.ErrInvalidOperation)
	changed, err := svc.Unfollow(ctx, ann.ID, ann.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	ok, err := svc.Exists(ctx, ann.ID, ann.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollowService_ByUsername(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewFollowService(db)
	ctx := context.Background()
	ann := testutil.CreateUser(t, db, "ann")
	bob := testutil.CreateUser(t, db, "bob")

	_, err := svc.FollowByUsername(ctx, ann.ID, "ghost")
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	changed, err := svc.FollowByUsername(ctx, ann.ID, "bob")
	require.NoError(t, err)
	assert.True(t, changed)

	rows, _, err := svc.ListFollowers(ctx, bob.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ann.ID, rows[0].FollowerID)

	changed, err = svc.UnfollowByUsername(ctx, ann.ID, "bob")
	require.NoError(t, err)
	assert.True(t, changed)

	rows, _, err = svc.ListFollowings(ctx, ann.ID, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestOutboxRelayer_DrainOnce(t *testing.T) {
	db := testutil.NewDB(t)
	follows := NewFollowService(db)
	ctx := context.Background()
	ann := testutil.CreateUser(t, db, "ann")
	bob := testutil.CreateUser(t, db, "bob")
	_, err := follows.Follow(ctx, ann.ID, bob.ID)
	require.NoError(t, err)
	_, err = follows.Unfollow(ctx, ann.ID, bob.ID)
	require.NoError(t, err)

	var got []string
	sender := func(_ context.Context, ob *model.SocialOutbox) error {
		got = append(got, ob.EventType)
		if ob.EventType == model.EventUnfollow {
			return errors.New("broker down")
		}
		return nil
	}

	relayer := NewOutboxRelayer(db, sender)
	assert.Equal(t, 1, relayer.DrainOnce(ctx))
	assert.Equal(t, []string{model.EventFollow, model.EventUnfollow}, got)

	// 失败的事件不会被重复投递
	assert.Equal(t, 0, relayer.DrainOnce(ctx))
	assert.Len(t, got, 2)

	var statuses []int8
	require.NoError(t, db.Model(&model.SocialOutbox{}).Order("id ASC").Pluck("status", &statuses).Error)
	assert.Equal(t, []int8{model.OutboxSent, model.OutboxFailed}, statuses)
}

func TestOutboxRelayer_RunStopsWithContext(t *testing.T) {
	db := testutil.NewDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewOutboxRelayer(db, LogSender).Run(ctx)
		close(done)
	}()
	cancel()
	<-done
}

package service

import (
	"context"

	"Blog_Community/internal/model"
	"Blog_Community/internal/pkg"
	"Blog_Community/internal/repository/mysql"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FollowService 关注关系图
type FollowService struct {
	repo  *mysql.FollowRepository
	users *mysql.UserRepository
}

func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{
		repo:  &mysql.FollowRepository{DB: db},
		users: &mysql.UserRepository{DB: db},
	}
}

// Exists 未登录访问者（id 为 0）一律返回 false
func (s *FollowService) Exists(ctx context.Context, followerID, followeeID uint64) (bool, error) {
	if followerID == 0 || followeeID == 0 {
		return false, nil
	}
	return s.repo.IsFollowing(ctx, followerID, followeeID)
}

// Follow 幂等，重复关注不报错；不能关注自己
func (s *FollowService) Follow(ctx context.Context, followerID, followeeID uint64) (bool, error) {
	if followerID == 0 || followeeID == 0 {
		return false, pkg.Invalid("invalid user id")
	}
	if followerID == followeeID {
		return false, pkg.Invalid("cannot follow self")
	}
	changed, err := s.repo.Follow(ctx, followerID, followeeID)
	if err != nil {
		pkg.Logger.Error("follow failed", zap.Uint64("follower", followerID), zap.Uint64("followee", followeeID), zap.Error(err))
		return false, err
	}
	return changed, nil
}

// Unfollow 关系不存在时是空操作
func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID uint64) (bool, error) {
	if followerID == 0 || followeeID == 0 {
		return false, pkg.Invalid("invalid user id")
	}
	if followerID == followeeID {
		return false, nil
	}
	changed, err := s.repo.Unfollow(ctx, followerID, followeeID)
	if err != nil {
		pkg.Logger.Error("unfollow failed", zap.Uint64("follower", followerID), zap.Uint64("followee", followeeID), zap.Error(err))
		return false, err
	}
	return changed, nil
}

// FollowedAuthors 用户关注的所有作者 id
func (s *FollowService) FollowedAuthors(ctx context.Context, followerID uint64) ([]uint64, error) {
	return s.repo.FolloweeIDs(ctx, followerID)
}

// FollowByUsername 关注动作：先解析用户名，不存在返回 NotFound
func (s *FollowService) FollowByUsername(ctx context.Context, viewerID uint64, username string) (bool, error) {
	author, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	return s.Follow(ctx, viewerID, author.ID)
}

func (s *FollowService) UnfollowByUsername(ctx context.Context, viewerID uint64, username string) (bool, error) {
	author, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	return s.Unfollow(ctx, viewerID, author.ID)
}

func (s *FollowService) ListFollowings(ctx context.Context, userID uint64, cursor uint64, limit int) ([]model.Follow, uint64, error) {
	return s.repo.ListFollowings(ctx, userID, cursor, limit)
}

func (s *FollowService) ListFollowers(ctx context.Context, userID uint64, cursor uint64, limit int) ([]model.Follow, uint64, error) {
	return s.repo.ListFollowers(ctx, userID, cursor, limit)
}

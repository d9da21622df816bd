package service

import (
	"context"

	"Blog_Community/internal/model"
	"Blog_Community/internal/pkg"
	"Blog_Community/internal/repository/mysql"

	"gorm.io/gorm"
)

// postSequence 按条件查询的帖子序列，分页时才真正查库
type postSequence struct {
	repo   *mysql.PostRepository
	filter mysql.PostFilter
}

func (s postSequence) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx, s.filter)
}

func (s postSequence) Slice(ctx context.Context, offset, limit int) ([]model.Post, error) {
	return s.repo.List(ctx, s.filter, offset, limit)
}

// PostSelector 按作用域选出有序的候选帖子，所有作用域都按发布时间倒序
type PostSelector struct {
	posts   *mysql.PostRepository
	groups  *mysql.GroupRepository
	users   *mysql.UserRepository
	follows *FollowService
}

func NewPostSelector(db *gorm.DB, follows *FollowService) *PostSelector {
	return &PostSelector{
		posts:   &mysql.PostRepository{DB: db},
		groups:  &mysql.GroupRepository{DB: db},
		users:   &mysql.UserRepository{DB: db},
		follows: follows,
	}
}

// Global 全部帖子
func (s *PostSelector) Global(context.Context) pkg.Sequence[model.Post] {
	return postSequence{repo: s.posts}
}

// Group slug 不存在返回 NotFound；没有帖子的社区返回空序列
func (s *PostSelector) Group(ctx context.Context, slug string) (*model.Group, pkg.Sequence[model.Post], error) {
	g, err := s.groups.FindBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	return g, postSequence{repo: s.posts, filter: mysql.PostFilter{GroupID: g.ID}}, nil
}

// Profile 某个作者的全部帖子
func (s *PostSelector) Profile(ctx context.Context, username string) (*model.User, pkg.Sequence[model.Post], error) {
	author, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	return author, postSequence{repo: s.posts, filter: mysql.PostFilter{AuthorID: author.ID}}, nil
}

// Followed 访问者关注的作者的帖子，必须登录
func (s *PostSelector) Followed(ctx context.Context, viewerID uint64) (pkg.Sequence[model.Post], error) {
	if viewerID == 0 {
		return nil, pkg.Unauthenticated("sign in to see your subscriptions")
	}
	authors, err := s.follows.FollowedAuthors(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if len(authors) == 0 {
		return pkg.SliceSequence[model.Post]{}, nil
	}
	return postSequence{repo: s.posts, filter: mysql.PostFilter{ByAuthors: true, AuthorIDs: authors}}, nil
}

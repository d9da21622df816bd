package service

import (
	"context"

	"Blog_Community/internal/model"
	"Blog_Community/internal/pkg"
	"Blog_Community/internal/repository/mysql"

	"gorm.io/gorm"
)

type Feed struct {
	Page *pkg.Page[model.Post] `json:"page"`
}

type GroupFeed struct {
	Group *model.Group          `json:"group"`
	Page  *pkg.Page[model.Post] `json:"page"`
}

type ProfileFeed struct {
	Author      *model.User           `json:"author"`
	DisplayName string                `json:"display_name"`
	PostsCount  int64                 `json:"posts_count"`
	Following   bool                  `json:"following"`
	Page        *pkg.Page[model.Post] `json:"page"`
}

type PostDetail struct {
	Post     *model.Post     `json:"post"`
	IsAuthor bool            `json:"is_author"`
	Comments []model.Comment `json:"comments"`
}

// FeedService 组装页面上下文：选帖、分页，再加上和访问者相关的字段
type FeedService struct {
	selector *PostSelector
	follows  *FollowService
	posts    *mysql.PostRepository
	comments *mysql.CommentRepository
	pageSize int
}

func NewFeedService(db *gorm.DB, selector *PostSelector, follows *FollowService, pageSize int) *FeedService {
	if pageSize <= 0 {
		pageSize = pkg.DefaultPageSize
	}
	return &FeedService{
		selector: selector,
		follows:  follows,
		posts:    &mysql.PostRepository{DB: db},
		comments: &mysql.CommentRepository{DB: db},
		pageSize: pageSize,
	}
}

func (s *FeedService) Index(ctx context.Context, page string) (*Feed, error) {
	p, err := pkg.Paginate(ctx, s.selector.Global(ctx), s.pageSize, page)
	if err != nil {
		return nil, err
	}
	return &Feed{Page: p}, nil
}

func (s *FeedService) GroupFeed(ctx context.Context, slug, page string) (*GroupFeed, error) {
	g, seq, err := s.selector.Group(ctx, slug)
	if err != nil {
		return nil, err
	}
	p, err := pkg.Paginate(ctx, seq, s.pageSize, page)
	if err != nil {
		return nil, err
	}
	return &GroupFeed{Group: g, Page: p}, nil
}

// ProfileFeed following 对未登录访问者恒为 false
func (s *FeedService) ProfileFeed(ctx context.Context, viewerID uint64, username, page string) (*ProfileFeed, error) {
	author, seq, err := s.selector.Profile(ctx, username)
	if err != nil {
		return nil, err
	}
	p, err := pkg.Paginate(ctx, seq, s.pageSize, page)
	if err != nil {
		return nil, err
	}
	following, err := s.follows.Exists(ctx, viewerID, author.ID)
	if err != nil {
		return nil, err
	}
	return &ProfileFeed{
		Author:      author,
		DisplayName: author.FullName(),
		PostsCount:  p.Count,
		Following:   following,
		Page:        p,
	}, nil
}

func (s *FeedService) FollowFeed(ctx context.Context, viewerID uint64, page string) (*Feed, error) {
	seq, err := s.selector.Followed(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	p, err := pkg.Paginate(ctx, seq, s.pageSize, page)
	if err != nil {
		return nil, err
	}
	return &Feed{Page: p}, nil
}

// PostDetail 帖子详情和评论，新评论在前
func (s *FeedService) PostDetail(ctx context.Context, viewerID, postID uint64) (*PostDetail, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return &PostDetail{
		Post:     post,
		IsAuthor: viewerID != 0 && viewerID == post.AuthorID,
		Comments: comments,
	}, nil
}

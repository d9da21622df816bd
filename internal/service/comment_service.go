package service

import (
	"context"
	"time"

	"Blog_Community/internal/model"
	"Blog_Community/internal/pkg"
	"Blog_Community/internal/repository/mysql"

	"gorm.io/gorm"
)

type CommentService struct {
	repo  *mysql.CommentRepository
	posts *mysql.PostRepository
	now   func() time.Time
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{
		repo:  &mysql.CommentRepository{DB: db},
		posts: &mysql.PostRepository{DB: db},
		now:   time.Now,
	}
}

func (s *CommentService) WithClock(now func() time.Time) *CommentService {
	s.now = now
	return s
}

// AddComment 帖子不存在返回 NotFound
func (s *CommentService) AddComment(ctx context.Context, authorID, postID uint64, text string) (*model.Comment, error) {
	if authorID == 0 {
		return nil, pkg.Unauthenticated("sign in to comment")
	}
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	text = normalizeText(text)
	if err = ValidateCommentText(text); err != nil {
		return nil, err
	}
	c := &model.Comment{
		PostID:    post.ID,
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: s.now(),
	}
	if err = s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

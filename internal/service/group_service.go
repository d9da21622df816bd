package service

import (
	"context"
	"strings"

	"Blog_Community/internal/model"
	"Blog_Community/internal/pkg"
	"Blog_Community/internal/repository/mysql"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type GroupService struct {
	repo *mysql.GroupRepository
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{repo: &mysql.GroupRepository{DB: db}}
}

func (s *GroupService) CreateGroup(ctx context.Context, slug, title, desc string) (*model.Group, error) {
	slug = strings.TrimSpace(slug)
	title = strings.TrimSpace(title)
	if slug == "" || title == "" {
		return nil, pkg.Invalid("group slug and title required")
	}
	g := &model.Group{
		Slug:        slug,
		Title:       title,
		Description: desc,
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}
	pkg.Logger.Info("group created", zap.String("slug", g.Slug))
	return g, nil
}

func (s *GroupService) ListGroups(ctx context.Context, page, size int) ([]model.Group, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}
	offset := (page - 1) * size
	return s.repo.List(ctx, offset, size)
}

// DeleteGroup 社区下的帖子保留
func (s *GroupService) DeleteGroup(ctx context.Context, slug string) error {
	if err := s.repo.DeleteBySlug(ctx, slug); err != nil {
		return err
	}
	pkg.Logger.Info("group deleted", zap.String("slug", slug))
	return nil
}

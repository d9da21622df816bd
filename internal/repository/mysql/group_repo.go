package mysql

import (
	"context"
	"errors"

	"Blog_Community/internal/model"
	"Blog_Community/internal/pkg"

	"gorm.io/gorm"
)

type GroupRepository struct {
	DB *gorm.DB
}

// Create slug 重复时返回 InvalidOperation
func (r *GroupRepository) Create(ctx context.Context, g *model.Group) error {
	err := r.DB.WithContext(ctx).Create(g).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkg.Invalid("group with slug %q already exists", g.Slug)
	}
	return err
}

func (r *GroupRepository) FindBySlug(ctx context.Context, slug string) (*model.Group, error) {
	var g model.Group
	if err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&g).Error; err != nil {
		return nil, notFound(err, "group %q not found", slug)
	}
	return &g, nil
}

func (r *GroupRepository) FindByID(ctx context.Context, id uint64) (*model.Group, error) {
	var g model.Group
	if err := r.DB.WithContext(ctx).First(&g, id).Error; err != nil {
		return nil, notFound(err, "group %d not found", id)
	}
	return &g, nil
}

func (r *GroupRepository) List(ctx context.Context, offset, limit int) ([]model.Group, error) {
	var list []model.Group
	err := r.DB.WithContext(ctx).Order("title ASC").Order("id ASC").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}

// DeleteBySlug 删除社区，帖子保留，group_id 置空。不依赖数据库外键行为
func (r *GroupRepository) DeleteBySlug(ctx context.Context, slug string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var g model.Group
		if err := tx.Where("slug = ?", slug).First(&g).Error; err != nil {
			return notFound(err, "group %q not found", slug)
		}
		if err := tx.Model(&model.Post{}).
			Where("group_id = ?", g.ID).
			Update("group_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&g).Error
	})
}

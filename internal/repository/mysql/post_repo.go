package mysql

import (
	"context"

	"Blog_Community/internal/model"

	"gorm.io/gorm"
)

// PostFilter 帖子选择条件，零值表示全部帖子
type PostFilter struct {
	GroupID  uint64
	AuthorID uint64
	// ByAuthors 为 true 时只取 AuthorIDs 中作者的帖子，AuthorIDs 为空则结果为空
	ByAuthors bool
	AuthorIDs []uint64
}

func (f PostFilter) apply(q *gorm.DB) *gorm.DB {
	if f.GroupID != 0 {
		q = q.Where("group_id = ?", f.GroupID)
	}
	if f.AuthorID != 0 {
		q = q.Where("author_id = ?", f.AuthorID)
	}
	if f.ByAuthors {
		q = q.Where("author_id IN ?", f.AuthorIDs)
	}
	return q
}

type PostRepository struct {
	DB *gorm.DB
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).Omit("Author", "Group").Create(post).Error
}

// Update 只更新作者可修改的字段，group_id 可以被置空
func (r *PostRepository) Update(ctx context.Context, post *model.Post) error {
	return r.DB.WithContext(ctx).Model(post).Select("text", "group_id", "image", "updated_at").Updates(post).Error
}

// FindByID 预加载作者和社区
func (r *PostRepository) FindByID(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.WithContext(ctx).Preload("Author").Preload("Group").First(&post, id).Error
	if err != nil {
		return nil, notFound(err, "post %d not found", id)
	}
	return &post, nil
}

// Count 满足条件的帖子总数
func (r *PostRepository) Count(ctx context.Context, f PostFilter) (int64, error) {
	var n int64
	err := f.apply(r.DB.WithContext(ctx).Model(&model.Post{})).Count(&n).Error
	return n, err
}

// List 按发布时间倒序，同一时间按 id 倒序；作者和社区各一次批量预加载，没有 N+1
func (r *PostRepository) List(ctx context.Context, f PostFilter, offset, limit int) ([]model.Post, error) {
	var list []model.Post
	err := f.apply(r.DB.WithContext(ctx).Model(&model.Post{})).
		Preload("Author").
		Preload("Group").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}

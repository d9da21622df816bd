package service

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"Blog_Community/internal/cache"
	"Blog_Community/internal/model"
	"Blog_Community/internal/pkg"
	"Blog_Community/internal/repository/mysql"
	"Blog_Community/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// imageDir 帖子图片的存储目录
const imageDir = "posts"

// ImageStore 保存上传图片，返回相对路径
type ImageStore interface {
	Save(ctx context.Context, file *multipart.FileHeader, dir string) (string, error)
	Delete(ctx context.Context, path string) error
}

// PostInput 创建和编辑帖子时作者可以提交的字段
type PostInput struct {
	Text    string
	GroupID *uint64
	Image   *multipart.FileHeader
}

type PostService struct {
	repo   *mysql.PostRepository
	groups *mysql.GroupRepository
	images ImageStore
	cache  cache.PageCache
	now    func() time.Time
}

func NewPostService(db *gorm.DB, images ImageStore, pageCache cache.PageCache) *PostService {
	return &PostService{
		repo:   &mysql.PostRepository{DB: db},
		groups: &mysql.GroupRepository{DB: db},
		images: images,
		cache:  pageCache,
		now:    time.Now,
	}
}

// WithClock 替换发布时间的时钟
func (s *PostService) WithClock(now func() time.Time) *PostService {
	s.now = now
	return s
}

// applyInput 校验并把输入写到 post 上；没有上传图片时保留原图。返回本次新存的图片路径
func (s *PostService) applyInput(ctx context.Context, post *model.Post, in PostInput) (string, error) {
	text := normalizeText(in.Text)
	if err := ValidatePostText(text); err != nil {
		return "", err
	}
	if in.GroupID != nil && *in.GroupID != 0 {
		g, err := s.groups.FindByID(ctx, *in.GroupID)
		if err != nil {
			return "", pkg.Invalid("group: select a valid choice")
		}
		post.GroupID = &g.ID
		post.Group = g
	} else {
		post.GroupID = nil
		post.Group = nil
	}
	post.Text = text
	if in.Image == nil {
		return "", nil
	}
	if s.images == nil {
		return "", pkg.Invalid("image: uploads are disabled")
	}
	path, err := s.images.Save(ctx, in.Image, imageDir)
	if errors.Is(err, storage.ErrNotImage) {
		return "", pkg.Invalid("image: upload a valid image")
	}
	if err != nil {
		return "", err
	}
	post.Image = path
	return path, nil
}

// CreatePost 作者发帖
func (s *PostService) CreatePost(ctx context.Context, authorID uint64, in PostInput) (*model.Post, error) {
	if authorID == 0 {
		return nil, pkg.Unauthenticated("sign in to publish posts")
	}
	post := &model.Post{AuthorID: authorID}
	saved, err := s.applyInput(ctx, post, in)
	if err != nil {
		return nil, err
	}
	post.CreatedAt = s.now()
	if err = s.repo.Create(ctx, post); err != nil {
		pkg.Logger.Error("create post failed", zap.Uint64("author", authorID), zap.Error(err))
		s.removeImage(ctx, saved)
		return nil, err
	}
	s.invalidate(ctx)
	pkg.Logger.Info("post created", zap.Uint64("id", post.ID), zap.String("preview", post.Preview()))
	return post, nil
}

// EditPost 只有作者能修改，其他人返回 Forbidden 且帖子不变。换图成功后删除旧图
func (s *PostService) EditPost(ctx context.Context, viewerID, postID uint64, in PostInput) (*model.Post, error) {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if viewerID == 0 || post.AuthorID != viewerID {
		return nil, pkg.Forbidden("only the author can edit post %d", postID)
	}
	oldImage := post.Image
	saved, err := s.applyInput(ctx, post, in)
	if err != nil {
		return nil, err
	}
	if err = s.repo.Update(ctx, post); err != nil {
		pkg.Logger.Error("edit post failed", zap.Uint64("id", postID), zap.Error(err))
		s.removeImage(ctx, saved)
		return nil, err
	}
	if saved != "" && oldImage != saved {
		s.removeImage(ctx, oldImage)
	}
	s.invalidate(ctx)
	return post, nil
}

func (s *PostService) removeImage(ctx context.Context, path string) {
	if path == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, path); err != nil {
		pkg.Logger.Warn("delete image failed", zap.String("path", path), zap.Error(err))
	}
}

// CheckAuthor 编辑页：帖子存在且访问者是作者
func (s *PostService) CheckAuthor(ctx context.Context, viewerID, postID uint64) (*model.Post, error) {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if viewerID == 0 || post.AuthorID != viewerID {
		return nil, pkg.Forbidden("only the author can edit post %d", postID)
	}
	return post, nil
}

func (s *PostService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		pkg.Logger.Warn("page cache invalidate failed", zap.Error(err))
	}
}
